package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_GetSet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	_, err := repo.Get("glow")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set("glow", "on"))
	require.NoError(t, repo.Set("glow", "off"), "overwrite")

	v, err := repo.Get("glow")
	require.NoError(t, err)
	assert.Equal(t, "off", v)
}

func TestSettingsRepository_GetOr(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	v, err := repo.GetOr("mirror", "true")
	require.NoError(t, err)
	assert.Equal(t, "true", v, "default")

	require.NoError(t, repo.Set("mirror", "false"))
	v, err = repo.GetOr("mirror", "true")
	require.NoError(t, err)
	assert.Equal(t, "false", v, "stored")
}

func TestSettingsRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	require.NoError(t, repo.Set("a", "1"))
	require.NoError(t, repo.Delete("a"))

	_, err := repo.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, repo.Delete("never-set"), "deleting an unset key")
}

func TestSettingsRepository_All(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	require.NoError(t, repo.Set("b", "2"))
	require.NoError(t, repo.Set("a", "1"))

	got, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
}
