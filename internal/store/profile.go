package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// activeProfileKey is the settings key naming the profile applied at start.
const activeProfileKey = "active_profile"

// Profile is a named tuning overlay. Tuning holds a YAML document in the
// shape of the config package's Tuning; the store does not interpret it.
type Profile struct {
	ID          string
	Name        string
	Description string
	Tuning      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, description, tuning, created_at, updated_at`

// Create inserts a new profile, assigning an ID when p has none.
func (r *ProfileRepository) Create(p *Profile) error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Tuning, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %q: %w", p.Name, ErrDuplicate)
	}
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.scanOne(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	return r.scanOne(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)
}

// Find looks a profile up by ID, then by name.
func (r *ProfileRepository) Find(ref string) (*Profile, error) {
	p, err := r.GetByID(ref)
	if errors.Is(err, ErrNotFound) {
		return r.GetByName(ref)
	}
	return p, err
}

func (r *ProfileRepository) scanOne(query string, arg any) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRow(query, arg).Scan(&p.ID, &p.Name, &p.Description, &p.Tuning, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all profiles ordered by name.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Tuning, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, description = ?, tuning = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Description, p.Tuning, p.UpdatedAt, p.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %q: %w", p.Name, ErrDuplicate)
	}
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Delete removes a profile, clearing it as the active profile if it was.
func (r *ProfileRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectOneRow(result); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM settings WHERE key = ? AND value = ?`, activeProfileKey, id); err != nil {
		return err
	}

	return tx.Commit()
}

// SetActive records id as the profile to apply at start.
func (r *ProfileRepository) SetActive(id string) error {
	if _, err := r.GetByID(id); err != nil {
		return err
	}
	return (&SettingsRepository{db: r.db}).Set(activeProfileKey, id)
}

// Active returns the profile applied at start, or ErrNotFound.
func (r *ProfileRepository) Active() (*Profile, error) {
	id, err := (&SettingsRepository{db: r.db}).Get(activeProfileKey)
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
