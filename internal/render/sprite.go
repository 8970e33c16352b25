package render

import (
	"image"
	"image/color"
)

// DefaultSpriteLimit bounds how many sprites a cache keeps before it starts
// over.
const DefaultSpriteLimit = 256

// SpriteKey identifies a cached sprite.
type SpriteKey struct {
	Kind  string
	Size  int
	Color color.NRGBA
}

// SpriteCache keeps pre-rendered sprites so vector shapes that repeat every
// frame are drawn once.
type SpriteCache struct {
	sprites map[SpriteKey]*image.RGBA
	limit   int
}

// NewSpriteCache creates a cache holding up to limit sprites.
func NewSpriteCache(limit int) *SpriteCache {
	if limit <= 0 {
		limit = DefaultSpriteLimit
	}
	return &SpriteCache{
		sprites: make(map[SpriteKey]*image.RGBA),
		limit:   limit,
	}
}

// Get returns the sprite for key, calling paint on a fresh w×h canvas the
// first time the key is seen.
func (s *SpriteCache) Get(key SpriteKey, w, h int, paint func(*Canvas)) *image.RGBA {
	if img, ok := s.sprites[key]; ok {
		return img
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(s.sprites) >= s.limit {
		clear(s.sprites)
	}

	c := newCanvas(w, h, 1)
	c.glowEnabled = false
	paint(c)
	s.sprites[key] = c.img
	return c.img
}

// Len returns the number of cached sprites.
func (s *SpriteCache) Len() int {
	return len(s.sprites)
}
