// Package glyph owns the two shared label textures. Particles hold
// indices into the label table; the cache creates each texture once
// and releases each exactly once at teardown, no matter how many
// sprites referenced it or how many times teardown runs.
package glyph

import "fmt"

// Labels are the binary markers rendered onto the textures. The table
// order is the index space particles store.
var Labels = [2]string{"1", "0"}

// Rasterizer is the backend's rasterize-to-texture primitive. The
// render backend satisfies this.
type Rasterizer interface {
	CreateGlyph(label string, px int) error
	ReleaseGlyph(label string) error
}

// Cache tracks which label textures exist on the backend.
type Cache struct {
	ras      Rasterizer
	px       int
	created  []string
	released bool
}

// NewCache prepares a cache that rasterizes at the given resolution.
func NewCache(ras Rasterizer, px int) *Cache {
	return &Cache{ras: ras, px: px}
}

// Ensure creates every label texture that does not exist yet. Safe to
// call repeatedly; textures already created are not recreated. On
// error the textures created so far remain tracked for Release.
func (c *Cache) Ensure() error {
	for _, label := range Labels {
		if c.has(label) {
			continue
		}
		if err := c.ras.CreateGlyph(label, c.px); err != nil {
			return fmt.Errorf("create glyph %q: %w", label, err)
		}
		c.created = append(c.created, label)
	}
	c.released = false
	return nil
}

// Release frees every created texture exactly once. Repeated calls
// no-op. Release keeps going past individual failures and reports the
// first error.
func (c *Cache) Release() error {
	if c.released {
		return nil
	}
	c.released = true

	var firstErr error
	for _, label := range c.created {
		if err := c.ras.ReleaseGlyph(label); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release glyph %q: %w", label, err)
		}
	}
	c.created = c.created[:0]
	return firstErr
}

// Count returns the number of live textures.
func (c *Cache) Count() int {
	return len(c.created)
}

// Resolution returns the rasterization size in pixels.
func (c *Cache) Resolution() int {
	return c.px
}

func (c *Cache) has(label string) bool {
	for _, l := range c.created {
		if l == label {
			return true
		}
	}
	return false
}
