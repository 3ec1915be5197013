package glyph

import (
	"errors"
	"testing"
)

// countingRasterizer tallies create/release calls per label.
type countingRasterizer struct {
	creates    map[string]int
	releases   map[string]int
	createErr  error
	releaseErr error
}

func newCountingRasterizer() *countingRasterizer {
	return &countingRasterizer{creates: map[string]int{}, releases: map[string]int{}}
}

func (r *countingRasterizer) CreateGlyph(label string, px int) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.creates[label]++
	return nil
}

func (r *countingRasterizer) ReleaseGlyph(label string) error {
	r.releases[label]++
	return r.releaseErr
}

func TestEnsureCreatesExactlyTwo(t *testing.T) {
	ras := newCountingRasterizer()
	c := NewCache(ras, 128)

	if err := c.Ensure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Count() != 2 {
		t.Errorf("expected 2 live textures, got %d", c.Count())
	}
	if ras.creates["1"] != 1 || ras.creates["0"] != 1 {
		t.Errorf("expected one create per label, got %v", ras.creates)
	}
}

func TestEnsureIdempotent(t *testing.T) {
	ras := newCountingRasterizer()
	c := NewCache(ras, 64)

	for i := 0; i < 3; i++ {
		if err := c.Ensure(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ras.creates["1"] != 1 || ras.creates["0"] != 1 {
		t.Errorf("repeated Ensure must not recreate textures, got %v", ras.creates)
	}
}

func TestReleaseExactlyOncePerLabel(t *testing.T) {
	ras := newCountingRasterizer()
	c := NewCache(ras, 96)

	if err := c.Ensure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Release twice; each texture must be freed once
	if err := c.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ras.releases["1"] != 1 || ras.releases["0"] != 1 {
		t.Errorf("expected exactly one release per label, got %v", ras.releases)
	}
	if c.Count() != 0 {
		t.Errorf("expected 0 live textures after release, got %d", c.Count())
	}
}

func TestReleaseWithoutEnsure(t *testing.T) {
	ras := newCountingRasterizer()
	c := NewCache(ras, 64)

	if err := c.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ras.releases) != 0 {
		t.Errorf("expected no release calls, got %v", ras.releases)
	}
}

func TestEnsureFailurePropagates(t *testing.T) {
	ras := newCountingRasterizer()
	ras.createErr = errors.New("no context")
	c := NewCache(ras, 64)

	err := c.Ensure()
	if err == nil {
		t.Fatal("expected error when backend cannot rasterize")
	}
	if !errors.Is(err, ras.createErr) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}

func TestPartialEnsureReleasesWhatExists(t *testing.T) {
	ras := newCountingRasterizer()
	c := NewCache(ras, 64)

	// First label succeeds, then creation starts failing
	if err := c.ras.CreateGlyph("warmup", 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Ensure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ras.createErr = errors.New("lost context")

	// A later Ensure is a no-op for existing labels, so no error
	if err := c.Ensure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ras.releases["1"] != 1 || ras.releases["0"] != 1 {
		t.Errorf("expected both tracked labels released, got %v", ras.releases)
	}
}

func TestReleaseReportsFirstError(t *testing.T) {
	ras := newCountingRasterizer()
	c := NewCache(ras, 64)
	if err := c.Ensure(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ras.releaseErr = errors.New("already gone")
	err := c.Release()
	if err == nil {
		t.Fatal("expected release error to propagate")
	}
	// Both labels must still have been attempted
	if ras.releases["1"] != 1 || ras.releases["0"] != 1 {
		t.Errorf("release must keep going past failures, got %v", ras.releases)
	}
}

func TestResolution(t *testing.T) {
	c := NewCache(newCountingRasterizer(), 96)
	if c.Resolution() != 96 {
		t.Errorf("expected resolution 96, got %d", c.Resolution())
	}
}
