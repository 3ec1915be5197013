package galaxy

// Destroy tears the instance down: stops animation, clears every
// pending deadline, releases the glyph textures, and closes CSV
// output. Idempotent; repeated calls after the first are no-ops, and
// textures are never double-freed.
func (g *Galaxy) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.animating = false
	g.coord = coordinator{}

	if err := g.cache.Release(); err != nil {
		g.logger.Error("glyph_release_failed", "error", err)
	}
	if err := g.output.Close(); err != nil {
		g.logger.Error("output_close_failed", "error", err)
	}

	g.logger.Info("galaxy_destroyed", "frames", g.frames)
}
