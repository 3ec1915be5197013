// Package components defines ECS components for the galaxy field.
package components

// Orbital holds a particle's immutable orbit parameters, fixed at
// generation.
type Orbital struct {
	InitialAngle float32 // Branch angle plus spiral winding, radians
	Radius       float32 // Density-weighted distance from center
	AngularSpeed float32 // Radians per simulation-time unit
	Branch       float32 // Arm angle the particle was assigned to
}

// Offset is the fixed per-axis jitter applied every frame. Y doubles
// as the particle's permanent vertical position.
type Offset struct {
	X, Y, Z float32
}

// Position is the particle's current scene position, recomputed from
// the orbit each frame.
type Position struct {
	X, Y, Z float32
}

// Sprite holds the render attributes fixed at generation. Glyph
// indexes the shared label texture table.
type Sprite struct {
	Glyph   uint8
	Size    float32
	R, G, B float32
	Opacity float32
}
