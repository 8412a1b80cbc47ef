package game

import (
	"math"

	"gobble/config"
)

// Object is the shared geometry of everything that lives in the world.
type Object struct {
	X, Y   float64
	Radius float64
	Color  string
	Kind   string
}

func (o *Object) DistanceTo(other *Object) float64 {
	return math.Hypot(o.X-other.X, o.Y-other.Y)
}

// Overlaps reports whether the two circles touch or intersect.
func (o *Object) Overlaps(other *Object) bool {
	return o.DistanceTo(other) <= o.Radius+other.Radius
}

// Food is a consumable dot. Eating it grants Value score.
type Food struct {
	Object
	ID    string
	Value float64
}

// World holds the immutable play-area bounds. Positions are clamped so a
// circle never sticks out past the padded edge.
type World struct {
	Width, Height, Padding float64
}

func NewWorld(cfg config.WorldConfig) World {
	return World{Width: cfg.Width, Height: cfg.Height, Padding: cfg.Padding}
}

func (w World) Clamp(o *Object) {
	o.X = clamp(o.X, w.Padding+o.Radius, w.Width-w.Padding-o.Radius)
	o.Y = clamp(o.Y, w.Padding+o.Radius, w.Height-w.Padding-o.Radius)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		// degenerate range (object wider than the world), pin to center
		return (lo + hi) / 2
	}
	return math.Min(math.Max(v, lo), hi)
}
