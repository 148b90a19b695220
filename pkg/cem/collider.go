package cem

import "github.com/coderbot16/cemconv/pkg/math"

// CenterBuilder accumulates vertex positions over a single pass and
// yields the midpoint of their axis-aligned bounds, used as a model's
// declared pivot. Build with no updates yields the origin.
type CenterBuilder struct {
	min, max math.Vec3
	any      bool
}

// NewCenterBuilder returns an empty accumulator.
func NewCenterBuilder() *CenterBuilder {
	return &CenterBuilder{}
}

// Update folds one more position into the running bounds.
func (b *CenterBuilder) Update(p math.Vec3) {
	if !b.any {
		b.min, b.max = p, p
		b.any = true
		return
	}
	b.min = b.min.Min(p)
	b.max = b.max.Max(p)
}

// Build finalizes the accumulator and returns the bounds midpoint.
func (b *CenterBuilder) Build() math.Vec3 {
	if !b.any {
		return math.Vec3{}
	}
	return b.min.Add(b.max).Scale(0.5)
}
