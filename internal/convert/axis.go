package convert

import (
	stdmath "math"

	"github.com/coderbot16/cemconv/pkg/math"
)

// Authoring formats are Y-up, the runtime model is Z-up. Import
// rotates +90 degrees about X, export rotates back; the two are exact
// inverses up to float rounding.
type axisTransform struct {
	m math.Mat4
}

var (
	toRuntime   = axisTransform{m: math.RotateX(stdmath.Pi / 2)}
	toAuthoring = axisTransform{m: math.RotateX(-stdmath.Pi / 2)}
)

// Point transforms a position as a full affine point.
func (t axisTransform) Point(p math.Vec3) math.Vec3 {
	return t.m.TransformPoint(p)
}

// Direction transforms a normal, ignoring any translation component.
func (t axisTransform) Direction(d math.Vec3) math.Vec3 {
	return t.m.TransformDirection(d)
}
