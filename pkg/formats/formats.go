// Package formats provides readers for split-indexed authoring
// formats: Wavefront OBJ text and COLLADA markup documents.
//
// Both grammars reference position, texture coordinate and normal by
// independent indices per face corner. Readers hand back the same
// structured Object graph; flattening into the runtime model is the
// converter's job.
package formats

import (
	"github.com/coderbot16/cemconv/pkg/math"
)

// Corner identifies one face corner by independent attribute indices.
// TexCoord and Normal are -1 when the corner carries no reference;
// a missing reference means "use the grammar's default value", never
// index zero.
type Corner struct {
	Position int
	TexCoord int
	Normal   int
}

// ShapeKind is the primitive kind of a Shape.
type ShapeKind int

const (
	ShapePoint ShapeKind = iota
	ShapeLine
	ShapeTriangle
)

// String returns a human-readable primitive kind name.
func (k ShapeKind) String() string {
	switch k {
	case ShapePoint:
		return "point"
	case ShapeLine:
		return "line"
	case ShapeTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Shape is one primitive. Points use Corners[0], lines Corners[0..1],
// triangles all three.
type Shape struct {
	Kind    ShapeKind
	Corners [3]Corner
}

// Object is one split-indexed geometry definition.
type Object struct {
	ID        string
	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3
	Shapes    []Shape
}
