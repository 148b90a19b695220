package convert

import (
	"github.com/coderbot16/cemconv/pkg/cem"
	"github.com/coderbot16/cemconv/pkg/formats"
	"github.com/coderbot16/cemconv/pkg/math"
)

// triple is a canonicalized split-index corner: missing texcoord and
// normal references are replaced by the sentinel (the length of the
// respective source array), so value equality on the triple is the
// deduplication key.
type triple struct {
	position int
	texCoord int
	normal   int
}

// deduplicator canonicalizes split-indexed face corners into a
// minimal flat vertex buffer. The association table and the ordered
// triple list are explicit fields; flat index assignment order is the
// slice's insertion order, never map iteration order.
type deduplicator struct {
	index          map[triple]uint32
	order          []triple
	texSentinel    int
	normalSentinel int
}

func newDeduplicator(obj *formats.Object) *deduplicator {
	return &deduplicator{
		index:          make(map[triple]uint32),
		texSentinel:    len(obj.TexCoords),
		normalSentinel: len(obj.Normals),
	}
}

// resolve returns the flat index for a corner, assigning the next
// sequential index on first encounter.
func (d *deduplicator) resolve(c formats.Corner) uint32 {
	t := triple{position: c.Position, texCoord: c.TexCoord, normal: c.Normal}
	if t.texCoord < 0 {
		t.texCoord = d.texSentinel
	}
	if t.normal < 0 {
		t.normal = d.normalSentinel
	}

	if index, ok := d.index[t]; ok {
		return index
	}

	index := uint32(len(d.order))
	d.index[t] = index
	d.order = append(d.order, t)
	return index
}

// triples returns the recorded associations in first-encounter order.
func (d *deduplicator) triples() []triple {
	return d.order
}

// collectTriangles rewrites an object's triangle shapes to flat
// indices, preserving corner order and winding. Points and lines are
// discarded.
func collectTriangles(obj *formats.Object, d *deduplicator) []cem.Triangle {
	var triangles []cem.Triangle
	for _, shape := range obj.Shapes {
		if shape.Kind != formats.ShapeTriangle {
			continue
		}
		triangles = append(triangles, cem.Triangle{
			d.resolve(shape.Corners[0]),
			d.resolve(shape.Corners[1]),
			d.resolve(shape.Corners[2]),
		})
	}
	return triangles
}

// grammar holds the per-format constants for missing attribute
// references and texture V-axis orientation. The two grammars
// intentionally disagree on V flipping; do not unify them.
type grammar struct {
	defaultTexCoord math.Vec2
	defaultNormal   math.Vec3
	flipV           bool
}

var (
	objGrammar     = grammar{defaultNormal: math.Vec3{X: 1}}
	colladaGrammar = grammar{defaultNormal: math.Vec3{X: 1}, flipV: true}
)

// materializeFrame fetches attribute values for every recorded triple
// from the given object's arrays, substitutes the grammar defaults for
// sentineled references, and applies the import axis transform.
func materializeFrame(obj *formats.Object, triples []triple, g grammar) cem.Frame {
	vertices := make([]cem.Vertex, len(triples))

	for i, t := range triples {
		position := obj.Positions[t.position]

		// The flip applies after default substitution, so a corner
		// without a texcoord reference stores (0, 1) under a flipping
		// grammar.
		texCoord := g.defaultTexCoord
		if t.texCoord < len(obj.TexCoords) {
			texCoord = obj.TexCoords[t.texCoord]
		}
		if g.flipV {
			texCoord.Y = 1 - texCoord.Y
		}

		normal := g.defaultNormal
		if t.normal < len(obj.Normals) {
			normal = obj.Normals[t.normal]
		}

		vertices[i] = cem.Vertex{
			Position: toRuntime.Point(position),
			Normal:   toRuntime.Direction(normal.Normalize()),
			TexCoord: texCoord,
		}
	}

	return cem.NewFrame(vertices, nil)
}
