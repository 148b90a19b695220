package formats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/coderbot16/cemconv/pkg/dom"
	"github.com/coderbot16/cemconv/pkg/math"
)

// COLLADA structure errors.
var (
	ErrColladaNoMesh       = errors.New("geometry has no mesh")
	ErrColladaNoPositions  = errors.New("mesh has no position source")
	ErrColladaBadIndexData = errors.New("malformed primitive index data")
)

// MorphLink names the ordered morph targets attached to a base
// geometry, along with the declared morph method.
type MorphLink struct {
	Method  string
	Targets []string
}

// ColladaDocument is a parsed COLLADA file: the geometry library as
// split-indexed objects, the morph linkage, and the raw markup tree
// for scene traversal.
type ColladaDocument struct {
	Root    *dom.Node
	Objects map[string]*Object
	Links   map[string]MorphLink
}

// TrimHash strips the leading '#' from a COLLADA URL reference.
func TrimHash(url string) string {
	return strings.TrimPrefix(url, "#")
}

// ParseCollada extracts the geometry and controller libraries from a
// parsed COLLADA markup tree.
func ParseCollada(root *dom.Node) (*ColladaDocument, error) {
	doc := &ColladaDocument{
		Root:    root,
		Objects: make(map[string]*Object),
		Links:   make(map[string]MorphLink),
	}

	if library := root.Child("library_geometries"); library != nil {
		for _, geometry := range library.ChildrenNamed("geometry") {
			id, _ := geometry.Attr("id")
			object, err := parseGeometry(id, geometry)
			if err != nil {
				return nil, fmt.Errorf("geometry %q: %w", id, err)
			}
			doc.Objects[id] = object
		}
	}

	if library := root.Child("library_controllers"); library != nil {
		for _, controller := range library.ChildrenNamed("controller") {
			morph := controller.Child("morph")
			if morph == nil {
				continue
			}
			base, link, ok := parseMorph(morph)
			if ok {
				doc.Links[base] = link
			}
		}
	}

	return doc, nil
}

// source is one <source> float array with its accessor stride.
type source struct {
	floats []float32
	stride int
}

func parseGeometry(id string, geometry *dom.Node) (*Object, error) {
	mesh := geometry.Child("mesh")
	if mesh == nil {
		return nil, ErrColladaNoMesh
	}

	sources := make(map[string]source)
	for _, s := range mesh.ChildrenNamed("source") {
		sourceID, _ := s.Attr("id")
		parsed, err := parseSource(s)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", sourceID, err)
		}
		sources[sourceID] = parsed
	}

	// <vertices> indirects the VERTEX semantic to a POSITION source.
	verticesToPosition := make(map[string]string)
	for _, vertices := range mesh.ChildrenNamed("vertices") {
		verticesID, _ := vertices.Attr("id")
		for _, input := range vertices.ChildrenNamed("input") {
			if semantic, _ := input.Attr("semantic"); semantic == "POSITION" {
				ref, _ := input.Attr("source")
				verticesToPosition[verticesID] = TrimHash(ref)
			}
		}
	}

	object := &Object{ID: id}

	for _, primitive := range mesh.Children() {
		switch primitive.Name() {
		case "triangles", "polylist":
			if err := parsePrimitives(object, primitive, sources, verticesToPosition); err != nil {
				return nil, err
			}
		}
	}

	if object.Positions == nil {
		return nil, ErrColladaNoPositions
	}
	return object, nil
}

func parseSource(s *dom.Node) (source, error) {
	array := s.Child("float_array")
	if array == nil {
		return source{}, nil
	}

	fields := strings.Fields(array.Text())
	floats := make([]float32, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return source{}, fmt.Errorf("bad float %q", field)
		}
		floats[i] = float32(f)
	}

	stride := 1
	if technique := s.Child("technique_common"); technique != nil {
		if accessor := technique.Child("accessor"); accessor != nil {
			if raw, ok := accessor.Attr("stride"); ok {
				if n, err := strconv.Atoi(raw); err == nil && n > 0 {
					stride = n
				}
			}
		}
	}

	return source{floats: floats, stride: stride}, nil
}

// primitiveInput is one <input> binding of a semantic to an index offset.
type primitiveInput struct {
	semantic string
	offset   int
	sourceID string
}

func parsePrimitives(object *Object, primitive *dom.Node, sources map[string]source, verticesToPosition map[string]string) error {
	var inputs []primitiveInput
	maxOffset := 0

	for _, input := range primitive.ChildrenNamed("input") {
		semantic, _ := input.Attr("semantic")
		ref, _ := input.Attr("source")

		offset := 0
		if raw, ok := input.Attr("offset"); ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%w: bad input offset %q", ErrColladaBadIndexData, raw)
			}
			offset = n
		}
		if offset > maxOffset {
			maxOffset = offset
		}

		sourceID := TrimHash(ref)
		if semantic == "VERTEX" {
			if positionID, ok := verticesToPosition[sourceID]; ok {
				semantic = "POSITION"
				sourceID = positionID
			}
		}
		inputs = append(inputs, primitiveInput{semantic: semantic, offset: offset, sourceID: sourceID})
	}

	corner := maxOffset + 1

	var positionOffset, texOffset, normalOffset = -1, -1, -1
	for _, input := range inputs {
		switch input.semantic {
		case "POSITION":
			positionOffset = input.offset
			if src, ok := sources[input.sourceID]; ok && object.Positions == nil {
				object.Positions = groupVec3(src)
			}
		case "TEXCOORD":
			// First set wins; additional UV sets are not part of the
			// flat model.
			if texOffset == -1 {
				texOffset = input.offset
				if src, ok := sources[input.sourceID]; ok && object.TexCoords == nil {
					object.TexCoords = groupVec2(src)
				}
			}
		case "NORMAL":
			normalOffset = input.offset
			if src, ok := sources[input.sourceID]; ok && object.Normals == nil {
				object.Normals = groupVec3(src)
			}
		}
	}

	if positionOffset == -1 {
		return fmt.Errorf("%w: primitive without VERTEX input", ErrColladaNoPositions)
	}

	indices, err := parseIntList(primitive.Child("p"))
	if err != nil {
		return err
	}
	if len(indices)%corner != 0 {
		return fmt.Errorf("%w: %d indices with %d values per corner", ErrColladaBadIndexData, len(indices), corner)
	}

	// Every index must land inside its source array; a malformed
	// document fails with a diagnostic, never a panic downstream.
	makeCorner := func(i int) (Corner, error) {
		base := i * corner
		c := Corner{Position: indices[base+positionOffset], TexCoord: -1, Normal: -1}
		if c.Position < 0 || c.Position >= len(object.Positions) {
			return Corner{}, fmt.Errorf("%w: position index %d with %d entries",
				ErrColladaBadIndexData, c.Position, len(object.Positions))
		}
		if texOffset != -1 {
			c.TexCoord = indices[base+texOffset]
			if c.TexCoord < 0 || c.TexCoord >= len(object.TexCoords) {
				return Corner{}, fmt.Errorf("%w: texcoord index %d with %d entries",
					ErrColladaBadIndexData, c.TexCoord, len(object.TexCoords))
			}
		}
		if normalOffset != -1 {
			c.Normal = indices[base+normalOffset]
			if c.Normal < 0 || c.Normal >= len(object.Normals) {
				return Corner{}, fmt.Errorf("%w: normal index %d with %d entries",
					ErrColladaBadIndexData, c.Normal, len(object.Normals))
			}
		}
		return c, nil
	}

	appendTriangle := func(a, b, c int) error {
		var corners [3]Corner
		for i, at := range [3]int{a, b, c} {
			corner, err := makeCorner(at)
			if err != nil {
				return err
			}
			corners[i] = corner
		}
		object.Shapes = append(object.Shapes, Shape{Kind: ShapeTriangle, Corners: corners})
		return nil
	}

	total := len(indices) / corner

	if primitive.Name() == "triangles" {
		if total%3 != 0 {
			return fmt.Errorf("%w: %d corners in <triangles>", ErrColladaBadIndexData, total)
		}
		for i := 0; i < total; i += 3 {
			if err := appendTriangle(i, i+1, i+2); err != nil {
				return err
			}
		}
		return nil
	}

	// polylist: fan-triangulate each polygon per its vcount entry.
	vcounts, err := parseIntList(primitive.Child("vcount"))
	if err != nil {
		return err
	}
	at := 0
	for _, n := range vcounts {
		if at+n > total {
			return fmt.Errorf("%w: vcount overruns index data", ErrColladaBadIndexData)
		}
		for i := 1; i < n-1; i++ {
			if err := appendTriangle(at, at+i, at+i+1); err != nil {
				return err
			}
		}
		at += n
	}
	return nil
}

func parseIntList(node *dom.Node) ([]int, error) {
	if node == nil {
		return nil, ErrColladaBadIndexData
	}
	fields := strings.Fields(node.Text())
	out := make([]int, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrColladaBadIndexData, field)
		}
		out[i] = n
	}
	return out, nil
}

func groupVec3(s source) []math.Vec3 {
	stride := s.stride
	if stride < 3 {
		stride = 3
	}
	out := make([]math.Vec3, 0, len(s.floats)/stride)
	for i := 0; i+stride <= len(s.floats); i += stride {
		out = append(out, math.Vec3{X: s.floats[i], Y: s.floats[i+1], Z: s.floats[i+2]})
	}
	return out
}

func groupVec2(s source) []math.Vec2 {
	stride := s.stride
	if stride < 2 {
		stride = 2
	}
	out := make([]math.Vec2, 0, len(s.floats)/stride)
	for i := 0; i+stride <= len(s.floats); i += stride {
		out = append(out, math.Vec2{X: s.floats[i], Y: s.floats[i+1]})
	}
	return out
}

// parseMorph extracts the base geometry id and target list from one
// <morph> block. Targets resolve through the MORPH_TARGET input's
// IDREF array in declaration order.
func parseMorph(morph *dom.Node) (string, MorphLink, bool) {
	base, ok := morph.Attr("source")
	if !ok {
		return "", MorphLink{}, false
	}

	method, _ := morph.Attr("method")

	targets := morph.Child("targets")
	if targets == nil {
		return "", MorphLink{}, false
	}

	var targetSourceID string
	for _, input := range targets.ChildrenNamed("input") {
		if semantic, _ := input.Attr("semantic"); semantic == "MORPH_TARGET" {
			ref, _ := input.Attr("source")
			targetSourceID = TrimHash(ref)
		}
	}
	if targetSourceID == "" {
		return "", MorphLink{}, false
	}

	for _, s := range morph.ChildrenNamed("source") {
		id, _ := s.Attr("id")
		if id != targetSourceID {
			continue
		}
		array := s.Child("IDREF_array")
		if array == nil {
			return "", MorphLink{}, false
		}
		return TrimHash(base), MorphLink{
			Method:  method,
			Targets: strings.Fields(array.Text()),
		}, true
	}

	return "", MorphLink{}, false
}
