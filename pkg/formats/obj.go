package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coderbot16/cemconv/pkg/math"
)

// OBJ syntax errors. Parse failures always name the offending line.
var (
	ErrObjSyntax        = errors.New("malformed OBJ statement")
	ErrObjIndexRange    = errors.New("OBJ index out of range")
	ErrObjEmptyDocument = errors.New("OBJ document contains no objects")
)

// ObjDocument is a parsed OBJ file. Attribute arrays are shared by all
// objects, as OBJ indices are global to the file.
type ObjDocument struct {
	Objects []*Object
}

// objParser accumulates document state while walking the line stream.
type objParser struct {
	positions []math.Vec3
	texCoords []math.Vec2
	normals   []math.Vec3
	objects   []*Object
	current   *Object
	line      int
}

// ParseObj parses a Wavefront OBJ document. Faces with more than three
// corners are fan-triangulated; point and line statements are kept as
// their own shape kinds. Unknown statements are skipped.
func ParseObj(r io.Reader) (*ObjDocument, error) {
	p := &objParser{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		p.line++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if err := p.statement(fields); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ input: %w", err)
	}

	if len(p.objects) == 0 {
		return nil, ErrObjEmptyDocument
	}

	// Indices are file-global; every object sees the full arrays.
	for _, obj := range p.objects {
		obj.Positions = p.positions
		obj.TexCoords = p.texCoords
		obj.Normals = p.normals
	}

	return &ObjDocument{Objects: p.objects}, nil
}

func (p *objParser) statement(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := p.parseVec3(fields[1:])
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)
	case "vt":
		v, err := p.parseVec2(fields[1:])
		if err != nil {
			return err
		}
		p.texCoords = append(p.texCoords, v)
	case "vn":
		v, err := p.parseVec3(fields[1:])
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v)
	case "o":
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		p.objects = append(p.objects, &Object{ID: name})
		p.current = p.objects[len(p.objects)-1]
	case "f":
		return p.parseFace(fields[1:])
	case "p":
		return p.parsePoints(fields[1:])
	case "l":
		return p.parseLine(fields[1:])
	default:
		// g, s, mtllib, usemtl and friends carry no geometry.
	}
	return nil
}

// target returns the object receiving shapes, creating an anonymous
// one for documents that never declare "o".
func (p *objParser) target() *Object {
	if p.current == nil {
		p.objects = append(p.objects, &Object{})
		p.current = p.objects[len(p.objects)-1]
	}
	return p.current
}

func (p *objParser) parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, p.errf("%w: expected 3 components, got %d", ErrObjSyntax, len(fields))
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, p.errf("%w: bad number %q", ErrObjSyntax, fields[i])
		}
		out[i] = float32(f)
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func (p *objParser) parseVec2(fields []string) (math.Vec2, error) {
	if len(fields) < 1 {
		return math.Vec2{}, p.errf("%w: expected at least 1 component", ErrObjSyntax)
	}
	var out [2]float32
	for i := 0; i < 2 && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec2{}, p.errf("%w: bad number %q", ErrObjSyntax, fields[i])
		}
		out[i] = float32(f)
	}
	return math.Vec2{X: out[0], Y: out[1]}, nil
}

func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return p.errf("%w: face with %d corners", ErrObjSyntax, len(fields))
	}

	corners := make([]Corner, len(fields))
	for i, field := range fields {
		c, err := p.parseCorner(field)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	obj := p.target()
	for i := 1; i < len(corners)-1; i++ {
		obj.Shapes = append(obj.Shapes, Shape{
			Kind:    ShapeTriangle,
			Corners: [3]Corner{corners[0], corners[i], corners[i+1]},
		})
	}
	return nil
}

func (p *objParser) parsePoints(fields []string) error {
	if len(fields) == 0 {
		return p.errf("%w: point statement without indices", ErrObjSyntax)
	}
	obj := p.target()
	for _, field := range fields {
		c, err := p.parseCorner(field)
		if err != nil {
			return err
		}
		obj.Shapes = append(obj.Shapes, Shape{Kind: ShapePoint, Corners: [3]Corner{c}})
	}
	return nil
}

func (p *objParser) parseLine(fields []string) error {
	if len(fields) < 2 {
		return p.errf("%w: line statement with %d indices", ErrObjSyntax, len(fields))
	}
	corners := make([]Corner, len(fields))
	for i, field := range fields {
		c, err := p.parseCorner(field)
		if err != nil {
			return err
		}
		corners[i] = c
	}
	obj := p.target()
	for i := 0; i < len(corners)-1; i++ {
		obj.Shapes = append(obj.Shapes, Shape{
			Kind:    ShapeLine,
			Corners: [3]Corner{corners[i], corners[i+1]},
		})
	}
	return nil
}

// parseCorner parses one "p", "p/t", "p//n" or "p/t/n" reference.
func (p *objParser) parseCorner(field string) (Corner, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return Corner{}, p.errf("%w: corner %q", ErrObjSyntax, field)
	}

	corner := Corner{TexCoord: -1, Normal: -1}

	pos, err := p.resolveIndex(parts[0], len(p.positions))
	if err != nil {
		return Corner{}, err
	}
	corner.Position = pos

	if len(parts) > 1 && parts[1] != "" {
		tex, err := p.resolveIndex(parts[1], len(p.texCoords))
		if err != nil {
			return Corner{}, err
		}
		corner.TexCoord = tex
	}
	if len(parts) > 2 && parts[2] != "" {
		normal, err := p.resolveIndex(parts[2], len(p.normals))
		if err != nil {
			return Corner{}, err
		}
		corner.Normal = normal
	}

	return corner, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to
// a 0-based index into an array of the given current length.
func (p *objParser) resolveIndex(token string, length int) (int, error) {
	raw, err := strconv.Atoi(token)
	if err != nil {
		return 0, p.errf("%w: bad index %q", ErrObjSyntax, token)
	}

	var index int
	switch {
	case raw > 0:
		index = raw - 1
	case raw < 0:
		index = length + raw
	default:
		return 0, p.errf("%w: index 0 is not valid", ErrObjIndexRange)
	}

	if index < 0 || index >= length {
		return 0, p.errf("%w: index %d with %d entries", ErrObjIndexRange, raw, length)
	}
	return index, nil
}

func (p *objParser) errf(format string, args ...any) error {
	return fmt.Errorf("obj: line %d: %w", p.line, fmt.Errorf(format, args...))
}
