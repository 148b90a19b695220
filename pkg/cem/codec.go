package cem

// SSMF container codec.
//
// Layout (all integers and floats little-endian):
//
//	magic   "SSMF" (4 bytes)
//	version u16 major, u16 minor
//
// Body (v2.0):
//
//	center      3 x f32
//	materials   u32 count, then per material:
//	              name (u32 length + bytes), texture u32,
//	              selections (u32 count, then u32 offset + u32 count each),
//	              vertexOffset u32, vertexCount u32,
//	              textureName (u32 length + bytes)
//	lod levels  u32 count, then per level: u32 count, then 3 x u32 each
//	tag points  u32 count, then one name string each
//	frames      u32 count, then per frame:
//	              radius f32, center 3 x f32,
//	              vertices (u32 count, then pos 3 x f32, normal 3 x f32,
//	                        texcoord 2 x f32 each),
//	              tag positions (u32 count, then 3 x f32 each)

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	stdmath "math"

	"github.com/coderbot16/cemconv/pkg/math"
)

// Codec errors.
var (
	ErrInvalidMagic       = errors.New("invalid model magic: expected 'SSMF'")
	ErrUnsupportedVersion = errors.New("unsupported model version")
	ErrTruncatedData      = errors.New("truncated model data")
	ErrInvalidCount       = errors.New("invalid count in model data")
)

const magic = "SSMF"

// Sanity bound on every element count in the container.
const maxCount = 1 << 24

// Header identifies the container version.
type Header struct {
	Major uint16
	Minor uint16
}

// HeaderV2 is the header written for every model this codec produces.
var HeaderV2 = Header{Major: 2, Minor: 0}

// String returns the version as "Major.Minor".
func (h Header) String() string {
	return fmt.Sprintf("%d.%d", h.Major, h.Minor)
}

// Supported returns true if this codec can read the body that follows.
func (h Header) Supported() bool {
	return h == HeaderV2
}

// ReadHeader reads and validates the container magic and version.
// It fails with ErrTruncatedData if the stream ends first.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, ErrTruncatedData
	}
	if string(buf[:4]) != magic {
		return Header{}, ErrInvalidMagic
	}
	return Header{
		Major: binary.LittleEndian.Uint16(buf[4:6]),
		Minor: binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

// ReadModel reads a v2.0 model body. The header must already have been
// consumed by ReadHeader and recognized as supported.
func ReadModel(r io.Reader) (*Model, error) {
	d := &decoder{r: r}
	model := &Model{}

	model.Center = d.vec3()

	materialCount := d.count("material")
	if d.err == nil && materialCount > 0 {
		model.Materials = make([]Material, materialCount)
		for i := range model.Materials {
			m := &model.Materials[i]
			m.Name = d.str()
			m.Texture = d.u32()

			selectionCount := d.count("triangle selection")
			if d.err == nil && selectionCount > 0 {
				m.Selections = make([]TriangleSelection, selectionCount)
				for j := range m.Selections {
					m.Selections[j].Offset = d.u32()
					m.Selections[j].Count = d.u32()
				}
			}

			m.VertexOffset = d.u32()
			m.VertexCount = d.u32()
			m.TextureName = d.str()
		}
	}

	lodCount := d.count("lod level")
	if d.err == nil && lodCount > 0 {
		model.LodLevels = make([][]Triangle, lodCount)
		for i := range model.LodLevels {
			triangleCount := d.count("triangle")
			if d.err != nil {
				break
			}
			level := make([]Triangle, triangleCount)
			for j := range level {
				level[j] = Triangle{d.u32(), d.u32(), d.u32()}
			}
			model.LodLevels[i] = level
		}
	}

	tagCount := d.count("tag point")
	if d.err == nil && tagCount > 0 {
		model.TagPoints = make([]string, tagCount)
		for i := range model.TagPoints {
			model.TagPoints[i] = d.str()
		}
	}

	frameCount := d.count("frame")
	if d.err == nil && frameCount > 0 {
		model.Frames = make([]Frame, frameCount)
		for i := range model.Frames {
			f := &model.Frames[i]
			f.Radius = d.f32()
			f.Center = d.vec3()

			vertexCount := d.count("vertex")
			if d.err != nil {
				break
			}
			f.Vertices = make([]Vertex, vertexCount)
			for j := range f.Vertices {
				f.Vertices[j].Position = d.vec3()
				f.Vertices[j].Normal = d.vec3()
				f.Vertices[j].TexCoord = d.vec2()
			}

			frameTagCount := d.count("frame tag point")
			if d.err == nil && frameTagCount > 0 {
				f.TagPoints = make([]math.Vec3, frameTagCount)
				for j := range f.TagPoints {
					f.TagPoints[j] = d.vec3()
				}
			}
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	return model, nil
}

// Write emits the v2.0 header and body for the given model.
func Write(m *Model, w io.Writer) error {
	e := &encoder{w: w}

	e.raw([]byte(magic))
	e.u16(HeaderV2.Major)
	e.u16(HeaderV2.Minor)

	e.vec3(m.Center)

	e.u32(uint32(len(m.Materials)))
	for i := range m.Materials {
		mat := &m.Materials[i]
		e.str(mat.Name)
		e.u32(mat.Texture)
		e.u32(uint32(len(mat.Selections)))
		for _, sel := range mat.Selections {
			e.u32(sel.Offset)
			e.u32(sel.Count)
		}
		e.u32(mat.VertexOffset)
		e.u32(mat.VertexCount)
		e.str(mat.TextureName)
	}

	e.u32(uint32(len(m.LodLevels)))
	for _, level := range m.LodLevels {
		e.u32(uint32(len(level)))
		for _, tri := range level {
			e.u32(tri[0])
			e.u32(tri[1])
			e.u32(tri[2])
		}
	}

	e.u32(uint32(len(m.TagPoints)))
	for _, name := range m.TagPoints {
		e.str(name)
	}

	e.u32(uint32(len(m.Frames)))
	for i := range m.Frames {
		f := &m.Frames[i]
		e.f32(f.Radius)
		e.vec3(f.Center)
		e.u32(uint32(len(f.Vertices)))
		for _, v := range f.Vertices {
			e.vec3(v.Position)
			e.vec3(v.Normal)
			e.vec2(v.TexCoord)
		}
		e.u32(uint32(len(f.TagPoints)))
		for _, p := range f.TagPoints {
			e.vec3(p)
		}
	}

	return e.err
}

// decoder reads little-endian primitives, remembering the first error.
type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) read(buf []byte) {
	if d.err != nil {
		return
	}
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = ErrTruncatedData
	}
}

func (d *decoder) u32() uint32 {
	var buf [4]byte
	d.read(buf[:])
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:])
}

func (d *decoder) f32() float32 {
	return stdmath.Float32frombits(d.u32())
}

func (d *decoder) vec2() math.Vec2 {
	return math.Vec2{X: d.f32(), Y: d.f32()}
}

func (d *decoder) vec3() math.Vec3 {
	return math.Vec3{X: d.f32(), Y: d.f32(), Z: d.f32()}
}

func (d *decoder) count(what string) uint32 {
	n := d.u32()
	if d.err == nil && n > maxCount {
		d.err = fmt.Errorf("%w: %s count %d", ErrInvalidCount, what, n)
		return 0
	}
	return n
}

func (d *decoder) str() string {
	n := d.count("string byte")
	if d.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	d.read(buf)
	if d.err != nil {
		return ""
	}
	return string(buf)
}

// encoder writes little-endian primitives, remembering the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) raw(buf []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(buf)
}

func (e *encoder) u16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	e.raw(buf[:])
}

func (e *encoder) u32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	e.raw(buf[:])
}

func (e *encoder) f32(v float32) {
	e.u32(stdmath.Float32bits(v))
}

func (e *encoder) vec2(v math.Vec2) {
	e.f32(v.X)
	e.f32(v.Y)
}

func (e *encoder) vec3(v math.Vec3) {
	e.f32(v.X)
	e.f32(v.Y)
	e.f32(v.Z)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.raw([]byte(s))
}
