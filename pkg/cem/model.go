// Package cem provides the flat-indexed runtime model and its SSMF
// binary container codec.
//
// A flat-indexed model stores one shared index per vertex: position,
// normal and texture coordinate are looked up with the same index. A
// model may carry several frames (alternate vertex sets for morph
// animation); all frames share the model's single triangle buffer.
package cem

import "github.com/coderbot16/cemconv/pkg/math"

// Vertex is one flat-indexed vertex record.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// Triangle indexes three vertices in a frame's vertex array.
type Triangle [3]uint32

// TriangleSelection is a contiguous sub-range of a LOD level's
// triangle buffer.
type TriangleSelection struct {
	Offset uint32
	Count  uint32
}

// Material groups a range of triangles under a name and texture.
// It partitions the triangle buffer; it never affects vertex topology.
type Material struct {
	Name         string
	Texture      uint32
	Selections   []TriangleSelection // One per LOD level
	VertexOffset uint32
	VertexCount  uint32
	TextureName  string
}

// Frame is one complete vertex set sharing the model's triangle buffer.
// Every frame of a model has the same number of vertices.
type Frame struct {
	Vertices  []Vertex
	TagPoints []math.Vec3
	Center    math.Vec3
	Radius    float32
}

// NewFrame builds a frame from its vertices, computing the bounds
// center and the bounding radius around it.
func NewFrame(vertices []Vertex, tagPoints []math.Vec3) Frame {
	cb := NewCenterBuilder()
	for _, v := range vertices {
		cb.Update(v.Position)
	}
	center := cb.Build()

	var radius float32
	for _, v := range vertices {
		if d := v.Position.Distance(center); d > radius {
			radius = d
		}
	}

	return Frame{
		Vertices:  vertices,
		TagPoints: tagPoints,
		Center:    center,
		Radius:    radius,
	}
}

// Model is a flat-indexed model with one or more frames.
type Model struct {
	Center    math.Vec3
	Materials []Material
	LodLevels [][]Triangle
	TagPoints []string // Tag point names; positions live in each frame
	Frames    []Frame
}

// TriangleCount returns the triangle count of the highest-detail LOD.
func (m *Model) TriangleCount() int {
	if len(m.LodLevels) == 0 {
		return 0
	}
	return len(m.LodLevels[0])
}

// VertexCount returns the vertex count shared by every frame.
func (m *Model) VertexCount() int {
	if len(m.Frames) == 0 {
		return 0
	}
	return len(m.Frames[0].Vertices)
}
