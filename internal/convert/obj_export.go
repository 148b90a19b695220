package convert

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/coderbot16/cemconv/pkg/cem"
)

// ftoa formats a float32 with the shortest representation that
// round-trips, keeping emitted text free of float64 noise.
func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ModelToObj emits one frame of a flat model as OBJ text. Every flat
// vertex becomes a v/vn/vt triple sharing one index, so faces emit
// coincident i/i/i references. The OBJ grammar holds a single frame;
// frameIndex selects which one.
func ModelToObj(model *cem.Model, frameIndex int, w io.Writer) error {
	if frameIndex < 0 || frameIndex >= len(model.Frames) {
		return fmt.Errorf("%w: tried to extract frame %d from a model with %d frames",
			ErrFrameOutOfRange, frameIndex, len(model.Frames))
	}

	var triangles []cem.Triangle
	if len(model.LodLevels) > 0 {
		triangles = model.LodLevels[0]
	}
	frame := &model.Frames[frameIndex]

	bw := bufio.NewWriter(w)

	for _, vertex := range frame.Vertices {
		position := toAuthoring.Point(vertex.Position)
		normal := toAuthoring.Direction(vertex.Normal.Normalize())

		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(position.X), ftoa(position.Y), ftoa(position.Z))
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(normal.X), ftoa(normal.Y), ftoa(normal.Z))
		fmt.Fprintf(bw, "vt %s %s\n", ftoa(vertex.TexCoord.X), ftoa(vertex.TexCoord.Y))
	}

	for i := range model.Materials {
		material := &model.Materials[i]
		fmt.Fprintf(bw, "# name: %s, texture: %d, texture_name: %s\n",
			material.Name, material.Texture, material.TextureName)

		if len(material.Selections) == 0 {
			continue
		}
		selection := material.Selections[0]

		for j := uint32(0); j < selection.Count; j++ {
			index := selection.Offset + j
			if int(index) >= len(triangles) {
				break
			}
			triangle := triangles[index]

			a := material.VertexOffset + triangle[0] + 1
			b := material.VertexOffset + triangle[1] + 1
			c := material.VertexOffset + triangle[2] + 1
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
	}

	return bw.Flush()
}
