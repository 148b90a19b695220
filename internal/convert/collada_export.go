package convert

import (
	"bufio"
	"fmt"
	"io"

	"github.com/coderbot16/cemconv/pkg/cem"
)

// Fixed timestamps keep the emitted document byte-identical across
// runs for the same model.
const colladaHeader = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <asset>
    <contributor>
      <author>cemconv user</author>
      <authoring_tool>cemconv collada exporter</authoring_tool>
    </contributor>
    <created>2018-01-01T00:00:00</created>
    <modified>2018-01-01T00:00:00</modified>
    <unit name="meter" meter="1"/>
    <up_axis>Y_UP</up_axis>
  </asset>
  <library_cameras/>
  <library_lights/>
  <library_images/>
  <library_geometries>
`

const (
	colladaFormatPos = `<param name="X" type="float"/><param name="Y" type="float"/><param name="Z" type="float"/>`
	colladaFormatTex = `<param name="S" type="float"/><param name="T" type="float"/>`
)

const colladaRootName = "scene_root"

// ModelToCollada emits a flat model as a COLLADA document: one
// geometry block per frame, a morph controller naming every non-base
// frame as a target with zero weight when more than one frame exists,
// and one scene node instancing the base frame's geometry.
func ModelToCollada(model *cem.Model, w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(colladaHeader)

	polygons := buildPolygons(model)
	for frameIndex := range model.Frames {
		writeColladaGeometry(bw, frameName(frameIndex), &model.Frames[frameIndex], polygons)
	}

	bw.WriteString("  </library_geometries>\n")
	bw.WriteString("  <library_controllers>\n")
	if len(model.Frames) > 1 {
		writeMorphController(bw, model)
	}
	bw.WriteString("  </library_controllers>\n")

	bw.WriteString(`  <library_visual_scenes><visual_scene id="Scene" name="Scene">` + "\n")
	fmt.Fprintf(bw, `<node id="%[1]s" name="%[1]s" type="NODE"><matrix sid="transform">1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1</matrix><instance_geometry url="#%[1]s-mesh"/></node>`+"\n",
		frameName(0))
	bw.WriteString("  </visual_scene></library_visual_scenes>\n")

	bw.WriteString(`  <scene><instance_visual_scene url="#Scene"/></scene>` + "\n")
	bw.WriteString("</COLLADA>\n")

	return bw.Flush()
}

func frameName(index int) string {
	return fmt.Sprintf("%s_frame%d", colladaRootName, index)
}

// buildPolygons flattens the material selections over the first LOD
// into one index list, applying each material's vertex offset.
func buildPolygons(model *cem.Model) []uint32 {
	var triangles []cem.Triangle
	if len(model.LodLevels) > 0 {
		triangles = model.LodLevels[0]
	}
	polygons := make([]uint32, len(triangles)*3)

	for i := range model.Materials {
		material := &model.Materials[i]
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
			polygons[index*3+0] = material.VertexOffset + triangle[0]
			polygons[index*3+1] = material.VertexOffset + triangle[1]
			polygons[index*3+2] = material.VertexOffset + triangle[2]
		}
	}
	return polygons
}

func writeColladaGeometry(bw *bufio.Writer, name string, frame *cem.Frame, polygons []uint32) {
	positions := make([]float32, len(frame.Vertices)*3)
	normals := make([]float32, len(frame.Vertices)*3)
	texCoords := make([]float32, len(frame.Vertices)*2)

	for i, vertex := range frame.Vertices {
		position := toAuthoring.Point(vertex.Position)
		normal := toAuthoring.Direction(vertex.Normal.Normalize())

		positions[i*3+0] = position.X
		positions[i*3+1] = position.Y
		positions[i*3+2] = position.Z

		normals[i*3+0] = normal.X
		normals[i*3+1] = normal.Y
		normals[i*3+2] = normal.Z

		texCoords[i*2+0] = vertex.TexCoord.X
		texCoords[i*2+1] = 1 - vertex.TexCoord.Y
	}

	vertexCount := len(frame.Vertices)

	fmt.Fprintf(bw, "    <geometry id=\"%[1]s-mesh\" name=\"%[1]s\">\n", name)
	bw.WriteString("      <mesh>\n")

	writeColladaSource(bw, name, "mesh-positions", positions, vertexCount, 3, colladaFormatPos)
	writeColladaSource(bw, name, "mesh-normals", normals, vertexCount, 3, colladaFormatPos)
	writeColladaSource(bw, name, "mesh-map", texCoords, vertexCount, 2, colladaFormatTex)

	fmt.Fprintf(bw, "        <vertices id=\"%[1]s-mesh-vertices\"><input semantic=\"POSITION\" source=\"#%[1]s-mesh-positions\"/></vertices>\n", name)

	fmt.Fprintf(bw, "        <triangles count=\"%d\">\n", len(polygons)/3)
	fmt.Fprintf(bw, "          <input semantic=\"VERTEX\" source=\"#%s-mesh-vertices\" offset=\"0\"/>\n", name)
	fmt.Fprintf(bw, "          <input semantic=\"NORMAL\" source=\"#%s-mesh-normals\" offset=\"1\"/>\n", name)
	fmt.Fprintf(bw, "          <input semantic=\"TEXCOORD\" source=\"#%s-mesh-map\" offset=\"2\" set=\"0\"/>\n", name)

	bw.WriteString("          <p>")
	for _, index := range polygons {
		// The flat model keeps one index per vertex; position,
		// normal and texcoord slots repeat it.
		fmt.Fprintf(bw, "%[1]d %[1]d %[1]d ", index)
	}
	bw.WriteString("</p>\n")
	bw.WriteString("        </triangles>\n")
	bw.WriteString("      </mesh>\n")
	bw.WriteString("    </geometry>\n")
}

func writeColladaSource(bw *bufio.Writer, name, kind string, array []float32, count, stride int, format string) {
	fmt.Fprintf(bw, "        <source id=\"%s-%s\">\n", name, kind)
	fmt.Fprintf(bw, "          <float_array id=\"%s-%s-array\" count=\"%d\">", name, kind, len(array))
	for _, value := range array {
		fmt.Fprintf(bw, "%.8f ", value)
	}
	bw.WriteString("</float_array>\n")
	fmt.Fprintf(bw, "          <technique_common><accessor source=\"#%s-%s-array\" count=\"%d\" stride=\"%d\">%s</accessor></technique_common>\n",
		name, kind, count, stride, format)
	bw.WriteString("        </source>\n")
}

// writeMorphController names every non-base frame as an ordered morph
// target of the base with a zero-initialized weight array. Weight
// authoring is out of scope here.
func writeMorphController(bw *bufio.Writer, model *cem.Model) {
	name := colladaRootName
	targetCount := len(model.Frames) - 1

	fmt.Fprintf(bw, "    <controller id=\"%[1]s-morph\" name=\"%[1]s-morph\">\n", name)
	fmt.Fprintf(bw, "      <morph source=\"#%s-mesh\" method=\"NORMALIZED\">\n", frameName(0))

	fmt.Fprintf(bw, "        <source id=\"%s-targets\">\n", name)
	fmt.Fprintf(bw, "          <IDREF_array id=\"%s-targets-array\" count=\"%d\">\n", name, targetCount)
	for frameIndex := 1; frameIndex < len(model.Frames); frameIndex++ {
		fmt.Fprintf(bw, "            %s-mesh\n", frameName(frameIndex))
	}
	bw.WriteString("          </IDREF_array>\n")
	fmt.Fprintf(bw, "          <technique_common><accessor source=\"#%s-targets-array\" count=\"%d\" stride=\"1\"><param name=\"IDREF\" type=\"IDREF\"/></accessor></technique_common>\n",
		name, targetCount)
	bw.WriteString("        </source>\n")

	fmt.Fprintf(bw, "        <source id=\"%s-weights\">\n", name)
	fmt.Fprintf(bw, "          <float_array id=\"%s-weights-array\" count=\"%d\">", name, targetCount)
	for i := 0; i < targetCount; i++ {
		bw.WriteString("0 ")
	}
	bw.WriteString("</float_array>\n")
	fmt.Fprintf(bw, "          <technique_common><accessor source=\"#%s-weights-array\" count=\"%d\" stride=\"1\"><param name=\"MORPH_WEIGHT\" type=\"float\"/></accessor></technique_common>\n",
		name, targetCount)
	bw.WriteString("        </source>\n")

	bw.WriteString("        <targets>\n")
	fmt.Fprintf(bw, "          <input semantic=\"MORPH_TARGET\" source=\"#%s-targets\"/>\n", name)
	fmt.Fprintf(bw, "          <input semantic=\"MORPH_WEIGHT\" source=\"#%s-weights\"/>\n", name)
	bw.WriteString("        </targets>\n")
	bw.WriteString("      </morph>\n")
	bw.WriteString("    </controller>\n")
}
