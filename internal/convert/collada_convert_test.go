package convert

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/coderbot16/cemconv/pkg/dom"
	"github.com/coderbot16/cemconv/pkg/formats"
	"github.com/coderbot16/cemconv/pkg/math"
)

// morphDocument builds a two-frame morph document: a base triangle and
// one target shifted along Z, linked through a morph controller.
func morphDocument(method string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<COLLADA>
  <library_geometries>
    <geometry id="base-mesh" name="base">
      <mesh>
        <source id="base-mesh-positions">
          <float_array id="base-mesh-positions-array" count="9">0 0 0 1 0 0 0 1 0</float_array>
          <technique_common><accessor source="#base-mesh-positions-array" count="3" stride="3"/></technique_common>
        </source>
        <vertices id="base-mesh-vertices"><input semantic="POSITION" source="#base-mesh-positions"/></vertices>
        <triangles count="1">
          <input semantic="VERTEX" source="#base-mesh-vertices" offset="0"/>
          <p>0 1 2</p>
        </triangles>
      </mesh>
    </geometry>
    <geometry id="target-mesh" name="target">
      <mesh>
        <source id="target-mesh-positions">
          <float_array id="target-mesh-positions-array" count="9">0 0 2 1 0 2 0 1 2</float_array>
          <technique_common><accessor source="#target-mesh-positions-array" count="3" stride="3"/></technique_common>
        </source>
        <vertices id="target-mesh-vertices"><input semantic="POSITION" source="#target-mesh-positions"/></vertices>
        <triangles count="1">
          <input semantic="VERTEX" source="#target-mesh-vertices" offset="0"/>
          <p>0 1 2</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
  <library_controllers>
    <controller id="base-morph">
      <morph source="#base-mesh" method="%s">
        <source id="base-targets">
          <IDREF_array id="base-targets-array" count="1">target-mesh</IDREF_array>
          <technique_common><accessor source="#base-targets-array" count="1" stride="1"><param name="IDREF" type="IDREF"/></accessor></technique_common>
        </source>
        <source id="base-weights">
          <float_array id="base-weights-array" count="1">0</float_array>
        </source>
        <targets>
          <input semantic="MORPH_TARGET" source="#base-targets"/>
          <input semantic="MORPH_WEIGHT" source="#base-weights"/>
        </targets>
      </morph>
    </controller>
  </library_controllers>
  <library_visual_scenes>
    <visual_scene id="Scene">
      <node id="root" type="NODE"><instance_geometry url="#base-mesh"/></node>
    </visual_scene>
  </library_visual_scenes>
  <scene><instance_visual_scene url="#Scene"/></scene>
</COLLADA>`, method)
}

func parseColladaFixture(t *testing.T, text string) *formats.ColladaDocument {
	t.Helper()
	root, err := dom.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("markup parse failed: %v", err)
	}
	doc, err := formats.ParseCollada(root)
	if err != nil {
		t.Fatalf("collada parse failed: %v", err)
	}
	return doc
}

func TestColladaToModel_MorphFrames(t *testing.T) {
	log, _ := testLogger()
	doc := parseColladaFixture(t, morphDocument("NORMALIZED"))

	model, err := ColladaToModel(doc, log)
	if err != nil {
		t.Fatalf("ColladaToModel failed: %v", err)
	}

	if len(model.Frames) != 2 {
		t.Fatalf("frame count = %d, want 2", len(model.Frames))
	}
	if got := model.TriangleCount(); got != 1 {
		t.Errorf("triangle count = %d, want 1 (shared across frames)", got)
	}
	if len(model.Frames[0].Vertices) != len(model.Frames[1].Vertices) {
		t.Errorf("frames disagree on vertex count: %d vs %d",
			len(model.Frames[0].Vertices), len(model.Frames[1].Vertices))
	}

	// Authoring (0, 0, 2) lands at runtime (0, -2, 0) after the import
	// rotation.
	got := model.Frames[1].Vertices[0].Position
	if !vec3Near(got, math.Vec3{X: 0, Y: -2, Z: 0}) {
		t.Errorf("target frame vertex 0 = %v, want (0, -2, 0)", got)
	}
}

func TestColladaToModel_RelativeMethodWarning(t *testing.T) {
	log, logs := testLogger()
	doc := parseColladaFixture(t, morphDocument("RELATIVE"))

	if _, err := ColladaToModel(doc, log); err != nil {
		t.Fatalf("ColladaToModel failed: %v", err)
	}
	if !hasWarning(logs, "RELATIVE") {
		t.Error("no warning about the RELATIVE morph method")
	}
}

func TestColladaToModel_TopologyMismatch(t *testing.T) {
	log, _ := testLogger()

	// Drop one position from the target so the counts disagree.
	text := strings.Replace(morphDocument("NORMALIZED"),
		`<float_array id="target-mesh-positions-array" count="9">0 0 2 1 0 2 0 1 2</float_array>`,
		`<float_array id="target-mesh-positions-array" count="6">0 0 2 1 0 2</float_array>`, 1)
	text = strings.Replace(text, `<p>0 1 2</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>`, `<p>0 1 1</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>`, 1)
	doc := parseColladaFixture(t, text)

	_, err := ColladaToModel(doc, log)

	var topoErr *TopologyError
	if !errors.As(err, &topoErr) {
		t.Fatalf("error = %v, want TopologyError", err)
	}
	if topoErr.Frame != 0 {
		t.Errorf("Frame = %d, want 0 (first morph target)", topoErr.Frame)
	}
}

const plainSceneDoc = `<?xml version="1.0"?>
<COLLADA>
  <library_geometries>
    <geometry id="tri-mesh">
      <mesh>
        <source id="tri-mesh-positions">
          <float_array id="tri-mesh-positions-array" count="9">0 0 0 1 0 0 0 1 0</float_array>
          <technique_common><accessor source="#tri-mesh-positions-array" count="3" stride="3"/></technique_common>
        </source>
        <vertices id="tri-mesh-vertices"><input semantic="POSITION" source="#tri-mesh-positions"/></vertices>
        <triangles count="1">
          <input semantic="VERTEX" source="#tri-mesh-vertices" offset="0"/>
          <p>0 1 2</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
  <library_visual_scenes>
    <visual_scene id="Scene">%s</visual_scene>
  </library_visual_scenes>
  <scene><instance_visual_scene url="#Scene"/></scene>
</COLLADA>`

func TestColladaToModel_MultipleRootsTakesFirst(t *testing.T) {
	log, logs := testLogger()
	doc := parseColladaFixture(t, fmt.Sprintf(plainSceneDoc, `
      <node id="a" type="NODE"><instance_geometry url="#tri-mesh"/></node>
      <node id="b" type="NODE"><instance_geometry url="#tri-mesh"/></node>`))

	model, err := ColladaToModel(doc, log)
	if err != nil {
		t.Fatalf("ColladaToModel failed: %v", err)
	}
	if len(model.Frames) != 1 {
		t.Errorf("frame count = %d, want 1", len(model.Frames))
	}
	if !hasWarning(logs, "submodels") {
		t.Error("no warning about the dropped extra root geometry")
	}
}

func TestColladaToModel_UnsupportedSceneContentWarnings(t *testing.T) {
	log, logs := testLogger()
	doc := parseColladaFixture(t, fmt.Sprintf(plainSceneDoc, `
      <node id="rig" type="JOINT"/>
      <node id="root" type="NODE">
        <matrix sid="transform">1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1</matrix>
        <instance_light url="#lamp"/>
        <instance_geometry url="#tri-mesh"/>
      </node>`))

	if _, err := ColladaToModel(doc, log); err != nil {
		t.Fatalf("ColladaToModel failed: %v", err)
	}

	for _, fragment := range []string{"JOINT", "transformations", "lights"} {
		if !hasWarning(logs, fragment) {
			t.Errorf("no warning mentioning %q", fragment)
		}
	}
}

func TestColladaToModel_NoScene(t *testing.T) {
	log, _ := testLogger()
	doc := parseColladaFixture(t, `<COLLADA><library_geometries/></COLLADA>`)

	if _, err := ColladaToModel(doc, log); !errors.Is(err, ErrNoScene) {
		t.Errorf("error = %v, want ErrNoScene", err)
	}
}

func TestColladaToModel_NoRootGeometry(t *testing.T) {
	log, _ := testLogger()
	doc := parseColladaFixture(t, fmt.Sprintf(plainSceneDoc, `<node id="empty" type="NODE"/>`))

	if _, err := ColladaToModel(doc, log); !errors.Is(err, ErrNoRootGeometry) {
		t.Errorf("error = %v, want ErrNoRootGeometry", err)
	}
}

func TestColladaToModel_MissingGeometry(t *testing.T) {
	log, _ := testLogger()
	doc := parseColladaFixture(t, fmt.Sprintf(plainSceneDoc,
		`<node id="root" type="NODE"><instance_geometry url="#no-such-mesh"/></node>`))

	if _, err := ColladaToModel(doc, log); !errors.Is(err, ErrMissingGeometry) {
		t.Errorf("error = %v, want ErrMissingGeometry", err)
	}
}

func TestColladaRoundTrip(t *testing.T) {
	log, _ := testLogger()
	original, err := ColladaToModel(parseColladaFixture(t, morphDocument("NORMALIZED")), log)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var out bytes.Buffer
	if err := ModelToCollada(original, &out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	back, err := ColladaToModel(parseColladaFixture(t, out.String()), log)
	if err != nil {
		t.Fatalf("reimport failed: %v", err)
	}

	if len(back.Frames) != len(original.Frames) {
		t.Fatalf("frame count = %d, want %d", len(back.Frames), len(original.Frames))
	}
	if back.TriangleCount() != original.TriangleCount() {
		t.Errorf("triangle count = %d, want %d", back.TriangleCount(), original.TriangleCount())
	}

	for f := range original.Frames {
		want := original.Frames[f].Vertices
		got := back.Frames[f].Vertices
		if len(got) != len(want) {
			t.Fatalf("frame %d vertex count = %d, want %d", f, len(got), len(want))
		}
		for i := range want {
			if !vec3Near(got[i].Position, want[i].Position) {
				t.Errorf("frame %d vertex %d position = %v, want %v", f, i, got[i].Position, want[i].Position)
			}
			if !vec3Near(got[i].Normal, want[i].Normal) {
				t.Errorf("frame %d vertex %d normal = %v, want %v", f, i, got[i].Normal, want[i].Normal)
			}
		}
	}
}

func TestModelToCollada_Deterministic(t *testing.T) {
	log, _ := testLogger()
	model, err := ColladaToModel(parseColladaFixture(t, morphDocument("NORMALIZED")), log)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var a, b bytes.Buffer
	if err := ModelToCollada(model, &a); err != nil {
		t.Fatal(err)
	}
	if err := ModelToCollada(model, &b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("repeated export produced different bytes")
	}
}
