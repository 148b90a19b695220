package convert

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/coderbot16/cemconv/pkg/formats"
	"github.com/coderbot16/cemconv/pkg/math"
)

func parseObjFixture(t *testing.T, text string) *formats.ObjDocument {
	t.Helper()
	doc, err := formats.ParseObj(strings.NewReader(text))
	if err != nil {
		t.Fatalf("obj parse failed: %v", err)
	}
	return doc
}

func TestObjToModel_Quad(t *testing.T) {
	log, _ := testLogger()
	model, err := ObjToModel(parseObjFixture(t, convertQuadObj), log)
	if err != nil {
		t.Fatalf("ObjToModel failed: %v", err)
	}

	if len(model.Frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(model.Frames))
	}
	if got := model.TriangleCount(); got != 2 {
		t.Errorf("triangle count = %d, want 2", got)
	}
	if got := len(model.Frames[0].Vertices); got != 4 {
		t.Errorf("flat vertex count = %d, want 4", got)
	}

	// Authoring (0, 1, 0) lands at runtime (0, 0, 1).
	got := model.Frames[0].Vertices[3].Position
	if !vec3Near(got, math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("vertex 3 position = %v, want (0, 0, 1)", got)
	}
}

func TestObjToModel_ExtraObjectsWarn(t *testing.T) {
	log, logs := testLogger()

	text := convertQuadObj + "o second\nv 5 5 5\nf -1 -1 -1\n"
	model, err := ObjToModel(parseObjFixture(t, text), log)
	if err != nil {
		t.Fatalf("ObjToModel failed: %v", err)
	}

	if got := model.TriangleCount(); got != 2 {
		t.Errorf("triangle count = %d, want 2 (second object dropped)", got)
	}
	if !hasWarning(logs, "submodels") {
		t.Error("no warning about the dropped object")
	}
}

func TestObjToModel_EmptyDocument(t *testing.T) {
	log, _ := testLogger()

	if _, err := ObjToModel(&formats.ObjDocument{}, log); !errors.Is(err, ErrNoRootGeometry) {
		t.Errorf("error = %v, want ErrNoRootGeometry", err)
	}
}

func TestObjRoundTrip(t *testing.T) {
	log, _ := testLogger()
	original, err := ObjToModel(parseObjFixture(t, convertQuadObj), log)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var out bytes.Buffer
	if err := ModelToObj(original, 0, &out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	back, err := ObjToModel(parseObjFixture(t, out.String()), log)
	if err != nil {
		t.Fatalf("reimport failed: %v", err)
	}

	if back.TriangleCount() != original.TriangleCount() {
		t.Fatalf("triangle count = %d, want %d", back.TriangleCount(), original.TriangleCount())
	}

	want := original.Frames[0].Vertices
	got := back.Frames[0].Vertices
	if len(got) != len(want) {
		t.Fatalf("vertex count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !vec3Near(got[i].Position, want[i].Position) {
			t.Errorf("vertex %d position = %v, want %v", i, got[i].Position, want[i].Position)
		}
		if !vec3Near(got[i].Normal, want[i].Normal) {
			t.Errorf("vertex %d normal = %v, want %v", i, got[i].Normal, want[i].Normal)
		}
		if got[i].TexCoord != want[i].TexCoord {
			t.Errorf("vertex %d texcoord = %v, want %v", i, got[i].TexCoord, want[i].TexCoord)
		}
	}

	// The flat indices survive unchanged as well.
	for i := range original.LodLevels[0] {
		if back.LodLevels[0][i] != original.LodLevels[0][i] {
			t.Errorf("triangle %d = %v, want %v", i, back.LodLevels[0][i], original.LodLevels[0][i])
		}
	}
}

func TestModelToObj_MaterialHeaderComment(t *testing.T) {
	log, _ := testLogger()
	model, err := ObjToModel(parseObjFixture(t, convertQuadObj), log)
	if err != nil {
		t.Fatal(err)
	}
	model.Materials[0].Name = "body"
	model.Materials[0].Texture = 3
	model.Materials[0].TextureName = "body.png"

	var out bytes.Buffer
	if err := ModelToObj(model, 0, &out); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "# name: body, texture: 3, texture_name: body.png") {
		t.Errorf("material header comment missing:\n%s", out.String())
	}
}
