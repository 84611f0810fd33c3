package formats

import (
	"os"
	"path/filepath"
	"testing"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if os.IsNotExist(err) {
		t.Skipf("testdata/%s not found, run: go run testdata/generate_cube.go", name)
	}
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

func TestParseCubeFixture(t *testing.T) {
	doc, err := ParseOBJ(readFixture(t, "cube.obj"), "cube.obj")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if len(doc.Positions) != 8 || len(doc.UVs) != 4 || len(doc.Normals) != 6 {
		t.Errorf("unexpected attribute counts %d/%d/%d", len(doc.Positions), len(doc.UVs), len(doc.Normals))
	}
	if !doc.HasUV || !doc.HasNormals {
		t.Error("expected full vertex layout")
	}
	if len(doc.MaterialLibs) != 1 || doc.MaterialLibs[0] != "cube.mtl" {
		t.Errorf("unexpected mtllib %v", doc.MaterialLibs)
	}

	want := []struct {
		name, material string
		faces          int
	}{
		{"cube:sides", "paint", 8},
		{"cube:caps", "metal", 4},
	}
	if len(doc.Groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(doc.Groups))
	}
	for i, w := range want {
		g := doc.Groups[i]
		if g.Name != w.name || g.Material != w.material || len(g.Faces) != w.faces {
			t.Errorf("group %d: got %s/%s/%d, want %s/%s/%d",
				i, g.Name, g.Material, len(g.Faces), w.name, w.material, w.faces)
		}
	}
}

func TestParseCubeMaterials(t *testing.T) {
	materials, err := ParseMTL(readFixture(t, "cube.mtl"), "cube.mtl")
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	table := IndexMaterials(materials)

	paint := table["paint"]
	if paint == nil {
		t.Fatal("missing paint")
	}
	tex, err := paint.Texture(DiffuseMap)
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if tex.Path != `textures\paint.png` {
		t.Errorf("unexpected texture path %q", tex.Path)
	}
	if illum, _ := paint.Float(Illumination); illum != 2 {
		t.Errorf("expected illum 2, got %v", illum)
	}

	metal := table["metal"]
	if metal == nil {
		t.Fatal("missing metal")
	}
	if d, _ := metal.Float(Opacity); d != 0.75 {
		t.Errorf("expected opacity 0.75 from Tr, got %v", d)
	}
	if ns, _ := metal.Float(Shininess); ns != 96 {
		t.Errorf("expected Ns 96, got %v", ns)
	}
}
