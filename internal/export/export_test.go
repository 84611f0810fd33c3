package export

import (
	"bytes"
	"encoding/json"
	"image"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/objkit/pkg/formats"
	"github.com/Faultbox/objkit/pkg/model"
)

const twoGroupOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
g front
usemtl red
f 1/1 2/2 3/3
g back
usemtl glass
f 1/1 3/3 4/4
g empty
`

const twoGroupMTL = `newmtl red
Kd 1 0 0
newmtl glass
Kd 0 0 1
d 0.5
`

func buildModel(t *testing.T) *model.Model {
	t.Helper()
	doc, err := formats.ParseOBJ(twoGroupOBJ, "quad.obj")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	mats, err := formats.ParseMTL(twoGroupMTL, "quad.mtl")
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	m, err := model.Convert(doc, formats.IndexMaterials(mats))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	return m
}

func TestDocument(t *testing.T) {
	m := buildModel(t)

	doc, err := Document(m, "quad")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if len(doc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(doc.Meshes))
	}
	prims := doc.Meshes[0].Primitives
	if len(prims) != 2 {
		t.Fatalf("expected 2 primitives (empty group skipped), got %d", len(prims))
	}

	attrs := prims[0].Attributes
	if _, ok := attrs["POSITION"]; !ok {
		t.Error("missing POSITION")
	}
	if _, ok := attrs["TEXCOORD_0"]; !ok {
		t.Error("missing TEXCOORD_0")
	}
	if _, ok := attrs["NORMAL"]; ok {
		t.Error("unexpected NORMAL for a model without normals")
	}
	if prims[0].Attributes["POSITION"] != prims[1].Attributes["POSITION"] {
		t.Error("primitives must share the position accessor")
	}

	pos := doc.Accessors[attrs["POSITION"]]
	if pos.Count != uint32(len(m.Vertices)) {
		t.Errorf("expected %d positions, got %d", len(m.Vertices), pos.Count)
	}
	if idx := doc.Accessors[*prims[1].Indices]; idx.Count != 3 {
		t.Errorf("expected 3 indices in second primitive, got %d", idx.Count)
	}

	if len(doc.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(doc.Materials))
	}
	glass := doc.Materials[*prims[1].Material]
	if glass.Name != "glass" {
		t.Errorf("expected glass, got %s", glass.Name)
	}
	if c := *glass.PBRMetallicRoughness.BaseColorFactor; c != [4]float32{0, 0, 1, 0.5} {
		t.Errorf("unexpected base color %v", c)
	}
	if glass.AlphaMode != gltf.AlphaBlend {
		t.Errorf("expected blend alpha mode, got %v", glass.AlphaMode)
	}

	if len(doc.Nodes) != 1 || len(doc.Scenes[0].Nodes) != 1 {
		t.Errorf("expected a single node in the scene")
	}
}

func TestDocument_SharedMaterial(t *testing.T) {
	doc, _ := formats.ParseOBJ("v 0 0 0\nusemtl a\ng one\nf 1 1 1\ng two\nf 1 1 1\n", "a.obj")
	mats := formats.IndexMaterials([]*formats.Material{formats.NewMaterial("a")})
	m, err := model.Convert(doc, mats)
	if err != nil {
		t.Fatal(err)
	}

	gdoc, err := Document(m, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(gdoc.Materials) != 1 {
		t.Errorf("expected one material shared by both groups, got %d", len(gdoc.Materials))
	}
	if c := *gdoc.Materials[0].PBRMetallicRoughness.BaseColorFactor; c != [4]float32{1, 1, 1, 1} {
		t.Errorf("expected white default, got %v", c)
	}
}

func TestDocument_EmbedsDiffuseMap(t *testing.T) {
	doc, _ := formats.ParseOBJ("v 0 0 0\nvt 0 0\nusemtl a\nf 1/1 1/1 1/1\n", "a.obj")
	mats, err := formats.ParseMTL("newmtl a\nmap_Kd a.png\n", "a.mtl")
	if err != nil {
		t.Fatal(err)
	}
	tex, _ := mats[0].Texture(formats.DiffuseMap)
	tex.Image = image.NewRGBA(image.Rect(0, 0, 2, 2))

	m, err := model.Convert(doc, formats.IndexMaterials(mats))
	if err != nil {
		t.Fatal(err)
	}
	gdoc, err := Document(m, "a")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if len(gdoc.Images) != 1 || len(gdoc.Textures) != 1 {
		t.Fatalf("expected 1 image and 1 texture, got %d / %d", len(gdoc.Images), len(gdoc.Textures))
	}
	if gdoc.Images[0].MimeType != "image/png" {
		t.Errorf("unexpected mime type %s", gdoc.Images[0].MimeType)
	}
	if gdoc.Materials[0].PBRMetallicRoughness.BaseColorTexture == nil {
		t.Error("expected base color texture")
	}
}

func TestDocument_Empty(t *testing.T) {
	m, err := model.NewModel(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Document(m, "empty")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if len(doc.Meshes) != 0 || len(doc.Accessors) != 0 {
		t.Error("expected an empty document")
	}
}

func TestWriteGLB(t *testing.T) {
	m := buildModel(t)

	var buf bytes.Buffer
	if err := WriteGLB(&buf, m, "quad"); err != nil {
		t.Fatalf("WriteGLB failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatalf("expected GLB magic, got %q", buf.Bytes()[:4])
	}

	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&doc); err != nil {
		t.Fatalf("decoding GLB failed: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 2 {
		t.Errorf("unexpected decoded mesh layout")
	}
}

func TestSave(t *testing.T) {
	m := buildModel(t)
	dir := t.TempDir()

	for _, tt := range []struct {
		name   string
		binary bool
	}{
		{"out/quad.glb", true},
		{"out/quad.gltf", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := Save(path, m, tt.binary); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			doc, err := gltf.Open(path)
			if err != nil {
				t.Fatalf("gltf.Open failed: %v", err)
			}
			if len(doc.Nodes) != 1 || doc.Nodes[0].Name != "quad" {
				t.Errorf("unexpected nodes %v", doc.Nodes)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	m := buildModel(t)
	s := Summarize(m)

	if s.Vertices != 4 || s.Indices != 6 || s.Triangles != 2 {
		t.Errorf("unexpected counts %+v", s)
	}
	if !s.HasUV || s.HasNormals {
		t.Errorf("unexpected layout %+v", s)
	}
	if s.BoundsMax != [3]float32{1, 1, 0} {
		t.Errorf("unexpected bounds max %v", s.BoundsMax)
	}
	if len(s.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(s.Groups))
	}
	if s.Groups[1].Material != "glass" || s.Groups[1].IndexOffset != 3 {
		t.Errorf("unexpected group %+v", s.Groups[1])
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back["triangles"] != float64(2) {
		t.Errorf("unexpected JSON %s", data)
	}
}
