package model

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objkit/pkg/formats"
)

func parseAndConvert(t *testing.T, text string, materials map[string]*formats.Material) *Model {
	t.Helper()
	doc, err := formats.ParseOBJ(text, "test.obj")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	m, err := Convert(doc, materials)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	return m
}

func TestConvert_SharedTriangle(t *testing.T) {
	m := parseAndConvert(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\nf 3 2 1\n", nil)

	if len(m.Vertices) != 3 {
		t.Errorf("expected 3 vertices, got %d", len(m.Vertices))
	}
	want := []uint32{0, 1, 2, 2, 1, 0}
	if !reflect.DeepEqual(m.Indices, want) {
		t.Errorf("indices = %v, want %v", m.Indices, want)
	}
	if len(m.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(m.Groups))
	}
	g := m.Groups[0]
	if g.Name != formats.DefaultGroupName || g.IndexOffset != 0 || g.IndexCount != 6 || g.Material != nil {
		t.Errorf("unexpected group %+v", g)
	}
	if m.Vertices[1].Position != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("vertex 1 position = %v", m.Vertices[1].Position)
	}
	if m.Vertices[1].UV != (mgl32.Vec2{}) || m.Vertices[1].Normal != (mgl32.Vec3{}) {
		t.Error("absent attributes should be zero")
	}
}

func TestConvert_DistinctAttributesSplitVertices(t *testing.T) {
	text := "v 0 0 0\nv 1 0 0\nv 0 1 0\n" +
		"vt 0 0\nvt 1 1\n" +
		"f 1/1 2/1 3/1\n" +
		"f 1/2 2/1 3/1\n"
	m := parseAndConvert(t, text, nil)

	// position 1 appears with two different uvs
	if len(m.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(m.Vertices))
	}
	want := []uint32{0, 1, 2, 3, 1, 2}
	if !reflect.DeepEqual(m.Indices, want) {
		t.Errorf("indices = %v, want %v", m.Indices, want)
	}
	if m.Vertices[3].UV != (mgl32.Vec2{1, 1}) {
		t.Errorf("vertex 3 uv = %v", m.Vertices[3].UV)
	}
	if !m.HasUV || m.HasNormals {
		t.Errorf("layout = uv:%v normals:%v", m.HasUV, m.HasNormals)
	}
}

func TestConvert_NoSharingUpperBound(t *testing.T) {
	text := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nv 2 2 0\nv 3 3 0\n" +
		"f 1 2 3\nf 4 5 6\n"
	m := parseAndConvert(t, text, nil)
	if len(m.Vertices) != 6 {
		t.Errorf("expected 3 x faces = 6 vertices without sharing, got %d", len(m.Vertices))
	}
}

func TestConvert_GroupsAndMaterials(t *testing.T) {
	red := formats.NewMaterial("red")
	text := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\n" +
		"usemtl red\nf 1//1 2//1 3//1\n" +
		"usemtl missing\nf 3//1 2//1 1//1\nf 1//1 2//1 3//1\n"
	m := parseAndConvert(t, text, map[string]*formats.Material{"red": red})

	if len(m.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(m.Groups))
	}
	if m.Groups[0].Material != red {
		t.Error("expected group 0 to reference red")
	}
	if m.Groups[1].Material != nil {
		t.Error("expected unresolved material to be nil")
	}
	if m.Groups[1].IndexOffset != 3 || m.Groups[1].IndexCount != 6 {
		t.Errorf("group 1 range = %d+%d, want 3+6", m.Groups[1].IndexOffset, m.Groups[1].IndexCount)
	}
	if got := m.GroupIndices(1); !reflect.DeepEqual(got, []uint32{2, 1, 0, 0, 1, 2}) {
		t.Errorf("group 1 indices = %v", got)
	}
	if m.Vertices[0].Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v", m.Vertices[0].Normal)
	}
}

func TestConvert_EmptyDefaultGroupKept(t *testing.T) {
	m := parseAndConvert(t, "v 0 0 0\n", nil)
	if len(m.Groups) != 1 || m.Groups[0].IndexCount != 0 {
		t.Errorf("expected one empty group, got %+v", m.Groups)
	}
	if len(m.Vertices) != 0 || len(m.Indices) != 0 {
		t.Error("expected empty buffers")
	}
}

func TestConvert_IndexOutOfRange(t *testing.T) {
	tests := []string{
		"v 0 0 0\nf 1 2 3\n",
		"v 0 0 0\nvt 0 0\nf 1/1 1/2 1/1\n",
		"v 0 0 0\nvn 0 0 1\nf 1//1 1//1 1//5\n",
	}
	for _, text := range tests {
		doc, err := formats.ParseOBJ(text, "range.obj")
		if err != nil {
			t.Fatalf("ParseOBJ failed: %v", err)
		}
		if _, err := Convert(doc, nil); !errors.Is(err, formats.ErrIndexRange) {
			t.Errorf("%q: expected ErrIndexRange, got %v", text, err)
		}
	}
}

func TestNewModel_Validation(t *testing.T) {
	vertices := make([]Vertex, 3)

	if _, err := NewModel(vertices, []uint32{0, 1, 2}, []Group{{Name: "ok", IndexCount: 3}}); err != nil {
		t.Errorf("expected valid model, got %v", err)
	}
	_, err := NewModel(vertices, []uint32{0, 1, 2}, []Group{{Name: "long", IndexOffset: 1, IndexCount: 3}})
	if !errors.Is(err, ErrGroupRange) {
		t.Errorf("expected ErrGroupRange, got %v", err)
	}
	_, err = NewModel(vertices, []uint32{0, 1, 3}, nil)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestModel_Bounds(t *testing.T) {
	m := parseAndConvert(t, "v -1 2 0\nv 3 -4 1\nv 0 0 5\nf 1 2 3\n", nil)

	if m.Bounds.Min != (mgl32.Vec3{-1, -4, 0}) {
		t.Errorf("min = %v", m.Bounds.Min)
	}
	if m.Bounds.Max != (mgl32.Vec3{3, 2, 5}) {
		t.Errorf("max = %v", m.Bounds.Max)
	}
	if m.Bounds.Size() != (mgl32.Vec3{4, 6, 5}) {
		t.Errorf("size = %v", m.Bounds.Size())
	}
	if m.Bounds.Center() != (mgl32.Vec3{1, -1, 2.5}) {
		t.Errorf("center = %v", m.Bounds.Center())
	}
}

func TestModel_Bytes(t *testing.T) {
	m := &Model{
		Vertices: []Vertex{{
			Position: mgl32.Vec3{1, 2, 3},
			UV:       mgl32.Vec2{4, 5},
			Normal:   mgl32.Vec3{6, 7, 8},
		}},
		Indices: []uint32{0, 0, 0},
	}

	vb := m.VertexBytes()
	if len(vb) != VertexStride {
		t.Fatalf("expected %d bytes, got %d", VertexStride, len(vb))
	}
	for i := 0; i < 8; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(vb[i*4:]))
		if got != float32(i+1) {
			t.Errorf("float %d = %v, want %d", i, got, i+1)
		}
	}

	if ib := m.IndexBytes(); len(ib) != 12 {
		t.Errorf("expected 12 index bytes, got %d", len(ib))
	}
	if m.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", m.TriangleCount())
	}
}

func TestConvert_CubeFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "formats", "testdata", "cube.obj"))
	if err != nil {
		t.Skip("cube fixture not found, run: go run pkg/formats/testdata/generate_cube.go")
	}

	m := parseAndConvert(t, string(data), nil)

	// every cube face has its own normal, so no corner is shared across faces
	if len(m.Vertices) != 24 || len(m.Indices) != 36 {
		t.Errorf("expected 24 vertices / 36 indices, got %d / %d", len(m.Vertices), len(m.Indices))
	}
	if len(m.Groups) != 2 || m.Groups[1].IndexOffset != 24 || m.Groups[1].IndexCount != 12 {
		t.Errorf("unexpected groups %+v", m.Groups)
	}
	if m.Bounds.Min != (mgl32.Vec3{0, 0, 0}) || m.Bounds.Max != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("unexpected bounds %+v", m.Bounds)
	}
	if len(m.VertexBytes()) != 24*VertexStride {
		t.Errorf("unexpected vertex buffer size %d", len(m.VertexBytes()))
	}
}
