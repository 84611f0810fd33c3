package formats

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMaterial_Variants(t *testing.T) {
	m := NewMaterial("test")
	m.Set(Shininess, FloatParam(8))
	m.Set(AmbientColor, Vec2Param(mgl32.Vec2{1, 2}))
	m.Set(DiffuseColor, Vec3Param(mgl32.Vec3{1, 2, 3}))
	m.Set(SpecularColor, Vec4Param(mgl32.Vec4{1, 2, 3, 4}))
	m.Set(DiffuseMap, TextureParam("a.png"))

	if f, err := m.Float(Shininess); err != nil || f != 8 {
		t.Errorf("Float = %v (%v), want 8", f, err)
	}
	if v, err := m.Vec2(AmbientColor); err != nil || v != (mgl32.Vec2{1, 2}) {
		t.Errorf("Vec2 = %v (%v)", v, err)
	}
	if v, err := m.Vec3(DiffuseColor); err != nil || v != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Vec3 = %v (%v)", v, err)
	}
	if v, err := m.Vec4(SpecularColor); err != nil || v != (mgl32.Vec4{1, 2, 3, 4}) {
		t.Errorf("Vec4 = %v (%v)", v, err)
	}
	if tex, err := m.Texture(DiffuseMap); err != nil || tex.Path != "a.png" {
		t.Errorf("Texture = %v (%v)", tex, err)
	}
}

func TestMaterial_LookupUndefined(t *testing.T) {
	m := NewMaterial("empty")

	_, err := m.Float(Opacity)
	if !errors.Is(err, ErrUndefinedParam) {
		t.Fatalf("expected ErrUndefinedParam, got %v", err)
	}
	var lerr *LookupError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *LookupError, got %T", err)
	}
	if lerr.Material != "empty" || lerr.Param != Opacity {
		t.Errorf("unexpected lookup error fields: %+v", lerr)
	}
}

func TestMaterial_LookupTypeMismatch(t *testing.T) {
	m := NewMaterial("red")
	m.Set(DiffuseColor, Vec3Param(mgl32.Vec3{1, 0, 0}))

	_, err := m.Float(DiffuseColor)
	if !errors.Is(err, ErrParamType) {
		t.Fatalf("expected ErrParamType, got %v", err)
	}
	var lerr *LookupError
	errors.As(err, &lerr)
	if lerr.Requested != FloatValue {
		t.Errorf("expected requested type float, got %s", lerr.Requested)
	}
	for _, want := range []string{"red", "DiffuseColor", "float"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestMaterial_TextureIsShared(t *testing.T) {
	m := NewMaterial("tex")
	m.Set(NormalMap, TextureParam("n.png"))

	tex, _ := m.Texture(NormalMap)
	tex.Path = "changed.png"

	again, _ := m.Texture(NormalMap)
	if again.Path != "changed.png" {
		t.Error("expected Texture to return the stored reference")
	}
	if len(m.Textures()) != 1 {
		t.Errorf("expected 1 texture, got %d", len(m.Textures()))
	}
}

func TestIndexMaterials_LaterShadowsEarlier(t *testing.T) {
	first := []*Material{NewMaterial("a"), NewMaterial("b")}
	second := []*Material{NewMaterial("b")}

	table := IndexMaterials(first, second)
	if len(table) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table))
	}
	if table["a"] != first[0] {
		t.Error("expected 'a' from first library")
	}
	if table["b"] != second[0] {
		t.Error("expected 'b' from second library to shadow the first")
	}
}

func TestParamKind_String(t *testing.T) {
	if DisplacementMap.String() != "DisplacementMap" {
		t.Errorf("unexpected name %s", DisplacementMap)
	}
	if ParamKind(200).String() != "Unknown(200)" {
		t.Errorf("unexpected name %s", ParamKind(200))
	}
}
