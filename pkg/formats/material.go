package formats

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// MaterialType identifies the shading model a material's parameters target.
type MaterialType uint8

const (
	MaterialTraditional MaterialType = iota // Phong-style ambient/diffuse/specular
)

// String returns the material type name.
func (t MaterialType) String() string {
	switch t {
	case MaterialTraditional:
		return "Traditional"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// ParamKind names a material parameter.
type ParamKind uint8

// Material parameter kinds.
const (
	AmbientColor ParamKind = iota
	DiffuseColor
	SpecularColor
	EmissiveColor
	Shininess
	Opacity
	RefractionIndex
	Illumination
	DiffuseMap
	SpecularMap
	NormalMap
	EmissiveMap
	DisplacementMap
)

var paramKindNames = [...]string{
	AmbientColor:    "AmbientColor",
	DiffuseColor:    "DiffuseColor",
	SpecularColor:   "SpecularColor",
	EmissiveColor:   "EmissiveColor",
	Shininess:       "Shininess",
	Opacity:         "Opacity",
	RefractionIndex: "RefractionIndex",
	Illumination:    "Illumination",
	DiffuseMap:      "DiffuseMap",
	SpecularMap:     "SpecularMap",
	NormalMap:       "NormalMap",
	EmissiveMap:     "EmissiveMap",
	DisplacementMap: "DisplacementMap",
}

// String returns the parameter kind name.
func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// ValueType is the variant held by a Value.
type ValueType uint8

// Value variants.
const (
	FloatValue ValueType = iota + 1
	Vec2Value
	Vec3Value
	Vec4Value
	TextureValue
)

// String returns the variant name.
func (t ValueType) String() string {
	switch t {
	case FloatValue:
		return "float"
	case Vec2Value:
		return "vec2"
	case Vec3Value:
		return "vec3"
	case Vec4Value:
		return "vec4"
	case TextureValue:
		return "texture"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Texture references an image file. Image stays nil until a resolver loads it.
type Texture struct {
	Path  string
	Image image.Image
}

// Value is a tagged material parameter value. The zero Value holds nothing.
type Value struct {
	typ ValueType
	vec mgl32.Vec4 // float and vector variants share storage
	tex *Texture
}

// FloatParam wraps a scalar.
func FloatParam(f float32) Value {
	return Value{typ: FloatValue, vec: mgl32.Vec4{f}}
}

// Vec2Param wraps a 2-component vector.
func Vec2Param(v mgl32.Vec2) Value {
	return Value{typ: Vec2Value, vec: v.Vec4(0, 0)}
}

// Vec3Param wraps a 3-component vector.
func Vec3Param(v mgl32.Vec3) Value {
	return Value{typ: Vec3Value, vec: v.Vec4(0)}
}

// Vec4Param wraps a 4-component vector.
func Vec4Param(v mgl32.Vec4) Value {
	return Value{typ: Vec4Value, vec: v}
}

// TextureParam wraps a texture reference.
func TextureParam(path string) Value {
	return Value{typ: TextureValue, tex: &Texture{Path: path}}
}

// Type returns the variant held by v.
func (v Value) Type() ValueType {
	return v.typ
}

// Material is a named set of typed shading parameters.
type Material struct {
	Name   string
	Type   MaterialType
	params map[ParamKind]Value
}

// NewMaterial creates an empty traditional material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:   name,
		Type:   MaterialTraditional,
		params: make(map[ParamKind]Value),
	}
}

// Set stores a parameter, replacing any previous value of the same kind.
func (m *Material) Set(kind ParamKind, v Value) {
	m.params[kind] = v
}

// Has reports whether the parameter is defined.
func (m *Material) Has(kind ParamKind) bool {
	_, ok := m.params[kind]
	return ok
}

// Kinds returns the defined parameter kinds in declaration order of ParamKind.
func (m *Material) Kinds() []ParamKind {
	var kinds []ParamKind
	for k := AmbientColor; k <= DisplacementMap; k++ {
		if _, ok := m.params[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (m *Material) lookup(kind ParamKind, want ValueType) (Value, error) {
	v, ok := m.params[kind]
	if !ok {
		return Value{}, &LookupError{Material: m.Name, Param: kind, Err: ErrUndefinedParam}
	}
	if v.typ != want {
		return Value{}, &LookupError{Material: m.Name, Param: kind, Requested: want, Err: ErrParamType}
	}
	return v, nil
}

// Float returns a scalar parameter.
func (m *Material) Float(kind ParamKind) (float32, error) {
	v, err := m.lookup(kind, FloatValue)
	if err != nil {
		return 0, err
	}
	return v.vec[0], nil
}

// Vec2 returns a 2-component parameter.
func (m *Material) Vec2(kind ParamKind) (mgl32.Vec2, error) {
	v, err := m.lookup(kind, Vec2Value)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return v.vec.Vec2(), nil
}

// Vec3 returns a 3-component parameter.
func (m *Material) Vec3(kind ParamKind) (mgl32.Vec3, error) {
	v, err := m.lookup(kind, Vec3Value)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return v.vec.Vec3(), nil
}

// Vec4 returns a 4-component parameter.
func (m *Material) Vec4(kind ParamKind) (mgl32.Vec4, error) {
	v, err := m.lookup(kind, Vec4Value)
	if err != nil {
		return mgl32.Vec4{}, err
	}
	return v.vec, nil
}

// Texture returns a texture parameter. The returned pointer is shared with the
// material so resolvers can attach the decoded image in place.
func (m *Material) Texture(kind ParamKind) (*Texture, error) {
	v, err := m.lookup(kind, TextureValue)
	if err != nil {
		return nil, err
	}
	return v.tex, nil
}

// Textures returns every texture parameter of the material keyed by kind.
func (m *Material) Textures() map[ParamKind]*Texture {
	out := make(map[ParamKind]*Texture)
	for k, v := range m.params {
		if v.typ == TextureValue {
			out[k] = v.tex
		}
	}
	return out
}

// IndexMaterials builds a name lookup table from material lists. Later lists shadow
// earlier entries with the same name.
func IndexMaterials(lists ...[]*Material) map[string]*Material {
	table := make(map[string]*Material)
	for _, list := range lists {
		for _, m := range list {
			table[m.Name] = m
		}
	}
	return table
}
