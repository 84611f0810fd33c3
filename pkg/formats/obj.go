package formats

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultGroupName names the group that collects faces declared before any g/o/usemtl.
const DefaultGroupName = "Default"

// FaceVertex is one triangle corner. Indices are 1-based into the document's
// position/UV/normal arrays; 0 means the attribute is absent.
type FaceVertex struct {
	Position int
	UV       int
	Normal   int
}

// HasUV reports whether the corner references a texture coordinate.
func (fv FaceVertex) HasUV() bool {
	return fv.UV != 0
}

// HasNormals reports whether the corner references a normal.
func (fv FaceVertex) HasNormals() bool {
	return fv.Normal != 0
}

// Face is a triangle.
type Face [3]FaceVertex

// Group is a named run of faces sharing one material.
type Group struct {
	Name     string
	Material string // empty when no usemtl applies
	Faces    []Face
}

// Document is the parsed, unconverted contents of an OBJ file.
type Document struct {
	Positions    []mgl32.Vec3
	UVs          []mgl32.Vec2
	Normals      []mgl32.Vec3
	Groups       []*Group
	MaterialLibs []string

	// Fixed by the first face; every later face must match.
	HasUV      bool
	HasNormals bool
}

// FaceCount returns the number of faces across all groups.
func (d *Document) FaceCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Faces)
	}
	return n
}

// parseState is the mutable context of one ModelParser.Parse call.
type parseState struct {
	doc       *Document
	group     *Group
	fileName  string
	line      int
	object    string
	groupName string
	material  string
	firstFace bool
}

// ModelParser parses OBJ text into a Document. A parser may be reused but must
// not be shared between goroutines.
type ModelParser struct {
	ignore map[string]bool
	st     parseState
}

// NewModelParser creates a model parser.
func NewModelParser() *ModelParser {
	return &ModelParser{ignore: make(map[string]bool)}
}

// Ignore makes the parser skip the given commands instead of failing on them.
func (p *ModelParser) Ignore(commands ...string) {
	for _, c := range commands {
		p.ignore[c] = true
	}
}

// Parse parses OBJ text. fileName is used only for error reporting.
func (p *ModelParser) Parse(text, fileName string) (*Document, error) {
	def := &Group{Name: DefaultGroupName}
	p.st = parseState{
		doc:       &Document{Groups: []*Group{def}},
		group:     def,
		fileName:  fileName,
		line:      1,
		firstFace: true,
	}

	sc := NewScanner(text)
	sc.SetComment('#')
	for sc.HasNextLine() {
		line, err := sc.ReadNextLine()
		if err != nil {
			return nil, err
		}
		p.st.line = sc.Line()

		tokens := SplitTokens(line, tokenSeparators, true).All()
		if len(tokens) == 0 {
			continue
		}
		if err := p.parseLine(tokens[0], tokens[1:]); err != nil {
			return nil, err
		}
	}

	doc := p.st.doc
	p.st = parseState{}
	return doc, nil
}

func (p *ModelParser) parseLine(cmd string, args []string) error {
	st := &p.st
	switch cmd {
	case "v":
		v, err := p.parseFloats(cmd, args, []string{"x", "y", "z"})
		if err != nil {
			return err
		}
		st.doc.Positions = append(st.doc.Positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := p.parseFloats(cmd, args, []string{"u", "v"})
		if err != nil {
			return err
		}
		st.doc.UVs = append(st.doc.UVs, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := p.parseFloats(cmd, args, []string{"x", "y", "z"})
		if err != nil {
			return err
		}
		st.doc.Normals = append(st.doc.Normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(cmd, args)
	case "g":
		st.groupName = strings.Join(args, " ")
		p.mergeGroup()
	case "o":
		st.object = strings.Join(args, " ")
		p.mergeGroup()
	case "usemtl":
		if len(args) == 0 {
			return p.fail(cmd, "name", ErrTokenCount)
		}
		st.material = strings.Join(args, " ")
		if len(st.group.Faces) > 0 {
			p.appendGroup(p.mergedName())
		}
		st.group.Material = st.material
	case "mtllib":
		if len(args) == 0 {
			return p.fail(cmd, "path", ErrTokenCount)
		}
		st.doc.MaterialLibs = append(st.doc.MaterialLibs, args...)
	default:
		if p.ignore[cmd] {
			return nil
		}
		return p.fail(cmd, "", ErrUnknownCommand)
	}
	return nil
}

// mergedName combines the active object and group names.
func (p *ModelParser) mergedName() string {
	switch {
	case p.st.object != "" && p.st.groupName != "":
		return p.st.object + ":" + p.st.groupName
	case p.st.object != "":
		return p.st.object
	case p.st.groupName != "":
		return p.st.groupName
	default:
		return DefaultGroupName
	}
}

// mergeGroup renames the current group while it is still empty, otherwise starts a new one.
func (p *ModelParser) mergeGroup() {
	name := p.mergedName()
	if len(p.st.group.Faces) == 0 {
		p.st.group.Name = name
		return
	}
	p.appendGroup(name)
}

func (p *ModelParser) appendGroup(name string) {
	g := &Group{Name: name, Material: p.st.material}
	p.st.doc.Groups = append(p.st.doc.Groups, g)
	p.st.group = g
}

func (p *ModelParser) parseFace(cmd string, args []string) error {
	if len(args) != 3 {
		return p.fail(cmd, "", ErrTokenCount)
	}

	var face Face
	for i, tok := range args {
		fv, err := p.parseFaceVertex(cmd, tok)
		if err != nil {
			return err
		}
		face[i] = fv
	}

	hasUV := face[0].HasUV() && face[1].HasUV() && face[2].HasUV()
	hasNormals := face[0].HasNormals() && face[1].HasNormals() && face[2].HasNormals()
	for _, fv := range face {
		if fv.HasUV() != hasUV {
			return p.fail(cmd, "uv", ErrInconsistentFace)
		}
		if fv.HasNormals() != hasNormals {
			return p.fail(cmd, "normal", ErrInconsistentFace)
		}
	}

	doc := p.st.doc
	if p.st.firstFace {
		doc.HasUV = hasUV
		doc.HasNormals = hasNormals
		p.st.firstFace = false
	} else {
		if hasUV != doc.HasUV {
			return p.fail(cmd, "uv", ErrInconsistentFace)
		}
		if hasNormals != doc.HasNormals {
			return p.fail(cmd, "normal", ErrInconsistentFace)
		}
	}

	p.st.group.Faces = append(p.st.group.Faces, face)
	return nil
}

// parseFaceVertex parses "p", "p/t", "p//n" or "p/t/n".
func (p *ModelParser) parseFaceVertex(cmd, tok string) (FaceVertex, error) {
	parts := SplitTokens(tok, "/", false).All()
	if len(parts) > 3 {
		return FaceVertex{}, p.fail(cmd, "vertex", ErrTokenCount)
	}

	doc := p.st.doc
	fields := [3]string{"position", "uv", "normal"}
	sizes := [3]int{len(doc.Positions), len(doc.UVs), len(doc.Normals)}
	var idx [3]int
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return FaceVertex{}, p.fail(cmd, fields[i], ErrTokenCount)
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return FaceVertex{}, p.fail(cmd, fields[i], ErrInvalidNumber)
		}
		abs, err := resolveIndex(v, sizes[i])
		if err != nil {
			return FaceVertex{}, p.fail(cmd, fields[i], err)
		}
		idx[i] = abs
	}
	return FaceVertex{Position: idx[0], UV: idx[1], Normal: idx[2]}, nil
}

// resolveIndex maps a 1-based or negative relative index to a 1-based absolute one.
func resolveIndex(i, length int) (int, error) {
	switch {
	case i > 0:
		return i, nil
	case i == 0:
		return 0, ErrZeroIndex
	}
	abs := length + i + 1
	if abs < 1 {
		return 0, ErrIndexRange
	}
	return abs, nil
}

func (p *ModelParser) parseFloats(cmd string, args, fields []string) ([]float32, error) {
	if len(args) != len(fields) {
		if len(args) < len(fields) {
			return nil, p.fail(cmd, fields[len(args)], ErrTokenCount)
		}
		return nil, p.fail(cmd, "", ErrTokenCount)
	}
	out := make([]float32, len(fields))
	for i, tok := range args {
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, p.fail(cmd, fields[i], ErrInvalidNumber)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *ModelParser) fail(cmd, field string, err error) error {
	return &ParseError{File: p.st.fileName, Line: p.st.line, Command: cmd, Field: field, Err: err}
}

// ParseOBJ parses OBJ text with a fresh parser.
func ParseOBJ(text, fileName string) (*Document, error) {
	return NewModelParser().Parse(text, fileName)
}
