package formats

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const tokenSeparators = " \t"

// MTL commands mapped to the parameter they set.
var (
	mtlColorCommands = map[string]ParamKind{
		"Ka": AmbientColor,
		"Kd": DiffuseColor,
		"Ks": SpecularColor,
		"Ke": EmissiveColor,
	}
	mtlScalarCommands = map[string]ParamKind{
		"Ns":    Shininess,
		"d":     Opacity,
		"Ni":    RefractionIndex,
		"illum": Illumination,
	}
	mtlTextureCommands = map[string]ParamKind{
		"map_Kd":   DiffuseMap,
		"map_Ks":   SpecularMap,
		"map_Ke":   EmissiveMap,
		"norm":     NormalMap,
		"map_Bump": NormalMap,
		"map_bump": NormalMap,
		"bump":     NormalMap,
		"disp":     DisplacementMap,
	}

	// Fixed argument counts of texture options. -o, -s, -t and unknown
	// options take a run of up to three numbers.
	mtlTextureOptionArgs = map[string]int{
		"-blendu":  1,
		"-blendv":  1,
		"-boost":   1,
		"-bm":      1,
		"-cc":      1,
		"-clamp":   1,
		"-imfchan": 1,
		"-texres":  1,
		"-type":    1,
		"-mm":      2,
	}
)

// MaterialParser parses MTL text into materials. A parser may be reused but must
// not be shared between goroutines.
type MaterialParser struct {
	ignore map[string]bool

	materials []*Material
	fileName  string
	line      int
}

// NewMaterialParser creates a material parser.
func NewMaterialParser() *MaterialParser {
	return &MaterialParser{ignore: make(map[string]bool)}
}

// Ignore makes the parser skip the given commands instead of failing on them.
func (p *MaterialParser) Ignore(commands ...string) {
	for _, c := range commands {
		p.ignore[c] = true
	}
}

// Parse parses MTL text. fileName is used only for error reporting.
func (p *MaterialParser) Parse(text, fileName string) ([]*Material, error) {
	p.materials = nil
	p.fileName = fileName
	p.line = 0

	sc := NewScanner(text)
	sc.SetComment('#')
	for sc.HasNextLine() {
		line, err := sc.ReadNextLine()
		if err != nil {
			return nil, err
		}
		p.line = sc.Line()

		tokens := SplitTokens(line, tokenSeparators, true).All()
		if len(tokens) == 0 {
			continue
		}
		if err := p.parseLine(tokens[0], tokens[1:]); err != nil {
			return nil, err
		}
	}

	materials := p.materials
	p.materials = nil
	return materials, nil
}

func (p *MaterialParser) parseLine(cmd string, args []string) error {
	if cmd == "newmtl" {
		if len(args) == 0 {
			return p.fail(cmd, "name", ErrTokenCount)
		}
		p.materials = append(p.materials, NewMaterial(strings.Join(args, " ")))
		return nil
	}

	if p.ignore[cmd] {
		return nil
	}

	color, isColor := mtlColorCommands[cmd]
	scalar, isScalar := mtlScalarCommands[cmd]
	texture, isTexture := mtlTextureCommands[cmd]
	if !isColor && !isScalar && !isTexture && cmd != "Tr" {
		return p.fail(cmd, "", ErrUnknownCommand)
	}

	current := p.current()
	if current == nil {
		return p.fail(cmd, "", ErrNoMaterial)
	}

	switch {
	case isColor:
		if len(args) != 3 {
			return p.fail(cmd, "", ErrTokenCount)
		}
		var c mgl32.Vec3
		for i, field := range [3]string{"r", "g", "b"} {
			f, err := p.parseFloat(cmd, field, args[i])
			if err != nil {
				return err
			}
			c[i] = f
		}
		current.Set(color, Vec3Param(c))

	case isScalar, cmd == "Tr":
		if len(args) != 1 {
			return p.fail(cmd, "", ErrTokenCount)
		}
		f, err := p.parseFloat(cmd, "value", args[0])
		if err != nil {
			return err
		}
		if cmd == "Tr" {
			current.Set(Opacity, FloatParam(1-f))
		} else {
			current.Set(scalar, FloatParam(f))
		}

	case isTexture:
		if len(args) == 0 {
			return p.fail(cmd, "path", ErrTokenCount)
		}
		name := skipTextureOptions(args)
		if len(name) == 0 {
			return p.fail(cmd, "path", ErrTokenCount)
		}
		current.Set(texture, TextureParam(strings.Join(name, " ")))
	}
	return nil
}

// skipTextureOptions drops the "-opt value..." tokens preceding a texture's
// file name.
func skipTextureOptions(args []string) []string {
	for len(args) > 0 && len(args[0]) > 1 && args[0][0] == '-' {
		opt := args[0]
		args = args[1:]

		if n, ok := mtlTextureOptionArgs[opt]; ok {
			args = args[min(n, len(args)):]
			continue
		}
		for n := 0; n < 3 && len(args) > 0 && isNumber(args[0]); n++ {
			args = args[1:]
		}
	}
	return args
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func (p *MaterialParser) current() *Material {
	if len(p.materials) == 0 {
		return nil
	}
	return p.materials[len(p.materials)-1]
}

func (p *MaterialParser) parseFloat(cmd, field, tok string) (float32, error) {
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, p.fail(cmd, field, ErrInvalidNumber)
	}
	return float32(f), nil
}

func (p *MaterialParser) fail(cmd, field string, err error) error {
	return &ParseError{File: p.fileName, Line: p.line, Command: cmd, Field: field, Err: err}
}

// ParseMTL parses MTL text with a fresh parser.
func ParseMTL(text, fileName string) ([]*Material, error) {
	return NewMaterialParser().Parse(text, fileName)
}
