package formats

import (
	"errors"
	"fmt"
)

// Parse and lookup errors.
var (
	ErrNoMoreTokens     = errors.New("no more tokens")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrTokenCount       = errors.New("wrong token count")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrZeroIndex        = errors.New("face index must not be 0")
	ErrIndexRange       = errors.New("face index out of range")
	ErrInconsistentFace = errors.New("inconsistent face layout")
	ErrNoMaterial       = errors.New("material parameter before newmtl")
	ErrUndefinedParam   = errors.New("material parameter not defined")
	ErrParamType        = errors.New("material parameter type mismatch")
)

// ParseError reports a failure at a specific line of an OBJ or MTL file.
type ParseError struct {
	File    string
	Line    int
	Command string
	Field   string // empty when the error is not tied to one field
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s:%d: %q field %q: %v", e.File, e.Line, e.Command, e.Field, e.Err)
	}
	return fmt.Sprintf("%s:%d: %q: %v", e.File, e.Line, e.Command, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LookupError reports a missing or mistyped material parameter.
type LookupError struct {
	Material  string
	Param     ParamKind
	Requested ValueType // set for type mismatches
	Err       error
}

func (e *LookupError) Error() string {
	if errors.Is(e.Err, ErrParamType) {
		return fmt.Sprintf("material %q: %s requested as %s: %v", e.Material, e.Param, e.Requested, e.Err)
	}
	return fmt.Sprintf("material %q: %s: %v", e.Material, e.Param, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
