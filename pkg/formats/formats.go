// Package formats provides parsers for Wavefront OBJ geometry and MTL
// material files.
//
// Both parsers are line driven: a Scanner strips "#" comments and yields one
// line at a time, and each line's first token selects the command. Parsers
// return a *ParseError carrying the file, line, command and field of the first
// failure; the sentinel errors in this package can be matched with errors.Is.
package formats

// Note: OBJ is implemented in obj.go
// Note: MTL is implemented in mtl.go, material values in material.go
