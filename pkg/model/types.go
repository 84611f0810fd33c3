// Package model converts parsed OBJ documents into indexed, GPU-ready meshes.
package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objkit/pkg/formats"
)

// Model errors.
var (
	ErrGroupRange = errors.New("group index range outside index buffer")
	ErrIndexRange = errors.New("index outside vertex buffer")
)

// VertexStride is the size of one packed Vertex in bytes.
const VertexStride = 32

// Vertex is the packed GPU vertex: position, texture coordinate, normal.
type Vertex struct {
	Position mgl32.Vec3 // offset  0
	UV       mgl32.Vec2 // offset 12
	Normal   mgl32.Vec3 // offset 20
}

// Marshal appends the little-endian encoding of v to buf.
func (v *Vertex) Marshal(buf []byte) []byte {
	for _, f := range [8]float32{
		v.Position[0], v.Position[1], v.Position[2],
		v.UV[0], v.UV[1],
		v.Normal[0], v.Normal[1], v.Normal[2],
	} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// Group is a draw range of the index buffer. Material is nil when the
// group's material could not be resolved.
type Group struct {
	Name        string
	Material    *formats.Material
	IndexOffset uint32
	IndexCount  uint32
}

// Bounds holds the axis-aligned bounding box of the model.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Model holds the converted mesh ready for GPU upload.
type Model struct {
	Vertices []Vertex
	Indices  []uint32
	Groups   []Group
	Bounds   Bounds

	HasUV      bool
	HasNormals bool
}

// NewModel assembles a model and checks that every group range and every index
// lies inside its buffer.
func NewModel(vertices []Vertex, indices []uint32, groups []Group) (*Model, error) {
	for _, g := range groups {
		end := uint64(g.IndexOffset) + uint64(g.IndexCount)
		if end > uint64(len(indices)) {
			return nil, fmt.Errorf("%w: group %q [%d,%d) of %d indices",
				ErrGroupRange, g.Name, g.IndexOffset, end, len(indices))
		}
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d = %d of %d vertices", ErrIndexRange, i, idx, len(vertices))
		}
	}

	return &Model{
		Vertices: vertices,
		Indices:  indices,
		Groups:   groups,
		Bounds:   computeBounds(vertices),
	}, nil
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *Model) TriangleCount() int {
	return len(m.Indices) / 3
}

// GroupIndices returns the slice of the index buffer drawn by group i.
func (m *Model) GroupIndices(i int) []uint32 {
	g := m.Groups[i]
	return m.Indices[g.IndexOffset : g.IndexOffset+g.IndexCount]
}

// VertexBytes returns the vertex buffer in the packed GPU layout.
func (m *Model) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.Vertices)*VertexStride)
	for i := range m.Vertices {
		buf = m.Vertices[i].Marshal(buf)
	}
	return buf
}

// IndexBytes returns the index buffer as little-endian uint32 values.
func (m *Model) IndexBytes() []byte {
	buf := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	return buf
}

func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], v.Position[i])
			b.Max[i] = max(b.Max[i], v.Position[i])
		}
	}
	return b
}
