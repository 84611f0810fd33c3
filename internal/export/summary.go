package export

import (
	"github.com/Faultbox/objkit/pkg/model"
)

// GroupSummary describes one draw range.
type GroupSummary struct {
	Name        string `json:"name"`
	Material    string `json:"material,omitempty"`
	IndexOffset uint32 `json:"index_offset"`
	IndexCount  uint32 `json:"index_count"`
}

// Summary is a JSON-friendly overview of a model.
type Summary struct {
	Vertices   int            `json:"vertices"`
	Indices    int            `json:"indices"`
	Triangles  int            `json:"triangles"`
	HasUV      bool           `json:"has_uv"`
	HasNormals bool           `json:"has_normals"`
	BoundsMin  [3]float32     `json:"bounds_min"`
	BoundsMax  [3]float32     `json:"bounds_max"`
	Groups     []GroupSummary `json:"groups"`
}

// Summarize collects the counts, layout and groups of m. Groups without a
// resolved material have an empty Material.
func Summarize(m *model.Model) Summary {
	s := Summary{
		Vertices:   len(m.Vertices),
		Indices:    len(m.Indices),
		Triangles:  m.TriangleCount(),
		HasUV:      m.HasUV,
		HasNormals: m.HasNormals,
		BoundsMin:  m.Bounds.Min,
		BoundsMax:  m.Bounds.Max,
		Groups:     make([]GroupSummary, 0, len(m.Groups)),
	}
	for _, g := range m.Groups {
		gs := GroupSummary{
			Name:        g.Name,
			IndexOffset: g.IndexOffset,
			IndexCount:  g.IndexCount,
		}
		if g.Material != nil {
			gs.Material = g.Material.Name
		}
		s.Groups = append(s.Groups, gs)
	}
	return s
}
