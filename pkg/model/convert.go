package model

import (
	"fmt"

	"github.com/Faultbox/objkit/pkg/formats"
)

// vertexKey identifies a distinct corner. Absent attributes are canonicalized
// to 0 so corners differing only in an absent index share a key.
type vertexKey struct {
	position, uv, normal int
}

func keyOf(fv formats.FaceVertex, hasUV, hasNormals bool) vertexKey {
	k := vertexKey{position: fv.Position}
	if hasUV {
		k.uv = fv.UV
	}
	if hasNormals {
		k.normal = fv.Normal
	}
	return k
}

// Convert builds an indexed model from doc. Corners referencing the same
// (position, uv, normal) tuple share one vertex. Groups whose material is not
// in materials get a nil material.
func Convert(doc *formats.Document, materials map[string]*formats.Material) (*Model, error) {
	faceCount := doc.FaceCount()
	vertices := make([]Vertex, 0, 3*faceCount)
	indices := make([]uint32, 0, 3*faceCount)
	groups := make([]Group, 0, len(doc.Groups))
	cache := make(map[vertexKey]uint32, 3*faceCount)

	for _, g := range doc.Groups {
		offset := uint32(len(indices))

		for fi, face := range g.Faces {
			for _, fv := range face {
				key := keyOf(fv, doc.HasUV, doc.HasNormals)
				idx, ok := cache[key]
				if !ok {
					v, err := gatherVertex(doc, key)
					if err != nil {
						return nil, fmt.Errorf("group %q face %d: %w", g.Name, fi, err)
					}
					idx = uint32(len(vertices))
					vertices = append(vertices, v)
					cache[key] = idx
				}
				indices = append(indices, idx)
			}
		}

		groups = append(groups, Group{
			Name:        g.Name,
			Material:    materials[g.Material],
			IndexOffset: offset,
			IndexCount:  uint32(len(indices)) - offset,
		})
	}

	m, err := NewModel(vertices, indices, groups)
	if err != nil {
		return nil, err
	}
	m.HasUV = doc.HasUV
	m.HasNormals = doc.HasNormals
	return m, nil
}

// gatherVertex reads the attributes a key refers to. Keys are 1-based.
func gatherVertex(doc *formats.Document, key vertexKey) (Vertex, error) {
	var v Vertex

	if key.position < 1 || key.position > len(doc.Positions) {
		return v, fmt.Errorf("%w: position %d of %d", formats.ErrIndexRange, key.position, len(doc.Positions))
	}
	v.Position = doc.Positions[key.position-1]

	if doc.HasUV {
		if key.uv < 1 || key.uv > len(doc.UVs) {
			return v, fmt.Errorf("%w: uv %d of %d", formats.ErrIndexRange, key.uv, len(doc.UVs))
		}
		v.UV = doc.UVs[key.uv-1]
	}

	if doc.HasNormals {
		if key.normal < 1 || key.normal > len(doc.Normals) {
			return v, fmt.Errorf("%w: normal %d of %d", formats.ErrIndexRange, key.normal, len(doc.Normals))
		}
		v.Normal = doc.Normals[key.normal-1]
	}
	return v, nil
}
