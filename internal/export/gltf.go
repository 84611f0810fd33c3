// Package export writes converted models as glTF 2.0 and JSON summaries.
package export

import (
	"bytes"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/objkit/pkg/formats"
	"github.com/Faultbox/objkit/pkg/model"
)

// Document builds a glTF document with one mesh holding a primitive per
// non-empty group. Vertex attributes are shared by all primitives.
func Document(m *model.Model, name string) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	if len(m.Vertices) == 0 {
		return doc, nil
	}

	attributes := writeAttributes(doc, m)
	materials := make(map[*formats.Material]uint32)

	mesh := &gltf.Mesh{Name: name}
	for i, g := range m.Groups {
		if g.IndexCount == 0 {
			continue
		}

		indices := modeler.WriteIndices(doc, m.GroupIndices(i))
		prim := &gltf.Primitive{
			Indices:    gltf.Index(indices),
			Attributes: attributes,
		}

		if g.Material != nil {
			idx, ok := materials[g.Material]
			if !ok {
				var err error
				idx, err = writeMaterial(doc, g.Material)
				if err != nil {
					return nil, errors.Wrapf(err, "material %q", g.Material.Name)
				}
				materials[g.Material] = idx
			}
			prim.Material = gltf.Index(idx)
		}

		mesh.Primitives = append(mesh.Primitives, prim)
	}

	if len(mesh.Primitives) == 0 {
		return doc, nil
	}

	doc.Meshes = append(doc.Meshes, mesh)
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	return doc, nil
}

func writeAttributes(doc *gltf.Document, m *model.Model) map[string]uint32 {
	count := len(m.Vertices)
	positions := make([][3]float32, count)
	for i := range m.Vertices {
		positions[i] = m.Vertices[i].Position
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, positions),
	}

	if m.HasNormals {
		normals := make([][3]float32, count)
		for i := range m.Vertices {
			n := m.Vertices[i].Normal
			if n.Len() > 0 {
				n = n.Normalize()
			}
			normals[i] = n
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	}

	if m.HasUV {
		uvs := make([][2]float32, count)
		for i := range m.Vertices {
			uv := m.Vertices[i].UV
			// OBJ places v=0 at the bottom; glTF at the top
			uvs[i] = [2]float32{uv[0], 1 - uv[1]}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	}

	return attributes
}

// writeMaterial appends a PBR material whose base color comes from Kd and d.
// A resolved diffuse map is embedded as PNG.
func writeMaterial(doc *gltf.Document, mat *formats.Material) (uint32, error) {
	color := &[4]float32{1, 1, 1, 1}
	if kd, err := mat.Vec3(formats.DiffuseColor); err == nil {
		color[0], color[1], color[2] = kd[0], kd[1], kd[2]
	}
	if d, err := mat.Float(formats.Opacity); err == nil {
		color[3] = d
	}

	gm := &gltf.Material{
		Name:        mat.Name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
		},
	}
	if color[3] < 1 {
		gm.AlphaMode = gltf.AlphaBlend
	}

	if tex, err := mat.Texture(formats.DiffuseMap); err == nil && tex.Image != nil {
		texIdx, err := writeTexture(doc, mat.Name, tex)
		if err != nil {
			return 0, err
		}
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: texIdx}
	}

	doc.Materials = append(doc.Materials, gm)
	return uint32(len(doc.Materials) - 1), nil
}

func writeTexture(doc *gltf.Document, name string, tex *formats.Texture) (uint32, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, tex.Image); err != nil {
		return 0, errors.Wrapf(err, "encoding %s", tex.Path)
	}

	imageIdx, err := modeler.WriteImage(doc, name+"_image", "image/png", &buf)
	if err != nil {
		return 0, errors.Wrap(err, "writing gltf image")
	}

	samplerIdx := uint32(len(doc.Samplers))
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		MagFilter: gltf.MagLinear,
		MinFilter: gltf.MinLinear,
		WrapS:     gltf.WrapRepeat,
		WrapT:     gltf.WrapRepeat,
	})

	doc.Textures = append(doc.Textures, &gltf.Texture{
		Name:    name,
		Sampler: gltf.Index(samplerIdx),
		Source:  gltf.Index(imageIdx),
	})
	return uint32(len(doc.Textures) - 1), nil
}

// Encode writes doc as GLB when binary is set, otherwise as glTF JSON with
// embedded buffers.
func Encode(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		for _, b := range doc.Buffers {
			if b.URI == "" {
				b.EmbeddedResource()
			}
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = binary
	return encoder.Encode(doc)
}

// WriteGLB writes m as binary glTF.
func WriteGLB(w io.Writer, m *model.Model, name string) error {
	doc, err := Document(m, name)
	if err != nil {
		return err
	}
	return Encode(w, doc, true)
}

// Save writes m to path as GLB or glTF JSON.
func Save(path string, m *model.Model, binary bool) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := Document(m, name)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := Encode(f, doc, binary); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return f.Close()
}
