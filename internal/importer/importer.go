// Package importer turns an .obj file and the material libraries it references
// into a converted model.
package importer

import (
	"image"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/objkit/internal/assets"
	"github.com/Faultbox/objkit/pkg/encoding"
	"github.com/Faultbox/objkit/pkg/formats"
	"github.com/Faultbox/objkit/pkg/model"
)

// Options controls parsing and texture resolution.
type Options struct {
	// IgnoreCommands are OBJ/MTL commands skipped instead of failing the parse.
	IgnoreCommands []string
	// ResolveTextures decodes every texture referenced by a material.
	ResolveTextures bool
}

// Result holds every stage of one import.
type Result struct {
	Document  *formats.Document
	Materials map[string]*formats.Material
	Model     *model.Model
}

// Importer loads models through a TextLoader. It is safe for concurrent use;
// every call builds its own parsers.
type Importer struct {
	loader assets.TextLoader
	images assets.ImageResolver
	opts   Options
	log    *zap.Logger
}

// New creates an importer. images may be nil when textures are never
// resolved; log may be nil.
func New(loader assets.TextLoader, images assets.ImageResolver, opts Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		loader: loader,
		images: images,
		opts:   opts,
		log:    log,
	}
}

// Import loads, parses and converts the .obj at objPath.
func (im *Importer) Import(objPath string) (*model.Model, error) {
	res, err := im.ImportAll(objPath)
	if err != nil {
		return nil, err
	}
	return res.Model, nil
}

// ImportAll is Import but also returns the parsed document and material table.
func (im *Importer) ImportAll(objPath string) (*Result, error) {
	start := time.Now()

	doc, materials, err := im.ImportDocument(objPath)
	if err != nil {
		return nil, err
	}

	m, err := model.Convert(doc, materials)
	if err != nil {
		return nil, errors.Wrapf(err, "converting %s", objPath)
	}

	im.log.Info("imported model",
		zap.String("path", objPath),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("groups", len(m.Groups)),
		zap.Int("materials", len(materials)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{Document: doc, Materials: materials, Model: m}, nil
}

// ImportDocument parses the .obj at objPath and every material library it
// names, without converting. Libraries that cannot be found are skipped with a
// warning; their materials stay unresolved.
func (im *Importer) ImportDocument(objPath string) (*formats.Document, map[string]*formats.Material, error) {
	objPath = encoding.NormalizePath(objPath)

	text, err := im.loader.LoadText(objPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading %s", objPath)
	}

	parser := formats.NewModelParser()
	parser.Ignore(im.opts.IgnoreCommands...)
	doc, err := parser.Parse(text, objPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", objPath)
	}
	im.log.Debug("parsed model",
		zap.String("path", objPath),
		zap.Int("positions", len(doc.Positions)),
		zap.Int("faces", doc.FaceCount()),
		zap.Strings("mtllib", doc.MaterialLibs),
	)

	materials, err := im.loadLibraries(path.Dir(objPath), doc.MaterialLibs)
	if err != nil {
		return nil, nil, err
	}

	for _, g := range doc.Groups {
		if g.Material != "" && materials[g.Material] == nil {
			im.log.Warn("unresolved material",
				zap.String("path", objPath),
				zap.String("group", g.Name),
				zap.String("material", g.Material),
			)
		}
	}

	return doc, materials, nil
}

// loadLibraries parses each distinct library once, in declaration order, and
// merges the results so later libraries shadow earlier names.
func (im *Importer) loadLibraries(dir string, libs []string) (map[string]*formats.Material, error) {
	parser := formats.NewMaterialParser()
	parser.Ignore(im.opts.IgnoreCommands...)

	seen := make(map[string]bool, len(libs))
	owner := make(map[string]string)
	var lists [][]*formats.Material

	for _, lib := range libs {
		libPath, err := resolvePath(dir, lib)
		if err != nil {
			im.log.Warn("material library rejected", zap.String("mtllib", lib), zap.Error(err))
			continue
		}
		if seen[libPath] {
			continue
		}
		seen[libPath] = true

		text, err := im.loader.LoadText(libPath)
		if err != nil {
			if errors.Is(err, assets.ErrNotFound) {
				im.log.Warn("material library not found", zap.String("path", libPath))
				continue
			}
			return nil, errors.Wrapf(err, "loading %s", libPath)
		}

		list, err := parser.Parse(text, libPath)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", libPath)
		}
		im.log.Debug("loaded material library",
			zap.String("path", libPath),
			zap.Int("materials", len(list)),
		)

		for _, mat := range list {
			if prev, ok := owner[mat.Name]; ok {
				im.log.Debug("material shadowed",
					zap.String("material", mat.Name),
					zap.String("previous", prev),
					zap.String("library", libPath),
				)
			}
			owner[mat.Name] = libPath
		}

		if im.opts.ResolveTextures {
			im.resolveTextures(path.Dir(libPath), list)
		}
		lists = append(lists, list)
	}

	return formats.IndexMaterials(lists...), nil
}

// resolveTextures attaches decoded images to the textures of list. Failures
// leave Image nil.
func (im *Importer) resolveTextures(dir string, list []*formats.Material) {
	if im.images == nil {
		return
	}

	for _, mat := range list {
		for kind, tex := range mat.Textures() {
			texPath, err := resolvePath(dir, tex.Path)
			var img image.Image
			if err == nil {
				img, err = im.images.ResolveImage(texPath)
			}
			if err != nil {
				im.log.Warn("texture not resolved",
					zap.String("material", mat.Name),
					zap.Stringer("param", kind),
					zap.String("path", tex.Path),
					zap.Error(err),
				)
				continue
			}
			tex.Image = img
		}
	}
}

// resolvePath resolves ref against the directory of the file that references it.
// A file loaded from the asset roots may only reference files inside them.
func resolvePath(dir, ref string) (string, error) {
	ref = encoding.NormalizePath(ref)
	if path.IsAbs(dir) || hasVolume(dir) {
		if path.IsAbs(ref) || hasVolume(ref) {
			return ref, nil
		}
		return path.Join(dir, ref), nil
	}

	if path.IsAbs(ref) || hasVolume(ref) {
		return "", errors.Wrap(assets.ErrOutsideRoot, ref)
	}
	p := path.Join(dir, ref)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", errors.Wrap(assets.ErrOutsideRoot, ref)
	}
	return p, nil
}

// hasVolume reports a drive-letter prefix such as "C:/".
func hasVolume(p string) bool {
	return len(p) >= 2 && p[1] == ':' &&
		(p[0] >= 'a' && p[0] <= 'z' || p[0] >= 'A' && p[0] <= 'Z')
}
