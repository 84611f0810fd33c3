// objtool is a CLI utility for inspecting and converting Wavefront OBJ models.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/Faultbox/objkit/internal/assets"
	"github.com/Faultbox/objkit/internal/config"
	"github.com/Faultbox/objkit/internal/export"
	"github.com/Faultbox/objkit/internal/importer"
	"github.com/Faultbox/objkit/internal/logger"
	"github.com/Faultbox/objkit/internal/server"
	"github.com/Faultbox/objkit/pkg/archive"
	"github.com/Faultbox/objkit/pkg/formats"
	"github.com/Faultbox/objkit/pkg/model"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		File:    logFile(cfg.Logging.LogFile),
		Console: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "dump":
		cmdDump(cfg, args)
	case "convert", "c":
		cmdConvert(cfg, args)
	case "serve":
		cmdServe(cfg, args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "init":
		cmdInit(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ/MTL utility

Usage:
  objtool [flags] <command> [options]

Commands:
  info <file.obj>                    Show model summary
  dump [-doc] <file.obj>             Dump converted model (or parsed document)
  convert <file.obj> [output]        Convert to .glb or .gltf
  serve                              Serve previews from the search paths
  list <pack.zip> [pattern]          List files in a model pack
  extract <pack.zip> <path> [output] Extract file(s) from a model pack
  init [path]                        Write the effective config to a file

Flags:
  -config <path>     Config file
  -root a,b          Asset search paths (last wins)
  -archive a,b       Model pack archives searched after the roots
  -encoding <name>   Text encoding (utf-8, windows-1252, latin1, euc-kr, shift_jis)
  -textures          Decode texture images
  -ignore s,l        Commands to skip instead of rejecting
  -gltf              Write JSON glTF instead of GLB
  -addr <host:port>  Preview server address
  -debug             Debug logging

Examples:
  objtool info models/crate.obj
  objtool -textures convert models/crate.obj out/crate.glb
  objtool -root ./assets -archive props.zip serve
  objtool list props.zip "*.obj"`)
}

func logFile(path string) logger.FileConfig {
	if path == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(path)
}

// newImporter builds an importer over the configured search paths.
func newImporter(cfg *config.Config) (*importer.Importer, *assets.Manager) {
	mgr, err := assets.NewManager(cfg.Import.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, root := range cfg.Import.SearchPaths {
		if err := mgr.AddRoot(root); err != nil {
			logger.Warn("skipping search path", zap.String("root", root), zap.Error(err))
		}
	}
	for _, pack := range cfg.Import.Archives {
		if err := mgr.AddArchive(pack); err != nil {
			logger.Warn("skipping archive", zap.String("archive", pack), zap.Error(err))
		}
	}

	im := importer.New(mgr, mgr, importer.Options{
		IgnoreCommands:  cfg.Import.IgnoreCommands,
		ResolveTextures: cfg.Import.ResolveTextures,
	}, logger.Named("importer"))
	return im, mgr
}

// inputPath makes a command-line model path absolute so it resolves
// regardless of the search paths.
func inputPath(arg string) string {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return filepath.ToSlash(arg)
	}
	return filepath.ToSlash(abs)
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		os.Exit(1)
	}

	im, mgr := newImporter(cfg)
	defer mgr.Close()

	m, err := im.Import(inputPath(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := export.Summarize(m)
	fmt.Printf("Model:     %s\n", args[0])
	fmt.Printf("Vertices:  %d\n", s.Vertices)
	fmt.Printf("Indices:   %d\n", s.Indices)
	fmt.Printf("Triangles: %d\n", s.Triangles)
	fmt.Printf("Layout:    position%s%s (%d bytes/vertex)\n",
		optional(s.HasUV, " uv"), optional(s.HasNormals, " normal"), model.VertexStride)
	fmt.Printf("Bounds:    %v .. %v\n", s.BoundsMin, s.BoundsMax)
	fmt.Println()
	fmt.Println("Groups:")
	fmt.Printf("  %-24s %-20s %10s %10s\n", "NAME", "MATERIAL", "OFFSET", "COUNT")
	for _, g := range s.Groups {
		mat := g.Material
		if mat == "" {
			mat = "-"
		}
		fmt.Printf("  %-24s %-20s %10d %10d\n", g.Name, mat, g.IndexOffset, g.IndexCount)
	}
}

func optional(ok bool, s string) string {
	if ok {
		return s
	}
	return ""
}

func cmdDump(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	doc := fs.Bool("doc", false, "Dump the parsed document instead of the converted model")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool dump [-doc] <file.obj>")
		os.Exit(1)
	}

	im, mgr := newImporter(cfg)
	defer mgr.Close()

	dumper := spew.NewDefaultConfig()
	dumper.DisableCapacities = true
	dumper.DisablePointerAddresses = true

	path := inputPath(fs.Arg(0))
	if *doc {
		d, materials, err := im.ImportDocument(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dumper.Fdump(os.Stdout, d)
		for _, name := range sortedNames(materials) {
			dumper.Fdump(os.Stdout, describeMaterial(materials[name]))
		}
		return
	}

	m, err := im.Import(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dumper.Fdump(os.Stdout, m)
}

func sortedNames(materials map[string]*formats.Material) []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// describeMaterial flattens a material's parameters into printable strings.
func describeMaterial(m *formats.Material) map[string]string {
	out := map[string]string{"name": m.Name, "type": m.Type.String()}
	for _, kind := range m.Kinds() {
		if tex, err := m.Texture(kind); err == nil {
			out[kind.String()] = tex.Path
			continue
		}
		if f, err := m.Float(kind); err == nil {
			out[kind.String()] = fmt.Sprint(f)
			continue
		}
		if v, err := m.Vec3(kind); err == nil {
			out[kind.String()] = fmt.Sprint(v)
		}
	}
	return out
}

func cmdConvert(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool convert <file.obj> [output.glb|output.gltf]")
		os.Exit(1)
	}

	binary := cfg.Export.Binary
	var out string
	if len(args) > 1 {
		out = args[1]
		binary = !strings.EqualFold(filepath.Ext(out), ".gltf")
	} else {
		ext := ".glb"
		if !binary {
			ext = ".gltf"
		}
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		out = filepath.Join(cfg.Export.OutputDir, base+ext)
	}

	im, mgr := newImporter(cfg)
	defer mgr.Close()

	m, err := im.Import(inputPath(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := export.Save(out, m, binary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d vertices, %d triangles)\n", out, len(m.Vertices), m.TriangleCount())
}

func cmdServe(cfg *config.Config, args []string) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: objtool [-addr host:port] serve")
		os.Exit(1)
	}

	im, mgr := newImporter(cfg)
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Named("server")
	log.Info("serving models", zap.Strings("roots", mgr.Roots()))

	if err := server.Run(ctx, cfg.Server.Addr, server.New(im, log), log); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool list <pack.zip> [pattern]")
		os.Exit(1)
	}

	pack, err := archive.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer pack.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range pack.List() {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, filepath.Base(f))
			if !matched && !strings.Contains(f, pattern) {
				continue
			}
		}
		entry, _ := pack.Stat(f)
		fmt.Printf("%10d  %s\n", entry.UncompressedSize, f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
}

func cmdExtract(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: objtool extract <pack.zip> <path|pattern> [output_dir]")
		os.Exit(1)
	}

	outputDir := "."
	if len(args) > 2 {
		outputDir = args[2]
	}

	pack, err := archive.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer pack.Close()

	pattern := strings.ToLower(args[1])
	extracted := 0
	for _, f := range pack.List() {
		if f != pattern {
			matched, _ := filepath.Match(pattern, filepath.Base(f))
			if !matched {
				continue
			}
		}

		if !filepath.IsLocal(filepath.FromSlash(f)) {
			fmt.Fprintf(os.Stderr, "Skipping unsafe path: %s\n", f)
			continue
		}

		data, err := pack.Read(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}

		// Preserve directory structure
		outputPath := filepath.Join(outputDir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			continue
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}

		fmt.Printf("Extracted: %s\n", outputPath)
		extracted++
	}

	if extracted == 0 {
		fmt.Fprintf(os.Stderr, "File not found: %s\n", args[1])
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
}

func cmdInit(cfg *config.Config, args []string) {
	var err error
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
