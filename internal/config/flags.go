package config

import (
	"flag"
	"strings"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagRoots    = flag.String("root", "", "Comma-separated asset search paths")
	flagArchives = flag.String("archive", "", "Comma-separated model pack archives")
	flagEncoding = flag.String("encoding", "", "Text encoding of .obj/.mtl files")
	flagTextures = flag.Bool("textures", false, "Decode texture images during import")
	flagIgnore   = flag.String("ignore", "", "Comma-separated OBJ/MTL commands to skip")
	flagAddr     = flag.String("addr", "", "Preview server listen address")
	flagGLTF     = flag.Bool("gltf", false, "Write JSON glTF instead of binary GLB")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRoots != "" {
		cfg.Import.SearchPaths = splitList(*flagRoots)
	}
	if *flagArchives != "" {
		cfg.Import.Archives = splitList(*flagArchives)
	}
	if *flagEncoding != "" {
		cfg.Import.Encoding = *flagEncoding
	}
	if *flagTextures {
		cfg.Import.ResolveTextures = true
	}
	if *flagIgnore != "" {
		cfg.Import.IgnoreCommands = splitList(*flagIgnore)
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagGLTF {
		cfg.Export.Binary = false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
