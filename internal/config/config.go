// Package config handles importer configuration loading and management.
package config

// Config holds all objkit settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig controls how OBJ/MTL assets are located and parsed.
type ImportConfig struct {
	SearchPaths     []string `yaml:"search_paths"`     // Root directories for relative asset paths
	Archives        []string `yaml:"archives"`         // Model pack archives searched after the roots
	Encoding        string   `yaml:"encoding"`         // Text encoding of .obj/.mtl files
	ResolveTextures bool     `yaml:"resolve_textures"` // Decode texture images during import
	IgnoreCommands  []string `yaml:"ignore_commands"`  // Commands skipped instead of rejected
}

// ExportConfig controls glTF output.
type ExportConfig struct {
	Binary    bool   `yaml:"binary"`
	OutputDir string `yaml:"output_dir"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			SearchPaths:     []string{"."},
			Encoding:        "utf-8",
			ResolveTextures: false,
		},
		Export: ExportConfig{
			Binary:    true,
			OutputDir: ".",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Format:  "console",
		},
	}
}
