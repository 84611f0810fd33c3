package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objkit/pkg/encoding"
)

const (
	appName = "objkit"

	// envConfig names a config file when --config is not given.
	envConfig = "OBJKIT_CONFIG"
)

// Load builds the configuration from defaults, then the first config file
// found, then command-line flags, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if src := configSource(); src != "" {
		if err := loadFromFile(cfg, src); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", src)
		}
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configSource picks the file Load reads: --config, then $OBJKIT_CONFIG,
// then the standard locations.
func configSource() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	return findConfigFile()
}

func findConfigFile() string {
	for _, p := range []string{
		"./" + appName + ".yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// ConfigDir returns the per-user objkit config directory.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(home, ".config", appName)
}

// loadFromFile merges a YAML file over cfg. Keys absent from the file keep
// their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"console", "json"}
)

// Validate rejects settings the importer or logger cannot honour.
func (c *Config) Validate() error {
	if _, err := encoding.Lookup(c.Import.Encoding); err != nil {
		return errors.Wrap(err, "import.encoding")
	}
	if len(c.Import.SearchPaths) == 0 && len(c.Import.Archives) == 0 {
		return errors.New("import: no search_paths or archives configured")
	}
	if !oneOf(c.Logging.Level, logLevels) {
		return errors.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if !oneOf(c.Logging.Format, logFormats) {
		return errors.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr: empty address")
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
