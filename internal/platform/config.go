package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the workspace configuration filename.
const ConfigFile = "silt.yaml"

// DefaultDataDir is where local snapshots live, relative to the root.
const DefaultDataDir = ".silt"

// Config is the contents of silt.yaml.
type Config struct {
	// Owner is the uid all documents are written and queried under.
	Owner string `yaml:"owner"`

	// Remote is the directory acting as the remote service. Relative paths
	// resolve against the workspace root.
	Remote string `yaml:"remote"`

	// DataDir holds local snapshots. Defaults to DefaultDataDir.
	DataDir string `yaml:"data_dir"`
}

// LoadConfig reads silt.yaml from root. A missing file yields a Config with
// defaults only.
func LoadConfig(root string) (Config, error) {
	cfg := Config{DataDir: DefaultDataDir}

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	return cfg, nil
}

// Resolve joins path against root unless it is already absolute.
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
