package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProcessConfig replaces the default "ros2 run" invocation of one executable.
type ProcessConfig struct {
	Executable  string            `yaml:"executable" json:"executable"` // "package/executable"
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of executables.yaml.
type ConfigFile struct {
	Executables []ProcessConfig `yaml:"executables" json:"executables"`
}

// LoadExecutables reads a configuration file (YAML or JSON) and returns the
// overrides keyed by "package/executable". A missing file means no overrides.
func LoadExecutables(path string) (map[string]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read executables config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	out := make(map[string]ProcessConfig)
	for _, e := range cfg.Executables {
		if e.Executable == "" || e.Command == "" {
			continue
		}
		out[e.Executable] = e
	}
	return out, nil
}
