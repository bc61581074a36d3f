package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fxsml/slimasync"
)

// Parse decodes a YAML document with the keys pendingSuffix, successSuffix,
// errorSuffix and flatten. Absent keys keep their DefaultConfig values.
// Values of the wrong type are not rejected here; they surface as
// slimasync.ErrOptions when the config is first used for a convention-mode
// action.
func Parse(data []byte) (slimasync.Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return slimasync.Config{}, fmt.Errorf("config: parse: %w", err)
	}
	def := slimasync.DefaultConfig()
	m := map[string]any{
		"pendingSuffix": def.PendingSuffix,
		"successSuffix": def.SuccessSuffix,
		"errorSuffix":   def.ErrorSuffix,
		"flatten":       def.Flatten,
	}
	for k, v := range raw {
		m[k] = v
	}
	return slimasync.ConfigFromMap(m), nil
}

// ReadFile reads and parses the YAML file at path.
func ReadFile(path string) (slimasync.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return slimasync.Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Load builds a Config from DefaultConfig, the YAML file at path (skipped
// when path is empty) and environment variables for stage, in that order.
func Load(path, stage string) (slimasync.Config, error) {
	return Loader{}.Load(path, stage)
}

// Load is like the package-level Load but uses l for the environment.
func (l Loader) Load(path, stage string) (slimasync.Config, error) {
	cfg := slimasync.DefaultConfig()
	if path != "" {
		fileCfg, err := ReadFile(path)
		if err != nil {
			return slimasync.Config{}, err
		}
		cfg = fileCfg
	}
	if err := l.Apply(stage, &cfg); err != nil {
		return slimasync.Config{}, err
	}
	return cfg, nil
}
