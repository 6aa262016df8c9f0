package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tkingovr/logfilter/internal/filter"
)

// File represents the top-level YAML configuration.
type File struct {
	Version  int                      `yaml:"version" json:"version"`
	Settings Settings                 `yaml:"settings" json:"settings"`
	Chains   map[string][]filter.Spec `yaml:"chains" json:"chains"`
}

// Settings contains global settings.
type Settings struct {
	LogDir          string `yaml:"log_dir,omitempty" json:"log_dir,omitempty"`
	ListenAddr      string `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	RecordDecisions bool   `yaml:"record_decisions,omitempty" json:"record_decisions,omitempty"`
}

// ChainNames returns the configured chain names in sorted order.
func (f *File) ChainNames() []string {
	names := make([]string, 0, len(f.Chains))
	for name := range f.Chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads and validates a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses and validates YAML configuration data.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func validate(f *File) error {
	if f.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", f.Version)
	}

	for _, name := range f.ChainNames() {
		if name == "" {
			return errors.New("chain name is required")
		}
		for i, spec := range f.Chains[name] {
			if spec.Kind == "" {
				return fmt.Errorf("chain %q filter %d: kind is required", name, i)
			}
			if !filter.Known(spec.Kind) {
				return fmt.Errorf("chain %q filter %d: unknown kind %q", name, i, spec.Kind)
			}
		}
	}

	return nil
}
