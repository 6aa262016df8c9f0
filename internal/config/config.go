// Package config loads chain definitions and runtime settings from YAML or
// .properties files.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tkingovr/logfilter/internal/filter"
)

// Config is the runtime configuration for logfilter.
type Config struct {
	File            *File
	Path            string
	LogDir          string
	ListenAddr      string
	RecordDecisions bool
}

// Load reads a configuration file and produces a runtime Config. Files
// ending in .properties are read as Java-style properties, everything else
// as YAML.
func Load(path string) (*Config, error) {
	var (
		f   *File
		err error
	)
	if strings.EqualFold(filepath.Ext(path), propertiesExt) {
		f, err = LoadProperties(path)
	} else {
		f, err = LoadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return fromFile(f, path), nil
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return fromFile(f, ""), nil
}

func fromFile(f *File, path string) *Config {
	cfg := &Config{
		File:            f,
		Path:            path,
		RecordDecisions: f.Settings.RecordDecisions,
	}

	cfg.LogDir = f.Settings.LogDir
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir()
	}
	cfg.LogDir = expandHome(cfg.LogDir)

	cfg.ListenAddr = f.Settings.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	return cfg
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfig returns a config with defaults for when no config file is
// given. Its single empty "default" chain accepts every event.
func DefaultConfig() *Config {
	return &Config{
		File: &File{
			Version: 1,
			Chains:  map[string][]filter.Spec{DefaultChain: nil},
		},
		LogDir:     expandHome(DefaultLogDir()),
		ListenAddr: DefaultListenAddr,
	}
}

// BuildChains constructs every configured chain.
func BuildChains(cfg *Config, logger *slog.Logger) (map[string]*filter.Chain, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	chains := make(map[string]*filter.Chain, len(cfg.File.Chains))
	for _, name := range cfg.File.ChainNames() {
		c, err := filter.BuildChain(logger.With("chain", name), cfg.File.Chains[name])
		if err != nil {
			return nil, fmt.Errorf("chain %q: %w", name, err)
		}
		chains[name] = c
	}
	return chains, nil
}

// MarshalYAML serializes the configuration for display/export.
func (c *Config) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(c.File)
}
