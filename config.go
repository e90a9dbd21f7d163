package canvasflow

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// NodeTypeConfig overrides or adds one node type in the registry.
type NodeTypeConfig struct {
	Tag string `yaml:"tag" json:"tag"`
	// Kind is "executable" or "data-source".
	Kind           string   `yaml:"kind" json:"kind"`
	RequiredInputs []string `yaml:"required_inputs" json:"required_inputs"`
}

// Config is the file-level configuration of an embedding application.
type Config struct {
	MaxParallel   int              `yaml:"max_parallel" json:"max_parallel"`
	LogLevel      string           `yaml:"log_level" json:"log_level"`
	LogFormat     string           `yaml:"log_format" json:"log_format"`
	QueueCapacity int              `yaml:"queue_capacity" json:"queue_capacity"`
	Workers       int              `yaml:"workers" json:"workers"`
	NodeTypes     []NodeTypeConfig `yaml:"node_types" json:"node_types"`
}

// DefaultConfig returns the settings used for every field a config file
// leaves empty.
func DefaultConfig() Config {
	return Config{
		MaxParallel:   DefaultMaxParallel,
		LogLevel:      "info",
		LogFormat:     "text",
		QueueCapacity: 1024,
		Workers:       2,
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON (.json) config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse YAML config %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse JSON config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported file format", path)
	}

	return cfg.withDefaults()
}

// ParseConfig parses YAML config data.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse YAML config: %w", err)
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if err := mergo.Merge(&c, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("apply config defaults: %w", err)
	}
	return c, c.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error
	if c.MaxParallel < 0 {
		errs = append(errs, fmt.Errorf("max_parallel must not be negative, got %d", c.MaxParallel))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	for i, nt := range c.NodeTypes {
		if nt.Tag == "" {
			errs = append(errs, fmt.Errorf("node_types[%d]: tag is required", i))
		}
	}
	return errors.Join(errs...)
}

// Registry builds the node type registry: the built-in types plus the
// configured overrides.
func (c Config) Registry() (*Registry, error) {
	reg := DefaultRegistry()
	for _, nt := range c.NodeTypes {
		err := reg.Register(NodeType{
			Tag:            nt.Tag,
			Capability:     Capability(nt.Kind),
			RequiredInputs: nt.RequiredInputs,
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Logger builds a logger writing to w with the configured level and format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	return NewLogger(c.LogLevel, c.LogFormat, w)
}

// EngineConfig returns the engine settings described by c.
func (c Config) EngineConfig(exec NodeExecutor, logger *slog.Logger) (EngineConfig, error) {
	reg, err := c.Registry()
	if err != nil {
		return EngineConfig{}, err
	}
	return EngineConfig{
		Executor:    exec,
		Registry:    reg,
		Logger:      logger,
		MaxParallel: c.MaxParallel,
	}, nil
}

// NewLogger returns a slog.Logger with a text or JSON handler.
// An empty level means info; an empty format means text.
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
