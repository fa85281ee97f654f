// Package config loads the optional reconcile.yaml that configures render
// roots.
package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/reconcile/pkg/core"
	"github.com/go-drift/reconcile/pkg/errors"
	"github.com/go-drift/reconcile/pkg/logging"
	"github.com/go-drift/reconcile/pkg/metrics"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "reconcile.yaml"

// DefaultVersion is the schema version assumed when the file omits one.
const DefaultVersion = "v1.0.0"

// Config represents the optional reconcile.yaml configuration.
type Config struct {
	Version string        `yaml:"version,omitempty"`
	Root    RootConfig    `yaml:"root"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// RootConfig contains render root settings.
type RootConfig struct {
	Name         string `yaml:"name,omitempty"`
	ReplaceState string `yaml:"replace_state,omitempty"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Version          string
	RootName         string
	ReplacePolicy    core.ReplacePolicy
	LogLevel         slog.Level
	Verbose          bool
	MetricsEnabled   bool
	MetricsNamespace string
}

// LoadOptional reads reconcile.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, configError("config.LoadOptional", fmt.Errorf("failed to read %s: %w", FileName, err))
	}
	return Parse(data)
}

// Parse decodes a reconcile.yaml document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError("config.Parse", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	return &cfg, nil
}

// Resolve loads reconcile.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve fills defaults and validates the configuration.
func (c *Config) Resolve() (*Resolved, error) {
	version := strings.TrimSpace(c.Version)
	if version == "" {
		version = DefaultVersion
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return nil, configError("config.Resolve", fmt.Errorf("invalid version %q", c.Version))
	}
	if semver.Major(version) != semver.Major(DefaultVersion) {
		return nil, configError("config.Resolve", fmt.Errorf("unsupported version %s, want %s.x", version, semver.Major(DefaultVersion)))
	}

	name := strings.TrimSpace(c.Root.Name)
	if name == "" {
		name = core.DefaultRootName
	}

	policy, err := parseReplacePolicy(c.Root.ReplaceState)
	if err != nil {
		return nil, configError("config.Resolve", err)
	}

	level, err := logging.ParseLevel(strings.TrimSpace(c.Logging.Level))
	if err != nil {
		return nil, configError("config.Resolve", fmt.Errorf("invalid logging level %q: %w", c.Logging.Level, err))
	}

	namespace := strings.TrimSpace(c.Metrics.Namespace)
	if namespace == "" {
		namespace = metrics.DefaultNamespace
	}

	return &Resolved{
		Version:          semver.Canonical(version),
		RootName:         name,
		ReplacePolicy:    policy,
		LogLevel:         level,
		Verbose:          c.Logging.Verbose,
		MetricsEnabled:   c.Metrics.Enabled,
		MetricsNamespace: namespace,
	}, nil
}

func parseReplacePolicy(s string) (core.ReplacePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return core.ReplaceLast, nil
	case "all":
		return core.ReplaceAll, nil
	default:
		return core.ReplaceLast, fmt.Errorf("invalid replace_state %q (want last or all)", s)
	}
}

func configError(op string, err error) error {
	return &errors.SchedulerError{Op: op, Kind: errors.KindConfig, Err: err}
}

// Logger builds the stderr logger described by the configuration.
func (r *Resolved) Logger() logging.Logger {
	return logging.NewDefaultLogger(r.LogLevel)
}

// Metrics builds the collectors described by the configuration, or nil
// when metrics are disabled. The caller registers them.
func (r *Resolved) Metrics() *metrics.Metrics {
	if !r.MetricsEnabled {
		return nil
	}
	return metrics.New(r.MetricsNamespace)
}

// ErrorHandler builds a LogHandler writing through logger.
func (r *Resolved) ErrorHandler(logger logging.Logger) errors.ErrorHandler {
	return &errors.LogHandler{Verbose: r.Verbose, Logger: logger}
}

// RootOptions turns the resolved values into options for core.NewRoot.
// logger and m may be nil.
func (r *Resolved) RootOptions(logger logging.Logger, m *metrics.Metrics) []core.Option {
	opts := []core.Option{
		core.WithName(r.RootName),
		core.WithReplacePolicy(r.ReplacePolicy),
	}
	if logger != nil {
		opts = append(opts, core.WithLogger(logger))
	}
	if m != nil {
		opts = append(opts, core.WithMetrics(m))
	}
	return opts
}
