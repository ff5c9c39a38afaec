package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/reactive"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ripple.toml"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "ripple"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "ripple"
)

// Config represents the complete ripple.toml configuration.
type Config struct {
	// Runtime holds the reactive runtime policy.
	Runtime RuntimeConfig `toml:"runtime"`

	// Log configures the slog logger.
	Log LogConfig `toml:"log"`

	// Metrics configures Prometheus instrumentation.
	Metrics MetricsConfig `toml:"metrics"`

	// Tracing configures OpenTelemetry instrumentation.
	Tracing TracingConfig `toml:"tracing"`

	// Bench holds the default graph shape of 'ripple bench'.
	Bench BenchConfig `toml:"bench"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig mirrors reactive.Config.
type RuntimeConfig struct {
	DevMode                    bool   `toml:"dev_mode"`
	EnforceActions             string `toml:"enforce_actions"`
	ComputedRequiresReaction   bool   `toml:"computed_requires_reaction"`
	ReactionRequiresObservable bool   `toml:"reaction_requires_observable"`
	ObservableRequiresReaction bool   `toml:"observable_requires_reaction"`
	DisableErrorBoundaries     bool   `toml:"disable_error_boundaries"`
	MaxReactionIterations      int    `toml:"max_reaction_iterations"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// MetricsConfig configures Prometheus.
type MetricsConfig struct {
	Namespace string `toml:"namespace"`

	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string `toml:"addr"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	Enabled        bool   `toml:"enabled"`
	TracerName     string `toml:"tracer_name"`
	ComputedEvents bool   `toml:"computed_events"`
}

// BenchConfig describes the benchmark graph.
type BenchConfig struct {
	// Atoms is the number of source values.
	Atoms int `toml:"atoms"`

	// Depth is the number of computed layers above the sources.
	Depth int `toml:"depth"`

	// Mutations is the total number of writes.
	Mutations int `toml:"mutations"`

	// Batch is the number of writes per transaction.
	Batch int `toml:"batch"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			EnforceActions:        reactive.EnforceObserved.String(),
			MaxReactionIterations: reactive.DefaultMaxReactionIterations,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Bench: BenchConfig{
			Atoms:     100,
			Depth:     4,
			Mutations: 10000,
			Batch:     10,
		},
	}
}

// Load reads ripple.toml from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates a configuration file. Keys missing from the
// file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").WithField(path)
		}
		return nil, errors.New("E102").WithField(path).Wrap(err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		var re *errors.RippleError
		if stderrors.As(err, &re) && re.Field == "" {
			re.Field = path
		}
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults and validates the result.
func Parse(text string) (*Config, error) {
	cfg := New()
	meta, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.New("E102").WithDetail(err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New("E104").WithField(strings.Join(keys, ", "))
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// normalize trims and lower-cases the enumerated string values.
func (c *Config) normalize() {
	c.Runtime.EnforceActions = strings.ToLower(strings.TrimSpace(c.Runtime.EnforceActions))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Metrics.Addr = strings.TrimSpace(c.Metrics.Addr)
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, ok := reactive.ParseEnforceActions(c.Runtime.EnforceActions); !ok {
		return invalid("runtime.enforce_actions",
			fmt.Sprintf("%q is not one of never, observed, always", c.Runtime.EnforceActions))
	}
	if c.Runtime.MaxReactionIterations < 1 {
		return invalid("runtime.max_reaction_iterations", "must be at least 1")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level", err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", fmt.Sprintf("%q is not one of text, json", c.Log.Format))
	}
	if c.Bench.Atoms < 1 {
		return invalid("bench.atoms", "must be at least 1")
	}
	if c.Bench.Depth < 0 {
		return invalid("bench.depth", "must not be negative")
	}
	if c.Bench.Mutations < 0 {
		return invalid("bench.mutations", "must not be negative")
	}
	if c.Bench.Batch < 1 {
		return invalid("bench.batch", "must be at least 1")
	}
	return nil
}

func invalid(field, detail string) error {
	return errors.New("E103").WithField(field).WithDetail(detail)
}

// Reactive converts the runtime section into a reactive.Config.
// A nil instrumentation leaves the runtime default in place.
func (r RuntimeConfig) Reactive(logger *slog.Logger, instr reactive.Instrumentation) reactive.Config {
	enforce, _ := reactive.ParseEnforceActions(r.EnforceActions)
	return reactive.Config{
		DevMode:                    r.DevMode,
		EnforceActions:             enforce,
		ComputedRequiresReaction:   r.ComputedRequiresReaction,
		ReactionRequiresObservable: r.ReactionRequiresObservable,
		ObservableRequiresReaction: r.ObservableRequiresReaction,
		DisableErrorBoundaries:     r.DisableErrorBoundaries,
		MaxReactionIterations:      r.MaxReactionIterations,
		Logger:                     logger,
		Instrumentation:            instr,
	}
}

// NewLogger builds the slog logger described by the section.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}
