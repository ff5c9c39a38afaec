package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/reactive"
)

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, "observed", cfg.Runtime.EnforceActions)
	assert.Equal(t, reactive.DefaultMaxReactionIterations, cfg.Runtime.MaxReactionIterations)
	assert.Equal(t, DefaultNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, DefaultTracerName, cfg.Tracing.TracerName)
	assert.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Path())
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E101"))

	configTOML := `
[runtime]
dev_mode = true
enforce_actions = "Always"
max_reaction_iterations = 25

[log]
level = "debug"
format = "json"

[metrics]
addr = " :9090 "

[bench]
atoms = 8
`
	path := filepath.Join(tmpDir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(configTOML), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.True(t, cfg.Runtime.DevMode)
	assert.Equal(t, "always", cfg.Runtime.EnforceActions)
	assert.Equal(t, 25, cfg.Runtime.MaxReactionIterations)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, DefaultNamespace, cfg.Metrics.Namespace, "missing keys keep defaults")
	assert.Equal(t, 8, cfg.Bench.Atoms)
	assert.Equal(t, 4, cfg.Bench.Depth)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		toml  string
		code  string
		field string
	}{
		{"syntax", "[runtime\n", "E102", ""},
		{"unknown key", "[runtime]\ndevmode = true\n", "E104", "runtime.devmode"},
		{"bad enforce", "[runtime]\nenforce_actions = \"sometimes\"\n", "E103", "runtime.enforce_actions"},
		{"zero iterations", "[runtime]\nmax_reaction_iterations = 0\n", "E103", "runtime.max_reaction_iterations"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "E103", "log.level"},
		{"bad format", "[log]\nformat = \"xml\"\n", "E103", "log.format"},
		{"bad batch", "[bench]\nbatch = 0\n", "E103", "bench.batch"},
		{"negative depth", "[bench]\ndepth = -1\n", "E103", "bench.depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
			if tt.field != "" {
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestLoadFileAddsPathToParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[runtime\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestRuntimeReactive(t *testing.T) {
	cfg, err := Parse(`
[runtime]
dev_mode = true
enforce_actions = "never"
computed_requires_reaction = true
disable_error_boundaries = true
max_reaction_iterations = 7
`)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := cfg.Log.NewLogger(&buf)
	rc := cfg.Runtime.Reactive(logger, nil)

	assert.True(t, rc.DevMode)
	assert.Equal(t, reactive.EnforceNever, rc.EnforceActions)
	assert.True(t, rc.ComputedRequiresReaction)
	assert.True(t, rc.DisableErrorBoundaries)
	assert.Equal(t, 7, rc.MaxReactionIterations)
	assert.Same(t, logger, rc.Logger)

	rt := reactive.NewRuntime(rc)
	assert.Equal(t, 7, rt.Config().MaxReactionIterations)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json output expected: %q", out)
	assert.Contains(t, out, `"k":"v"`)

	buf.Reset()
	LogConfig{Level: "", Format: "text"}.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseAcceptsSingleReactionIteration(t *testing.T) {
	cfg, err := Parse("[runtime]\nmax_reaction_iterations = 1\n")
	require.NoError(t, err)

	rt := reactive.NewRuntime(cfg.Runtime.Reactive(nil, nil))
	v := reactive.NewValue(0, reactive.In(rt))
	runs := 0
	reactive.Autorun(func(*reactive.Reaction) { v.Get(); runs++ }, reactive.In(rt))
	v.Set(1)
	assert.Equal(t, 2, runs)
}
