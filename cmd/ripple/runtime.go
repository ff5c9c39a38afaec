package main

import (
	"log/slog"

	"github.com/vango-dev/ripple/internal/config"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/telemetry"
)

// newRuntime builds a runtime from the loaded config. Tracing is attached
// when enabled; extra instrumentation is fanned out alongside it.
func newRuntime(cfg *config.Config, logger *slog.Logger, extra ...reactive.Instrumentation) *reactive.Runtime {
	instrs := extra
	if cfg.Tracing.Enabled {
		instrs = append(instrs, telemetry.OpenTelemetry(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithComputedEvents(cfg.Tracing.ComputedEvents),
		))
	}

	var instr reactive.Instrumentation
	switch len(instrs) {
	case 0:
	case 1:
		instr = instrs[0]
	default:
		instr = reactive.NewMultiInstrumentation(instrs...)
	}
	return reactive.NewRuntime(cfg.Runtime.Reactive(logger, instr))
}
