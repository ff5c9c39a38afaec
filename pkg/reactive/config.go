package reactive

import "log/slog"

// EnforceActions controls which state mutations must happen inside an action.
type EnforceActions int

const (
	// EnforceNever allows mutations anywhere.
	EnforceNever EnforceActions = iota

	// EnforceObserved warns when an observed cell is mutated outside an
	// action. Unobserved cells can be changed freely, which keeps
	// initialization code simple.
	EnforceObserved

	// EnforceAlways warns on every mutation outside an action.
	EnforceAlways
)

// String returns the configuration spelling of the mode.
func (e EnforceActions) String() string {
	switch e {
	case EnforceNever:
		return "never"
	case EnforceObserved:
		return "observed"
	case EnforceAlways:
		return "always"
	default:
		return "unknown"
	}
}

// ParseEnforceActions parses "never", "observed" or "always".
func ParseEnforceActions(s string) (EnforceActions, bool) {
	switch s {
	case "never", "false":
		return EnforceNever, true
	case "observed", "true", "":
		return EnforceObserved, true
	case "always":
		return EnforceAlways, true
	}
	return EnforceNever, false
}

// DefaultMaxReactionIterations bounds how many passes runReactions makes
// over the pending queue before it gives up.
const DefaultMaxReactionIterations = 100

// Config holds the runtime policy knobs.
//
// Policy violations are advisory: with DevMode on they are logged as
// warnings, with DevMode off the checks are skipped entirely.
type Config struct {
	// DevMode enables the usage-policy warnings below.
	// Default: false (production).
	DevMode bool

	// EnforceActions selects which mutations must run inside an action.
	// Default: EnforceObserved.
	EnforceActions EnforceActions

	// ComputedRequiresReaction warns when a computed value is read outside a
	// reactive context, where it cannot be cached.
	ComputedRequiresReaction bool

	// ReactionRequiresObservable warns when a derivation finishes a run
	// without reading any observable.
	ReactionRequiresObservable bool

	// ObservableRequiresReaction warns when an observable is read outside a
	// reactive context.
	ObservableRequiresReaction bool

	// DisableErrorBoundaries lets panics from tracked bodies propagate
	// instead of capturing them. Dependency binding is skipped for the
	// failed run, so the derivation may be left partially tracked.
	DisableErrorBoundaries bool

	// MaxReactionIterations is how many passes over the pending queue one
	// flush may make. A flush that needs more is aborted.
	// Default: DefaultMaxReactionIterations.
	MaxReactionIterations int

	// ReactionScheduler wraps each reaction flush. It must call run
	// synchronously or arrange for it to run later on the same logical
	// thread. Default: call run immediately.
	ReactionScheduler func(run func())

	// Logger receives policy warnings and reaction errors.
	// Default: slog.Default().
	Logger *slog.Logger

	// Instrumentation receives engine metrics. Default: NopInstrumentation.
	Instrumentation Instrumentation
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DevMode:               false,
		EnforceActions:        EnforceObserved,
		MaxReactionIterations: DefaultMaxReactionIterations,
	}
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.MaxReactionIterations <= 0 {
		c.MaxReactionIterations = DefaultMaxReactionIterations
	}
	if c.ReactionScheduler == nil {
		c.ReactionScheduler = func(run func()) { run() }
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Instrumentation == nil {
		c.Instrumentation = NopInstrumentation{}
	}
	return c
}
