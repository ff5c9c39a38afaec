package reactive

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Runtime is the run context shared by every observable and derivation
// created in it: which derivation is being tracked, how deep the current
// transaction is, what is waiting for end-of-transaction teardown, and the
// policy flags.
//
// A Runtime is confined to one logical thread. Reentrancy through nested
// synchronous calls is supported; parallel access is not, and the kernel
// takes no locks.
type Runtime struct {
	id string

	// trackingDerivation is the derivation whose body is currently running.
	// nil means reads don't create dependency edges.
	trackingDerivation Derivation

	// inBatch is the reentrant transaction depth.
	inBatch int

	// pendingUnobservations are observables that lost their last observer
	// during the current transaction. At most one entry per observable.
	pendingUnobservations []*observableBase

	// pendingReactions are reactions scheduled to run at the end of the
	// outermost transaction.
	pendingReactions   []*Reaction
	isRunningReactions bool

	// isFlushing is set while the outermost EndBatch runs reactions and
	// drains unobservations. The counters below accumulate across it and
	// are reported once.
	isFlushing         bool
	reactionRuns       int
	unobservedTeardown int

	runID uint64
	guid  uint64

	allowStateReads   bool
	allowStateChanges bool

	// computationDepth counts computed values currently evaluating their
	// body, so state changes inside them can be reported.
	computationDepth int

	reactionErrorHandlers []*func(error, *Reaction)

	// currentScope collects reactions created while it is active.
	currentScope *Scope

	config Config
	logger *slog.Logger
}

// NewRuntime creates a runtime with the given configuration, or with
// DefaultConfig when none is given. Unset MaxReactionIterations,
// ReactionScheduler, Logger and Instrumentation are filled in; every other
// field is taken as given, so a zero Config runs with EnforceNever. Start
// from DefaultConfig to keep EnforceObserved.
func NewRuntime(cfg ...Config) *Runtime {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	rt := &Runtime{
		id:              uuid.NewString(),
		allowStateReads: true,
	}
	rt.Configure(c)
	return rt
}

var defaultRuntime atomic.Pointer[Runtime]

func init() {
	defaultRuntime.Store(NewRuntime())
}

// Default returns the process-wide runtime used by the package-level
// functions and by constructors called without In.
func Default() *Runtime {
	return defaultRuntime.Load()
}

// SetDefault replaces the process-wide runtime and returns the previous one.
// Observables created before the swap stay bound to the old runtime.
func SetDefault(rt *Runtime) *Runtime {
	if rt == nil {
		rt = NewRuntime()
	}
	return defaultRuntime.Swap(rt)
}

// Configure replaces the runtime configuration.
// It must not be called while a transaction or tracking run is active.
func (rt *Runtime) Configure(cfg Config) {
	rt.config = cfg.withDefaults()
	rt.allowStateChanges = rt.config.EnforceActions == EnforceNever
	rt.allowStateReads = !rt.config.ObservableRequiresReaction
	rt.logger = rt.config.Logger.With("runtime_id", rt.id)
}

// Config returns a copy of the active configuration.
func (rt *Runtime) Config() Config {
	return rt.config
}

// ID returns the runtime instance id.
func (rt *Runtime) ID() string {
	return rt.id
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// TrackingDerivation returns the derivation currently being tracked, or nil.
func (rt *Runtime) TrackingDerivation() Derivation {
	return rt.trackingDerivation
}

// IsTracking reports whether reads currently create dependency edges.
func (rt *Runtime) IsTracking() bool {
	return rt.trackingDerivation != nil
}

// InBatch returns the current transaction depth.
func (rt *Runtime) InBatch() int {
	return rt.inBatch
}

// OnReactionError registers a handler for errors raised by reactions that
// have no handler of their own. It returns a function removing the handler.
func (rt *Runtime) OnReactionError(fn func(error, *Reaction)) func() {
	h := &fn
	rt.reactionErrorHandlers = append(rt.reactionErrorHandlers, h)
	return func() {
		for i, existing := range rt.reactionErrorHandlers {
			if existing == h {
				rt.reactionErrorHandlers = append(rt.reactionErrorHandlers[:i], rt.reactionErrorHandlers[i+1:]...)
				return
			}
		}
	}
}

func (rt *Runtime) instr() Instrumentation {
	return rt.config.Instrumentation
}

// untrackedStart suspends tracking and returns the previous derivation.
func (rt *Runtime) untrackedStart() Derivation {
	prev := rt.trackingDerivation
	rt.trackingDerivation = nil
	return prev
}

func (rt *Runtime) untrackedEnd(prev Derivation) {
	rt.trackingDerivation = prev
}

func (rt *Runtime) allowStateReadsStart(allow bool) bool {
	prev := rt.allowStateReads
	rt.allowStateReads = allow
	return prev
}

func (rt *Runtime) allowStateReadsEnd(prev bool) {
	rt.allowStateReads = prev
}

func (rt *Runtime) allowStateChangesStart(allow bool) bool {
	prev := rt.allowStateChanges
	rt.allowStateChanges = allow
	return prev
}

func (rt *Runtime) allowStateChangesEnd(prev bool) {
	rt.allowStateChanges = prev
}
