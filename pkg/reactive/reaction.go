package reactive

import "slices"

// Reaction is a side-effecting derivation. When one of its dependencies
// changes it is scheduled, and it runs after the outermost transaction
// closes, observing only settled state.
//
// onInvalidate decides what a run does; it normally calls Track with the
// body whose reads should become the new dependencies.
type Reaction struct {
	der derivationBase

	onInvalidate func(*Reaction)
	onError      func(error, *Reaction)
	onDispose    []func()

	isDisposed     bool
	isScheduled    bool
	isTrackPending bool
	isRunning      bool

	// lastErr is the error captured by the most recent Track call.
	lastErr error
}

// NewReaction creates a reaction that is not yet scheduled. Call Schedule
// to run it for the first time.
func NewReaction(onInvalidate func(r *Reaction), opts ...Option) *Reaction {
	o := resolveOptions(opts)
	return newReaction(o, o.rt.debugName("Reaction", o.name), onInvalidate)
}

func newReaction(o options, name string, onInvalidate func(*Reaction)) *Reaction {
	r := &Reaction{
		der:          newDerivationBase(o.rt, name),
		onInvalidate: onInvalidate,
		onError:      o.onError,
	}
	r.der.requiresObservable = o.requiresObservable
	if s := o.rt.currentScope; s != nil {
		s.Add(r)
	}
	return r
}

// OnBecomeStale implements Derivation.
func (r *Reaction) OnBecomeStale() {
	r.Schedule()
}

// Schedule queues the reaction (at most once) and flushes the queue unless
// a transaction is open.
func (r *Reaction) Schedule() {
	if r.isScheduled {
		return
	}
	r.isScheduled = true
	rt := r.der.rt
	rt.pendingReactions = append(rt.pendingReactions, r)
	rt.runReactions()
}

// IsScheduled reports whether the reaction is waiting to run.
func (r *Reaction) IsScheduled() bool {
	return r.isScheduled
}

// IsDisposed reports whether Dispose was called.
func (r *Reaction) IsDisposed() bool {
	return r.isDisposed
}

// Name returns the debug name.
func (r *Reaction) Name() string {
	return r.der.name
}

// String implements fmt.Stringer.
func (r *Reaction) String() string {
	return r.der.name
}

// Runtime returns the runtime the reaction is bound to.
func (r *Reaction) Runtime() *Runtime {
	return r.der.rt
}

func (r *Reaction) derivation() *derivationBase {
	return &r.der
}

// Track runs fn as the reaction body and makes the observables it reads the
// reaction's dependencies. A panic in fn is reported through the error
// handlers once the dependencies are bound.
func (r *Reaction) Track(fn func()) {
	if r.isDisposed {
		return
	}
	rt := r.der.rt
	rt.StartBatch()
	defer rt.EndBatch()

	r.isRunning = true
	res := func() Result[struct{}] {
		defer func() {
			r.isRunning = false
			r.isTrackPending = false
		}()
		return TrackDerivedFunction(r, func() struct{} {
			fn()
			return struct{}{}
		})
	}()

	if r.isDisposed {
		// Disposed from inside its own body.
		ClearObserving(r)
	}
	if res.Err != nil {
		r.lastErr = res.Err
		r.reportError(res.Err)
	}
}

// Dispose stops the reaction and detaches it from all dependencies.
// Disposing from inside the reaction's own body takes effect when the body
// returns.
func (r *Reaction) Dispose() {
	if r.isDisposed {
		return
	}
	r.isDisposed = true
	rt := r.der.rt
	if !r.isRunning {
		rt.StartBatch()
		ClearObserving(r)
		rt.EndBatch()
	}
	for _, fn := range r.onDispose {
		fn()
	}
	r.onDispose = nil
}

// OnDispose registers fn to run when the reaction is disposed.
func (r *Reaction) OnDispose(fn func()) {
	if r.isDisposed {
		fn()
		return
	}
	r.onDispose = append(r.onDispose, fn)
}

func (r *Reaction) runReaction() {
	if r.isDisposed {
		return
	}
	rt := r.der.rt
	rt.StartBatch()
	defer rt.EndBatch()

	r.isScheduled = false
	if !ShouldCompute(r) {
		return
	}
	r.isTrackPending = true
	r.lastErr = nil
	rt.reactionRuns++

	end := rt.instr().StartReaction(r.der.name)
	if rt.config.DisableErrorBoundaries {
		r.onInvalidate(r)
		end(r.lastErr)
		return
	}
	_, err := runCaught(func() struct{} {
		r.onInvalidate(r)
		return struct{}{}
	})
	if err != nil {
		end(err)
		r.reportError(err)
		return
	}
	end(r.lastErr)
}

func (r *Reaction) reportError(err error) {
	if r.onError != nil {
		r.onError(err, r)
		return
	}
	rt := r.der.rt
	if rt.config.DisableErrorBoundaries {
		panic(err)
	}
	rt.logger.Error("uncaught error in reaction", "reaction", r.der.name, "error", err)
	for _, h := range slices.Clone(rt.reactionErrorHandlers) {
		(*h)(err, r)
	}
}

// runReactions flushes the pending queue unless a transaction is open or a
// flush is already in progress.
func (rt *Runtime) runReactions() {
	if rt.inBatch > 0 || rt.isRunningReactions {
		return
	}
	rt.config.ReactionScheduler(rt.runReactionsHelper)
}

func (rt *Runtime) runReactionsHelper() {
	if rt.isRunningReactions {
		return
	}
	rt.isRunningReactions = true
	defer func() { rt.isRunningReactions = false }()

	iterations := 0
	for len(rt.pendingReactions) > 0 {
		iterations++
		if iterations > rt.config.MaxReactionIterations {
			rt.logger.Error("reaction loop aborted",
				"error", ErrReactionLoop,
				"iterations", iterations,
				"reaction", rt.pendingReactions[0].der.name)
			for _, r := range rt.pendingReactions {
				r.isScheduled = false
			}
			rt.pendingReactions = nil
			break
		}
		remaining := rt.pendingReactions
		rt.pendingReactions = nil
		for _, r := range remaining {
			r.runReaction()
		}
	}
	if !rt.isFlushing {
		// Deferred by the scheduler: no EndBatch is waiting to report.
		rt.reportFlush()
	}
}
