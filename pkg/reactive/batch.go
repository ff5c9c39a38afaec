package reactive

// StartBatch opens a transaction on the default runtime.
func StartBatch() {
	Default().StartBatch()
}

// EndBatch closes a transaction on the default runtime.
func EndBatch() {
	Default().EndBatch()
}

// Batch runs fn as one transaction on the default runtime.
func Batch(fn func()) {
	Default().Batch(fn)
}

// Transaction runs fn as a named transaction on the default runtime.
func Transaction(name string, fn func()) {
	Default().Transaction(name, fn)
}

// Untracked runs fn on the default runtime without recording dependencies.
func Untracked(fn func()) {
	Default().Untracked(fn)
}

// StartBatch opens a (possibly nested) transaction. It only increments the
// depth counter; every call must be paired with EndBatch.
func (rt *Runtime) StartBatch() {
	rt.inBatch++
}

// EndBatch closes a transaction. When the outermost transaction closes it
// runs pending reactions, then tears down observables that ended up with no
// observers: become-unobserved hooks fire and computed values are suspended.
func (rt *Runtime) EndBatch() {
	if rt.inBatch <= 0 {
		die("EndBatch", "", ErrUnbalancedBatch)
	}
	rt.inBatch--
	if rt.inBatch != 0 {
		return
	}

	if rt.isFlushing || rt.isRunningReactions {
		// A transaction closing inside a flush, such as a reaction's own.
		// The outermost EndBatch reports the totals.
		rt.runReactions()
		rt.drainUnobservations()
		return
	}

	rt.isFlushing = true
	func() {
		defer func() { rt.isFlushing = false }()
		rt.runReactions()
		rt.drainUnobservations()
	}()
	rt.reportFlush()
}

// drainUnobservations tears down observables that have no observers left.
// Suspending a computed can orphan its own dependencies, which are queued
// again and handled by the next round.
func (rt *Runtime) drainUnobservations() {
	for len(rt.pendingUnobservations) > 0 {
		list := rt.pendingUnobservations
		rt.pendingUnobservations = nil
		for _, o := range list {
			o.isPendingUnobservation = false
			if o.observers.len() != 0 {
				continue
			}
			if o.isBeingObserved {
				o.isBeingObserved = false
				o.onBecomeUnobserved()
				rt.unobservedTeardown++
			}
			if o.memo != nil {
				o.memo.suspend()
			}
		}
	}
}

// reportFlush sends the counters accumulated since the last flush.
func (rt *Runtime) reportFlush() {
	if rt.reactionRuns > 0 || rt.unobservedTeardown > 0 {
		rt.instr().BatchFlushed(rt.reactionRuns, rt.unobservedTeardown)
	}
	rt.reactionRuns = 0
	rt.unobservedTeardown = 0
}

// Batch groups all mutations made by fn into one transaction. Reactions run
// once, after the outermost batch completes, and see only the settled state.
//
// Example:
//
//	rt.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// Reactions run once with both changes
func (rt *Runtime) Batch(fn func()) {
	rt.StartBatch()
	defer rt.EndBatch()
	fn()
}

// Transaction runs fn as a batch and logs its boundaries at debug level.
func (rt *Runtime) Transaction(name string, fn func()) {
	rt.logger.Debug("transaction start", "tx", name, "depth", rt.inBatch)
	defer rt.logger.Debug("transaction end", "tx", name)
	rt.Batch(fn)
}

// Untracked runs fn without tracking reads as dependencies.
//
// Note: for a single value read, Value.Peek is clearer in intent.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.untrackedStart()
	defer rt.untrackedEnd(prev)
	fn()
}

// UntrackedResult runs fn on rt without tracking and returns its result.
func UntrackedResult[T any](rt *Runtime, fn func() T) T {
	if rt == nil {
		rt = Default()
	}
	prev := rt.untrackedStart()
	defer rt.untrackedEnd(prev)
	return fn()
}
