// Package reactive provides a fine-grained reactive dependency-tracking
// engine.
//
// The engine discovers at runtime which observables a computation reads and
// re-runs, or lazily invalidates, that computation when any of them change.
//
// # Core Types
//
// Value[T] is a reactive cell:
//
//	count := reactive.NewValue(0)
//	n := count.Get()  // Read (records a dependency for the tracked derivation)
//	count.Set(5)      // Write (invalidates dependents)
//
// Computed[T] is a cached derivation:
//
//	doubled := reactive.NewComputed(func() int { return count.Get() * 2 })
//	v := doubled.Get() // Re-evaluates only if a dependency changed
//
// Autorun, Effect, ReactTo and When create reactions, which run side
// effects when their dependencies change:
//
//	r := reactive.Autorun(func(*reactive.Reaction) {
//	    fmt.Println("Count is:", count.Get())
//	})
//	defer r.Dispose()
//
// # Kernel
//
// Collaborators that build their own observables (collections, external
// resources) use the kernel directly: embed an Atom and call ReportObserved
// on reads and ReportChanged after writes. Derivations are tracked with
// TrackDerivedFunction, which diffs the observables read during one run
// against the previous run and rewires the edges. Staleness propagates
// lazily through four states (NotTracking, UpToDate, PossiblyStale, Stale);
// ShouldCompute resolves PossiblyStale by refreshing computed dependencies
// in first-read order.
//
// # Batching
//
// Mutations inside a batch are atomic from observers' point of view:
//
//	reactive.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // Reactions run once, after the outermost batch
//
// Observables that lose their last observer are torn down at the end of
// the outermost batch, not immediately, so losing and regaining an observer
// within one batch costs nothing.
//
// # Threading
//
// A Runtime is confined to one logical thread. Nested synchronous calls are
// fine; parallel access to the same runtime is not, and no locks are taken.
// Package-level functions use Default(); pass In(rt) to bind nodes to an
// explicit runtime.
package reactive
