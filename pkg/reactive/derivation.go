package reactive

import "slices"

// Derivation is a computation that depends on observables: a computed value
// or a reaction.
type Derivation interface {
	// Name returns the debug name.
	Name() string

	// OnBecomeStale is called when propagation moves the derivation out of
	// UpToDate. Computed values forward the signal to their own observers;
	// reactions schedule themselves.
	OnBecomeStale()

	derivation() *derivationBase
}

// newObservingSlack is the extra room reserved for new dependencies at the
// start of each tracking run.
const newObservingSlack = 100

// derivationBase is the bookkeeping shared by every derivation.
type derivationBase struct {
	rt   *Runtime
	name string

	// observing holds the dependencies of the last run, duplicate-free, in
	// first-read order.
	observing []Observable

	// newObserving collects reads during a tracking run. nil otherwise.
	newObserving []Observable

	state DerivationState

	// runID identifies the current tracking run, globally unique per runtime.
	runID uint64

	// unboundDepsCount is the number of entries written to newObserving in
	// the current run, duplicates included.
	unboundDepsCount int

	requiresObservable bool
}

func newDerivationBase(rt *Runtime, name string) derivationBase {
	return derivationBase{
		rt:    rt,
		name:  name,
		state: NotTracking,
	}
}

// DependencyState returns the current state of d.
func DependencyState(d Derivation) DerivationState {
	return d.derivation().state
}

// Dependencies returns a snapshot of the observables d read in its last run,
// in first-read order.
func Dependencies(d Derivation) []Observable {
	return slices.Clone(d.derivation().observing)
}

// ShouldCompute reports whether d must re-run before its result can be
// trusted. For a PossiblyStale derivation it refreshes computed dependencies
// in first-read order and stops at the first one whose change made d Stale;
// later dependencies may not even be read by the new run. When none changed,
// d is downgraded to UpToDate.
func ShouldCompute(d Derivation) bool {
	db := d.derivation()
	switch db.state {
	case UpToDate:
		return false
	case NotTracking, Stale:
		return true
	}

	rt := db.rt
	// Propagation can happen outside of an action or reactive context.
	prevReads := rt.allowStateReadsStart(true)
	// Computed dependencies are picked up again by the next tracking run.
	prevTracking := rt.untrackedStart()
	defer func() {
		rt.untrackedEnd(prevTracking)
		rt.allowStateReadsEnd(prevReads)
	}()

	obs := db.observing
	for i := 0; i < len(obs); i++ {
		m := obs[i].observable().memo
		if m == nil {
			continue
		}
		if err := m.refresh(); err != nil {
			if rt.config.DisableErrorBoundaries {
				panic(err)
			}
			// The error itself is not interesting here, but observers must hear about it.
			return true
		}
		// A changed computed has propagated Stale to d through
		// PropagateChangeConfirmed.
		if db.state == Stale {
			return true
		}
	}
	changeDependenciesStateTo0(db)
	return false
}

// TrackDerivedFunction runs fn on behalf of d, records every observable fn
// reads and rebinds d's dependency edges to exactly that set.
//
// A panic in fn is captured in Result.Err and the dependencies read before
// the panic are still bound. With Config.DisableErrorBoundaries the panic
// propagates instead and binding is skipped.
func TrackDerivedFunction[T any](d Derivation, fn func() T) Result[T] {
	db := d.derivation()
	rt := db.rt

	prevReads := rt.allowStateReadsStart(true)
	changeDependenciesStateTo0(db)
	db.newObserving = make([]Observable, len(db.observing)+newObservingSlack)
	db.unboundDepsCount = 0
	db.runID = rt.nextRunID()
	prevTracking := rt.trackingDerivation
	rt.trackingDerivation = d
	rt.inBatch++

	var res Result[T]
	if rt.config.DisableErrorBoundaries {
		completed := false
		defer func() {
			if !completed {
				rt.inBatch--
				rt.trackingDerivation = prevTracking
				db.newObserving = nil
				rt.allowStateReadsEnd(prevReads)
			}
		}()
		res.Value = fn()
		completed = true
	} else {
		res.Value, res.Err = runCaught(fn)
	}

	rt.inBatch--
	rt.trackingDerivation = prevTracking
	bindDependencies(d)

	rt.warnAboutDerivationWithoutDependencies(d)
	rt.allowStateReadsEnd(prevReads)
	return res
}

func runCaught[T any](fn func() T) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = asError(r)
		}
	}()
	return fn(), nil
}

// bindDependencies replaces observing with the deduplicated newObserving and
// updates observer sets with three linear passes over diffValue.
func bindDependencies(d Derivation) {
	db := d.derivation()
	prevObserving := db.observing
	observing := db.newObserving
	lowestNewObservingDerivationState := UpToDate

	// Pass 1: diffValue 0 means first occurrence (keep, mark 1), 1 means
	// duplicate (drop).
	i0 := 0
	for i := 0; i < db.unboundDepsCount; i++ {
		dep := observing[i]
		base := dep.observable()
		if base.diffValue == 0 {
			base.diffValue = 1
			if i0 != i {
				observing[i0] = dep
			}
			i0++
		}
		if base.memo != nil {
			if s := base.memo.derivation().state; s > lowestNewObservingDerivationState {
				lowestNewObservingDerivationState = s
			}
		}
	}
	clear(observing[i0:])
	observing = observing[:i0:i0]
	db.observing = observing
	db.newObserving = nil

	// Pass 2: old dependencies still at 0 were not read this run.
	for l := len(prevObserving) - 1; l >= 0; l-- {
		base := prevObserving[l].observable()
		if base.diffValue == 0 {
			removeObserver(base, d)
		}
		base.diffValue = 0
	}

	// Pass 3: entries still at 1 were not observed before.
	for i := i0 - 1; i >= 0; i-- {
		base := observing[i].observable()
		if base.diffValue == 1 {
			base.diffValue = 0
			addObserver(base, d)
		}
	}

	// A newly read computed may have gone stale while this body was running,
	// after propagation had already passed d by.
	if lowestNewObservingDerivationState != UpToDate {
		db.state = lowestNewObservingDerivationState
		d.OnBecomeStale()
	}
}

// ClearObserving detaches d from all of its dependencies and resets it to
// NotTracking. Observables left without observers are queued for teardown.
func ClearObserving(d Derivation) {
	db := d.derivation()
	obs := db.observing
	db.observing = nil
	for i := len(obs) - 1; i >= 0; i-- {
		removeObserver(obs[i].observable(), d)
	}
	db.state = NotTracking
}

// changeDependenciesStateTo0 marks db UpToDate and resets the bound on each
// of its dependencies, which may have been raised on its account.
func changeDependenciesStateTo0(db *derivationBase) {
	if db.state == UpToDate {
		return
	}
	db.state = UpToDate
	for i := len(db.observing) - 1; i >= 0; i-- {
		db.observing[i].observable().lowestObserverState = UpToDate
	}
}
