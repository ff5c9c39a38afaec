package reactive

import "slices"

// Observable is a trackable memory cell, or a structural stand-in for one
// (for example "this map has key K"). Implementations embed an Atom, or are
// computed values.
type Observable interface {
	// Name returns the debug name.
	Name() string

	observable() *observableBase
}

// memoized is the capability carried by observables that are themselves
// derivations (computed values). The kernel checks for it instead of
// inspecting concrete types.
type memoized interface {
	Derivation

	// refresh brings the cached value up to date and returns the cached
	// error, if the last evaluation failed.
	refresh() error

	// suspend drops the cached value and all dependency edges.
	suspend()
}

// observableBase is the bookkeeping shared by every observable.
type observableBase struct {
	rt   *Runtime
	name string

	observers observerSet

	// lowestObserverState is a lower bound of the observers' states, used to
	// skip redundant propagations. It may under-report staleness, never
	// over-report it.
	lowestObserverState DerivationState

	// isBeingObserved is true between the become-observed and
	// become-unobserved hooks.
	isBeingObserved bool

	// isPendingUnobservation keeps the observable in rt.pendingUnobservations
	// at most once per transaction.
	isPendingUnobservation bool

	// diffValue is scratch space for bindDependencies and is always 0
	// outside of it.
	diffValue uint8

	// lastAccessedBy is the run id of the last tracking run that read this
	// observable.
	lastAccessedBy uint64

	observedHooks   hookList
	unobservedHooks hookList

	memo memoized
}

func newObservableBase(rt *Runtime, name string) observableBase {
	return observableBase{
		rt:                  rt,
		name:                name,
		lowestObserverState: NotTracking,
	}
}

func (o *observableBase) onBecomeObserved() {
	o.observedHooks.fire()
}

func (o *observableBase) onBecomeUnobserved() {
	o.unobservedHooks.fire()
}

// observerSet is an identity-keyed set of derivations. Membership is
// explicit; nothing relies on garbage collection to drop an edge.
type observerSet struct {
	items []Derivation
	index map[Derivation]int
}

func (s *observerSet) add(d Derivation) {
	if s.index == nil {
		s.index = make(map[Derivation]int)
	}
	if _, ok := s.index[d]; ok {
		return
	}
	s.index[d] = len(s.items)
	s.items = append(s.items, d)
}

func (s *observerSet) remove(d Derivation) bool {
	i, ok := s.index[d]
	if !ok {
		return false
	}
	// Remove by swapping with last element (order doesn't matter)
	last := len(s.items) - 1
	if i != last {
		moved := s.items[last]
		s.items[i] = moved
		s.index[moved] = i
	}
	s.items[last] = nil
	s.items = s.items[:last]
	delete(s.index, d)
	return true
}

func (s *observerSet) has(d Derivation) bool {
	_, ok := s.index[d]
	return ok
}

func (s *observerSet) len() int {
	return len(s.items)
}

// HasObservers reports whether any derivation depends on o.
func HasObservers(o Observable) bool {
	return o.observable().observers.len() > 0
}

// Observers returns a snapshot of the derivations depending on o.
func Observers(o Observable) []Derivation {
	return slices.Clone(o.observable().observers.items)
}

// IsBeingObserved reports whether o is between its become-observed and
// become-unobserved hooks.
func IsBeingObserved(o Observable) bool {
	return o.observable().isBeingObserved
}

func addObserver(o *observableBase, d Derivation) {
	o.observers.add(d)
	if state := d.derivation().state; o.lowestObserverState > state {
		o.lowestObserverState = state
	}
}

func removeObserver(o *observableBase, d Derivation) {
	o.observers.remove(d)
	if o.observers.len() == 0 {
		o.rt.queueForUnobservation(o)
	}
}

func (rt *Runtime) queueForUnobservation(o *observableBase) {
	if !o.isPendingUnobservation {
		o.isPendingUnobservation = true
		rt.pendingUnobservations = append(rt.pendingUnobservations, o)
	}
}

// ReportObserved records that o was read. It returns true when a derivation
// is being tracked, i.e. the read created (or confirmed) a dependency edge.
func ReportObserved(o Observable) bool {
	base := o.observable()
	rt := base.rt
	rt.checkStateRead(base)

	d := rt.trackingDerivation
	if d == nil {
		if base.observers.len() == 0 && rt.inBatch > 0 {
			rt.queueForUnobservation(base)
		}
		return false
	}

	db := d.derivation()
	if db.runID != base.lastAccessedBy {
		base.lastAccessedBy = db.runID
		if db.unboundDepsCount < len(db.newObserving) {
			db.newObserving[db.unboundDepsCount] = o
		} else {
			db.newObserving = append(db.newObserving, o)
		}
		db.unboundDepsCount++
		if !base.isBeingObserved {
			base.isBeingObserved = true
			base.onBecomeObserved()
		}
	}
	return true
}

// ReportChanged notifies observers that o's value has already changed.
// The propagation runs in its own transaction, so pending reactions may run
// before ReportChanged returns when no outer transaction is open.
func ReportChanged(o Observable) {
	rt := o.observable().rt
	rt.StartBatch()
	defer rt.EndBatch()
	PropagateChanged(o)
}

// PropagateChanged marks every observer of o Stale. Observers that were
// UpToDate are notified through OnBecomeStale first. Each propagate function
// holds a transaction open, so reactions scheduled by OnBecomeStale run only
// after every observer has been marked.
func PropagateChanged(o Observable) {
	base := o.observable()
	if base.lowestObserverState == Stale {
		return
	}
	base.lowestObserverState = Stale

	base.rt.StartBatch()
	defer base.rt.EndBatch()

	observers := base.observers.items
	base.rt.instr().Propagated(PropagateKindChanged, len(observers))
	for _, d := range observers {
		db := d.derivation()
		if db.state == UpToDate {
			d.OnBecomeStale()
		}
		db.state = Stale
	}
}

// PropagateChangeConfirmed is used by a computed value whose re-evaluation
// produced a different result: PossiblyStale observers become Stale.
func PropagateChangeConfirmed(o Observable) {
	base := o.observable()
	if base.lowestObserverState == Stale {
		return
	}
	base.lowestObserverState = Stale

	base.rt.StartBatch()
	defer base.rt.EndBatch()

	observers := base.observers.items
	base.rt.instr().Propagated(PropagateKindConfirmed, len(observers))
	for _, d := range observers {
		db := d.derivation()
		switch db.state {
		case PossiblyStale:
			db.state = Stale
		case UpToDate:
			// The observer is evaluating right now; keep the bound honest.
			base.lowestObserverState = UpToDate
		}
	}
}

// PropagateMaybeChanged is used by a computed value whose dependencies
// changed while recomputation is deferred: UpToDate observers become
// PossiblyStale and are notified.
func PropagateMaybeChanged(o Observable) {
	base := o.observable()
	if base.lowestObserverState != UpToDate {
		return
	}
	base.lowestObserverState = PossiblyStale

	base.rt.StartBatch()
	defer base.rt.EndBatch()

	observers := base.observers.items
	base.rt.instr().Propagated(PropagateKindMaybe, len(observers))
	for _, d := range observers {
		db := d.derivation()
		if db.state == UpToDate {
			db.state = PossiblyStale
			d.OnBecomeStale()
		}
	}
}
