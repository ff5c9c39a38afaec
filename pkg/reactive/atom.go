package reactive

// Atom is the basic observable cell. It holds no value itself: the owner
// stores the data and calls ReportObserved on every read and ReportChanged
// after every write.
//
// Example:
//
//	clock := reactive.NewAtom("clock",
//	    reactive.OnObserved(startTicker),
//	    reactive.OnUnobserved(stopTicker),
//	)
//	func now() time.Time {
//	    clock.ReportObserved()
//	    return time.Now()
//	}
type Atom struct {
	base observableBase
}

// NewAtom creates an atom. OnObserved and OnUnobserved options register the
// resource-management hooks; In binds it to a specific runtime.
func NewAtom(name string, opts ...Option) *Atom {
	o := resolveOptions(opts)
	if name == "" {
		name = o.name
	}
	a := &Atom{
		base: newObservableBase(o.rt, o.rt.debugName("Atom", name)),
	}
	if o.onObserved != nil {
		a.base.observedHooks.add(o.onObserved)
	}
	if o.onUnobserved != nil {
		a.base.unobservedHooks.add(o.onUnobserved)
	}
	return a
}

// Name returns the debug name.
func (a *Atom) Name() string {
	return a.base.name
}

// String implements fmt.Stringer.
func (a *Atom) String() string {
	return a.base.name
}

// Runtime returns the runtime the atom is bound to.
func (a *Atom) Runtime() *Runtime {
	return a.base.rt
}

// ReportObserved records a read of the atom. It returns true when there is
// a reactive context.
func (a *Atom) ReportObserved() bool {
	return ReportObserved(a)
}

// ReportChanged signals that the atom's data changed. Call it after the
// mutation.
func (a *Atom) ReportChanged() {
	ReportChanged(a)
}

func (a *Atom) observable() *observableBase {
	return &a.base
}
