package reactive

// Computed is a memoized derivation that is itself observable.
//
// A computed value is lazy: it evaluates only when read, and while it is
// observed it re-evaluates only after one of its dependencies changed.
// When the last observer leaves, at the end of the transaction, the cache
// and the dependency edges are dropped (unless KeepAlive is set), and the
// next untracked read evaluates from scratch.
//
// A panic in the computation is cached like a value: Get re-panics with it
// and TryGet returns it.
type Computed[T any] struct {
	obs observableBase
	der derivationBase

	fn     func() T
	value  T
	err    error
	equals Comparer[T]

	setter func(T)

	keepAlive       bool
	isComputing     bool
	isRunningSetter bool
}

// NewComputed creates a computed value. fn runs lazily on the first read.
func NewComputed[T any](fn func() T, opts ...Option) *Computed[T] {
	o := resolveOptions(opts)
	name := o.rt.debugName("Computed", o.name)
	c := &Computed[T]{
		obs:       newObservableBase(o.rt, name),
		der:       newDerivationBase(o.rt, name),
		fn:        fn,
		equals:    defaultEquals[T],
		keepAlive: o.keepAlive,
	}
	c.der.requiresObservable = o.requiresObservable
	c.obs.memo = c
	if o.onObserved != nil {
		c.obs.observedHooks.add(o.onObserved)
	}
	if o.onUnobserved != nil {
		c.obs.unobservedHooks.add(o.onUnobserved)
	}
	return c
}

// WithEquals replaces the comparer used to decide whether a re-evaluation
// changed the result. Observers are only notified of real changes.
func (c *Computed[T]) WithEquals(fn Comparer[T]) *Computed[T] {
	if fn == nil {
		fn = defaultEquals[T]
	}
	c.equals = fn
	return c
}

// WithSetter makes the computed value assignable: Set runs fn inside an
// action.
func (c *Computed[T]) WithSetter(fn func(T)) *Computed[T] {
	c.setter = fn
	return c
}

// Get returns the current value, evaluating if needed. It panics with the
// cached error if the computation failed.
func (c *Computed[T]) Get() T {
	v, err := c.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet returns the current value or the error the computation panicked
// with.
func (c *Computed[T]) TryGet() (T, error) {
	if c.isComputing {
		die("Computed.Get", c.obs.name, ErrCycle)
	}
	rt := c.obs.rt
	if rt.inBatch == 0 && c.obs.observers.len() == 0 && !c.keepAlive {
		// Nothing observes us and nothing will: compute without caching.
		if ShouldCompute(c) {
			rt.warnAboutUntrackedRead(c.obs.name, false)
			c.computeUntracked()
		}
	} else {
		ReportObserved(c)
		if ShouldCompute(c) && c.trackAndCompute() {
			PropagateChangeConfirmed(c)
		}
	}
	return c.value, c.err
}

// Set assigns through the setter registered with WithSetter.
func (c *Computed[T]) Set(value T) {
	if c.setter == nil || c.isRunningSetter {
		die("Computed.Set", c.obs.name, ErrComputedSet)
	}
	c.isRunningSetter = true
	defer func() { c.isRunningSetter = false }()
	c.obs.rt.RunInAction(func() {
		c.setter(value)
	})
}

// OnBecomeStale implements Derivation: staleness of a dependency only makes
// this value possibly stale for its own observers.
func (c *Computed[T]) OnBecomeStale() {
	PropagateMaybeChanged(c)
}

// Name returns the debug name.
func (c *Computed[T]) Name() string {
	return c.obs.name
}

// String implements fmt.Stringer.
func (c *Computed[T]) String() string {
	return c.obs.name
}

// Runtime returns the runtime the computed value is bound to.
func (c *Computed[T]) Runtime() *Runtime {
	return c.obs.rt
}

func (c *Computed[T]) observable() *observableBase {
	return &c.obs
}

func (c *Computed[T]) derivation() *derivationBase {
	return &c.der
}

// refresh implements memoized.
func (c *Computed[T]) refresh() error {
	_, err := c.TryGet()
	return err
}

// suspend implements memoized.
func (c *Computed[T]) suspend() {
	if c.keepAlive {
		return
	}
	ClearObserving(c)
	var zero T
	c.value = zero
	c.err = nil
}

func (c *Computed[T]) computeUntracked() {
	rt := c.obs.rt
	rt.StartBatch()
	defer rt.EndBatch()
	res := c.computeValue(false)
	c.value, c.err = res.Value, res.Err
}

// trackAndCompute re-evaluates with tracking and reports whether the result
// differs from the cached one.
func (c *Computed[T]) trackAndCompute() bool {
	oldValue, oldErr := c.value, c.err
	wasSuspended := c.der.state == NotTracking
	res := c.computeValue(true)

	changed := wasSuspended || oldErr != nil || res.Err != nil || !c.equals(oldValue, res.Value)
	if changed {
		c.value, c.err = res.Value, res.Err
	}
	c.obs.rt.instr().ComputedEvaluated(c.obs.name, changed, res.Err)
	return changed
}

func (c *Computed[T]) computeValue(track bool) Result[T] {
	rt := c.obs.rt
	c.isComputing = true
	rt.computationDepth++
	prev := rt.allowStateChangesStart(false)
	defer func() {
		rt.allowStateChangesEnd(prev)
		rt.computationDepth--
		c.isComputing = false
	}()

	if track {
		return TrackDerivedFunction(c, c.fn)
	}
	if rt.config.DisableErrorBoundaries {
		return Result[T]{Value: c.fn()}
	}
	v, err := runCaught(c.fn)
	return Result[T]{Value: v, Err: err}
}
