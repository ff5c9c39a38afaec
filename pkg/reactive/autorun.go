package reactive

// Autorun runs fn immediately and again whenever anything it read changes.
// The returned reaction stops it.
//
// Example:
//
//	r := reactive.Autorun(func(*reactive.Reaction) {
//	    fmt.Println("Count is:", count.Get())
//	})
//	defer r.Dispose()
func Autorun(fn func(r *Reaction), opts ...Option) *Reaction {
	o := resolveOptions(opts)
	r := newReaction(o, o.rt.debugName("Autorun", o.name), func(r *Reaction) {
		r.Track(func() { fn(r) })
	})
	r.Schedule()
	return r
}

// Effect is Autorun with a cleanup: the Cleanup returned by fn runs before
// the next run and when the reaction is disposed.
//
// Example:
//
//	reactive.Effect(func() reactive.Cleanup {
//	    sub := feed.Subscribe(topic.Get())
//	    return sub.Close
//	})
func Effect(fn func() Cleanup, opts ...Option) *Reaction {
	o := resolveOptions(opts)
	var cleanup Cleanup
	runCleanup := func() {
		if cleanup != nil {
			c := cleanup
			cleanup = nil
			o.rt.Untracked(c)
		}
	}
	r := newReaction(o, o.rt.debugName("Effect", o.name), func(r *Reaction) {
		r.Track(func() {
			runCleanup()
			cleanup = fn()
		})
	})
	r.OnDispose(runCleanup)
	r.Schedule()
	return r
}

// ReactTo tracks expr and runs effect whenever its result changes, with the
// new and previous results. effect itself is not tracked and runs as an
// action. With FireImmediately, effect also runs after the first evaluation.
//
// Example:
//
//	reactive.ReactTo(
//	    func(*reactive.Reaction) int { return len(todos.Get()) },
//	    func(n, prev int, _ *reactive.Reaction) { log.Printf("%d todos (was %d)", n, prev) },
//	)
func ReactTo[T any](expr func(r *Reaction) T, effect func(value, prev T, r *Reaction), opts ...Option) *Reaction {
	return ReactToEquals(expr, effect, defaultEquals[T], opts...)
}

// ReactToEquals is ReactTo with a custom comparer.
func ReactToEquals[T any](expr func(r *Reaction) T, effect func(value, prev T, r *Reaction), equals Comparer[T], opts ...Option) *Reaction {
	o := resolveOptions(opts)
	if equals == nil {
		equals = defaultEquals[T]
	}
	rt := o.rt

	var value, prev T
	firstTime := true
	r := newReaction(o, rt.debugName("ReactTo", o.name), func(r *Reaction) {
		if r.isDisposed {
			return
		}
		changed := false
		r.Track(func() {
			prevChanges := rt.allowStateChangesStart(false)
			defer rt.allowStateChangesEnd(prevChanges)
			next := expr(r)
			changed = firstTime || !equals(value, next)
			prev = value
			value = next
		})
		if (firstTime && o.fireImmediately) || (!firstTime && changed) {
			rt.RunInAction(func() { effect(value, prev, r) })
		}
		firstTime = false
	})
	r.Schedule()
	return r
}

// When waits until predicate returns true, then disposes itself and runs
// effect once as an action.
func When(predicate func() bool, effect func(), opts ...Option) *Reaction {
	o := resolveOptions(opts)
	rt := o.rt
	r := newReaction(o, rt.debugName("When", o.name), func(r *Reaction) {
		r.Track(func() {
			prevChanges := rt.allowStateChangesStart(false)
			cond := predicate()
			rt.allowStateChangesEnd(prevChanges)
			if cond {
				r.Dispose()
				rt.RunInAction(effect)
			}
		})
	})
	r.Schedule()
	return r
}
