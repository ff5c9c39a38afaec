package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportObservedOutsideTracking(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))

	assert.False(t, a.ReportObserved())
	assert.Empty(t, rt.pendingUnobservations)

	rt.StartBatch()
	assert.False(t, a.ReportObserved())
	require.Len(t, rt.pendingUnobservations, 1)
	assert.True(t, a.base.isPendingUnobservation)

	// Queued at most once per transaction.
	a.ReportObserved()
	assert.Len(t, rt.pendingUnobservations, 1)
	rt.EndBatch()

	assert.Empty(t, rt.pendingUnobservations)
	assert.False(t, a.base.isPendingUnobservation)
}

func TestReportObservedIdempotentWithinRun(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))
	d := newTestDerivation(rt, "d")

	d.track(func() {
		assert.True(t, a.ReportObserved())
		assert.True(t, a.ReportObserved())
		assert.True(t, a.ReportObserved())
		assert.Equal(t, 1, d.der.unboundDepsCount)
	})

	assertEdgeSymmetry(t, d, a)
	assert.Equal(t, 1, a.base.observers.len())
}

func TestDependenciesKeepFirstReadOrder(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))
	b := NewAtom("b", In(rt))
	c := NewAtom("c", In(rt))
	d := newTestDerivation(rt, "d")

	d.track(func() {
		c.ReportObserved()
		a.ReportObserved()
		c.ReportObserved()
		b.ReportObserved()
		a.ReportObserved()
	})
	assertEdgeSymmetry(t, d, c, a, b)

	for _, o := range []Observable{a, b, c} {
		assert.Zero(t, o.observable().diffValue, "diffValue must be reset after binding")
	}
}

func TestEdgeSymmetryAcrossRuns(t *testing.T) {
	rt, _ := newTestRuntime(t)
	atoms := make([]*Atom, 6)
	for i := range atoms {
		atoms[i] = NewAtom("", In(rt))
	}
	d := newTestDerivation(rt, "d")

	runs := [][]int{
		{0, 1, 2},
		{2, 3},
		{3, 3, 4, 0},
		{},
		{5, 1, 5},
	}
	for _, run := range runs {
		d.track(func() {
			for _, i := range run {
				atoms[i].ReportObserved()
			}
		})

		read := map[int]bool{}
		var expected []Observable
		for _, i := range run {
			if !read[i] {
				read[i] = true
				expected = append(expected, atoms[i])
			}
		}
		assertEdgeSymmetry(t, d, expected...)
		for i, a := range atoms {
			assert.Equal(t, read[i], a.base.observers.has(d), "atom %d membership", i)
		}
	}
}

func TestPropagateChanged(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))
	d1 := newTestDerivation(rt, "d1")
	d2 := newTestDerivation(rt, "d2")
	d1.track(func() { a.ReportObserved() })
	d2.track(func() { a.ReportObserved() })

	rt.StartBatch()
	PropagateChanged(a)
	assert.Equal(t, 1, d1.staleCount)
	assert.Equal(t, 1, d2.staleCount)
	assert.Equal(t, Stale, DependencyState(d1))
	assert.Equal(t, Stale, a.base.lowestObserverState)

	// Short-circuits once the bound is Stale.
	PropagateChanged(a)
	assert.Equal(t, 1, d1.staleCount)
	rt.EndBatch()
}

func TestPropagateChangedUpgradesPossiblyStaleWithoutNotifying(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))
	d := newTestDerivation(rt, "d")
	d.track(func() { a.ReportObserved() })

	d.der.state = PossiblyStale
	a.base.lowestObserverState = PossiblyStale
	a.ReportChanged()

	assert.Equal(t, 0, d.staleCount)
	assert.Equal(t, Stale, DependencyState(d))
}

func TestPropagateMaybeChanged(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))
	d := newTestDerivation(rt, "d")
	d.track(func() { a.ReportObserved() })

	// A fresh atom's bound is NotTracking, which blocks the maybe pass.
	PropagateMaybeChanged(a)
	assert.Equal(t, UpToDate, DependencyState(d))
	assert.Equal(t, 0, d.staleCount)

	a.base.lowestObserverState = UpToDate
	PropagateMaybeChanged(a)
	assert.Equal(t, PossiblyStale, DependencyState(d))
	assert.Equal(t, PossiblyStale, a.base.lowestObserverState)
	assert.Equal(t, 1, d.staleCount)

	// Only proceeds from UpToDate.
	PropagateMaybeChanged(a)
	assert.Equal(t, 1, d.staleCount)

	// Stale never regresses to PossiblyStale.
	PropagateChanged(a)
	assert.Equal(t, Stale, DependencyState(d))
	a.base.lowestObserverState = UpToDate
	PropagateMaybeChanged(a)
	assert.Equal(t, Stale, DependencyState(d))
}

func TestPropagateChangeConfirmed(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))
	maybe := newTestDerivation(rt, "maybe")
	fresh := newTestDerivation(rt, "fresh")
	maybe.track(func() { a.ReportObserved() })
	fresh.track(func() { a.ReportObserved() })

	maybe.der.state = PossiblyStale
	a.base.lowestObserverState = UpToDate

	PropagateChangeConfirmed(a)
	assert.Equal(t, Stale, DependencyState(maybe))
	assert.Equal(t, 0, maybe.staleCount, "confirm does not notify")

	// fresh was UpToDate: the bound is pulled back so later propagation
	// still reaches it.
	assert.Equal(t, UpToDate, DependencyState(fresh))
	assert.Equal(t, UpToDate, a.base.lowestObserverState)

	PropagateChanged(a)
	assert.Equal(t, 1, fresh.staleCount)
}

func TestBecomeObservedHooksFireOncePerTransition(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var observed, unobserved int
	a := NewAtom("a", In(rt),
		OnObserved(func() { observed++ }),
		OnUnobserved(func() { unobserved++ }),
	)
	d1 := newTestDerivation(rt, "d1")
	d2 := newTestDerivation(rt, "d2")

	d1.track(func() { a.ReportObserved() })
	d2.track(func() { a.ReportObserved() })
	assert.Equal(t, 1, observed)
	assert.True(t, IsBeingObserved(a))

	rt.Batch(func() { ClearObserving(d1) })
	assert.Equal(t, 0, unobserved)

	rt.Batch(func() { ClearObserving(d2) })
	assert.Equal(t, 1, unobserved)
	assert.False(t, IsBeingObserved(a))

	d1.track(func() { a.ReportObserved() })
	assert.Equal(t, 2, observed)
}

func TestDebouncedTeardown(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var observed, unobserved int
	a := NewAtom("a", In(rt))
	OnBecomeObserved(a, func() { observed++ })
	OnBecomeUnobserved(a, func() { unobserved++ })

	d := newTestDerivation(rt, "d")
	d.track(func() { a.ReportObserved() })
	require.Equal(t, 1, observed)

	rt.Batch(func() {
		ClearObserving(d)
		assert.False(t, HasObservers(a))
		d.track(func() { a.ReportObserved() })
	})

	assert.Equal(t, 1, observed, "no become-observed for a regained observer")
	assert.Equal(t, 0, unobserved, "no become-unobserved for a regained observer")
	assert.True(t, HasObservers(a))
}

func TestHookDisposer(t *testing.T) {
	rt, _ := newTestRuntime(t)
	calls := 0
	a := NewAtom("a", In(rt))
	remove := OnBecomeObserved(a, func() { calls++ })
	remove()

	d := newTestDerivation(rt, "d")
	d.track(func() { a.ReportObserved() })
	assert.Equal(t, 0, calls)
}

func TestObserverSetSwapRemove(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var s observerSet
	ds := []*testDerivation{
		newTestDerivation(rt, "a"),
		newTestDerivation(rt, "b"),
		newTestDerivation(rt, "c"),
	}
	for _, d := range ds {
		s.add(d)
	}
	s.add(ds[0])
	assert.Equal(t, 3, s.len())

	assert.True(t, s.remove(ds[0]))
	assert.False(t, s.remove(ds[0]))
	assert.Equal(t, 2, s.len())
	assert.True(t, s.has(ds[1]))
	assert.True(t, s.has(ds[2]))
	for i, d := range s.items {
		assert.Equal(t, i, s.index[d])
	}
}

func TestAtomNames(t *testing.T) {
	rt, _ := newTestRuntime(t)
	assert.Equal(t, "clock", NewAtom("clock", In(rt)).Name())
	assert.Equal(t, "named", NewAtom("", In(rt), Named("named")).Name())
	assert.Regexp(t, `^Atom@\d+$`, NewAtom("", In(rt)).String())
}

func TestPropagateChangedOutsideBatchKeepsReactionLive(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewAtom("a", In(rt))

	runs := 0
	r := Autorun(func(*Reaction) {
		a.ReportObserved()
		runs++
	}, In(rt), Named("watch"))

	PropagateChanged(a)
	assert.Equal(t, 2, runs)
	assert.Equal(t, UpToDate, DependencyState(r))
	assert.False(t, r.IsScheduled())
	assert.Zero(t, rt.InBatch())

	a.ReportChanged()
	assert.Equal(t, 3, runs)
}

func TestPropagateMaybeChangedOutsideBatchRunsReactionAfterMarking(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewValue(1, In(rt))
	double := NewComputed(func() int { return a.Get() * 2 }, In(rt), Named("double"))

	var seen []int
	r := Autorun(func(*Reaction) { seen = append(seen, double.Get()) }, In(rt))

	// Change the value without going through a transaction.
	a.value = 5
	PropagateChanged(a)

	assert.Equal(t, []int{2, 10}, seen)
	assert.Equal(t, UpToDate, DependencyState(r))

	a.Set(6)
	assert.Equal(t, []int{2, 10, 12}, seen)
}
