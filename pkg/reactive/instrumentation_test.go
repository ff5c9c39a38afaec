package reactive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingInstrumentation struct {
	reactions   []string
	reactionErr []error
	computed    map[string][]bool
	flushes     [][2]int
	propagated  map[PropagationKind]int
}

func newRecordingInstrumentation() *recordingInstrumentation {
	return &recordingInstrumentation{
		computed:   map[string][]bool{},
		propagated: map[PropagationKind]int{},
	}
}

func (r *recordingInstrumentation) StartReaction(name string) func(error) {
	r.reactions = append(r.reactions, name)
	return func(err error) { r.reactionErr = append(r.reactionErr, err) }
}

func (r *recordingInstrumentation) ComputedEvaluated(name string, changed bool, _ error) {
	r.computed[name] = append(r.computed[name], changed)
}

func (r *recordingInstrumentation) BatchFlushed(reactions, unobserved int) {
	r.flushes = append(r.flushes, [2]int{reactions, unobserved})
}

func (r *recordingInstrumentation) Propagated(kind PropagationKind, _ int) {
	r.propagated[kind]++
}

func TestInstrumentationReceivesEngineEvents(t *testing.T) {
	rec := newRecordingInstrumentation()
	rt, _ := newTestRuntime(t, func(c *Config) { c.Instrumentation = rec })

	a := NewValue(1, In(rt))
	sign := NewComputed(func() bool { return a.Get() > 0 }, In(rt), Named("sign"))
	r := Autorun(func(*Reaction) { sign.Get() }, In(rt), Named("watch"))

	a.Set(2)
	a.Set(-2)
	r.Dispose()

	assert.Equal(t, []string{"watch", "watch"}, rec.reactions)
	assert.Equal(t, []error{nil, nil}, rec.reactionErr)
	assert.Equal(t, []bool{true, false, true}, rec.computed["sign"])
	assert.Positive(t, rec.propagated[PropagateKindChanged])
	assert.Positive(t, rec.propagated[PropagateKindMaybe])
	assert.Positive(t, rec.propagated[PropagateKindConfirmed])

	// Last flush is the dispose: no reaction, a and sign unobserved.
	assert.Equal(t, [2]int{0, 2}, rec.flushes[len(rec.flushes)-1])
}

func TestInstrumentationReportsReactionError(t *testing.T) {
	rec := newRecordingInstrumentation()
	rt, _ := newTestRuntime(t, func(c *Config) { c.Instrumentation = rec })
	boom := errors.New("boom")

	Autorun(func(*Reaction) { panic(boom) }, In(rt), OnError(func(error, *Reaction) {}))
	if assert.Len(t, rec.reactionErr, 1) {
		assert.ErrorIs(t, rec.reactionErr[0], boom)
	}
}

func TestMultiInstrumentation(t *testing.T) {
	first, second := newRecordingInstrumentation(), newRecordingInstrumentation()
	m := NewMultiInstrumentation(first, nil, second)

	end := m.StartReaction("r")
	end(nil)
	m.ComputedEvaluated("c", true, nil)
	m.BatchFlushed(1, 0)
	m.Propagated(PropagateKindMaybe, 3)

	for _, rec := range []*recordingInstrumentation{first, second} {
		assert.Equal(t, []string{"r"}, rec.reactions)
		assert.Len(t, rec.reactionErr, 1)
		assert.Equal(t, []bool{true}, rec.computed["c"])
		assert.Equal(t, [][2]int{{1, 0}}, rec.flushes)
		assert.Equal(t, 1, rec.propagated[PropagateKindMaybe])
	}
	assert.Equal(t, "maybe", PropagateKindMaybe.String())
}

func TestBatchFlushedOncePerOutermostTransaction(t *testing.T) {
	rec := newRecordingInstrumentation()
	rt, _ := newTestRuntime(t, func(c *Config) { c.Instrumentation = rec })

	a := NewValue(1, In(rt), Named("a"))
	b := NewValue(1, In(rt), Named("b"))
	Autorun(func(*Reaction) { a.Get() }, In(rt), Named("watch-a"))
	Autorun(func(*Reaction) { b.Get() }, In(rt), Named("watch-b"))
	rec.flushes = nil

	rt.RunInAction(func() {
		a.Set(2)
		b.Set(2)
	})

	assert.Equal(t, [][2]int{{2, 0}}, rec.flushes)
}

func TestBatchFlushedCountsReactionsAndTeardownTogether(t *testing.T) {
	rec := newRecordingInstrumentation()
	rt, _ := newTestRuntime(t, func(c *Config) { c.Instrumentation = rec })

	show := NewValue(true, In(rt), Named("show"))
	detail := NewValue("x", In(rt), Named("detail"))
	Autorun(func(*Reaction) {
		if show.Get() {
			detail.Get()
		}
	}, In(rt), Named("view"))
	rec.flushes = nil

	rt.RunInAction(func() { show.Set(false) })

	assert.Equal(t, [][2]int{{1, 1}}, rec.flushes)
}

func TestBatchFlushedWithDeferredScheduler(t *testing.T) {
	rec := newRecordingInstrumentation()
	var queued []func()
	rt, _ := newTestRuntime(t, func(c *Config) {
		c.Instrumentation = rec
		c.ReactionScheduler = func(run func()) { queued = append(queued, run) }
	})

	drain := func() {
		for len(queued) > 0 {
			run := queued[0]
			queued = queued[1:]
			run()
		}
	}

	a := NewValue(1, In(rt))
	b := NewValue(1, In(rt))
	Autorun(func(*Reaction) { a.Get() }, In(rt))
	Autorun(func(*Reaction) { b.Get() }, In(rt))
	drain()
	rec.flushes = nil

	rt.RunInAction(func() {
		a.Set(2)
		b.Set(2)
	})
	assert.Empty(t, rec.flushes)

	drain()
	assert.Equal(t, [][2]int{{2, 0}}, rec.flushes)
}
