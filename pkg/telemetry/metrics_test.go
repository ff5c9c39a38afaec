package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/ripple/pkg/reactive"
)

func TestPrometheus_RecordsReactionRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithNamespace("test"))

	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }

	end := m.StartReaction("r")
	clock = clock.Add(3 * time.Millisecond)
	end(nil)
	m.StartReaction("r")(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reactionsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reactionsTotal.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.reactionDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_reactions_total"])
	assert.True(t, names["test_reaction_duration_seconds"])
}

func TestPrometheus_ComputedAndPropagation(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))

	m.ComputedEvaluated("c", true, nil)
	m.ComputedEvaluated("c", false, nil)
	m.ComputedEvaluated("c", true, errors.New("bad"))
	m.Propagated(reactive.PropagateKindChanged, 3)
	m.Propagated(reactive.PropagateKindChanged, 2)
	m.Propagated(reactive.PropagateKindMaybe, 1)
	m.BatchFlushed(4, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.computedTotal.WithLabelValues("changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computedTotal.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computedTotal.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.propagationsTotal.WithLabelValues("changed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.propagationFanout.WithLabelValues("changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.propagationsTotal.WithLabelValues("maybe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchFlushes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unobservedTotal))
}

func TestPrometheus_WiredIntoRuntime(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()), WithConstLabels(prometheus.Labels{"app": "test"}))
	rt := reactive.NewRuntime(reactive.Config{Instrumentation: m})

	a := reactive.NewValue(1, reactive.In(rt))
	positive := reactive.NewComputed(func() bool { return a.Get() > 0 }, reactive.In(rt))
	r := reactive.Autorun(func(*reactive.Reaction) { positive.Get() }, reactive.In(rt))

	a.Set(2)  // computed unchanged, reaction skipped
	a.Set(-1) // computed changed, reaction re-runs
	r.Dispose()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reactionsTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.computedTotal.WithLabelValues("changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computedTotal.WithLabelValues("unchanged")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unobservedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.batchFlushes))
}

func TestPrometheus_OneFlushPerAction(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	rt := reactive.NewRuntime(reactive.Config{Instrumentation: m})

	a := reactive.NewValue(1, reactive.In(rt))
	b := reactive.NewValue(1, reactive.In(rt))
	reactive.Autorun(func(*reactive.Reaction) { a.Get() }, reactive.In(rt))
	reactive.Autorun(func(*reactive.Reaction) { b.Get() }, reactive.In(rt))
	before := testutil.ToFloat64(m.batchFlushes)

	rt.RunInAction(func() {
		a.Set(2)
		b.Set(2)
	})

	assert.Equal(t, before+1, testutil.ToFloat64(m.batchFlushes))

	var metric dto.Metric
	require.NoError(t, m.batchReactions.Write(&metric))
	// Two creation flushes of one reaction each, then the action's two.
	assert.Equal(t, uint64(3), metric.GetHistogram().GetSampleCount())
	assert.Equal(t, 4.0, metric.GetHistogram().GetSampleSum())
}

func TestPrometheus_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))
	assert.Panics(t, func() { Prometheus(WithRegistry(reg)) })

	// A different namespace does not collide.
	assert.NotPanics(t, func() { Prometheus(WithRegistry(reg), WithNamespace("other"), WithBuckets(nil)) })
}
