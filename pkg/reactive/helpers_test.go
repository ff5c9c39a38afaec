package reactive

import (
	"bytes"
	"log/slog"
	"testing"
)

// newTestRuntime returns an isolated runtime logging into a buffer.
func newTestRuntime(t *testing.T, mutate ...func(*Config)) (*Runtime, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	for _, m := range mutate {
		m(&cfg)
	}
	return NewRuntime(cfg), &buf
}

// testDerivation is a bare Derivation that counts stale notifications.
type testDerivation struct {
	der        derivationBase
	staleCount int
}

func newTestDerivation(rt *Runtime, name string) *testDerivation {
	return &testDerivation{der: newDerivationBase(rt, name)}
}

func (d *testDerivation) Name() string                { return d.der.name }
func (d *testDerivation) OnBecomeStale()              { d.staleCount++ }
func (d *testDerivation) derivation() *derivationBase { return &d.der }

// track runs fn as d's tracked body.
func (d *testDerivation) track(fn func()) Result[struct{}] {
	return TrackDerivedFunction(d, func() struct{} {
		fn()
		return struct{}{}
	})
}

// assertEdgeSymmetry checks that d observes exactly deps and that every
// dependency lists d as an observer.
func assertEdgeSymmetry(t *testing.T, d Derivation, deps ...Observable) {
	t.Helper()
	got := Dependencies(d)
	if len(got) != len(deps) {
		t.Fatalf("expected %d dependencies, got %d", len(deps), len(got))
	}
	for i, o := range deps {
		if got[i] != o {
			t.Errorf("dependency %d: expected %s, got %s", i, o.Name(), got[i].Name())
		}
		if !o.observable().observers.has(d) {
			t.Errorf("%s does not list %s as observer", o.Name(), d.Name())
		}
	}
}

// recorder counts calls and remembers the values it saw.
type recorder[T any] struct {
	values []T
}

func (r *recorder[T]) add(v T) { r.values = append(r.values, v) }
func (r *recorder[T]) count() int {
	return len(r.values)
}
