package reactive

// PropagationKind identifies which propagation variant walked an observer set.
type PropagationKind uint8

const (
	PropagateKindChanged PropagationKind = iota + 1
	PropagateKindConfirmed
	PropagateKindMaybe
)

// String returns the metric label for the kind.
func (k PropagationKind) String() string {
	switch k {
	case PropagateKindChanged:
		return "changed"
	case PropagateKindConfirmed:
		return "confirmed"
	case PropagateKindMaybe:
		return "maybe"
	default:
		return "unknown"
	}
}

// Instrumentation receives engine counters. Implementations are called
// synchronously from the kernel and must not read or write reactive state.
type Instrumentation interface {
	// StartReaction is called before a reaction body runs. The returned
	// function is called with the body's error (nil on success) after it ends.
	StartReaction(name string) func(err error)

	// ComputedEvaluated is called after a computed value re-ran its body.
	ComputedEvaluated(name string, changed bool, err error)

	// BatchFlushed is called when the outermost batch ends, with the number
	// of reaction runs and of observables torn down.
	BatchFlushed(reactions, unobserved int)

	// Propagated is called for every propagation that was not short-circuited.
	Propagated(kind PropagationKind, observers int)
}

// NopInstrumentation discards everything.
type NopInstrumentation struct{}

func (NopInstrumentation) StartReaction(string) func(error) { return func(error) {} }
func (NopInstrumentation) ComputedEvaluated(string, bool, error) {}
func (NopInstrumentation) BatchFlushed(int, int) {}
func (NopInstrumentation) Propagated(PropagationKind, int) {}

// MultiInstrumentation fans out to several instrumentations.
type MultiInstrumentation []Instrumentation

// NewMultiInstrumentation drops nil entries.
func NewMultiInstrumentation(instrs ...Instrumentation) MultiInstrumentation {
	out := make(MultiInstrumentation, 0, len(instrs))
	for _, in := range instrs {
		if in != nil {
			out = append(out, in)
		}
	}
	return out
}

func (m MultiInstrumentation) StartReaction(name string) func(error) {
	ends := make([]func(error), len(m))
	for i, in := range m {
		ends[i] = in.StartReaction(name)
	}
	return func(err error) {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i](err)
		}
	}
}

func (m MultiInstrumentation) ComputedEvaluated(name string, changed bool, err error) {
	for _, in := range m {
		in.ComputedEvaluated(name, changed, err)
	}
}

func (m MultiInstrumentation) BatchFlushed(reactions, unobserved int) {
	for _, in := range m {
		in.BatchFlushed(reactions, unobserved)
	}
}

func (m MultiInstrumentation) Propagated(kind PropagationKind, observers int) {
	for _, in := range m {
		in.Propagated(kind, observers)
	}
}
