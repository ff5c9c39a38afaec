package reactive

import "slices"

// hookList is an ordered list of callbacks that can be removed individually.
type hookList struct {
	fns []*func()
}

func (h *hookList) add(fn func()) func() {
	p := &fn
	h.fns = append(h.fns, p)
	return func() {
		if i := slices.Index(h.fns, p); i >= 0 {
			h.fns = slices.Delete(h.fns, i, i+1)
		}
	}
}

func (h *hookList) fire() {
	if len(h.fns) == 0 {
		return
	}
	for _, fn := range slices.Clone(h.fns) {
		(*fn)()
	}
}

// OnBecomeObserved registers fn to run each time o gains its first observer
// after having none. Typical use is lazily opening an external subscription.
// The returned function removes the hook.
func OnBecomeObserved(o Observable, fn func()) func() {
	return o.observable().observedHooks.add(fn)
}

// OnBecomeUnobserved registers fn to run when o has lost all observers at
// the end of the outermost transaction. An observable that loses and regains
// its last observer within one transaction does not fire at all.
// The returned function removes the hook.
func OnBecomeUnobserved(o Observable, fn func()) func() {
	return o.observable().unobservedHooks.add(fn)
}
