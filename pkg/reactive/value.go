package reactive

import (
	"fmt"
	"slices"
)

// Change describes a write to a Value. Interceptors receive a pointer and
// may rewrite NewValue; change listeners receive the final change.
type Change[T any] struct {
	// Name is the debug name of the value.
	Name string

	OldValue T
	NewValue T
}

// Value is a reactive cell holding a single value.
// Reading it with Get inside a tracked context (computed value, reaction)
// makes the reader depend on it; Set notifies dependents when the value
// actually changes.
type Value[T any] struct {
	base observableBase

	value  T
	equals Comparer[T]

	interceptors []*func(*Change[T]) bool
	listeners    []*func(Change[T])
}

// NewValue creates a reactive value with the given initial content.
func NewValue[T any](initial T, opts ...Option) *Value[T] {
	o := resolveOptions(opts)
	v := &Value[T]{
		base:   newObservableBase(o.rt, o.rt.debugName("Value", o.name)),
		value:  initial,
		equals: defaultEquals[T],
	}
	if o.onObserved != nil {
		v.base.observedHooks.add(o.onObserved)
	}
	if o.onUnobserved != nil {
		v.base.unobservedHooks.add(o.onUnobserved)
	}
	return v
}

// Get returns the current value and records the read for the tracked
// derivation, if any.
func (v *Value[T]) Get() T {
	ReportObserved(v)
	return v.value
}

// Peek returns the current value without creating a dependency.
func (v *Value[T]) Peek() T {
	return v.value
}

// Set writes a new value. Interceptors may rewrite or cancel the write; an
// equal value (per the comparer) is dropped without notifying anyone.
func (v *Value[T]) Set(value T) {
	v.base.rt.checkStateChange(&v.base)

	if len(v.interceptors) > 0 {
		change, ok := v.intercept(value)
		if !ok {
			return
		}
		value = change.NewValue
	}
	if v.equals(v.value, value) {
		return
	}

	old := v.value
	v.value = value
	ReportChanged(v)

	if len(v.listeners) > 0 {
		v.notify(Change[T]{Name: v.base.name, OldValue: old, NewValue: value})
	}
}

// Update sets the value to fn(current).
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.value))
}

// WithEquals replaces the comparer used to detect changes.
func (v *Value[T]) WithEquals(fn Comparer[T]) *Value[T] {
	if fn == nil {
		fn = defaultEquals[T]
	}
	v.equals = fn
	return v
}

// Intercept registers fn to run before every write. fn may modify
// change.NewValue, or return false to cancel the write.
// The returned function removes the interceptor.
func (v *Value[T]) Intercept(fn func(change *Change[T]) bool) func() {
	p := &fn
	v.interceptors = append(v.interceptors, p)
	return func() {
		if i := slices.Index(v.interceptors, p); i >= 0 {
			v.interceptors = slices.Delete(v.interceptors, i, i+1)
		}
	}
}

// Observe registers fn to run after every effective write. Unlike a
// reaction, fn sees each individual change, even inside a batch.
// With fireImmediately, fn is called once right away with the current value.
// The returned function removes the listener.
func (v *Value[T]) Observe(fn func(change Change[T]), fireImmediately bool) func() {
	if fireImmediately {
		fn(Change[T]{Name: v.base.name, NewValue: v.value})
	}
	p := &fn
	v.listeners = append(v.listeners, p)
	return func() {
		if i := slices.Index(v.listeners, p); i >= 0 {
			v.listeners = slices.Delete(v.listeners, i, i+1)
		}
	}
}

func (v *Value[T]) intercept(value T) (*Change[T], bool) {
	rt := v.base.rt
	prev := rt.untrackedStart()
	defer rt.untrackedEnd(prev)

	change := &Change[T]{Name: v.base.name, OldValue: v.value, NewValue: value}
	for _, fn := range slices.Clone(v.interceptors) {
		if !(*fn)(change) {
			return nil, false
		}
	}
	return change, true
}

func (v *Value[T]) notify(change Change[T]) {
	rt := v.base.rt
	prev := rt.untrackedStart()
	defer rt.untrackedEnd(prev)

	for _, fn := range slices.Clone(v.listeners) {
		(*fn)(change)
	}
}

// Name returns the debug name.
func (v *Value[T]) Name() string {
	return v.base.name
}

// String implements fmt.Stringer.
func (v *Value[T]) String() string {
	return fmt.Sprintf("%s[%v]", v.base.name, v.value)
}

func (v *Value[T]) observable() *observableBase {
	return &v.base
}

// UntrackedGet reads v without creating a dependency.
// Equivalent to v.Peek().
func UntrackedGet[T any](v *Value[T]) T {
	return v.Peek()
}
