package reactive

// Result is the outcome of one tracked run: either the body's value or the
// error it panicked with. A caught error does not stop dependency binding;
// the caller decides whether to surface it once bookkeeping is complete.
type Result[T any] struct {
	Value T
	Err   error
}

// Caught reports whether the body panicked.
func (r Result[T]) Caught() bool {
	return r.Err != nil
}

// Unwrap returns the value and the caught error, if any.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// Cleanup is a function returned by effects to release resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Disposer stops a reaction, removes a hook or releases a scope.
type Disposer interface {
	Dispose()
}

// DisposeFunc adapts a plain function to the Disposer interface.
type DisposeFunc func()

// Dispose calls f.
func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}
