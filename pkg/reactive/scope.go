package reactive

// Scope owns reactions and cleanup functions. Disposing a scope disposes
// everything it owns, children included, in reverse registration order and
// inside a single transaction, so observables shared by several owned
// reactions are torn down at most once.
//
// Scopes form a hierarchy: a child scope is disposed with its parent.
type Scope struct {
	rt        *Runtime
	parent    *Scope
	disposers []Disposer
	disposed  bool
}

// NewScope creates a scope. With a non-nil parent the scope is registered
// as the parent's child and shares its runtime; otherwise the runtime comes
// from opts.
func NewScope(parent *Scope, opts ...Option) *Scope {
	var rt *Runtime
	if parent != nil {
		rt = parent.rt
	} else {
		rt = resolveOptions(opts).rt
	}
	s := &Scope{rt: rt, parent: parent}
	if parent != nil {
		parent.Add(s)
	}
	return s
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed reports whether the scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed
}

// Add registers d to be disposed with the scope. Adding to a disposed scope
// disposes d immediately.
func (s *Scope) Add(d Disposer) {
	if d == nil {
		return
	}
	if s.disposed {
		d.Dispose()
		return
	}
	s.disposers = append(s.disposers, d)
}

// OnCleanup registers fn to run when the scope is disposed.
func (s *Scope) OnCleanup(fn func()) {
	s.Add(DisposeFunc(fn))
}

// Run calls fn with s as the current scope: reactions created by fn
// (Autorun, Effect, ReactTo, When, NewReaction) are owned by s.
//
// Example:
//
//	scope := reactive.NewScope(nil, reactive.In(rt))
//	scope.Run(func() {
//	    reactive.Autorun(render, reactive.In(rt))
//	})
//	defer scope.Dispose()
func (s *Scope) Run(fn func()) {
	prev := s.rt.currentScope
	s.rt.currentScope = s
	defer func() { s.rt.currentScope = prev }()
	fn()
}

// Dispose releases everything the scope owns. It is idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	s.rt.StartBatch()
	defer s.rt.EndBatch()
	for i := len(s.disposers) - 1; i >= 0; i-- {
		s.disposers[i].Dispose()
	}
	s.disposers = nil
}
