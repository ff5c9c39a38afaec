package reactive

// RunInAction runs fn as an action on the default runtime.
func RunInAction(fn func()) {
	Default().RunInAction(fn)
}

// RunInAction runs fn as an action: one transaction, no dependency
// tracking, state changes and reads allowed. Reactions run once fn returns.
func (rt *Runtime) RunInAction(fn func()) {
	prevTracking := rt.untrackedStart()
	rt.StartBatch()
	prevChanges := rt.allowStateChangesStart(true)
	prevReads := rt.allowStateReadsStart(true)
	defer func() {
		rt.allowStateChangesEnd(prevChanges)
		rt.allowStateReadsEnd(prevReads)
		rt.EndBatch()
		rt.untrackedEnd(prevTracking)
	}()
	fn()
}

// Action wraps fn so that every call runs as a named action.
//
// Example:
//
//	addTodo := rt.Action("addTodo", func() {
//	    todos.Update(func(l []string) []string { return append(l, "new") })
//	    count.Update(func(n int) int { return n + 1 })
//	})
//	addTodo()
func (rt *Runtime) Action(name string, fn func()) func() {
	return func() {
		if rt.config.DevMode {
			rt.logger.Debug("action", "action", name, "depth", rt.inBatch)
		}
		rt.RunInAction(fn)
	}
}

// ActionResult runs fn as an action on rt and returns its result.
func ActionResult[T any](rt *Runtime, fn func() T) T {
	if rt == nil {
		rt = Default()
	}
	var out T
	rt.RunInAction(func() { out = fn() })
	return out
}
