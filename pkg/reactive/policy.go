package reactive

// Usage-policy checks. They only log, and only in DevMode: the engine keeps
// working when the host application breaks the rules.

func (rt *Runtime) checkStateRead(o *observableBase) {
	if !rt.config.DevMode || rt.allowStateReads || !rt.config.ObservableRequiresReaction {
		return
	}
	rt.logger.Warn("observable read outside a reactive context", "observable", o.name)
}

func (rt *Runtime) checkStateChange(o *observableBase) {
	if !rt.config.DevMode || rt.allowStateChanges {
		return
	}
	if rt.computationDepth > 0 {
		rt.logger.Warn("state changed inside a computed value; wrap side effects in RunInAction",
			"observable", o.name)
		return
	}
	if o.observers.len() > 0 || rt.config.EnforceActions == EnforceAlways {
		rt.logger.Warn("observed state changed outside an action",
			"observable", o.name,
			"enforce_actions", rt.config.EnforceActions.String())
	}
}

func (rt *Runtime) warnAboutDerivationWithoutDependencies(d Derivation) {
	if !rt.config.DevMode {
		return
	}
	db := d.derivation()
	if len(db.observing) != 0 {
		return
	}
	if rt.config.ReactionRequiresObservable || db.requiresObservable {
		rt.logger.Warn("derivation ran without reading any observable", "derivation", db.name)
	}
}

func (rt *Runtime) warnAboutUntrackedRead(name string, requiresReaction bool) {
	if !rt.config.DevMode {
		return
	}
	if rt.config.ComputedRequiresReaction || requiresReaction {
		rt.logger.Warn("computed value read outside a reactive context; it will not be cached",
			"computed", name)
	}
}
