package reactive

// Option configures an observable, computed value or reaction at creation.
type Option func(*options)

type options struct {
	rt                 *Runtime
	name               string
	requiresObservable bool
	keepAlive          bool
	fireImmediately    bool
	onObserved         func()
	onUnobserved       func()
	onError            func(error, *Reaction)
}

func resolveOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.rt == nil {
		o.rt = Default()
	}
	return o
}

// In binds the new node to rt instead of the default runtime.
func In(rt *Runtime) Option {
	return func(o *options) {
		o.rt = rt
	}
}

// Named sets the debug name.
func Named(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// RequiresObservable warns (in DevMode) when the derivation finishes a run
// without reading any observable.
func RequiresObservable() Option {
	return func(o *options) {
		o.requiresObservable = true
	}
}

// KeepAlive keeps a computed value cached and tracking even when nothing
// observes it.
func KeepAlive() Option {
	return func(o *options) {
		o.keepAlive = true
	}
}

// FireImmediately runs a ReactTo effect on the first evaluation too.
func FireImmediately() Option {
	return func(o *options) {
		o.fireImmediately = true
	}
}

// OnObserved registers a become-observed handler on a new atom.
func OnObserved(fn func()) Option {
	return func(o *options) {
		o.onObserved = fn
	}
}

// OnUnobserved registers a become-unobserved handler on a new atom.
func OnUnobserved(fn func()) Option {
	return func(o *options) {
		o.onUnobserved = fn
	}
}

// OnError sets the error handler of a reaction. Without one, errors go to
// the runtime's reaction error handlers and the logger.
func OnError(fn func(error, *Reaction)) Option {
	return func(o *options) {
		o.onError = fn
	}
}
