// Package config provides configuration parsing for the ripple CLI.
//
// The configuration is stored in ripple.toml. Every key is optional; missing
// keys keep their defaults. Unknown keys are rejected so that typos do not
// go unnoticed.
//
// # Configuration File Structure
//
//	[runtime]
//	dev_mode = true
//	enforce_actions = "observed"   # never | observed | always
//	computed_requires_reaction = false
//	reaction_requires_observable = false
//	observable_requires_reaction = false
//	disable_error_boundaries = false
//	max_reaction_iterations = 100
//
//	[log]
//	level = "info"                 # debug | info | warn | error
//	format = "text"                # text | json
//
//	[metrics]
//	namespace = "ripple"
//	addr = ":9090"                 # empty disables the HTTP endpoint
//
//	[tracing]
//	enabled = false
//	tracer_name = "ripple"
//	computed_events = false
//
//	[bench]
//	atoms = 100
//	depth = 4
//	mutations = 10000
//	batch = 10
//
// # Usage
//
//	cfg, err := config.LoadFile("ripple.toml")
//	if err != nil {
//	    return err
//	}
//	logger := cfg.Log.NewLogger(os.Stderr)
//	rt := reactive.NewRuntime(cfg.Runtime.Reactive(logger, nil))
package config
