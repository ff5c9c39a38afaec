// Package errors provides structured, actionable error messages for the
// ripple command-line tool.
//
// Every error has a short code (e.g. "E101") that maps to a message, a
// longer explanation and a hint. The reactive engine itself reports problems
// with sentinel errors and panics; this package only covers what the CLI
// shows to a person: configuration files and command flags.
//
// # Error Categories
//
//   - config: ripple.toml could not be read, parsed or validated
//   - cli: invalid command-line flags
//   - runtime: a demo or benchmark scenario failed
//
// # Usage
//
//	err := errors.New("E102").
//	    WithDetail("toml: line 3: expected '='").
//	    WithSuggestion("Check ripple.toml syntax")
//
//	errors.PrintError(err)
//	// ERROR E102: Failed to parse configuration file
//	//
//	//   toml: line 3: expected '='
//	//
//	//   Hint: Check ripple.toml syntax
package errors
