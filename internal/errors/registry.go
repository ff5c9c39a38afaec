package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "The file given with --config does not exist.",
		Suggestion: "Omit --config to use the defaults, or create ripple.toml",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Failed to parse configuration file",
		Suggestion: "Check ripple.toml syntax",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Unknown configuration key",
		Detail:     "ripple.toml contains a key that no section understands. It would be silently ignored.",
		Suggestion: "Check the key spelling against 'ripple demo --help'",
	},

	// ============================================
	// CLI Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},
	"E202": {
		Category:   CategoryCLI,
		Message:    "Metrics server failed",
		Detail:     "The HTTP server exposing /metrics stopped with an error.",
		Suggestion: "Check that the --metrics-addr port is free",
	},

	// ============================================
	// Runtime Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryRuntime,
		Message:  "Scenario failed",
		Detail:   "A demo scenario did not produce the expected reaction runs.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
