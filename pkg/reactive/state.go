package reactive

// DerivationState describes how much a derivation can trust its last result.
// The numeric order matters: propagation compares states with < and >.
type DerivationState int8

const (
	// NotTracking is the state before the first run, or after the derivation
	// was suspended. The derivation holds no dependency edges.
	NotTracking DerivationState = -1

	// UpToDate means no shallow dependency changed since the last run.
	UpToDate DerivationState = 0

	// PossiblyStale means a deep dependency changed, but it is not yet known
	// whether any shallow dependency produced a different value.
	// Only computed values propagate this state.
	PossiblyStale DerivationState = 1

	// Stale means a shallow dependency changed and the derivation must re-run
	// the next time its result is needed.
	Stale DerivationState = 2
)

// String returns a human-readable name for the state.
func (s DerivationState) String() string {
	switch s {
	case NotTracking:
		return "NotTracking"
	case UpToDate:
		return "UpToDate"
	case PossiblyStale:
		return "PossiblyStale"
	case Stale:
		return "Stale"
	default:
		return "Unknown"
	}
}
