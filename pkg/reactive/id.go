package reactive

import "fmt"

// nextRunID returns a fresh tracking run id. Ids are never reused within a
// runtime, so Observable.lastAccessedBy can be compared against them safely.
func (rt *Runtime) nextRunID() uint64 {
	rt.runID++
	return rt.runID
}

// debugName returns name, or a generated "<kind>@<n>" name when name is empty.
func (rt *Runtime) debugName(kind, name string) string {
	if name != "" {
		return name
	}
	rt.guid++
	return fmt.Sprintf("%s@%d", kind, rt.guid)
}
