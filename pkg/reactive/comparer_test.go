package reactive

import (
	"errors"
	"testing"
)

func TestDefaultComparer(t *testing.T) {
	errA := errors.New("a")
	type pair struct{ A, B int }

	tests := []struct {
		name string
		eq   bool
		got  bool
	}{
		{"int equal", true, defaultEquals(1, 1)},
		{"int differ", false, defaultEquals(1, 2)},
		{"string", true, defaultEquals("x", "x")},
		{"float", false, defaultEquals(1.5, 2.5)},
		{"bool", true, defaultEquals(true, true)},
		{"slice deep", true, defaultEquals([]int{1, 2}, []int{1, 2})},
		{"map deep", false, defaultEquals(map[string]int{"a": 1}, map[string]int{"a": 2})},
		{"struct", true, defaultEquals(pair{1, 2}, pair{1, 2})},
		{"same error", true, defaultEquals(errA, errA)},
		{"distinct errors same text", false, defaultEquals(errA, errors.New("a"))},
		{"any mixed types", false, defaultEquals[any](1, "1")},
		{"any same", true, defaultEquals[any](7, 7)},
		{"nil any", true, defaultEquals[any](nil, nil)},
	}
	for _, tt := range tests {
		if tt.got != tt.eq {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.eq, tt.got)
		}
	}
}

func TestComparers(t *testing.T) {
	a, b := &struct{ N int }{1}, &struct{ N int }{1}

	if IdentityComparer[*struct{ N int }]()(a, b) {
		t.Error("identity comparer should treat distinct pointers as different")
	}
	if !StructuralComparer[*struct{ N int }]()(a, b) {
		t.Error("structural comparer should compare pointees")
	}
	if !DefaultComparer[string]()("x", "x") {
		t.Error("default comparer should compare strings by value")
	}
}
