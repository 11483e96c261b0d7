package scheduler

import (
	"reflect"
	"testing"
)

func TestNewEventSet(t *testing.T) {
	tests := []struct {
		name      string
		numEvents int
		events    []int
		want      []int
	}{
		{"all events", 4, []int{1, 2, 3, 4}, []int{1, 2, 3, 4}},
		{"sparse", 10, []int{9, 2, 5}, []int{2, 5, 9}},
		{"empty", 3, nil, []int{}},
		{"duplicates", 5, []int{1, 2, 2, 3, 3, 3}, []int{1, 2, 3}},
		{"outside range", 5, []int{-1, 0, 3, 6, 10}, []int{3}},
		{"second word", 130, []int{1, 64, 65, 128, 130}, []int{1, 64, 65, 128, 130}},
		{"no events", 0, []int{1}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewEventSet(tt.numEvents, tt.events)
			if got := s.Events(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Events() = %v, want %v", got, tt.want)
			}
			if s.Count() != len(tt.want) {
				t.Errorf("Count() = %d, want %d", s.Count(), len(tt.want))
			}
			for _, e := range tt.want {
				if !s.Has(e) {
					t.Errorf("Has(%d) = false, want true", e)
				}
			}
			if s.Has(0) || s.Has(tt.numEvents+1) {
				t.Error("set should not contain out-of-range events")
			}
		})
	}
}

func TestEventSetString(t *testing.T) {
	if got := NewEventSet(9, []int{8, 2, 4, 6}).String(); got != "{2,4,6,8}" {
		t.Errorf("String() = %q, want %q", got, "{2,4,6,8}")
	}
	if got := NewEventSet(9, nil).String(); got != "{}" {
		t.Errorf("String() = %q, want %q", got, "{}")
	}
}
