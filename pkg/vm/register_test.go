package vm

import (
	"math"
	"testing"
)

func TestState_Canonical(t *testing.T) {
	tests := []struct {
		name     string
		input    State
		expected State
	}{
		{"Nil", nil, State{}},
		{"Empty", State{}, State{}},
		{"AllZero", State{0, 0, 0}, State{}},
		{"TrailingZeros", State{1, 0, 2, 0, 0}, State{1, 0, 2}},
		{"NoTrailingZeros", State{0, 0, 7}, State{0, 0, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Canonical()
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
			if got == nil {
				t.Error("expected non-nil canonical state")
			}
		})
	}
}

func TestState_CanonicalIdempotent(t *testing.T) {
	states := []State{nil, {}, {0}, {3, 0, 0}, {0, 1, 0, 4, 0}}
	for _, s := range states {
		once := s.Canonical()
		twice := once.Canonical()
		if !once.Equal(twice) || len(once) != len(twice) {
			t.Errorf("canonical not idempotent for %v: %v vs %v", s, once, twice)
		}
	}
}

func TestState_CanonicalCopies(t *testing.T) {
	s := State{1, 2, 0}
	c := s.Canonical()
	c[0] = 99
	if s[0] != 1 {
		t.Errorf("Canonical aliased its receiver: %v", s)
	}
}

func TestState_Pad(t *testing.T) {
	s := State{4, 5}

	padded := s.Pad(4)
	if len(padded) != 5 {
		t.Fatalf("expected length 5, got %d", len(padded))
	}
	if padded[0] != 4 || padded[1] != 5 {
		t.Errorf("original values not preserved: %v", padded)
	}
	for i := 2; i < 5; i++ {
		if padded[i] != 0 {
			t.Errorf("expected zero at %d, got %d", i, padded[i])
		}
	}

	// Already long enough: same length, but still a copy
	same := s.Pad(0)
	if len(same) != 2 {
		t.Errorf("expected length 2, got %d", len(same))
	}
	same[0] = 100
	if s[0] != 4 {
		t.Error("Pad aliased its receiver")
	}

	if got := State(nil).Pad(-1); len(got) != 0 {
		t.Errorf("expected empty state for Pad(-1), got %v", got)
	}
}

func TestState_GetAndEqual(t *testing.T) {
	s := NewState(1, 0, 3, 0)
	if s.Get(2) != 3 {
		t.Errorf("expected R2 = 3, got %d", s.Get(2))
	}
	if s.Get(100) != 0 {
		t.Errorf("expected unaddressed register to read 0, got %d", s.Get(100))
	}
	if s.Get(-1) != 0 {
		t.Errorf("expected negative index to read 0, got %d", s.Get(-1))
	}
	if !s.Equal(State{1, 0, 3, 0, 0, 0}) {
		t.Error("expected states differing only in trailing zeros to be equal")
	}
	if s.Equal(State{1, 0, 4}) {
		t.Error("expected different states to differ")
	}
	if !State(nil).Equal(State{0, 0}) {
		t.Error("expected all-zero state to equal empty state")
	}
}

func TestState_String(t *testing.T) {
	if got := NewState(3, 0, 5).String(); got != "[3, 0, 5]" {
		t.Errorf("expected [3, 0, 5], got %s", got)
	}
	if got := NewState().String(); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}
}

func TestState_Total(t *testing.T) {
	tests := []struct {
		name  string
		input State
		total uint64
		ok    bool
	}{
		{"Empty", nil, 0, true},
		{"Small", State{3, 0, 5}, 8, true},
		{"AtLimit", State{math.MaxInt64 - 1, 1}, math.MaxInt64, true},
		{"PastLimit", State{math.MaxInt64, 1}, 0, false},
		{"Huge", State{math.MaxUint64}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, ok := tt.input.Total()
			if total != tt.total || ok != tt.ok {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.total, tt.ok, total, ok)
			}
		})
	}
}
