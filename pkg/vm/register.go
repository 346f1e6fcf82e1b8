package vm

import (
	"math"
	"strconv"
	"strings"
)

// MaxTotal bounds the sum of all registers in an initial state. One ADD
// raises the total by at most the number of registers it names, DUMP and
// SWAP keep it, so a run that starts within MaxTotal cannot wrap a
// register before its step budget runs out.
const MaxTotal = math.MaxInt64

// State is a register vector. Index i holds register i; every index past
// the end is implicitly zero.
//
// A State is canonical when it has no trailing zeros. The all-zero machine
// is the empty State. States handed out by the VM are snapshots and are
// never modified after they are recorded.
type State []uint64

// NewState returns the canonical form of values.
func NewState(values ...uint64) State {
	return State(values).Canonical()
}

// Get returns register i. Registers past the end read as zero.
func (s State) Get(i int) uint64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

// Pad returns a copy of s at least minIndex+1 registers long. New
// registers are zero; existing values are preserved. A negative minIndex
// just copies s.
func (s State) Pad(minIndex int) State {
	n := len(s)
	if minIndex+1 > n {
		n = minIndex + 1
	}
	out := make(State, n)
	copy(out, s)
	return out
}

// Canonical returns a copy of s with trailing zeros stripped.
func (s State) Canonical() State {
	n := len(s)
	for n > 0 && s[n-1] == 0 {
		n--
	}
	out := make(State, n)
	copy(out, s[:n])
	return out
}

// Equal reports whether s and other describe the same machine state.
// Trailing zeros are ignored.
func (s State) Equal(other State) bool {
	a, b := s.Canonical(), other.Canonical()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Total returns the sum of all registers. ok is false when the sum
// exceeds MaxTotal.
func (s State) Total() (total uint64, ok bool) {
	for _, v := range s {
		if v > MaxTotal-total {
			return 0, false
		}
		total += v
	}
	return total, true
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// String renders the state as "[v0, v1, ...]".
func (s State) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatUint(v, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

// maxIndex returns the largest register index in regs, or -1 when regs is
// empty.
func maxIndex(regs []int) int {
	m := -1
	for _, r := range regs {
		if r > m {
			m = r
		}
	}
	return m
}
