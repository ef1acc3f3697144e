package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Update is a single producer emission as observed by the aggregator.
type Update struct {
	Slot  int
	Value uint64
}

// Query asks the aggregator for its current values. Reply must accept one value without blocking.
type Query struct {
	Reply chan<- Snapshot
}

// Snapshot holds the latest known value of every producer, indexed by slot.
type Snapshot struct {
	Values []uint64
}

// NewSnapshot copies values so the snapshot never aliases aggregator state.
func NewSnapshot(values []uint64) Snapshot {
	return Snapshot{Values: slices.Clone(values)}
}

// Value returns the value held for slot, or 0 when the slot does not exist.
func (s Snapshot) Value(slot int) uint64 {
	if slot < 0 || slot >= len(s.Values) {
		return 0
	}
	return s.Values[slot]
}

// Equal reports whether both snapshots hold the same values in the same order.
func (s Snapshot) Equal(other Snapshot) bool {
	return slices.Equal(s.Values, other.Values)
}

// SlotLabel names a slot the way it is rendered to users: 0 -> "A", 1 -> "B", 26 -> "AA".
func SlotLabel(slot int) string {
	if slot < 0 {
		return strconv.Itoa(slot)
	}
	var b []byte
	for n := slot + 1; n > 0; n = (n - 1) / 26 {
		b = append(b, byte('A'+(n-1)%26))
	}
	slices.Reverse(b)
	return string(b)
}

// String renders one "Value X: n" line per slot, without a trailing newline.
func (s Snapshot) String() string {
	var sb strings.Builder
	for i, v := range s.Values {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("Value ")
		sb.WriteString(SlotLabel(i))
		sb.WriteString(": ")
		sb.WriteString(strconv.FormatUint(v, 10))
	}
	return sb.String()
}
