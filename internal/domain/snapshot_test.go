package domain

import "testing"

func TestSnapshot_String(t *testing.T) {
	tests := []struct {
		name   string
		values []uint64
		want   string
	}{
		{name: "pair", values: []uint64{7, 2}, want: "Value A: 7\nValue B: 2"},
		{name: "zeros", values: []uint64{0, 0}, want: "Value A: 0\nValue B: 0"},
		{name: "single", values: []uint64{42}, want: "Value A: 42"},
		{name: "empty", values: nil, want: ""},
		{name: "three", values: []uint64{1, 2, 18446744073709551615}, want: "Value A: 1\nValue B: 2\nValue C: 18446744073709551615"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSnapshot(tt.values).String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlotLabel(t *testing.T) {
	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", -1: "-1"}
	for slot, want := range tests {
		if got := SlotLabel(slot); got != want {
			t.Errorf("SlotLabel(%d) = %q, want %q", slot, got, want)
		}
	}
}

func TestNewSnapshot_DoesNotAlias(t *testing.T) {
	state := []uint64{3, 0}
	snap := NewSnapshot(state)
	state[0] = 99
	if snap.Value(0) != 3 {
		t.Fatalf("snapshot changed with source slice: %v", snap.Values)
	}
	if snap.Value(5) != 0 || snap.Value(-1) != 0 {
		t.Fatal("out of range slots must read as 0")
	}
	if !snap.Equal(Snapshot{Values: []uint64{3, 0}}) || snap.Equal(Snapshot{Values: []uint64{3}}) {
		t.Fatal("Equal mismatch")
	}
}
