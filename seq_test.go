package kdp

import "testing"

func TestAcceptUnreliableWrapCorrectness(t *testing.T) {
	// acceptUnreliable(next, last) must hold for exactly the forward
	// quarter-window (next-last) mod 2^32 in (0, acceptWindow), across the
	// wrap boundary, not just in the "no overflow" regime.
	cases := []struct {
		last, next uint32
		want       bool
	}{
		{0, 1, true},
		{0, 0, false}, // repeat is never newer
		{0, acceptWindow - 1, true},
		{0, acceptWindow, false},   // exactly at the window edge: rejected
		{0, acceptWindow + 1, false},
		{0xFFFFFFFF, 0, true},              // wraps forward by 1
		{0xFFFFFFFF, acceptWindow - 2, true}, // wraps forward, still in window
		{0xFFFFFFFF, 0xFFFFFFFE, false},    // that's backward by 1
		{10, 5, false},                     // backward, no wrap
		{5, 10, true},
	}
	for _, tc := range cases {
		got := acceptUnreliable(tc.next, tc.last)
		if got != tc.want {
			t.Errorf("acceptUnreliable(%d, %d) = %v, want %v", tc.next, tc.last, got, tc.want)
		}
	}
}

func TestAcceptUnreliableExhaustiveDeltaSample(t *testing.T) {
	// For a fixed last, acceptUnreliable(last+delta, last) must be true
	// iff delta is in (0, acceptWindow). Sample deltas spanning the whole
	// space rather than walking all 2^32 values.
	const last = uint32(123456789)
	deltas := []uint32{
		0, 1, 2, acceptWindow / 2, acceptWindow - 1, acceptWindow,
		acceptWindow + 1, 1 << 31, 0xFFFFFFFF,
	}
	for _, d := range deltas {
		next := last + d
		want := d != 0 && d < acceptWindow
		if got := acceptUnreliable(next, last); got != want {
			t.Errorf("delta=%#x: acceptUnreliable = %v, want %v", d, got, want)
		}
	}
}

func TestAcceptReliableStrictlyNext(t *testing.T) {
	cases := []struct {
		last, next uint32
		want       bool
	}{
		{0, 1, true},
		{0, 2, false},
		{0, 0, false},
		{0xFFFFFFFF, 0, true}, // wraps
		{5, 7, false},
	}
	for _, tc := range cases {
		if got := acceptReliable(tc.next, tc.last); got != tc.want {
			t.Errorf("acceptReliable(%d, %d) = %v, want %v", tc.next, tc.last, got, tc.want)
		}
	}
}

func TestAcceptReliableInOrderSequence(t *testing.T) {
	// Reliable in-order delivery, restricted to the acceptance predicate
	// itself: feeding a permuted/duplicated stream only ever advances
	// last through exactly 1,2,3,...
	var last uint32
	stream := []uint32{1, 1, 3, 2, 2, 3, 4, 2, 5}
	var delivered []uint32
	for _, seq := range stream {
		if acceptReliable(seq, last) {
			last = seq
			delivered = append(delivered, seq)
		}
	}
	want := []uint32{1, 2, 3, 4, 5}
	if len(delivered) != len(want) {
		t.Fatalf("delivered %v, want %v", delivered, want)
	}
	for i := range want {
		if delivered[i] != want[i] {
			t.Fatalf("delivered %v, want %v", delivered, want)
		}
	}
}
