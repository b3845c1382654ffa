package kdp

// Sequence-number logic (C4). All counters are unsigned 32-bit and compare
// wrap-safe, the same modular idiom the sequence-number reference package
// in the corpus uses for TCP sequence spaces (LessThan via int32(v-w)<0),
// specialized here to the fixed quarter-window acceptance test the
// original Kore::Connection uses for its unreliable stream.

// acceptUnreliable reports whether next is newer than last within the
// forward quarter of the 32-bit sequence space. It is equivalent to
// (next-last) mod 2^32 lying in (0, acceptWindow); zero delta (a repeat of
// the same sequence number) is never accepted.
func acceptUnreliable(next, last uint32) bool {
	delta := next - last
	return delta != 0 && delta < acceptWindow
}

// acceptReliable reports whether next is exactly the successor of last,
// with 32-bit wrap. Out-of-order reliable packets are rejected outright;
// the sender is expected to retransmit.
func acceptReliable(next, last uint32) bool {
	return next == last+1
}
