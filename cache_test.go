package kdp

import (
	"testing"
	"time"
)

func TestCacheSlotFormula(t *testing.T) {
	c := newRetransmitCache(4)
	base := time.Unix(1000, 0)

	// After k<=capacity reliable sends with no acks, slot (base+i) mod
	// capacity must contain the i-th frame, for i in [1,k].
	for i := uint32(1); i <= 4; i++ {
		c.put(i, []byte{byte(i), byte(i), byte(i)}, base.Add(time.Duration(i)*time.Second))
	}
	for i := uint32(1); i <= 4; i++ {
		entry, ok := c.get(i)
		if !ok {
			t.Fatalf("seq %d: not found", i)
		}
		want := []byte{byte(i), byte(i), byte(i)}
		if len(entry.frame) != len(want) || entry.frame[0] != want[0] {
			t.Fatalf("seq %d: frame = %v, want %v", i, entry.frame, want)
		}
	}
}

func TestCacheOverwritesOnWrap(t *testing.T) {
	// The cache is direct-mapped: writing seq=5 into a 4-slot cache
	// unconditionally clobbers whatever seq=1 left in slot 1. This is
	// deliberate, unpoliced overflow behavior - not a bug to be caught here.
	c := newRetransmitCache(4)
	now := time.Now()
	c.put(1, []byte("one"), now)
	c.put(5, []byte("five"), now.Add(time.Second))

	entry, ok := c.get(1)
	if !ok {
		t.Fatal("slot 1 missing")
	}
	if string(entry.frame) != "five" {
		t.Fatalf("slot for seq 1 = %q, want %q (clobbered by seq 5)", entry.frame, "five")
	}
	// get(5) reads the same physical slot.
	entry2, _ := c.get(5)
	if string(entry2.frame) != "five" {
		t.Fatalf("slot for seq 5 = %q, want %q", entry2.frame, "five")
	}
}

func TestCacheGetMissing(t *testing.T) {
	c := newRetransmitCache(8)
	if _, ok := c.get(3); ok {
		t.Fatal("get on a never-written slot reported ok=true")
	}
}

func TestCachePutReusesBacking(t *testing.T) {
	// put must copy, not alias, the frame it's given - the caller's
	// buffer (Conn.sendBuf) is reused on every Send.
	c := newRetransmitCache(2)
	scratch := []byte("abc")
	c.put(1, scratch, time.Now())
	scratch[0] = 'z'
	entry, _ := c.get(1)
	if entry.frame[0] != 'a' {
		t.Fatalf("cache aliased the caller's buffer: got %q", entry.frame)
	}
}
