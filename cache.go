package kdp

import "time"

// cacheEntry is a single retransmit-cache slot: the exact framed datagram
// (header included) as last sent, and when it was sent.
type cacheEntry struct {
	sendTime time.Time
	frame    []byte
}

// retransmitCache is the direct-mapped ring of the last cacheCapacity
// reliable outbound packets, keyed by seq mod cacheCapacity. Writing a slot
// unconditionally overwrites whatever was there - the cache is only
// correct while at most cacheCapacity reliable packets are unacknowledged.
// That bound is a policy obligation on the caller, not something this type
// detects or enforces: an overflowing caller silently loses retransmit
// coverage for the oldest overwritten packets.
type retransmitCache struct {
	capacity uint32
	slots    []cacheEntry
}

func newRetransmitCache(capacity int) *retransmitCache {
	return &retransmitCache{
		capacity: uint32(capacity),
		slots:    make([]cacheEntry, capacity),
	}
}

func (c *retransmitCache) slot(seq uint32) uint32 {
	return seq % c.capacity
}

// put stores frame (which must include its header) as the cached copy of
// sequence number seq, sent at now. It always overwrites.
func (c *retransmitCache) put(seq uint32, f []byte, now time.Time) {
	s := c.slot(seq)
	entry := &c.slots[s]
	if cap(entry.frame) < len(f) {
		entry.frame = make([]byte, len(f))
	} else {
		entry.frame = entry.frame[:len(f)]
	}
	copy(entry.frame, f)
	entry.sendTime = now
}

// get returns the cached entry for seq and whether it has ever been
// written. The caller is responsible for knowing seq actually belongs to
// an in-flight packet; a stale or never-written slot is returned verbatim
// otherwise.
func (c *retransmitCache) get(seq uint32) (cacheEntry, bool) {
	entry := c.slots[c.slot(seq)]
	return entry, entry.frame != nil
}
