package kdp

import "time"

// State is the liveness state of an endpoint.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// pingValue is an option type over the smoothed RTT, replacing the
// source's "-1 means unknown" sentinel with an explicit known flag.
type pingValue struct {
	value float64 // seconds
	known bool
}

// Conn is one endpoint of a kdp connection. It exchanges messages with
// exactly one remote peer (Config.RemoteHost/RemotePort), performs no
// connect/disconnect handshake, and is not safe for concurrent use - it is
// meant to be owned and polled by a single goroutine, typically once per
// application tick.
type Conn struct {
	cfg   Config
	sock  Socket
	cache *retransmitCache
	amb   *Amb

	lastSndRel, lastSndURel uint32
	lastAckRel              uint32
	lastRecRel, lastRecURel uint32

	state        State
	ping         pingValue
	lastRecvTime time.Time
	lastPingTime time.Time

	sendBuf []byte
	recvBuf []byte

	now func() time.Time
}

// NewConn validates cfg, opens the socket capability, and returns a freshly
// Reset endpoint bound to cfg.LocalPort.
func NewConn(cfg Config) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sock, err := NewUDPSocket(cfg.LocalPort)
	if err != nil {
		return nil, err
	}
	return newConnWithSocket(cfg, sock), nil
}

// newConnWithSocket builds a Conn over an already-open Socket, letting
// tests substitute an in-memory Socket for a real UDP one.
func newConnWithSocket(cfg Config, sock Socket) *Conn {
	c := &Conn{
		cfg:     cfg,
		sock:    sock,
		cache:   newRetransmitCache(cfg.CacheCapacity),
		amb:     NewAmb("kdp"),
		sendBuf: make([]byte, cfg.BufferSize),
		recvBuf: make([]byte, cfg.BufferSize),
		now:     time.Now,
	}
	c.Reset()
	return c
}

// Close releases the underlying socket. It does not reset protocol state.
func (c *Conn) Close() error {
	return c.sock.Close()
}

// State returns the current liveness state.
func (c *Conn) State() State { return c.state }

// Ping returns the smoothed round-trip time and whether a sample has ever
// been taken.
func (c *Conn) Ping() (time.Duration, bool) {
	if !c.ping.known {
		return 0, false
	}
	return time.Duration(c.ping.value * float64(time.Second)), true
}

func timeToFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Send frames payload and hands it to the socket capability. Reliable
// packets pre-increment the reliable sequence counter, are cached for
// possible retransmit, and use the reliable sequence space; unreliable
// packets post-increment the unreliable counter. An oversized payload is a
// programmer error, not a runtime condition, and panics - matching the
// source's assert(size+HEADER_SIZE<=buffSize).
func (c *Conn) Send(payload []byte, reliable bool) error {
	assertf(len(payload)+HeaderSize <= c.cfg.BufferSize,
		"kdp: payload of %d bytes exceeds buffer size %d", len(payload), c.cfg.BufferSize)

	h := header{}
	if reliable {
		c.lastSndRel++
		h.f = flagReliable
		h.seq = c.lastSndRel
	} else {
		h.seq = c.lastSndURel
		c.lastSndURel++
	}

	n := frame(c.sendBuf, h, payload)
	if reliable {
		c.cache.put(h.seq, c.sendBuf[:n], c.now())
	}
	return c.sock.Send(c.cfg.RemoteHost, c.cfg.RemotePort, c.sendBuf[:n])
}

// sendControl frames payload with the control flag set, using the
// unreliable sequence space. It backs the keep-alive Ping and the Pong
// reply; applications never call it directly.
func (c *Conn) sendControl(payload []byte) error {
	h := header{f: flagControl, seq: c.lastSndURel}
	c.lastSndURel++
	n := frame(c.sendBuf, h, payload)
	return c.sock.Send(c.cfg.RemoteHost, c.cfg.RemotePort, c.sendBuf[:n])
}

// PollReceive must be called regularly: it keeps the connection alive by
// emitting an overdue keep-alive Ping, drains every datagram currently
// waiting on the socket, and on drain completion either resets an overdue
// connection or retransmits the oldest unacknowledged reliable packet. It
// returns the length of at most one application message copied into out,
// or 0 if none was delivered this call.
func (c *Conn) PollReceive(out []byte) (int, error) {
	now := c.now()
	if now.Sub(c.lastPingTime) > c.cfg.PingInterval {
		var buf [controlPayloadSize]byte
		marshalPing(buf[:], timeToFloat(now), c.lastRecRel)
		if err := c.sendControl(buf[:]); err != nil {
			c.amb.Logf("ctrl", "ping-send-failed", "%v", err)
		}
		c.lastPingTime = now
	}

	for {
		n, err := c.sock.Receive(c.recvBuf)
		if err != nil {
			if err == errWouldBlock {
				break
			}
			return 0, err
		}

		h, ok := unmarshalHeader(c.recvBuf[:n])
		if !ok {
			continue // stray packet: bad protocol id, dropped silently
		}

		var accepted bool
		if h.reliable() {
			if acceptReliable(h.seq, c.lastRecRel) {
				c.lastRecRel = h.seq
				accepted = true
			}
		} else {
			if acceptUnreliable(h.seq, c.lastRecURel) {
				c.lastRecURel = h.seq
				accepted = true
			}
		}
		if !accepted {
			continue // out-of-order reliable, or stale unreliable
		}

		c.state = Connected
		c.amb.SetState(c.state)
		c.lastRecvTime = c.now()

		if h.control() {
			c.dispatchControl(c.recvBuf[HeaderSize:n])
			continue
		}
		return copy(out, c.recvBuf[HeaderSize:n]), nil
	}

	postDrain := c.now()
	if postDrain.Sub(c.lastRecvTime) > c.cfg.Timeout {
		c.amb.Logf("conn", "timeout", "resetting after %s of silence", postDrain.Sub(c.lastRecvTime))
		c.Reset()
		return 0, nil
	}
	c.maybeRetransmit(postDrain)
	return 0, nil
}

// dispatchControl decodes and handles a control packet's payload. Unknown
// control kinds are dropped silently, matching "stray/malformed packet"
// handling elsewhere.
func (c *Conn) dispatchControl(payload []byte) {
	kind, ts, ack, ok := unmarshalControl(payload)
	if !ok {
		return
	}
	switch kind {
	case ctrlPing:
		c.onPing(ts, ack)
	case ctrlPong:
		c.onPong(timeToFloat(c.now()), ts)
	}
}

// maybeRetransmit considers only the oldest unacknowledged reliable
// packet, and only once the smoothed RTT is known - an unknown ping never
// triggers a retransmit, unlike the source's "-1 * 1.1" which would fire
// immediately. The cached send time is deliberately left untouched on
// resend.
func (c *Conn) maybeRetransmit(now time.Time) {
	if c.lastSndRel == c.lastAckRel {
		return
	}
	if !c.ping.known {
		return
	}
	seq := c.lastAckRel + 1
	entry, ok := c.cache.get(seq)
	if !ok {
		return
	}
	if now.Sub(entry.sendTime).Seconds() > c.ping.value*1.1 {
		c.amb.Logf("cache", "retransmit", "seq=%d age=%s", seq, now.Sub(entry.sendTime))
		if err := c.sock.Send(c.cfg.RemoteHost, c.cfg.RemotePort, entry.frame); err != nil {
			c.amb.Logf("cache", "retransmit-failed", "seq=%d: %v", seq, err)
		}
	}
}

// noURelReceivedYet is the sentinel lastRecURel takes on a freshly Reset
// endpoint. The unreliable sequence space legitimately starts at 0 -
// lastSndURel is post-incremented from 0 - so a literal 0 here would make
// acceptUnreliable reject that very first packet as a non-advancing
// duplicate (delta==0). Seeding one below 0 under wraparound - the same
// "nothing yet" idiom used for ping - makes the first real packet's delta
// equal 1, which is accepted.
const noURelReceivedYet = ^uint32(0)

// Reset zeros every sequence and timing counter, except lastRecURel, which
// takes the noURelReceivedYet sentinel, and marks the endpoint Disconnected. It does not touch the socket or the retransmit cache's
// contents - stale cache entries are simply overwritten as new reliable
// packets are sent after reconnecting.
func (c *Conn) Reset() {
	c.lastSndRel = 0
	c.lastSndURel = 0
	c.lastAckRel = 0
	c.lastRecRel = 0
	c.lastRecURel = noURelReceivedYet

	c.state = Disconnected
	c.ping = pingValue{}
	c.lastRecvTime = time.Time{}
	c.lastPingTime = time.Time{}

	c.amb.SetState(c.state)
}
