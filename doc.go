// Package kdp implements a reliable/unreliable message transport over
// unordered, lossy datagram delivery (UDP). It exposes a small in-process
// API for exchanging variable-length application messages between exactly
// two peers: a protocol-identifier filter rejects stray traffic, monotonic
// sequence numbers with wrap-around distinguish reliable from unreliable
// delivery, a retransmit cache drives selective resend of unacknowledged
// reliable packets, and a keep-alive ping/pong mechanism both measures
// round-trip time and tracks connection liveness.
//
// A Conn is single-threaded and cooperative: it spawns no goroutines of
// its own and must be driven by calling PollReceive regularly from the
// application's own loop, which both drains the socket and keeps the
// connection alive. This mirrors the Kore network engine's original
// Connection/Socket pair, from which this protocol is derived.
package kdp
