package kdp

// Control plane (C5): keep-alive, RTT measurement, cumulative ack
// transport. Ported directly from the original Kore::Connection's
// processControlMessage, including the smoothing formula and the
// "don't smooth the first sample" special case.

// pingSmoothing is the exponential-smoothing weight applied to the
// previous ping estimate; the source's literal form (alpha*old +
// (1-alpha)*new) gives a very weak filter that is almost the raw sample,
// and that is preserved here rather than "improved".
const pingSmoothing = 0.1

// onPing handles an inbound Ping: theirLastRecRel is applied as a
// cumulative ack (advancing lastAckRel in bulk, freeing cache slots),
// then a Pong echoing theirTimestamp is sent back immediately.
func (c *Conn) onPing(theirTimestamp float64, theirLastRecRel uint32) {
	if acceptUnreliable(theirLastRecRel, c.lastAckRel) {
		c.lastAckRel = theirLastRecRel
	}
	var buf [controlPayloadSize]byte
	marshalPong(buf[:], theirTimestamp)
	if err := c.sendControl(buf[:]); err != nil {
		c.amb.Logf("ctrl", "pong-send-failed", "%v", err)
	}
}

// onPong handles an inbound Pong: echoedTimestamp is the Ping timestamp
// this peer sent earlier, so now-echoedTimestamp is a fresh RTT sample.
// The cumulative-ack field in Pong is intentionally ignored: acks only
// ever advance via an inbound Ping, keeping the ack path one-directional.
func (c *Conn) onPong(now float64, echoedTimestamp float64) {
	sample := now - echoedTimestamp
	if !c.ping.known {
		c.ping = pingValue{value: sample, known: true}
		return
	}
	c.ping.value = pingSmoothing*c.ping.value + (1-pingSmoothing)*sample
}
