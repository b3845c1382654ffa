package kdp

import (
	"encoding/binary"
	"math"
)

// Wire-format constants. protocolID and the 0xFFFFFFF0 mask are taken
// verbatim from the original Kore::Connection; the low 4 bits of the
// tagged id carry the flags, bits 2-3 are reserved and must be zero.
const (
	protocolID     uint32 = 1346655563 // 0x504F5253
	protocolMask   uint32 = 0xFFFFFFF0
	protocolPrefix uint32 = protocolID & protocolMask // 0x504F5250

	// HeaderSize is the framed header length: tagged protocol id (4
	// bytes) + sequence number (4 bytes).
	HeaderSize = 8

	// acceptWindow is the forward quarter of the 32-bit sequence space
	// within which a received sequence number is considered newer than
	// the last one accepted.
	acceptWindow uint32 = 1 << 30
)

// flags occupies the low 4 bits of the tagged protocol id.
type flags uint8

const (
	flagReliable flags = 1 << 0
	flagControl  flags = 1 << 1
)

// header is the 8-byte frame header, decoded from its wire form.
type header struct {
	f   flags
	seq uint32
}

func (h header) reliable() bool { return h.f&flagReliable != 0 }
func (h header) control() bool  { return h.f&flagControl != 0 }

// marshal writes the 8-byte header into dst, which must have length >=
// HeaderSize. All multi-byte fields are little-endian on the wire,
// resolving the byte-order ambiguity left open by the original source's
// raw struct punning.
func (h header) marshal(dst []byte) {
	tag := protocolPrefix | uint32(h.f)
	binary.LittleEndian.PutUint32(dst[0:4], tag)
	binary.LittleEndian.PutUint32(dst[4:8], h.seq)
}

// unmarshalHeader decodes the header from src and applies the
// protocol-id filter. ok is false when src is too short or the tagged id's
// high 28 bits don't match protocolPrefix - in both cases the datagram is
// stray and must be discarded silently, never surfaced as an error.
func unmarshalHeader(src []byte) (h header, ok bool) {
	if len(src) < HeaderSize {
		return header{}, false
	}
	tag := binary.LittleEndian.Uint32(src[0:4])
	if tag&protocolMask != protocolPrefix {
		return header{}, false
	}
	return header{
		f:   flags(tag &^ protocolMask),
		seq: binary.LittleEndian.Uint32(src[4:8]),
	}, true
}

// frame encodes a full datagram (header + payload) into dst, which must be
// at least HeaderSize+len(payload) long, and returns the framed length.
func frame(dst []byte, h header, payload []byte) int {
	h.marshal(dst)
	n := copy(dst[HeaderSize:], payload)
	return HeaderSize + n
}

// Control-payload kinds and layouts, carried from the original source's
// ControlType enum. Ping carries the sender's timestamp and its own
// cumulative ack of the peer's reliable stream; Pong echoes the timestamp
// back. Pong's CumulativeAck field exists only for wire symmetry - it is
// never read by control.go, matching "Pong ack ignored" from the design
// notes.
type controlKind uint8

const (
	ctrlPing controlKind = 0
	ctrlPong controlKind = 1
)

const controlPayloadSize = 1 + 8 + 4 // kind byte + float64 + uint32

// marshalPing writes a Ping control payload into dst (len(dst) >=
// controlPayloadSize).
func marshalPing(dst []byte, timestamp float64, cumulativeAck uint32) {
	dst[0] = byte(ctrlPing)
	binary.LittleEndian.PutUint64(dst[1:9], math.Float64bits(timestamp))
	binary.LittleEndian.PutUint32(dst[9:13], cumulativeAck)
}

// marshalPong writes a Pong control payload into dst (len(dst) >=
// controlPayloadSize), echoing echoedTimestamp verbatim.
func marshalPong(dst []byte, echoedTimestamp float64) {
	dst[0] = byte(ctrlPong)
	binary.LittleEndian.PutUint64(dst[1:9], math.Float64bits(echoedTimestamp))
	binary.LittleEndian.PutUint32(dst[9:13], 0)
}

// unmarshalControl decodes a control payload's kind, timestamp and
// cumulative-ack fields. ok is false if payload is too short.
func unmarshalControl(payload []byte) (kind controlKind, timestamp float64, cumulativeAck uint32, ok bool) {
	if len(payload) < controlPayloadSize {
		return 0, 0, 0, false
	}
	kind = controlKind(payload[0])
	timestamp = math.Float64frombits(binary.LittleEndian.Uint64(payload[1:9]))
	cumulativeAck = binary.LittleEndian.Uint32(payload[9:13])
	return kind, timestamp, cumulativeAck, true
}
