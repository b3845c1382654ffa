package kdp

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Socket is the non-blocking datagram capability the connection engine is
// built on (C1 in the component table). It is deliberately the smallest
// possible interface so a test can substitute an in-memory pipe instead of
// a real UDP socket.
type Socket interface {
	// Send is a best-effort datagram send to (host, port). It never
	// blocks and never retries; a short write is logged, and any other
	// error is reported through err. Conn logs the errors of the sends it
	// makes on its own (keep-alive, Pong, retransmit) and returns the error
	// of an application Send to its caller - the reliability layer, not
	// the socket, is responsible for recovery.
	Send(host string, port int, b []byte) error

	// Receive performs one non-blocking read into buf. It returns
	// errWouldBlock when nothing is currently available, matching the
	// source's "receive() returns <= 0" contract.
	Receive(buf []byte) (n int, err error)

	// Close releases the underlying OS resources.
	Close() error
}

// udpSocket is the concrete Socket backed by a real net.PacketConn.
type udpSocket struct {
	pconn net.PacketConn
}

// NewUDPSocket binds a UDP socket on localPort for any local address, the
// Go equivalent of the original Socket::open's socket()+bind() pair. Go's
// net.PacketConn has no native non-blocking mode (unlike BSD's
// O_NONBLOCK/Windows' FIONBIO that the original Socket.cpp sets); Receive
// emulates it with a zero-duration read deadline on every call instead.
func NewUDPSocket(localPort int) (Socket, error) {
	pconn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", localPort))
	if err != nil {
		return nil, fmt.Errorf("kdp: could not bind socket: %w", err)
	}
	return &udpSocket{pconn: pconn}, nil
}

func (s *udpSocket) Send(host string, port int, b []byte) error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("kdp: could not resolve address: %w", err)
	}
	n, err := s.pconn.WriteTo(b, addr)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("kdp: could not send packet: %w", err)
	}
	if n != len(b) {
		ambLogger.Printf("short write: sent %d of %d bytes", n, len(b))
	}
	return nil
}

func (s *udpSocket) Receive(buf []byte) (int, error) {
	if err := s.pconn.SetReadDeadline(time.Now()); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return 0, ErrClosed
		}
		return 0, err
	}
	n, _, err := s.pconn.ReadFrom(buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return 0, ErrClosed
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, errWouldBlock
		}
		if errors.Is(err, errWouldBlock) {
			return 0, errWouldBlock
		}
		return 0, err
	}
	return n, nil
}

func (s *udpSocket) Close() error {
	return s.pconn.Close()
}
