package kdp

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Socket operations performed after Close.
var ErrClosed = errors.New("kdp: socket closed")

// errWouldBlock signals that a non-blocking receive found nothing waiting.
// It never crosses the Conn API boundary; PollReceive treats it as "drain
// complete", matching the source's "receive() returns <= 0" contract.
var errWouldBlock = errors.New("kdp: would block")

// assertf panics with a formatted message. It exists only for the one
// programmer-error case this package surfaces as a panic: an oversized
// payload handed to Send. Every other failure mode is returned as an error,
// absorbed internally, or reflected in Conn.State(), never a panic.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
