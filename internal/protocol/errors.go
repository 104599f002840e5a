package protocol

import (
	"errors"
	"fmt"
)

// Transport failure sentinels. One navigation performs exactly one
// connect/write/read exchange, and every way that exchange can fail maps
// to one of these.
//
// Design decision: We define sentinels per failure phase rather than
// returning raw net errors because:
//  1. Callers render errors, they don't inspect syscall details
//  2. errors.Is lets the navigation boundary and tests classify failures
//  3. The taxonomy stays stable even if the dialer implementation changes
var (
	// ErrConnectFailed is returned when the TCP connection cannot be
	// established (DNS failure, connection refused, unreachable network).
	ErrConnectFailed = errors.New("gopher connect failed")

	// ErrWriteFailed is returned when sending the selector line fails
	// after a successful connect.
	ErrWriteFailed = errors.New("gopher selector write failed")

	// ErrReadFailed is returned when reading the response fails before
	// the server closes the connection.
	ErrReadFailed = errors.New("gopher response read failed")

	// ErrTimeout is returned when any phase of the exchange exceeds the
	// configured deadline.
	ErrTimeout = errors.New("gopher exchange timed out")

	// ErrTooLarge is returned when the server streams more bytes than the
	// configured response cap before closing the connection.
	ErrTooLarge = errors.New("gopher response exceeds size limit")
)

// Op identifies the phase of the exchange in which a transport error
// occurred.
type Op string

// Exchange phases. Timeout and TooLarge replace the phase they interrupted:
// a read that hits the deadline reports OpTimeout, not OpRead.
const (
	OpConnect  Op = "connect"
	OpWrite    Op = "write"
	OpRead     Op = "read"
	OpTimeout  Op = "timeout"
	OpTooLarge Op = "too large"
)

// TransportError is the error type returned by the gopher fetcher.
// It records the failed phase, the address that was being fetched, and
// the underlying cause.
//
// Design decision: We keep the raw cause in Err instead of flattening it
// into a message because:
//  1. The error document shows the cause text to the user verbatim
//  2. Logs want the full chain, not a summary
//  3. Is() maps Op to the matching sentinel, so callers never need the
//     struct fields for classification
type TransportError struct {
	// Op is the exchange phase that failed.
	Op Op

	// Addr is the "host:port" that was being fetched.
	Addr string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("gopher %s %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is maps the error's Op to its sentinel so errors.Is(err, ErrTimeout)
// and friends work without inspecting the struct.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrConnectFailed:
		return e.Op == OpConnect
	case ErrWriteFailed:
		return e.Op == OpWrite
	case ErrReadFailed:
		return e.Op == OpRead
	case ErrTimeout:
		return e.Op == OpTimeout
	case ErrTooLarge:
		return e.Op == OpTooLarge
	}
	return false
}
