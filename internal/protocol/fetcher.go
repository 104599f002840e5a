package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/net/proxy"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// Default transport tuning. The timeout is an idle limit, not a total
// one: a transfer that keeps delivering data is never cut off, however
// slow the link (Tor circuits routinely trickle). The cap bounds memory
// because gopher responses carry no length and end only when the peer
// closes.
const (
	// DefaultTimeout is the idle deadline applied to the dial, the
	// selector write, and each read.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxResponseSize caps the accumulated response at 4 MiB.
	DefaultMaxResponseSize = 4 * 1024 * 1024

	// DefaultReadChunkSize is the per-read buffer size.
	DefaultReadChunkSize = 8 * 1024
)

// Fetcher defines the interface for one-shot gopher exchanges.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. The browser, crawler, and gateway all consume it uniformly
//  2. Allows for easy mocking in tests
//  3. A caching or recording fetcher can wrap the TCP one later
type Fetcher interface {
	// Fetch performs exactly one request/response exchange: connect to the
	// address, send its selector, read until the peer closes. It returns
	// the accumulated response bytes.
	//
	// Cancelling the context ends the exchange in any phase, including a
	// transfer already delivering data.
	Fetch(ctx context.Context, addr model.GopherAddress) ([]byte, error)

	// Protocol returns the protocol name ("gopher").
	Protocol() string

	// DefaultPort returns the well-known port for this protocol.
	DefaultPort() int
}

// GopherFetcher is the TCP implementation of Fetcher. Each call opens a
// fresh connection, writes the selector terminated by CRLF, and reads to
// end-of-stream. Gopher is a stateless single-exchange protocol, so there
// is no connection reuse and no retry: one attempt per call.
//
// Design decision: We take a proxy.Dialer rather than dialing directly
// because:
//  1. Tor and SOCKS5 routing is handled by injecting a different dialer
//  2. Consistent with how the tor package exposes connectivity
//  3. Allows for testing with mock dialers
type GopherFetcher struct {
	// dialer establishes the TCP connection. proxy.Direct for plain
	// connections, a SOCKS5 dialer for proxied ones.
	dialer proxy.Dialer

	// timeout is the idle deadline for each network operation.
	timeout time.Duration

	// maxResponseSize caps the accumulated response. Zero means unlimited,
	// restoring the reference behavior of trusting the server.
	maxResponseSize int64

	// readChunkSize is the size of the per-read buffer.
	readChunkSize int
}

// FetcherOption configures a GopherFetcher.
type FetcherOption func(*GopherFetcher)

// WithTimeout sets the idle deadline. It applies separately to connection
// establishment, the selector write, and every read: a fetch fails only
// when one of them makes no progress for the full duration, so a slow but
// live transfer runs to completion.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *GopherFetcher) {
		f.timeout = timeout
	}
}

// WithMaxResponseSize caps the accumulated response size in bytes.
// Exceeding the cap fails the fetch with ErrTooLarge. Zero disables the
// cap.
func WithMaxResponseSize(size int64) FetcherOption {
	return func(f *GopherFetcher) {
		f.maxResponseSize = size
	}
}

// WithReadChunkSize sets the per-read buffer size. Values below one byte
// are ignored.
func WithReadChunkSize(size int) FetcherOption {
	return func(f *GopherFetcher) {
		if size > 0 {
			f.readChunkSize = size
		}
	}
}

// NewGopherFetcher creates a gopher fetcher using the given dialer.
// A nil dialer means direct TCP connections.
func NewGopherFetcher(dialer proxy.Dialer, opts ...FetcherOption) *GopherFetcher {
	if dialer == nil {
		dialer = proxy.Direct
	}

	f := &GopherFetcher{
		dialer:          dialer,
		timeout:         DefaultTimeout,
		maxResponseSize: DefaultMaxResponseSize,
		readChunkSize:   DefaultReadChunkSize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Protocol returns the protocol name.
func (f *GopherFetcher) Protocol() string {
	return "gopher"
}

// DefaultPort returns the well-known gopher port.
func (f *GopherFetcher) DefaultPort() int {
	return model.DefaultPort
}

// Fetch performs one gopher exchange with addr.
//
// The connection is closed on every exit path. Failures are reported as
// *TransportError; a stall in any phase reports OpTimeout. The timeout is
// re-armed before every read, so it bounds silence since the last read,
// not the length of the whole transfer.
func (f *GopherFetcher) Fetch(ctx context.Context, addr model.GopherAddress) ([]byte, error) {
	if addr.IsZero() {
		return nil, &TransportError{Op: OpConnect, Addr: "", Err: model.ErrInvalidAddress}
	}

	hostPort := addr.HostPort()

	dialCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	conn, err := f.dialWithContext(dialCtx, "tcp", hostPort)
	if err != nil {
		if isTimeout(err) {
			return nil, &TransportError{Op: OpTimeout, Addr: hostPort, Err: err}
		}
		return nil, &TransportError{Op: OpConnect, Addr: hostPort, Err: err}
	}
	defer conn.Close()

	// Idle deadlines keep a slow transfer alive indefinitely, so the
	// context is the only thing that can end a live fetch early. Closing
	// the conn is the one way to interrupt a blocked Read.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	if f.timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(f.timeout)); err != nil {
			return nil, &TransportError{Op: OpConnect, Addr: hostPort, Err: err}
		}
	}

	// Request is the selector followed by CRLF; an empty selector asks for
	// the root menu. Selectors are opaque bytes and sent verbatim.
	if _, err := conn.Write([]byte(addr.Selector() + "\r\n")); err != nil {
		if isTimeout(err) {
			return nil, &TransportError{Op: OpTimeout, Addr: hostPort, Err: err}
		}
		return nil, &TransportError{Op: OpWrite, Addr: hostPort, Err: err}
	}

	// The response has no length framing: read until the server closes
	// the connection, the reads stall past the idle deadline, or the cap
	// is exceeded.
	var body bytes.Buffer
	buf := make([]byte, f.readChunkSize)
	for {
		if f.timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(f.timeout)); err != nil {
				return nil, readFailure(ctx, hostPort, err)
			}
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if f.maxResponseSize > 0 && int64(body.Len())+int64(n) > f.maxResponseSize {
				return nil, &TransportError{Op: OpTooLarge, Addr: hostPort, Err: ErrTooLarge}
			}
			body.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, readFailure(ctx, hostPort, err)
		}
	}

	return body.Bytes(), nil
}

// readFailure classifies an error out of the read loop. The watchdog
// close surfaces as net.ErrClosed, so a fired context takes precedence
// over the raw error and the report carries the context error instead.
func readFailure(ctx context.Context, hostPort string, err error) *TransportError {
	if cerr := ctx.Err(); cerr != nil {
		err = cerr
	}
	if isTimeout(err) {
		return &TransportError{Op: OpTimeout, Addr: hostPort, Err: err}
	}
	return &TransportError{Op: OpRead, Addr: hostPort, Err: err}
}

// dialWithContext dials a connection respecting context cancellation.
//
// Design decision: We implement our own context-aware dial because
// proxy.Dialer has no context variant, and SOCKS5 dialers only satisfy
// the plain Dial interface. If the context fires before the dial
// completes, the goroutine closes the late connection so no socket
// outlives its navigation.
func (f *GopherFetcher) dialWithContext(ctx context.Context, network, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}

	resultCh := make(chan dialResult)

	go func() {
		conn, err := f.dialer.Dial(network, address)
		select {
		case resultCh <- dialResult{conn, err}:
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultCh:
		return result.conn, result.err
	}
}

// isTimeout reports whether err is a deadline failure from the dialer,
// the connection, or the context.
func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
