// Package protocol implements the gopher wire exchange.
//
// Gopher (RFC 1436) is a single-exchange protocol: the client connects,
// sends one selector line terminated by CRLF, and reads the response until
// the server closes the connection. There is no framing, no status code,
// and no connection reuse. This package performs exactly that exchange and
// nothing else; interpreting the bytes is the renderer's job.
//
// The fetcher dials through an injected proxy.Dialer so the same code
// serves direct TCP, generic SOCKS5, and Tor connections. Failures carry
// a *TransportError recording the phase (connect, write, read, timeout,
// too large) so the navigation boundary can classify them with errors.Is.
package protocol
