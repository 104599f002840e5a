package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GopherAddress errors.
var (
	// ErrEmptyAddress is returned when the URL is empty.
	ErrEmptyAddress = errors.New("gopher address cannot be empty")
	// ErrInvalidAddress is returned when the URL format is invalid.
	ErrInvalidAddress = errors.New("invalid gopher address format")
	// ErrInvalidPort is returned when the port is not a positive 16-bit integer.
	ErrInvalidPort = errors.New("port must be between 1 and 65535")
)

const (
	// DefaultPort is the well-known gopher port used when the URL omits one.
	DefaultPort = 70

	// schemePrefix terminates the URL scheme component.
	schemePrefix = "//"
	// gopherScheme is the only scheme this client speaks.
	gopherScheme = "gopher:"
	// typeQuery carries the item type across navigations. The gopher URL
	// scheme has no type marker outside the first selector character, so
	// the type is round-tripped through a query parameter instead.
	typeQuery = "?gopher_type="
)

// GopherAddress is an immutable value object representing one gopher
// resource: the host and port to dial, the selector to send, and the
// item type the response should be rendered as.
//
// Design decision: the selector is kept as an opaque string exactly as it
// appeared in the URL path (leading slash included, no percent-decoding).
// RFC 1436 selectors are opaque server-side handles; decoding them would
// corrupt selectors that legitimately contain encoded bytes.
type GopherAddress struct {
	host     string   // Host name or IP, never empty for a valid address
	port     int      // TCP port, 1..65535, default 70
	selector string   // Opaque selector, "" or "/"-prefixed
	itemType ItemType // Requested render type, ItemNone when absent
}

// ParseAddress parses a URL of the form
//
//	gopher://host[:port][/selector][?gopher_type=T]
//
// An omitted port defaults to 70. An omitted selector is the empty string
// (the server's root menu). An omitted gopher_type yields ItemNone, which
// selects the menu/text rendering path.
func ParseAddress(rawURL string) (GopherAddress, error) {
	if rawURL == "" {
		return GopherAddress{}, ErrEmptyAddress
	}

	// Split off the item type carried in the query, if any. Anything after
	// a second occurrence of the marker is discarded.
	rest, typePart, hasType := strings.Cut(rawURL, typeQuery)
	itemType := ItemNone
	if hasType {
		typePart, _, _ = strings.Cut(typePart, typeQuery)
		t, err := ParseItemType(typePart)
		if err != nil {
			return GopherAddress{}, fmt.Errorf("%w: gopher_type=%q", err, typePart)
		}
		itemType = t
	}

	scheme, rest, found := strings.Cut(rest, schemePrefix)
	if !found {
		return GopherAddress{}, fmt.Errorf("%w: missing %q", ErrInvalidAddress, schemePrefix)
	}
	if !strings.EqualFold(scheme, gopherScheme) {
		return GopherAddress{}, fmt.Errorf("%w: scheme %q is not gopher", ErrInvalidAddress, scheme)
	}

	// Everything up to the first slash is host[:port]; the remainder,
	// slash included, is the selector.
	hostPort, path, hasPath := strings.Cut(rest, "/")
	selector := ""
	if hasPath {
		selector = "/" + path
	}

	host, portStr, hasPort := strings.Cut(hostPort, ":")
	if host == "" {
		return GopherAddress{}, fmt.Errorf("%w: empty host", ErrInvalidAddress)
	}

	port := DefaultPort
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return GopherAddress{}, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
		}
		if p < 1 || p > 65535 {
			return GopherAddress{}, fmt.Errorf("%w: %d", ErrInvalidPort, p)
		}
		port = p
	}

	return GopherAddress{
		host:     host,
		port:     port,
		selector: selector,
		itemType: itemType,
	}, nil
}

// MustParseAddress parses a URL or panics if invalid.
// Use only for known-valid addresses in tests or initialization.
func MustParseAddress(rawURL string) GopherAddress {
	a, err := ParseAddress(rawURL)
	if err != nil {
		panic(err)
	}
	return a
}

// NewGopherAddress builds an address from already-separated components.
// Used when following a menu entry, where the pieces arrive individually.
func NewGopherAddress(host string, port int, selector string, itemType ItemType) (GopherAddress, error) {
	if host == "" {
		return GopherAddress{}, fmt.Errorf("%w: empty host", ErrInvalidAddress)
	}
	if port < 1 || port > 65535 {
		return GopherAddress{}, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return GopherAddress{
		host:     host,
		port:     port,
		selector: selector,
		itemType: itemType,
	}, nil
}

// Host returns the host name or IP address.
func (a GopherAddress) Host() string {
	return a.host
}

// Port returns the TCP port.
func (a GopherAddress) Port() int {
	return a.port
}

// Selector returns the opaque selector string, "" for the root menu.
func (a GopherAddress) Selector() string {
	return a.selector
}

// ItemType returns the requested render type, ItemNone when the URL
// carried no gopher_type parameter.
func (a GopherAddress) ItemType() ItemType {
	return a.itemType
}

// HostPort returns "host:port" for dialing.
func (a GopherAddress) HostPort() string {
	return a.host + ":" + strconv.Itoa(a.port)
}

// WithItemType returns a copy of the address requesting a different
// render type. The original is unchanged.
func (a GopherAddress) WithItemType(t ItemType) GopherAddress {
	a.itemType = t
	return a
}

// String reconstructs the canonical URL form, with the port always
// explicit and the item type appended when present.
func (a GopherAddress) String() string {
	var b strings.Builder
	b.WriteString("gopher://")
	b.WriteString(a.host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(a.port))
	b.WriteString(a.selector)
	if a.itemType != ItemNone {
		b.WriteString(typeQuery)
		b.WriteString(a.itemType.String())
	}
	return b.String()
}

// IsZero returns true if this is a zero value (empty) GopherAddress.
func (a GopherAddress) IsZero() bool {
	return a.host == ""
}

// Equals returns true if two addresses identify the same resource,
// ignoring the requested item type.
func (a GopherAddress) Equals(other GopherAddress) bool {
	return a.host == other.host && a.port == other.port && a.selector == other.selector
}
