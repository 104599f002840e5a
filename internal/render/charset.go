package render

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnknownCharset is returned when a charset name has no decoder.
var ErrUnknownCharset = errors.New("unknown charset")

// LookupCharset resolves a user-facing charset name to a decoder for menus
// served by legacy holes. Names are case-insensitive and cover the aliases
// seen in the wild. UTF-8 names (and the empty string) return a nil
// Encoding: UTF-8 input needs no transformation.
func LookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp437", "ibm437", "437":
		return charmap.CodePage437, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "koi8-r", "koi8r":
		return charmap.KOI8R, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
}
