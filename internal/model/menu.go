package model

import (
	"strconv"
	"strings"
)

// urlSelectorPrefix marks an 'h' entry whose selector is a literal web URL
// rather than a gopher selector.
const urlSelectorPrefix = "URL:"

// MenuEntry is one parsed line of a gopher menu: a type code followed by
// up to four tab-separated fields. Entries are constructed transiently
// while rendering or crawling and are not persisted.
type MenuEntry struct {
	// Type is the item type from the first character of the line.
	Type ItemType `json:"type"`

	// Display is the user-visible text for the entry.
	Display string `json:"display"`

	// Selector is the opaque selector to request, "" when the field
	// was missing.
	Selector string `json:"selector,omitempty"`

	// Host is the server carrying the item. Relative entries that omit
	// the field resolve to the host of the menu they appeared in.
	Host string `json:"host"`

	// Port is the TCP port on Host. Resolved like Host for relative
	// entries; a malformed port field also falls back to the menu's port.
	Port int `json:"port"`
}

// ParseMenuLine parses one menu line, resolving relative entries against
// the host and port the menu was fetched from. It returns false for lines
// that carry no entry and must be skipped.
//
// Parsing rules, in order:
//  1. A single trailing "\r" is stripped (menus arrive with CRLF line ends).
//  2. Lines shorter than 2 characters are skipped: one character cannot
//     hold both a type code and content. This also drops the lone "."
//     terminator some servers send.
//  3. The first character is the type; the remainder splits on TAB into
//     display text, selector, host, and port. Anything past the fourth
//     field (Gopher+ attributes) is ignored.
//  4. Missing or empty host and port fields resolve to currentHost and
//     currentPort, never to empty values. A port field that is not a
//     number in 1..65535 resolves to currentPort as well.
func ParseMenuLine(line, currentHost string, currentPort int) (MenuEntry, bool) {
	line = strings.TrimSuffix(line, "\r")
	if len(line) < 2 {
		return MenuEntry{}, false
	}

	entry := MenuEntry{
		Type: ItemType(line[0]),
		Host: currentHost,
		Port: currentPort,
	}

	fields := strings.Split(line[1:], "\t")
	entry.Display = fields[0]
	if len(fields) > 1 {
		entry.Selector = fields[1]
	}
	if len(fields) > 2 && fields[2] != "" {
		entry.Host = fields[2]
	}
	if len(fields) > 3 && fields[3] != "" {
		if p, err := strconv.Atoi(fields[3]); err == nil && p >= 1 && p <= 65535 {
			entry.Port = p
		}
	}

	return entry, true
}

// ParseMenu parses a whole decoded menu, skipping unparseable lines.
func ParseMenu(text, currentHost string, currentPort int) []MenuEntry {
	var entries []MenuEntry
	for _, line := range strings.Split(text, "\n") {
		if entry, ok := ParseMenuLine(line, currentHost, currentPort); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// IsExternal reports whether the entry points outside gopherspace: an 'h'
// item whose selector carries a literal URL.
func (e MenuEntry) IsExternal() bool {
	return e.Type == ItemHTML && strings.HasPrefix(e.Selector, urlSelectorPrefix)
}

// ExternalURL returns the web URL of an external entry with the URL:
// prefix stripped exactly once. For every other entry it returns the
// selector unchanged.
func (e MenuEntry) ExternalURL() string {
	return strings.TrimPrefix(e.Selector, urlSelectorPrefix)
}

// Address converts the entry into a fetchable GopherAddress carrying the
// entry's own item type. Callers should check IsExternal first: external
// entries are followed over the web, not fetched from a gopher server.
func (e MenuEntry) Address() (GopherAddress, error) {
	return NewGopherAddress(e.Host, e.Port, e.Selector, e.Type)
}
