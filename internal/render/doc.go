// Package render converts raw gopher responses into self-contained HTML
// documents. Menus become styled hypertext with one glyph-prefixed link
// per entry, images become data-URI pages, and failures become error
// pages, so every navigation produces something displayable.
package render
