package render

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// Page fragments shared by every rendered menu. The monospace body keeps
// column-aligned menu art intact, and the 2px paragraph margin keeps
// entries as dense as a terminal listing.
const (
	menuHeader = `<html><head><meta charset="UTF-8"><title>Gopher Page</title>` +
		`<style>body { font-family: monospace; background-color: #f0f0f0; color: #333; } ` +
		`a { text-decoration: none; color: #0000FF;} p { margin: 2px; }</style>` +
		`</head><body><h2>Gopherspace</h2><pre>`
	menuFooter = `</pre></body></html>`

	// imagePage centers a single data-URI image on a dark page. Embedding
	// the bytes keeps the Document self-contained: displaying it never
	// triggers a second network fetch.
	imagePage = `<html><body style="background-color: #333; display: grid; ` +
		`place-items: center; margin: 0;"><img src="data:%s;base64,%s"></body></html>`

	// errorPage is the terminal fallback shown when a navigation fails.
	errorPage = `<h1>Error accessing Gopher</h1><p>%s</p>`
)

// Glyphs prefixed to menu entries so item types are recognizable at a
// glance, the way classic gopher clients mark them.
const (
	glyphText    = "📄"
	glyphMenu    = "📁"
	glyphWeb     = "🌐"
	glyphImage   = "🖼️"
	glyphUnknown = "❓"
)

// LinkWriter builds the href for one gopher menu entry. The default
// writer emits gopher:// URLs carrying the item type in the gopher_type
// query parameter; the HTTP gateway installs a writer that points entries
// back at its own /gopher endpoint instead.
type LinkWriter func(entry model.MenuEntry) string

// GopherLink is the default LinkWriter. It reconstructs the entry as a
// gopher URL with an explicit port and the gopher_type marker, the same
// form ParseAddress accepts back.
//
// Design decision: the URL is assembled textually rather than through
// net/url because:
//  1. Selectors are opaque server-side handles; percent-encoding them
//     would corrupt selectors that already contain encoded bytes
//  2. Menu links must round-trip through ParseAddress unchanged, and that
//     parser treats the selector as raw text too
func GopherLink(entry model.MenuEntry) string {
	return fmt.Sprintf("gopher://%s:%d%s?gopher_type=%s",
		entry.Host, entry.Port, entry.Selector, entry.Type)
}

// Renderer converts raw gopher responses into displayable HTML documents.
//
// Design decision: the renderer is a pure bytes-to-markup transform with
// no I/O of its own because:
//  1. The same renderer then serves the CLI, the navigation session, and
//     the HTTP gateway without caring where the bytes came from
//  2. Rendering can never fail, so callers that already hold a transport
//     error are never handed a second error to deal with
type Renderer struct {
	// linkWriter builds entry hrefs, GopherLink unless overridden.
	linkWriter LinkWriter

	// encoding decodes menu bytes from a legacy charset before rendering.
	// nil means the input is already UTF-8.
	encoding encoding.Encoding
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLinkWriter replaces the default gopher:// link construction.
// A nil writer keeps the default.
func WithLinkWriter(writer LinkWriter) Option {
	return func(r *Renderer) {
		if writer != nil {
			r.linkWriter = writer
		}
	}
}

// WithEncoding sets the charset menu and text responses are decoded from
// before rendering. Use LookupCharset to resolve a charset name. A nil
// encoding keeps the UTF-8 default.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *Renderer) {
		r.encoding = enc
	}
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		linkWriter: GopherLink,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RenderMenu renders decoded menu text into a hypertext page. Entries
// resolve relative host and port fields against currentHost and
// currentPort; lines too short to carry an entry are skipped silently.
// Plain text responses take this path too, each line read as a menu
// entry whose first character is the type code.
func (r *Renderer) RenderMenu(text, currentHost string, currentPort int) model.Document {
	var sb strings.Builder
	sb.WriteString(menuHeader)

	for _, entry := range model.ParseMenu(text, currentHost, currentPort) {
		r.writeEntry(&sb, entry)
	}

	sb.WriteString(menuFooter)

	baseURL := ""
	if addr, err := model.NewGopherAddress(currentHost, currentPort, "", model.ItemNone); err == nil {
		baseURL = addr.String()
	}

	return model.NewDocument(sb.String(), baseURL)
}

// writeEntry writes one menu entry as a paragraph. Display text and href
// values are HTML-escaped here and nowhere else; servers control both and
// must not be able to inject markup into the page.
func (r *Renderer) writeEntry(sb *strings.Builder, entry model.MenuEntry) {
	display := html.EscapeString(entry.Display)

	switch {
	case entry.Type.IsInfo():
		// Two leading spaces line info text up with linked entries.
		fmt.Fprintf(sb, "<p>  %s</p>", display)
	case entry.Type == model.ItemText:
		r.writeLink(sb, glyphText, entry, display, "")
	case entry.Type.IsMenu():
		r.writeLink(sb, glyphMenu, entry, display, "")
	case entry.Type == model.ItemHTML:
		// 'h' entries link straight at the web URL carried in the
		// selector. Entries without the URL: marker keep the selector
		// unchanged and resolve against the page base like any other
		// relative href.
		fmt.Fprintf(sb, `<p>%s <a href="%s">%s</a></p>`,
			glyphWeb, html.EscapeString(entry.ExternalURL()), display)
	case entry.Type.IsImage():
		r.writeLink(sb, glyphImage, entry, display, "")
	default:
		// Unknown codes still get a link; the server may well serve the
		// selector even if this client cannot name the type.
		suffix := fmt.Sprintf(" (type %s)", html.EscapeString(entry.Type.String()))
		r.writeLink(sb, glyphUnknown, entry, display, suffix)
	}
}

// writeLink writes a glyph-prefixed linked entry.
func (r *Renderer) writeLink(sb *strings.Builder, glyph string, entry model.MenuEntry, display, suffix string) {
	fmt.Fprintf(sb, `<p>%s <a href="%s">%s</a>%s</p>`,
		glyph, html.EscapeString(r.linkWriter(entry)), display, suffix)
}

// RenderImage renders raw image bytes as a page with the image embedded
// as a base64 data URI. The MIME type comes from the declared item type;
// the bytes are never sniffed, matching how gopher trusts the menu that
// linked the item.
func (r *Renderer) RenderImage(data []byte, itemType model.ItemType) model.Document {
	markup := fmt.Sprintf(imagePage,
		itemType.MIMEType(), base64.StdEncoding.EncodeToString(data))
	return model.NewDocument(markup, "")
}

// RenderError renders a failure as a displayable page. It never fails;
// this is the terminal fallback that keeps navigation total.
func (r *Renderer) RenderError(addr model.GopherAddress, err error) model.Document {
	cause := "unknown error"
	if err != nil {
		cause = err.Error()
	}

	baseURL := ""
	if !addr.IsZero() {
		baseURL = addr.WithItemType(model.ItemNone).String()
	}

	return model.NewDocument(fmt.Sprintf(errorPage, html.EscapeString(cause)), baseURL)
}

// RenderDocument renders a fetched response according to the item type the
// address was navigated with: image types take the image path, everything
// else is decoded and takes the menu/text path. The returned document
// carries the address, minus its gopher_type marker, as base URL.
func (r *Renderer) RenderDocument(addr model.GopherAddress, body []byte) model.Document {
	baseURL := addr.WithItemType(model.ItemNone).String()

	if addr.ItemType().IsImage() {
		doc := r.RenderImage(body, addr.ItemType())
		doc.BaseURL = baseURL
		return doc
	}

	doc := r.RenderMenu(r.decode(body), addr.Host(), addr.Port())
	doc.BaseURL = baseURL
	return doc
}

// decode converts raw response bytes to UTF-8 text. A configured legacy
// encoding is applied first; bytes that still do not form valid UTF-8 are
// dropped rather than replaced, so mojibake never reaches the page.
func (r *Renderer) decode(data []byte) string {
	if r.encoding != nil {
		if decoded, err := r.encoding.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}
	return strings.ToValidUTF8(string(data), "")
}
