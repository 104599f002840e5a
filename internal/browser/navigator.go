package browser

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/protocol"
	"github.com/felipeandrian/navfep-gopher/internal/render"
)

// Navigator performs single navigations: parse the URL, fetch the bytes,
// render the page. It is safe for concurrent use.
//
// Design decision: Navigate returns a Document and never an error because:
//  1. Every failure already has a rendered form; handing callers both an
//     error and a fallback page would invite inconsistent handling
//  2. The display layer upstream has nothing useful to do with a raw
//     error besides showing it, which is exactly what the error page is
type Navigator struct {
	fetcher  protocol.Fetcher
	renderer *render.Renderer
	logger   *slog.Logger

	// group collapses concurrent fetches for the same target into a
	// single wire exchange whose bytes are shared.
	group singleflight.Group
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithLogger sets the logger used to record navigation failures.
func WithLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNavigator creates a Navigator from a fetcher and a renderer. A nil
// fetcher gets a direct-connection gopher fetcher with default tuning;
// a nil renderer gets default rendering.
func NewNavigator(fetcher protocol.Fetcher, renderer *render.Renderer, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		fetcher:  fetcher,
		renderer: renderer,
		logger:   slog.Default(),
	}

	if n.fetcher == nil {
		n.fetcher = protocol.NewGopherFetcher(nil)
	}
	if n.renderer == nil {
		n.renderer = render.NewRenderer()
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Navigate fetches rawURL and returns a displayable document. It never
// returns an error: address and transport failures come back as rendered
// error pages, logged with their cause.
func (n *Navigator) Navigate(ctx context.Context, rawURL string) model.Document {
	addr, err := model.ParseAddress(rawURL)
	if err != nil {
		n.logger.Warn("gopher address rejected", "url", rawURL, "error", err)
		return n.renderer.RenderError(model.GopherAddress{}, err)
	}

	body, err := n.fetch(ctx, addr)
	if err != nil {
		n.logger.Warn("gopher fetch failed",
			"host", addr.Host(),
			"port", addr.Port(),
			"selector", addr.Selector(),
			"error", err,
		)
		return n.renderer.RenderError(addr, err)
	}

	return n.renderer.RenderDocument(addr, body)
}

// fetch performs the wire exchange for addr, deduplicating concurrent
// fetches of the same target. The flight key ignores the item type: the
// bytes on the wire are identical however the response will be rendered.
// Joiners share the originating fetch's outcome, including its error.
func (n *Navigator) fetch(ctx context.Context, addr model.GopherAddress) ([]byte, error) {
	v, err, _ := n.group.Do(addr.WithItemType(model.ItemNone).String(), func() (any, error) {
		return n.fetcher.Fetch(ctx, addr)
	})
	if err != nil {
		return nil, err
	}
	body, _ := v.([]byte)
	return body, nil
}
