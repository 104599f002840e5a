package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding"

	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/protocol"
)

// Spider walks a gopher hole breadth-first from a starting address.
// It manages a queue of addresses to visit and respects depth and rate
// limits.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for walkers of linked documents
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// fetcher performs the wire exchanges. Direct or Tor-routed,
	// depending on how the caller built it.
	fetcher protocol.Fetcher

	// maxDepth limits how deep to walk from the starting menu.
	// 0 means only the starting item, 1 means one level of links, etc.
	maxDepth int

	// maxItems limits the total number of items fetched.
	// This prevents runaway walks on large holes.
	maxItems int

	// delay is the time to wait between requests.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// fetchLeaves controls whether text and image leaves are fetched.
	// When false only menus are requested; leaf entries are still
	// recorded in their parent menu's entries.
	fetchLeaves bool

	// encoding decodes menu text from a legacy charset. nil means UTF-8.
	encoding encoding.Encoding

	// ignorePatterns are selector patterns to skip during the walk.
	// Patterns use glob syntax (e.g., "/archive/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are selector patterns to follow during the walk.
	// If set, only selectors matching these patterns are visited.
	// Empty means all selectors are allowed (subject to ignorePatterns).
	followPatterns []string

	// visited tracks addresses already visited to avoid duplicates.
	visited map[string]bool

	// mutex protects concurrent access to visited.
	mutex sync.Mutex

	// itemCount tracks items fetched.
	itemCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum walk depth.
// 0 = only the starting item, 1 = starting menu plus its entries, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxItems sets the maximum number of items to fetch.
func WithMaxItems(maxItems int) SpiderOption {
	return func(s *Spider) {
		s.maxItems = maxItems
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithFetchLeaves controls whether text and image leaves are fetched in
// addition to menus. Leaf content is what the audit checks inspect, so
// audits need this on.
func WithFetchLeaves(fetch bool) SpiderOption {
	return func(s *Spider) {
		s.fetchLeaves = fetch
	}
}

// WithEncoding sets the charset menu text is decoded from before parsing
// and snapshotting. A nil encoding keeps the UTF-8 default.
func WithEncoding(enc encoding.Encoding) SpiderOption {
	return func(s *Spider) {
		s.encoding = enc
	}
}

// WithIgnorePatterns sets selector patterns to skip during the walk.
// Patterns use glob syntax (e.g., "/archive/*", "*.pdf", "/cgi-bin*").
// Selectors matching any of these patterns will not be visited.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets selector patterns to follow during the walk.
// Patterns use glob syntax (e.g., "/phlog/*", "/docs/*").
// If set, only selectors matching at least one pattern are visited.
// Empty slice means all selectors are allowed (default behavior).
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// NewSpider creates a new Spider fetching through the given fetcher.
// A nil fetcher gets a direct-connection gopher fetcher with default
// tuning; pass a Tor-dialing fetcher to walk onion holes.
func NewSpider(fetcher protocol.Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:   fetcher,
		maxDepth:  3,
		maxItems:  200,
		delay:     500 * time.Millisecond,
		visited:   make(map[string]bool),
		itemCount: 0,
	}

	if s.fetcher == nil {
		s.fetcher = protocol.NewGopherFetcher(nil)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl walks the hole rooted at startURL and returns a record per
// visited item, in fetch order. Failed fetches are recorded with their
// error and the walk continues; only a bad start URL or an ended context
// returns an error, the latter together with the records collected so far.
//
// Design decision: We return a slice of records rather than using a
// callback because:
//  1. Simpler API for callers
//  2. Records are truncated before storage, so memory stays bounded
//  3. Caller can process all at once or iterate as needed
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Record, error) {
	start, err := model.ParseAddress(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	records := make([]*model.Record, 0)
	queue := make([]queueItem, 0)
	queue = append(queue, queueItem{addr: start, depth: 0})

	for len(queue) > 0 && s.itemCount < s.maxItems {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		if s.isVisited(item.addr) {
			continue
		}
		s.markVisited(item.addr)

		rec := s.fetchItem(ctx, item.addr)
		records = append(records, rec)
		s.itemCount++

		if rec.Failed() {
			continue
		}

		// Add entries to the queue if within the depth limit.
		if item.depth < s.maxDepth {
			for _, entry := range rec.Entries {
				next, ok := s.followEntry(start, entry)
				if ok && !s.isVisited(next) {
					queue = append(queue, queueItem{addr: next, depth: item.depth + 1})
				}
			}
		}

		// Politeness delay.
		if s.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return records, nil
}

// queueItem represents an item in the walk queue.
type queueItem struct {
	addr  model.GopherAddress
	depth int
}

// fetchItem fetches a single item and builds its record. Fetch failures
// come back as records with the error set, never as a Go error.
func (s *Spider) fetchItem(ctx context.Context, addr model.GopherAddress) *model.Record {
	started := time.Now()
	body, err := s.fetcher.Fetch(ctx, addr)

	rec := &model.Record{
		URL:       addr.String(),
		Host:      addr.Host(),
		Port:      addr.Port(),
		Selector:  addr.Selector(),
		Type:      addr.ItemType(),
		FetchedAt: started,
		Elapsed:   time.Since(started),
	}

	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	rec.Size = len(body)
	rec.Raw = body
	rec.ComputeHash()
	rec.TruncateRaw()

	switch {
	case addr.ItemType().IsImage():
		// Raw bytes only; image records feed the EXIF audit.
	case addr.ItemType() == model.ItemMenu || addr.ItemType() == model.ItemNone:
		text := s.decode(body)
		rec.Snapshot = text
		rec.TruncateSnapshot()
		rec.Entries = model.ParseMenu(text, addr.Host(), addr.Port())
	default:
		// Text and other leaves keep a snapshot but are not treated as
		// menus; a text file read as a menu would yield garbage links.
		rec.Snapshot = s.decode(body)
		rec.TruncateSnapshot()
	}

	return rec
}

// followEntry decides whether a menu entry should be walked and returns
// its fetchable address. Submenus within the starting hole are always
// followed; text and image leaves only when leaf fetching is on. External
// web links and info lines are recorded in the parent menu but never
// fetched.
func (s *Spider) followEntry(start model.GopherAddress, entry model.MenuEntry) (model.GopherAddress, bool) {
	if entry.IsExternal() || entry.Type.IsInfo() {
		return model.GopherAddress{}, false
	}

	switch {
	case entry.Type.IsMenu():
	case s.fetchLeaves && (entry.Type == model.ItemText || entry.Type.IsImage()):
	default:
		return model.GopherAddress{}, false
	}

	addr, err := entry.Address()
	if err != nil {
		return model.GopherAddress{}, false
	}

	if !s.isSameHole(start, addr) {
		return model.GopherAddress{}, false
	}
	if !s.shouldCrawl(addr.Selector()) {
		return model.GopherAddress{}, false
	}

	return addr, true
}

// isVisited checks if an address has been visited.
func (s *Spider) isVisited(addr model.GopherAddress) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[s.visitKey(addr)]
}

// markVisited marks an address as visited.
func (s *Spider) markVisited(addr model.GopherAddress) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[s.visitKey(addr)] = true
}

// visitKey normalizes an address for deduplication.
//
// Design decision: The key ignores the item type marker because:
//  1. The wire exchange is identical whatever type the menu declared
//  2. Holes routinely link the same selector as both '1' and '0'
func (s *Spider) visitKey(addr model.GopherAddress) string {
	return addr.WithItemType(model.ItemNone).String()
}

// isSameHole checks if an address belongs to the hole the walk started
// at. Both host (case-insensitively) and port must match; one machine can
// host distinct holes on distinct ports.
func (s *Spider) isSameHole(start, addr model.GopherAddress) bool {
	return strings.EqualFold(start.Host(), addr.Host()) && start.Port() == addr.Port()
}

// decode converts raw menu bytes to UTF-8 text, applying the configured
// legacy charset first and dropping bytes that remain invalid.
func (s *Spider) decode(data []byte) string {
	if s.encoding != nil {
		if decoded, err := s.encoding.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}
	return strings.ToValidUTF8(string(data), "")
}

// Reset clears the spider's state, allowing it to be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]bool)
	s.itemCount = 0
}

// Stats returns current walk statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		ItemsVisited:  s.itemCount,
		AddressesSeen: len(s.visited),
	}
}

// SpiderStats contains walk statistics.
type SpiderStats struct {
	// ItemsVisited is the number of items fetched, failures included.
	ItemsVisited int

	// AddressesSeen is the number of unique addresses encountered.
	AddressesSeen int
}
