// Package crawler walks gopher holes breadth-first.
//
// # Architecture
//
// The package is designed around the Spider type, which coordinates the
// walk. It keeps a work queue of addresses to visit, follows submenu
// entries within the starting hole, and records every visited item.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. Gopher menus are tab-separated item lines, not HTML; generic web
//     crawlers cannot parse them
//  2. Gopher holes are often small hobbyist servers (or Tor hidden
//     services) that need tight control over request pacing
//  3. The transport is one selector exchange per TCP connection, which
//     web crawling frameworks do not model
//
// # Components
//
//   - Spider: the walker, with depth, item, and pacing limits
//   - selector patterns: glob-based follow/ignore filtering
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Delays between requests (configurable)
//   - One request at a time per crawl
//   - Depth and total-item caps bound the walk
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher, crawler.WithMaxDepth(3))
//	records, err := spider.Crawl(ctx, "gopher://gopher.floodgap.com/")
//
// Records include failed fetches with the error noted, so callers can
// audit or report on partial results.
package crawler
