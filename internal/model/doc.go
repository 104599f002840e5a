// Package model defines the core data structures used throughout the
// gopher client.
//
// This package contains the following main types:
//   - GopherAddress: A parsed gopher URL (host, port, selector, item type)
//   - MenuEntry: One parsed line of a gopher menu
//   - Document: A rendered hypertext document plus its base URL
//   - Record: A fetched item captured during a crawl
//   - CrawlReport: The main crawl result structure
//   - SimpleReport: A summarized, human-readable report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (protocol, render, crawler, audit, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
