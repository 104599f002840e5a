// Package main provides the entry point for the navfep-gopher CLI.
//
// navfep-gopher is a gopher protocol client, crawler, and privacy auditor.
// It fetches and renders gopherspace content, walks whole gopher holes,
// and reports on the identifying details their operators publish.
//
// Usage:
//
//	navfep-gopher fetch gopher://gopher.floodgap.com
//	navfep-gopher crawl gopher://example.org
//	navfep-gopher serve
//
// See --help for all available options.
package main

// main is the entry point for navfep-gopher.
func main() {
	Execute()
}
