// Package browser is the navigation boundary: it turns gopher URL strings
// into displayed pages. A Navigator performs one parse-fetch-render pass
// and always produces a document, converting every failure into a rendered
// error page. A Session runs navigations on worker goroutines and hands
// results to a display sink, newest navigation first.
package browser
