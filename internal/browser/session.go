package browser

import (
	"context"
	"sync/atomic"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// resultBuffer sizes the result channel so finishing workers rarely block
// on a busy display loop.
const resultBuffer = 8

// navigationResult pairs a rendered document with the sequence number of
// the navigation that produced it.
type navigationResult struct {
	seq uint64
	doc model.Document
}

// Session drives a single display sink from concurrent navigations. Each
// Go call runs on its own worker goroutine; Run owns the sink and shows
// results as they arrive, dropping any result that a newer navigation has
// already superseded.
//
// Design decision: a fresh navigation supersedes an in-flight one but
// does not cancel it because:
//  1. Gopher exchanges are cheap single round trips; letting the stale
//     fetch finish and discarding its result is simpler than plumbing
//     per-navigation cancellation through the display path
//  2. The stale response may still populate the deduplication flight for
//     a navigation that returns to the same page
type Session struct {
	navigator *Navigator
	sink      Sink

	seq     atomic.Uint64
	results chan navigationResult
}

// NewSession creates a Session displaying through sink.
func NewSession(navigator *Navigator, sink Sink) *Session {
	return &Session{
		navigator: navigator,
		sink:      sink,
		results:   make(chan navigationResult, resultBuffer),
	}
}

// Go starts navigating to rawURL on a worker goroutine and returns the
// sequence number assigned to the navigation. It is safe to call from any
// goroutine. The worker exits without delivering if ctx ends first.
func (s *Session) Go(ctx context.Context, rawURL string) uint64 {
	seq := s.seq.Add(1)

	go func() {
		doc := s.navigator.Navigate(ctx, rawURL)
		select {
		case s.results <- navigationResult{seq: seq, doc: doc}:
		case <-ctx.Done():
		}
	}()

	return seq
}

// Run is the display loop. It blocks until ctx ends, showing each arriving
// result unless a newer navigation's result has already been shown. The
// sink is only ever touched from this goroutine.
func (s *Session) Run(ctx context.Context) error {
	var displayed uint64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result := <-s.results:
			if result.seq <= displayed {
				continue
			}
			displayed = result.seq
			s.sink.Display(result.doc.Markup, result.doc.BaseURL)
		}
	}
}
