package browser

// Sink is the external hypertext display contract. Display receives a
// complete markup document and the URL to resolve relative references
// against. Implementations are not required to be safe for concurrent
// use; Session only ever calls Display from its Run goroutine.
type Sink interface {
	Display(markup, baseURL string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(markup, baseURL string)

// Display calls f.
func (f SinkFunc) Display(markup, baseURL string) {
	f(markup, baseURL)
}
