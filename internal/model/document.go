package model

// Document is a rendered hypertext page plus the URL it should be
// displayed under. Ownership transfers to the display sink immediately;
// documents are never mutated after construction.
type Document struct {
	// Markup is the complete HTML document string.
	Markup string `json:"markup"`

	// BaseURL is the originating URL, used by the sink to resolve
	// relative references and to label the page.
	BaseURL string `json:"base_url"`
}

// NewDocument creates a Document handed to a display sink.
func NewDocument(markup, baseURL string) Document {
	return Document{Markup: markup, BaseURL: baseURL}
}

// IsZero returns true if this is a zero value (empty) Document.
func (d Document) IsZero() bool {
	return d.Markup == "" && d.BaseURL == ""
}
