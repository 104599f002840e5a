package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// selectorKeys contains attribute keys whose values carry gopher selectors
// or URLs. Type-7 search selectors embed the user's query terms after a
// TAB character; the query is user input and never belongs in logs.
var selectorKeys = map[string]bool{
	"selector":  true,
	"url":       true,
	"base_url":  true,
	"start_url": true,
	"target":    true,
}

// sensitiveKeys contains attribute keys that should always be masked.
// The SOCKS proxy configuration can carry credentials, and the embedded
// Tor control connection uses a password.
var sensitiveKeys = map[string]bool{
	"password":       true,
	"passwd":         true,
	"secret":         true,
	"token":          true,
	"credential":     true,
	"credentials":    true,
	"auth":           true,
	"proxy_password": true,
	"control_pass":   true,
	"private_key":    true,
	"privatekey":     true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// ed25519v1 secret (Tor v3 onion)
	regexp.MustCompile(`== ed25519v1-secret:`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// maxValueLen caps the length of selector and URL attributes. Servers
// control selector contents; an unbounded selector would let a hostile
// menu flood the logs.
const maxValueLen = 512

// truncationMark is appended to values cut at maxValueLen.
const truncationMark = "...(truncated)"

// RedactingHandler wraps an slog.Handler to keep user queries and
// credentials out of log output. It intercepts log records, masks the
// search-query portion of selectors, caps oversized selector values, and
// masks attributes that match sensitive key names or value patterns
// before passing them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. It's compatible with tornago and other slog-based libraries
type RedactingHandler struct {
	// handler is the underlying slog handler that receives redacted records.
	handler slog.Handler
}

// NewRedactingHandler creates a new RedactingHandler wrapping the given handler.
// All log attributes will be redacted before being passed to the underlying handler.
// If handler is nil, the returned RedactingHandler will use slog.Default().Handler().
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes it to the underlying handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	// Create a new record with redacted attributes
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are redacted before being added.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = h.redactAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(redactedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr redacts a single attribute, recursively handling groups.
func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redactedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			redactedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactedAttrs...)}
	}

	// Check if the key indicates sensitive data
	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Selector-bearing attributes: mask embedded search queries and
		// cap the length.
		if selectorKeys[keyLower] {
			return slog.String(a.Key, redactSelector(strVal))
		}

		// Check if the value matches sensitive patterns
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
	}

	return a
}

// redactSelector masks everything after the first TAB in a selector or URL
// value, then caps the result at maxValueLen. The TAB separates the
// selector proper from the search query in type-7 requests.
func redactSelector(value string) string {
	if before, _, found := strings.Cut(value, "\t"); found {
		value = before + "\t" + MaskValue
	}
	if len(value) > maxValueLen {
		value = value[:maxValueLen] + truncationMark
	}
	return value
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// Note: We intentionally exclude the bare "key" keyword as it causes false
// positives (e.g., "primary_key", "keyboard"). Specific key-related patterns
// like "private_key" are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
