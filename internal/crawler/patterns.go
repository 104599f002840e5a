package crawler

import (
	"path/filepath"
	"strings"
)

// shouldCrawl checks if a selector should be visited based on the
// ignore/follow patterns.
//
// Logic:
//  1. If the selector matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and the selector matches none, skip it
//     (return false)
//  3. Otherwise, visit it (return true)
func (s *Spider) shouldCrawl(selector string) bool {
	// The empty selector is the root menu; give it a matchable form.
	if selector == "" {
		selector = "/"
	}

	// Check ignore patterns first - if matched, skip.
	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, selector) {
			return false
		}
	}

	// If follow patterns are set, the selector must match at least one.
	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, selector) {
				return true
			}
		}
		// No follow pattern matched.
		return false
	}

	// No follow patterns set, allow all (that weren't ignored).
	return true
}

// matchPattern checks if a selector matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/archive/*" matches "/archive/2024", "/archive/old"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/phlog/2?" matches "/phlog/24", "/phlog/25"
func matchPattern(pattern, selector string) bool {
	// For patterns like "/archive/*", match the subtree as well as the
	// bare prefix itself.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(selector, prefix+"/") || selector == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.pdf" anywhere in the hole.
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(selector, ext) {
			return true
		}
	}

	// Standard glob matching for single-segment patterns.
	matched, err := filepath.Match(pattern, selector)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the final segment for patterns like "*.txt".
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(selector))
		if err == nil && matched {
			return true
		}
	}

	return false
}
