package audit

import (
	"context"
	"regexp"
	"strings"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// EmailAnalyzer detects email addresses in crawled content.
// Gopher holes tend to carry contact addresses in info lines, phlog
// footers and about files; these often contain real names or can be
// traced to individuals.
//
// Design decision: We implement a separate analyzer for emails rather
// than combining it with other text checks because:
//  1. Email detection has unique regex requirements
//  2. Emails need their own deduplication across records
//  3. The same address commonly repeats on every menu of a hole
type EmailAnalyzer struct {
	// emailRegex matches email addresses in text.
	emailRegex *regexp.Regexp
}

// NewEmailAnalyzer creates a new EmailAnalyzer.
func NewEmailAnalyzer() *EmailAnalyzer {
	return &EmailAnalyzer{
		// Standard email regex that catches most valid addresses
		emailRegex: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	}
}

// Name returns the analyzer name.
func (a *EmailAnalyzer) Name() string {
	return "email"
}

// Category returns the analyzer category.
func (a *EmailAnalyzer) Category() string {
	return CategoryIdentity
}

// Analyze searches for email addresses in the text snapshots of all records.
// Records without a snapshot (images, failed fetches) are skipped.
func (a *EmailAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenEmails := make(map[string]bool)

	for _, rec := range data.Records {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		emails := a.emailRegex.FindAllString(rec.Snapshot, -1)

		for _, email := range emails {
			email = strings.ToLower(email)

			// Skip already seen
			if seenEmails[email] {
				continue
			}
			seenEmails[email] = true

			findings = append(findings, model.NewFinding(
				"email_address",
				"Email Address Found",
				"An email address was found in published content. This could be used to identify the operator.",
				email,
				rec.URL,
			))
		}
	}

	return findings, nil
}
