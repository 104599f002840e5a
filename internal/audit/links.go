package audit

import (
	"context"
	"net/url"
	"strings"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// LinkAnalyzer inventories links that escape gopherspace. An 'h' entry
// carrying a literal URL sends followers out of the gopher client and
// onto the web, where the destination server sees their IP address and
// can set cookies; the linked domains also hint at who runs the hole.
//
// Design decision: We report one finding per destination domain rather
// than per link because:
//  1. The same domain is typically linked from many menus
//  2. Domain-level inventory is what an operator reviews
//  3. Per-link noise would drown the rest of the report
type LinkAnalyzer struct{}

// NewLinkAnalyzer creates a new LinkAnalyzer.
func NewLinkAnalyzer() *LinkAnalyzer {
	return &LinkAnalyzer{}
}

// Name returns the analyzer name.
func (a *LinkAnalyzer) Name() string {
	return "links"
}

// Category returns the analyzer category.
func (a *LinkAnalyzer) Category() string {
	return CategoryCorrelation
}

// Analyze walks the parsed menu entries of all records looking for
// external web links.
func (a *LinkAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenDomains := make(map[string]bool)

	for _, rec := range data.Records {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		for _, entry := range rec.Entries {
			if !entry.IsExternal() {
				continue
			}

			domain := a.extractDomain(entry.ExternalURL())
			if domain == "" {
				continue
			}

			// Onion references are the onion link analyzer's concern.
			if strings.HasSuffix(domain, ".onion") {
				continue
			}

			// Skip already seen
			if seenDomains[domain] {
				continue
			}
			seenDomains[domain] = true

			findings = append(findings, model.NewFinding(
				"external_web_link",
				"External Web Link Found",
				"A menu entry links out of gopherspace to a web destination. Followers are exposed to the destination server.",
				domain,
				rec.URL,
			))
		}
	}

	return findings, nil
}

// extractDomain extracts the lowercased host from a URL.
// Returns "" for unparseable or host-less URLs.
func (a *LinkAnalyzer) extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := u.Hostname()
	if host == "" {
		return ""
	}

	return strings.ToLower(host)
}
