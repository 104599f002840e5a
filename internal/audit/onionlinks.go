package audit

import (
	"context"

	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/tor"
)

// OnionLinkAnalyzer detects references to Tor onion services in crawled
// content. Linked onion services may indicate related holes run by the
// same operator; deprecated v2 references are dead links that should be
// updated.
//
// Design decision: Candidate v3 addresses are checksum-validated before
// being reported because:
//  1. Any 56-character base32 run in text matches the v3 pattern
//  2. Checksum validation rejects random strings and truncated keys
//  3. It matches what Tor itself does when connecting
type OnionLinkAnalyzer struct{}

// NewOnionLinkAnalyzer creates a new OnionLinkAnalyzer.
func NewOnionLinkAnalyzer() *OnionLinkAnalyzer {
	return &OnionLinkAnalyzer{}
}

// Name returns the analyzer name.
func (a *OnionLinkAnalyzer) Name() string {
	return "onionlinks"
}

// Category returns the analyzer category.
func (a *OnionLinkAnalyzer) Category() string {
	return CategoryCorrelation
}

// Analyze scans the text snapshots of all records for onion addresses.
// Menu snapshots include entry host fields, so onion hosts referenced
// by menu entries are found without walking the parsed entries.
func (a *OnionLinkAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenAddresses := make(map[string]bool)

	for _, rec := range data.Records {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		for _, addr := range tor.ExtractV3Addresses(rec.Snapshot) {
			if seenAddresses[addr] {
				continue
			}
			seenAddresses[addr] = true

			// Pattern matches with a bad checksum are noise, not links.
			if !tor.IsValidV3Address(addr) {
				continue
			}

			findings = append(findings, model.NewFinding(
				"onion_link_v3",
				"Onion Service Link Found",
				"Published content references a v3 onion service.",
				addr,
				rec.URL,
			))
		}

		for _, addr := range tor.ExtractV2Addresses(rec.Snapshot) {
			if seenAddresses[addr] {
				continue
			}
			seenAddresses[addr] = true

			findings = append(findings, model.NewFinding(
				"onion_link_v2",
				"Deprecated V2 Onion Link Found",
				"Published content references a v2 onion service. V2 addresses stopped working in October 2021, so this is a dead link.",
				addr,
				rec.URL,
			))
		}
	}

	return findings, nil
}
