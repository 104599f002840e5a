package audit

import (
	"context"
	"regexp"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// walletPattern ties a detection regex to the finding it produces.
type walletPattern struct {
	findingType string
	title       string
	description string
	pattern     *regexp.Regexp
}

// WalletAnalyzer detects cryptocurrency addresses in crawled content.
// Phlog footers and about files commonly carry donation addresses, and
// blockchain analysis can link those addresses to exchange accounts and
// ultimately to identities.
//
// Design decision: Patterns live in an ordered slice rather than a map
// because Bitcoin and Litecoin legacy addresses share the "3" prefix for
// P2SH; the first matching pattern claims an address, so classification
// stays deterministic across runs.
type WalletAnalyzer struct {
	patterns []walletPattern
}

// NewWalletAnalyzer creates a new WalletAnalyzer.
func NewWalletAnalyzer() *WalletAnalyzer {
	return &WalletAnalyzer{
		patterns: []walletPattern{
			// Bitcoin legacy (P2PKH "1...", P2SH "3...") and bech32 ("bc1...")
			{
				findingType: "wallet_bitcoin",
				title:       "Bitcoin Address Found",
				description: "A Bitcoin address was found in published content. Bitcoin transactions are publicly traceable and blockchain analysis can link addresses to identities.",
				pattern:     regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`),
			},
			{
				findingType: "wallet_bitcoin",
				title:       "Bitcoin Address Found",
				description: "A Bitcoin address was found in published content. Bitcoin transactions are publicly traceable and blockchain analysis can link addresses to identities.",
				pattern:     regexp.MustCompile(`\bbc1[a-z0-9]{39,59}\b`),
			},

			// Ethereum (0x followed by 40 hex chars)
			{
				findingType: "wallet_ethereum",
				title:       "Ethereum Address Found",
				description: "An Ethereum address was found in published content. Ethereum transactions are publicly traceable and can be analyzed for patterns and connections.",
				pattern:     regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`),
			},

			// Monero (95 chars, standard addresses start with 4, subaddresses with 8)
			{
				findingType: "wallet_monero",
				title:       "Monero Address Found",
				description: "A Monero address was found in published content. While Monero transactions are private, the published address itself is still a correlation vector.",
				pattern:     regexp.MustCompile(`\b[48][0-9AB][1-9A-HJ-NP-Za-km-z]{93}\b`),
			},

			// Litecoin legacy ("L"/"M") and bech32 ("ltc1...").
			// The legacy pattern would also claim "3..." P2SH addresses, but
			// the Bitcoin pattern above sees them first.
			{
				findingType: "wallet_litecoin",
				title:       "Litecoin Address Found",
				description: "A Litecoin address was found in published content. Litecoin transactions are publicly traceable like Bitcoin.",
				pattern:     regexp.MustCompile(`\b[LM3][a-km-zA-HJ-NP-Z1-9]{26,33}\b`),
			},
			{
				findingType: "wallet_litecoin",
				title:       "Litecoin Address Found",
				description: "A Litecoin address was found in published content. Litecoin transactions are publicly traceable like Bitcoin.",
				pattern:     regexp.MustCompile(`\bltc1[a-z0-9]{39,59}\b`),
			},
		},
	}
}

// Name returns the analyzer name.
func (a *WalletAnalyzer) Name() string {
	return "wallets"
}

// Category returns the analyzer category.
func (a *WalletAnalyzer) Category() string {
	return CategoryCorrelation
}

// Analyze searches for cryptocurrency addresses in the text snapshots of
// all records. Each address is reported once, no matter how many records
// or patterns match it.
func (a *WalletAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenAddresses := make(map[string]bool)

	for _, rec := range data.Records {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		if rec.Snapshot == "" {
			continue
		}

		for _, p := range a.patterns {
			for _, address := range p.pattern.FindAllString(rec.Snapshot, -1) {
				if seenAddresses[address] {
					continue
				}
				seenAddresses[address] = true

				findings = append(findings, model.NewFinding(
					p.findingType,
					p.title,
					p.description,
					address,
					rec.URL,
				))
			}
		}
	}

	return findings, nil
}

// Ensure WalletAnalyzer implements CheckAnalyzer.
var _ CheckAnalyzer = (*WalletAnalyzer)(nil)
