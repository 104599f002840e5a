package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// ItemAnalyzer checks menu entries for item types a hole operator
// should review: telnet session pointers, which send followers over an
// unencrypted remote login, and type-3 error entries, which usually
// mean a broken selector on the server side.
type ItemAnalyzer struct{}

// NewItemAnalyzer creates a new ItemAnalyzer.
func NewItemAnalyzer() *ItemAnalyzer {
	return &ItemAnalyzer{}
}

// Name returns the analyzer name.
func (a *ItemAnalyzer) Name() string {
	return "items"
}

// Category returns the analyzer category.
func (a *ItemAnalyzer) Category() string {
	return "hygiene"
}

// Analyze walks the parsed menu entries of all records.
func (a *ItemAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)

	for _, rec := range data.Records {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		for _, entry := range rec.Entries {
			switch entry.Type {
			case model.ItemTelnet:
				target := fmt.Sprintf("%s:%d", entry.Host, entry.Port)
				if seen["telnet:"+target] {
					continue
				}
				seen["telnet:"+target] = true

				findings = append(findings, model.NewFinding(
					"telnet_item",
					"Telnet Session Pointer Found",
					"A menu entry points at a telnet service. Telnet sessions are unencrypted and expose anything typed into them.",
					target,
					rec.URL,
				))

			case model.ItemError:
				message := strings.TrimSpace(entry.Display)
				if message == "" || seen["error:"+message] {
					continue
				}
				seen["error:"+message] = true

				findings = append(findings, model.NewFinding(
					"server_error_item",
					"Server Error Entry Found",
					"The server emitted a type-3 error entry in a menu.",
					message,
					rec.URL,
				))
			}
		}
	}

	return findings, nil
}
