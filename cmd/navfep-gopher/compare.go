package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/database"
	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
	noFindingsMessage      = "No findings"
)

// NewCompareCmd creates the compare command.
// This command compares crawl results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [gopher-url]",
		Short: "Compare crawl results with historical data",
		Long: `Compare displays differences between the current and previous crawl of a
gopher hole.

This command retrieves historical crawl data from the database and shows:
- New findings that appeared since the last crawl
- Resolved findings that are no longer present
- Items added to or removed from the hole
- Changes in finding severity levels

The comparison requires at least two crawls in the database for the
specified hole. Use 'navfep-gopher crawl' to crawl and save results.

The target may be a full gopher URL or a bare host[:port]; port 70 is
assumed when omitted.

Examples:
  # Compare the latest two crawls of a hole
  navfep-gopher compare gopher.example.org

  # List all crawl history for a hole
  navfep-gopher compare --list gopher.example.org

  # Compare with the first crawl after a date
  navfep-gopher compare --since "2026-01-01" gopher.example.org

  # Output the comparison in JSON format
  navfep-gopher compare --json gopher.example.org

  # List all crawled holes in the database
  navfep-gopher compare --list-targets`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List crawl history for the specified hole")
	cmd.Flags().BoolP("list-targets", "L", false,
		"List all crawled holes in the database")

	// Comparison target flag
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first crawl after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-targets flag first (requires database but no target)
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-targets)
	// This prevents database lock issues when validation fails
	var host string
	var port int
	if !listTargets {
		// Require a target for other operations
		if len(args) == 0 {
			return errors.New("gopher URL is required (use --list-targets to see available holes)")
		}

		addr, err := parseCompareTarget(args[0])
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", args[0], err)
		}
		host = addr.Host()
		port = addr.Port()
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()

	// Handle --list-targets flag
	if listTargets {
		return listCrawledTargets(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listCrawlHistory(ctx, db, host, port)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, host, port, sinceDate, jsonOutput, markdownOutput)
}

// parseCompareTarget parses a compare target that may be a full gopher URL
// or a bare host[:port]. Onion hosts fold to the canonical spelling the
// crawl store uses, so mixed-case input still finds its history.
func parseCompareTarget(target string) (model.GopherAddress, error) {
	if !strings.Contains(target, "://") {
		target = "gopher://" + target
	}
	addr, err := model.ParseAddress(target)
	if err != nil {
		return model.GopherAddress{}, err
	}
	if canonical := canonicalOnionHost(addr.Host()); canonical != addr.Host() {
		return model.NewGopherAddress(canonical, addr.Port(), addr.Selector(), addr.ItemType())
	}
	return addr, nil
}

// listCrawledTargets lists all holes that have crawl records in the database.
func listCrawledTargets(ctx context.Context, db *database.CrawlDB) error {
	targets, err := db.ListCrawledTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No crawled holes found in the database.")
		fmt.Println("\nUse 'navfep-gopher crawl <gopher-url>' to crawl a hole.")
		return nil
	}

	fmt.Printf("Crawled holes (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Printf("  • %s\n", target)
	}
	fmt.Println("\nUse 'navfep-gopher compare --list <host>' to see crawl history for a hole.")

	return nil
}

// listCrawlHistory lists all crawl records for a specific hole.
func listCrawlHistory(ctx context.Context, db *database.CrawlDB, host string, port int) error {
	reports, err := db.GetReportHistory(ctx, host, port)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	target := fmt.Sprintf("%s:%d", host, port)

	if len(reports) == 0 {
		fmt.Printf("No crawl history found for %s\n", target)
		fmt.Println("\nUse 'navfep-gopher crawl' to crawl this hole.")
		return nil
	}

	fmt.Printf("Crawl history for %s (%d crawls):\n\n", target, len(reports))
	fmt.Printf("  %-20s  %-8s  %s\n", "Date", "Items", "Risk Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, r := range reports {
		items := 0
		if r.SimpleReport != nil {
			items = r.SimpleReport.ItemsCrawled
		}
		fmt.Printf("  %-20s  %-8d  %s\n",
			r.DateCrawled.Format("2006-01-02 15:04:05"),
			items,
			formatRiskSummary(r.SimpleReport),
		)
	}

	fmt.Println("\nUse 'navfep-gopher compare <host>' to compare the latest two crawls.")
	fmt.Println("Use 'navfep-gopher compare --since <date> <host>' to compare against an older crawl.")

	return nil
}

// formatRiskSummary formats a report's severity counts into a short string.
func formatRiskSummary(simple *model.SimpleReport) string {
	if simple == nil {
		return "N/A"
	}

	var parts []string
	if simple.CriticalCount > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", simple.CriticalCount))
	}
	if simple.HighCount > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", simple.HighCount))
	}
	if simple.MediumCount > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", simple.MediumCount))
	}
	if simple.LowCount > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", simple.LowCount))
	}
	if simple.InfoCount > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", simple.InfoCount))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between crawl reports.
func runComparison(ctx context.Context, db *database.CrawlDB, host string, port int, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Get the crawl history
	reports, err := db.GetReportHistory(ctx, host, port)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	target := fmt.Sprintf("%s:%d", host, port)

	if len(reports) == 0 {
		return fmt.Errorf("no crawl history found for %s", target)
	}

	if len(reports) < 2 && sinceDate == "" {
		return fmt.Errorf("at least 2 crawls are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.CrawlReport

	// Latest report is always the current one
	currentReport = reports[0]

	if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateCrawled.After(parsedDate) || r.DateCrawled.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no crawls found since %s", sinceDate)
		}
		// If only one crawl matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one crawl found since %s; at least 2 crawls are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous crawl
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport, target)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two crawl reports.
type ComparisonResult struct {
	// Target is the compared hole as host:port.
	Target string `json:"target"`

	// PreviousCrawl contains metadata about the previous crawl.
	PreviousCrawl CrawlMetadata `json:"previous_crawl"`

	// CurrentCrawl contains metadata about the current crawl.
	CurrentCrawl CrawlMetadata `json:"current_crawl"`

	// NewFindings contains findings that are new in the current crawl.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous crawl but not in current.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// NewItems lists item URLs present in the current crawl only.
	NewItems []string `json:"new_items,omitempty"`

	// RemovedItems lists item URLs present in the previous crawl only.
	RemovedItems []string `json:"removed_items,omitempty"`

	// RiskChange describes the overall change in risk level.
	RiskChange RiskChange `json:"risk_change"`
}

// CrawlMetadata contains metadata about a crawl for comparison display.
type CrawlMetadata struct {
	// DateCrawled is when the crawl was performed.
	DateCrawled time.Time `json:"date_crawled"`

	// TotalFindings is the total number of findings in this crawl.
	TotalFindings int `json:"total_findings"`

	// ItemsCrawled is the number of items fetched in this crawl.
	ItemsCrawled int `json:"items_crawled"`

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`
}

// RiskChange describes the change in risk level between crawls.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two crawl reports and generates a comparison result.
func compareReports(previous, current *model.CrawlReport, target string) *ComparisonResult {
	result := &ComparisonResult{
		Target: target,
	}

	result.PreviousCrawl = crawlMetadata(previous)
	result.CurrentCrawl = crawlMetadata(current)

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	if previous.SimpleReport != nil {
		for _, f := range previous.SimpleReport.Findings {
			previousFindings[findingKey(f)] = f
		}
	}

	if current.SimpleReport != nil {
		for _, f := range current.SimpleReport.Findings {
			currentFindings[findingKey(f)] = f
		}
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	// Diff the crawled item sets; holes change shape between crawls and
	// an appearing or vanishing selector is itself worth reporting.
	for url := range current.Crawls {
		if _, exists := previous.Crawls[url]; !exists {
			result.NewItems = append(result.NewItems, url)
		}
	}
	for url := range previous.Crawls {
		if _, exists := current.Crawls[url]; !exists {
			result.RemovedItems = append(result.RemovedItems, url)
		}
	}
	sort.Strings(result.NewItems)
	sort.Strings(result.RemovedItems)

	// Calculate risk change
	result.RiskChange = calculateRiskChange(result.PreviousCrawl, result.CurrentCrawl)

	return result
}

// crawlMetadata extracts comparison metadata from a crawl report.
func crawlMetadata(r *model.CrawlReport) CrawlMetadata {
	if r.SimpleReport == nil {
		return CrawlMetadata{DateCrawled: r.DateCrawled, ItemsCrawled: len(r.Crawls)}
	}
	return CrawlMetadata{
		DateCrawled:   r.DateCrawled,
		TotalFindings: len(r.SimpleReport.Findings),
		ItemsCrawled:  r.SimpleReport.ItemsCrawled,
		CriticalCount: r.SimpleReport.CriticalCount,
		HighCount:     r.SimpleReport.HighCount,
		MediumCount:   r.SimpleReport.MediumCount,
		LowCount:      r.SimpleReport.LowCount,
		InfoCount:     r.SimpleReport.InfoCount,
	}
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// calculateRiskChange calculates the change in risk between two crawls.
func calculateRiskChange(previous, current CrawlMetadata) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	if currentScore < previousScore {
		change.Direction = riskDirectionImproved
	} else if currentScore > previousScore {
		change.Direction = riskDirectionWorsened
	} else {
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Crawl Comparison: %s\n\n", result.Target)

	// Risk change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Risk Status:** %s\n\n", formatRiskDirection(result.RiskChange.Direction))

	// Crawl metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousCrawl.DateCrawled.Format("2006-01-02 15:04"),
		result.CurrentCrawl.DateCrawled.Format("2006-01-02 15:04"))
	fmt.Printf("| Items | %d | %d | %s |\n",
		result.PreviousCrawl.ItemsCrawled,
		result.CurrentCrawl.ItemsCrawled,
		formatDelta(result.CurrentCrawl.ItemsCrawled-result.PreviousCrawl.ItemsCrawled))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousCrawl.CriticalCount,
		result.CurrentCrawl.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousCrawl.HighCount,
		result.CurrentCrawl.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousCrawl.MediumCount,
		result.CurrentCrawl.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousCrawl.LowCount,
		result.CurrentCrawl.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousCrawl.InfoCount,
		result.CurrentCrawl.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Printf("| **Total findings** | **%d** | **%d** | **%s** |\n",
		result.PreviousCrawl.TotalFindings,
		result.CurrentCrawl.TotalFindings,
		formatDelta(result.CurrentCrawl.TotalFindings-result.PreviousCrawl.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Item diff
	if len(result.NewItems) > 0 {
		fmt.Printf("\n## New Items (%d)\n\n", len(result.NewItems))
		for _, url := range result.NewItems {
			fmt.Printf("- `%s`\n", url)
		}
	}
	if len(result.RemovedItems) > 0 {
		fmt.Printf("\n## Removed Items (%d)\n\n", len(result.RemovedItems))
		for _, url := range result.RemovedItems {
			fmt.Printf("- `%s`\n", url)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Crawl Comparison: %s\n", result.Target)
	fmt.Println(strings.Repeat("=", 60))

	// Risk change summary
	fmt.Printf("\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))

	// Crawl dates
	fmt.Printf("\nPrevious crawl: %s (%d items)\n",
		result.PreviousCrawl.DateCrawled.Format("2006-01-02 15:04:05"),
		result.PreviousCrawl.ItemsCrawled)
	fmt.Printf("Current crawl:  %s (%d items)\n",
		result.CurrentCrawl.DateCrawled.Format("2006-01-02 15:04:05"),
		result.CurrentCrawl.ItemsCrawled)

	// Summary table
	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousCrawl.CriticalCount, result.CurrentCrawl.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousCrawl.HighCount, result.CurrentCrawl.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousCrawl.MediumCount, result.CurrentCrawl.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousCrawl.LowCount, result.CurrentCrawl.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousCrawl.InfoCount, result.CurrentCrawl.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousCrawl.TotalFindings, result.CurrentCrawl.TotalFindings,
		formatDelta(result.CurrentCrawl.TotalFindings-result.PreviousCrawl.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Item diff
	if len(result.NewItems) > 0 {
		fmt.Printf("\nNew Items (%d):\n", len(result.NewItems))
		for _, url := range result.NewItems {
			fmt.Printf("  [+] %s\n", url)
		}
	}
	if len(result.RemovedItems) > 0 {
		fmt.Printf("\nRemoved Items (%d):\n", len(result.RemovedItems))
		for _, url := range result.RemovedItems {
			fmt.Printf("  [-] %s\n", url)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
