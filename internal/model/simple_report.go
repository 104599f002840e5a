package model

import (
	"fmt"
	"sort"
	"time"
)

// SimpleReport is a summarized, human-readable report.
// It extracts key statistics and findings from the full crawl report
// for quick review.
//
// Design decision: We create a separate simplified report rather than
// just printing parts of CrawlReport because:
// 1. It provides a consistent, curated view of the most important findings
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from data collection
type SimpleReport struct {
	// Target is the crawled service as host:port.
	Target string `json:"target"`

	// DateCrawled is when the crawl was performed.
	DateCrawled time.Time `json:"date_crawled"`

	// === Severity Summary ===

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

	// === Content Summary ===

	// ItemTypes summarizes what was crawled, one "description: count"
	// entry per item type seen, sorted by description.
	ItemTypes []string `json:"item_types,omitempty"`

	// === Findings ===

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// === Crawl Statistics ===

	// ItemsCrawled is the number of items fetched.
	ItemsCrawled int `json:"items_crawled"`

	// MenusCrawled is the number of menus among the fetched items.
	MenusCrawled int `json:"menus_crawled"`

	// BytesFetched is the total response bytes received.
	BytesFetched int64 `json:"bytes_fetched"`

	// FailedItems is the number of items that could not be fetched.
	FailedItems int `json:"failed_items"`

	// TimedOut indicates if the crawl was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the crawl failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single finding in the simple report.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the privacy implications of this finding.
	// This helps users understand why this finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (address, email, URL, etc.).
	Value string `json:"value,omitempty"`

	// Location is the item URL where the finding was discovered.
	Location string `json:"location,omitempty"`
}

// NewFinding builds a Finding of the given type, filling severity, impact
// and recommendation from the central finding mapping.
func NewFinding(findingType, title, description, value, location string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	}
}

// NewSimpleReport creates or completes the SimpleReport for a crawl.
// Findings added earlier through CrawlReport.AddFinding are preserved;
// statistics are computed fresh from the records.
func NewSimpleReport(report *CrawlReport) *SimpleReport {
	simple := report.SimpleReport
	if simple == nil {
		simple = &SimpleReport{
			Target:      report.Target(),
			DateCrawled: report.DateCrawled,
		}
	}

	simple.ItemsCrawled = len(report.Records)
	simple.BytesFetched = report.BytesFetched()
	simple.TimedOut = report.TimedOut

	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	simple.collectItemTypes(report)
	simple.countBySeverity()

	return simple
}

// collectItemTypes summarizes the item types seen during the crawl.
func (s *SimpleReport) collectItemTypes(report *CrawlReport) {
	counts := make(map[string]int)
	s.MenusCrawled = 0
	s.FailedItems = 0

	for _, rec := range report.Records {
		if rec.Failed() {
			s.FailedItems++
			continue
		}
		if rec.IsMenu() {
			s.MenusCrawled++
		}
		counts[rec.Type.Description()]++
	}

	s.ItemTypes = s.ItemTypes[:0]
	for desc, count := range counts {
		s.ItemTypes = append(s.ItemTypes, fmt.Sprintf("%s: %d", desc, count))
	}
	sort.Strings(s.ItemTypes)
}

// countBySeverity recomputes the severity counters from the findings.
// Safe to call after incremental AddFinding updates; counts are reset first.
func (s *SimpleReport) countBySeverity() {
	s.CriticalCount = 0
	s.HighCount = 0
	s.MediumCount = 0
	s.LowCount = 0
	s.InfoCount = 0

	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
