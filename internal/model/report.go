package model

import "time"

// CrawlReport is the main crawl result structure.
// It contains everything collected while walking a gopher hole.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. The SimpleReport sub-struct
// groups the curated findings for human-readable output.
type CrawlReport struct {
	// === Basic Information ===

	// StartURL is the gopher URL the crawl started from.
	StartURL string `json:"start_url"`

	// Host is the server the crawl was rooted at.
	Host string `json:"host"`

	// Port is the TCP port the crawl was rooted at.
	Port int `json:"port"`

	// DateCrawled is the timestamp when the crawl was performed.
	DateCrawled time.Time `json:"date_crawled"`

	// === Crawl Data ===

	// Crawls maps item URLs to the number of response bytes received.
	// Failed fetches are recorded with size 0; the record carries the error.
	Crawls map[string]int `json:"crawls,omitempty"`

	// RecordCache stores fetched records by URL.
	// Used by the audit step and for menu re-parsing.
	RecordCache map[string]*Record `json:"-"` // Excluded from JSON due to size

	// Records contains all items fetched during crawling, in fetch order.
	Records []*Record `json:"-"` // Excluded from JSON due to size

	// === Sub-Reports ===

	// SimpleReport contains the summarized findings for human-readable output.
	SimpleReport *SimpleReport `json:"simple_report,omitempty"`

	// === Crawl State ===

	// TimedOut is true if the crawl was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that were actually performed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during crawling.
	// Only set if the crawl failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewCrawlReport creates a new report rooted at the given address.
func NewCrawlReport(startURL, host string, port int) *CrawlReport {
	return &CrawlReport{
		StartURL:    startURL,
		Host:        host,
		Port:        port,
		DateCrawled: time.Now(),
		Crawls:      make(map[string]int),
		RecordCache: make(map[string]*Record),
	}
}

// AddRecord adds a fetched record to the report.
func (r *CrawlReport) AddRecord(url string, rec *Record) {
	r.Crawls[url] = rec.Size
	if _, seen := r.RecordCache[url]; !seen {
		r.Records = append(r.Records, rec)
	}
	r.RecordCache[url] = rec
}

// GetRecord retrieves a cached record by URL.
// Returns nil if the item was not crawled.
func (r *CrawlReport) GetRecord(url string) *Record {
	return r.RecordCache[url]
}

// AddFinding adds a finding to the simple report.
// If the simple report doesn't exist, it initializes one.
//
// Design decision: We store findings in SimpleReport rather than
// a separate findings slice because:
// 1. SimpleReport already has finding aggregation logic
// 2. Avoids duplication of findings data
// 3. Keeps the main report focused on raw data
func (r *CrawlReport) AddFinding(finding Finding) {
	if r.SimpleReport == nil {
		r.SimpleReport = &SimpleReport{
			Target:      r.Target(),
			DateCrawled: r.DateCrawled,
			Findings:    make([]Finding, 0),
		}
	}

	// Keep item count in sync when SimpleReport is first created via AddFinding.
	if r.SimpleReport.ItemsCrawled == 0 {
		if count := len(r.Records); count > 0 {
			r.SimpleReport.ItemsCrawled = count
		} else if count := len(r.Crawls); count > 0 {
			r.SimpleReport.ItemsCrawled = count
		}
	}

	// Avoid duplicates based on type and value
	for _, f := range r.SimpleReport.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	r.SimpleReport.Findings = append(r.SimpleReport.Findings, finding)

	// Update severity counts
	switch finding.Severity {
	case SeverityCritical:
		r.SimpleReport.CriticalCount++
	case SeverityHigh:
		r.SimpleReport.HighCount++
	case SeverityMedium:
		r.SimpleReport.MediumCount++
	case SeverityLow:
		r.SimpleReport.LowCount++
	case SeverityInfo:
		r.SimpleReport.InfoCount++
	}
}

// Target returns the host:port the crawl was rooted at, in URL-less form
// suitable for report headings.
func (r *CrawlReport) Target() string {
	addr, err := NewGopherAddress(r.Host, r.Port, "", ItemNone)
	if err != nil {
		return r.Host
	}
	return addr.HostPort()
}

// BytesFetched returns the total response bytes received across all items.
func (r *CrawlReport) BytesFetched() int64 {
	var total int64
	for _, size := range r.Crawls {
		total += int64(size)
	}
	return total
}
