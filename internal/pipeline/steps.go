package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/encoding"

	"github.com/felipeandrian/navfep-gopher/internal/audit"
	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/crawler"
	"github.com/felipeandrian/navfep-gopher/internal/database"
	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/protocol"
)

// CrawlStep walks the target gopher hole and collects item records.
// This step discovers menus, follows same-hole links, and optionally
// downloads leaf content (text files and images).
//
// Design decision: Crawling is the first step because:
// 1. Every later step operates on the records it collects
// 2. It has its own configuration (depth, limits, delay)
// 3. A failed crawl makes the rest of the pipeline pointless
type CrawlStep struct {
	// fetcher performs the wire exchanges. Direct or Tor-routed,
	// depending on how the caller built it.
	fetcher protocol.Fetcher

	// maxDepth limits crawl recursion.
	maxDepth int

	// maxItems limits total items to fetch.
	maxItems int

	// delay between requests for politeness.
	delay time.Duration

	// fetchLeaves controls whether text and image leaves are downloaded
	// in addition to menus. The audit checks need leaf content.
	fetchLeaves bool

	// encoding decodes menu and text content from a legacy charset.
	// nil means UTF-8.
	encoding encoding.Encoding

	// ignorePatterns are selector patterns to skip during crawling.
	ignorePatterns []string

	// followPatterns are selector patterns to follow during crawling.
	followPatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxItems sets the maximum items to fetch.
func WithCrawlMaxItems(maxItems int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxItems = maxItems
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlFetchLeaves controls whether text and image leaves are fetched.
// The email and EXIF audit checks only see content when this is on.
func WithCrawlFetchLeaves(fetch bool) CrawlStepOption {
	return func(s *CrawlStep) {
		s.fetchLeaves = fetch
	}
}

// WithCrawlEncoding sets the charset menu and text content is decoded
// from. A nil encoding keeps the UTF-8 default.
func WithCrawlEncoding(enc encoding.Encoding) CrawlStepOption {
	return func(s *CrawlStep) {
		s.encoding = enc
	}
}

// WithCrawlIgnorePatterns sets selector patterns to skip during crawling.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlFollowPatterns sets selector patterns to follow during crawling.
func WithCrawlFollowPatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followPatterns = patterns
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step.
// The fetcher must be pre-configured for the transport in use; pass a
// Tor-dialing fetcher to crawl onion holes.
//
// Default politeness settings are conservative to be respectful of the
// small servers that make up gopherspace:
//   - delay: 500ms between requests (config.DefaultCrawlDelay)
//   - maxItems: 200 per crawl (config.DefaultMaxItems)
func NewCrawlStep(fetcher protocol.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:     fetcher,
		maxDepth:    config.DefaultCrawlDepth,
		maxItems:    config.DefaultMaxItems,
		delay:       config.DefaultCrawlDelay,
		fetchLeaves: true,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithMaxItems(s.maxItems),
		crawler.WithDelay(s.delay),
		crawler.WithFetchLeaves(s.fetchLeaves),
	}

	if s.encoding != nil {
		spiderOpts = append(spiderOpts, crawler.WithEncoding(s.encoding))
	}
	if len(s.ignorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(s.ignorePatterns))
	}
	if len(s.followPatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithFollowPatterns(s.followPatterns))
	}

	spider := crawler.NewSpider(s.fetcher, spiderOpts...)

	records, err := spider.Crawl(ctx, report.StartURL)
	if err != nil {
		if len(records) == 0 && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("crawl failed: %w", err)
		}

		// The context ended mid-walk; keep the partial results.
		s.logger.Warn("crawl interrupted", "error", err)
		report.TimedOut = true
	}

	// Store crawled records in report
	for _, rec := range records {
		report.AddRecord(rec.URL, rec)
	}

	stats := spider.Stats()
	s.logger.Info("crawl completed",
		"items_visited", stats.ItemsVisited,
		"addresses_seen", stats.AddressesSeen,
	)

	return nil
}

// AuditStep runs the privacy audit checks on collected records.
// This step analyzes menus and leaf content for email addresses, EXIF
// metadata, external links, and other exposure vectors.
//
// Design decision: Auditing is a separate step because:
// 1. It operates on accumulated data from the crawl step
// 2. It has its own configuration (which checks to run)
// 3. Results are the primary findings of the report
type AuditStep struct {
	// analyzer is the main audit coordinator.
	analyzer *audit.Analyzer

	// logger for structured logging.
	logger *slog.Logger
}

// AuditStepOption configures an AuditStep.
type AuditStepOption func(*AuditStep)

// WithAuditLogger sets a custom logger for the audit step.
func WithAuditLogger(logger *slog.Logger) AuditStepOption {
	return func(s *AuditStep) {
		s.logger = logger
	}
}

// WithAuditAnalyzer replaces the default audit coordinator.
// Use this to run a customized set of checks.
func WithAuditAnalyzer(analyzer *audit.Analyzer) AuditStepOption {
	return func(s *AuditStep) {
		s.analyzer = analyzer
	}
}

// NewAuditStep creates a new audit step with the default checks.
func NewAuditStep(opts ...AuditStepOption) *AuditStep {
	s := &AuditStep{
		analyzer: audit.NewAnalyzer(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AuditStep) Name() string {
	return "audit"
}

// Do executes the audit step.
func (s *AuditStep) Do(ctx context.Context, report *model.CrawlReport) error {
	// Skip if nothing was crawled
	if len(report.Records) == 0 {
		s.logger.Debug("skipping audit, no items crawled")
		return nil
	}

	// Prepare analysis data
	data := &audit.AnalysisData{
		Target:  report.Target(),
		Records: report.Records,
	}

	// Run all checks
	findings, err := s.analyzer.Analyze(ctx, data)
	if err != nil {
		// Non-fatal: keep partial results
		s.logger.Warn("audit completed with error", "error", err)
	}

	// Add findings to report
	for _, f := range findings {
		report.AddFinding(f)
	}

	// Finalize the summary now that findings and records are complete.
	report.SimpleReport = model.NewSimpleReport(report)

	s.logger.Info("audit completed",
		"findings_count", len(findings),
	)

	return nil
}

// SaveStep persists the crawl results to the local database.
// Item records and the full report are stored for later comparison
// and history queries.
//
// Design decision: Persistence is a pipeline step rather than a CLI
// afterthought because:
// 1. It runs in the same ordered, logged, cancellable framework
// 2. Batch crawls get per-target persistence for free
// 3. The --no-save path is expressed by simply not adding the step
type SaveStep struct {
	// db is the crawl database. A nil database turns the step into a no-op.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a new persistence step writing to db.
func NewSaveStep(db *database.CrawlDB, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if s.db == nil {
		s.logger.Debug("skipping save, no database configured")
		return nil
	}

	// Save individual records first; a failed record shouldn't block the rest.
	saved := 0
	for _, rec := range report.Records {
		if _, err := s.db.SaveRecord(ctx, rec); err != nil {
			s.logger.Warn("failed to save record",
				"url", rec.URL,
				"error", err,
			)
			continue
		}
		saved++
	}

	if err := s.db.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	s.logger.Info("crawl saved",
		"records_saved", saved,
		"target", report.Target(),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// CrawlDepth is the maximum depth for crawling.
	CrawlDepth int

	// MaxItems is the maximum number of items to fetch.
	MaxItems int

	// CrawlDelay is the delay between requests during crawling.
	// This is a "politeness" setting to avoid overwhelming small servers.
	CrawlDelay time.Duration

	// FetchLeaves controls whether text and image leaves are downloaded.
	FetchLeaves bool

	// Encoding decodes menus and text from a legacy charset. nil is UTF-8.
	Encoding encoding.Encoding

	// IgnorePatterns are selector patterns to skip during crawling.
	IgnorePatterns []string

	// FollowPatterns are selector patterns to follow during crawling.
	FollowPatterns []string

	// DB is the crawl database. When nil, no save step is added.
	DB *database.CrawlDB
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDepth sets the crawl depth for the pipeline.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineMaxItems sets the maximum items to fetch.
func WithPipelineMaxItems(maxItems int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxItems = maxItems
	}
}

// WithPipelineCrawlDelay sets the delay between requests during crawling.
// This is a "politeness" setting to avoid overwhelming small servers.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineFetchLeaves controls whether leaf content is downloaded.
func WithPipelineFetchLeaves(fetch bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FetchLeaves = fetch
	}
}

// WithPipelineEncoding sets the charset for decoding menus and text.
func WithPipelineEncoding(enc encoding.Encoding) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Encoding = enc
	}
}

// WithPipelineIgnorePatterns sets selector patterns to skip during crawling.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineFollowPatterns sets selector patterns to follow during crawling.
func WithPipelineFollowPatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FollowPatterns = patterns
	}
}

// WithPipelineDatabase sets the database for the save step.
// When not set, crawl results are not persisted.
func WithPipelineDatabase(db *database.CrawlDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DB = db
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard pipeline for crawling and auditing a gopher hole.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full crawl-audit-save sequence
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineCrawlDepth, etc).
func DefaultPipeline(fetcher protocol.Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config with conservative politeness settings
	cfg := &DefaultPipelineConfig{
		CrawlDepth:  config.DefaultCrawlDepth,
		MaxItems:    config.DefaultMaxItems,
		CrawlDelay:  config.DefaultCrawlDelay,
		FetchLeaves: true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	// Build crawl step options including politeness settings
	crawlOpts := []CrawlStepOption{
		WithCrawlMaxDepth(cfg.CrawlDepth),
		WithCrawlMaxItems(cfg.MaxItems),
		WithCrawlDelay(cfg.CrawlDelay),
		WithCrawlFetchLeaves(cfg.FetchLeaves),
	}

	if cfg.Encoding != nil {
		crawlOpts = append(crawlOpts, WithCrawlEncoding(cfg.Encoding))
	}
	if len(cfg.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlIgnorePatterns(cfg.IgnorePatterns))
	}
	if len(cfg.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, WithCrawlFollowPatterns(cfg.FollowPatterns))
	}

	// Add steps in logical order
	p.AddSteps(
		NewCrawlStep(fetcher, crawlOpts...),
		NewAuditStep(),
	)

	if cfg.DB != nil {
		p.AddStep(NewSaveStep(cfg.DB))
	}

	return p
}
