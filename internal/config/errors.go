package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no target gopher URL is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one gopher URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent crawls, effectively stopping
	// the crawl process.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxResponseSize is returned when the max response size is negative.
	// A negative response size is invalid; use 0 to use the default limit.
	ErrInvalidMaxResponseSize = errors.New("invalid max response size: must be non-negative")

	// ErrInvalidCrawlDepth is returned when the crawl depth is negative.
	// A negative depth is invalid; use 0 to fetch only the start item.
	ErrInvalidCrawlDepth = errors.New("invalid crawl depth: must be non-negative")
)
