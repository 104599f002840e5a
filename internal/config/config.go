package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values follow typical gopherspace characteristics: servers are
// small, responses are tiny by web standards, and most holes run on
// hobbyist hardware that deserves gentle treatment.
const (
	// DefaultTimeout is the idle limit per network operation: connect,
	// the selector write, and each read get this long to make progress.
	// A transfer that keeps moving data is never cut off, which matters
	// over Tor, while dead hosts still fail in 10 seconds.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxResponseSize caps the bytes buffered from one response.
	// The protocol has no length framing, so a misbehaving server could
	// stream forever; 4MB comfortably holds any menu, text file, or
	// typical inline image.
	DefaultMaxResponseSize = 4 * 1024 * 1024 // 4MB

	// DefaultCrawlDepth of 3 reaches the bulk of a typical gopher hole
	// (root menu, section menus, items) without wandering the whole of
	// gopherspace through cross-links.
	DefaultCrawlDepth = 3

	// DefaultMaxItems is the maximum number of items to fetch per crawl.
	// This prevents runaway crawling on large or cyclic menu structures.
	// Users can override this via the --max-items CLI flag.
	DefaultMaxItems = 200

	// DefaultCrawlDelay is the delay between requests during crawling.
	// This is a politeness setting; gopher holes are often single-board
	// machines, so 500ms keeps the crawl from reading like a flood.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultBatchSize of 4 concurrent crawls balances throughput with
	// resource usage when processing multiple targets. Higher values may
	// overwhelm the local Tor daemon when crawling onion holes.
	DefaultBatchSize = 4

	// DefaultCharset is the charset menus and text files are decoded
	// with. Invalid sequences are dropped, never fatal. Legacy servers
	// that still emit Latin-1 or CP437 can be handled per host via the
	// configuration file.
	DefaultCharset = "utf-8"

	// DefaultGatewayAddress is where the serve command listens.
	// Bound to loopback; the gateway renders remote content and is not
	// meant to be exposed directly.
	DefaultGatewayAddress = "127.0.0.1:7070"

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead
	// and potential issues with IPv6 resolution on some systems.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "navfep-gopher"
)

// Config holds all configuration options for the gopher client.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Timeout is the deadline for one complete fetch: connect, write,
	// and read until the server closes the connection.
	Timeout time.Duration

	// MaxResponseSize is the maximum response size in bytes to buffer.
	// Responses larger than this fail with a distinct too-large error.
	// Zero disables the cap entirely.
	MaxResponseSize int64

	// CrawlDepth is the maximum menu depth for crawling.
	// Depth 0 means only fetch the initial menu.
	// Higher values find more content but take longer and use more resources.
	CrawlDepth int

	// MaxItems is the maximum number of items to fetch per crawl.
	// This prevents runaway crawling on cyclic or generated menus.
	// A value of 0 means use the default (DefaultMaxItems).
	MaxItems int

	// CrawlDelay is the delay between requests during crawling.
	// This is a "politeness" setting to avoid overwhelming small servers.
	CrawlDelay time.Duration

	// FetchLeaves controls whether the crawler downloads text and image
	// items in addition to menus. Required for the EXIF and email audit
	// checks; disable for a fast structure-only crawl.
	FetchLeaves bool

	// Charset is the charset used to decode menus and text files.
	// Per-host overrides in the configuration file take precedence.
	Charset string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent crawls when processing multiple targets.
	// Higher values increase throughput but may overwhelm system resources.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .navfep-gopher in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host configurations loaded from the config file.
	// This is populated by LoadConfigFile and used during fetching and crawling.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// When true, outputs detailed JSON with all collected data.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// When true, outputs GitHub Flavored Markdown with tables, alerts, and pie charts.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of gopher URLs to fetch or crawl.
	// Must contain at least one URL of the form gopher://host[:port][/selector].
	Targets []string

	// UseTor routes all fetches through a Tor SOCKS5 proxy. Required for
	// .onion gopher holes; optional (but supported) for clearnet ones.
	UseTor bool

	// UseExternalTor disables the embedded Tor daemon and uses an external proxy.
	// When false (default), an embedded Tor daemon is started automatically
	// whenever UseTor is set. When true, an external Tor service is expected
	// at TorProxyAddress.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap and connect
	// to the Tor network on first start.
	UseExternalTor bool

	// TorProxyAddress is the address of the Tor SOCKS5 proxy in "host:port" format.
	// Only used when UseTor is set.
	TorProxyAddress string

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon
	// to start and bootstrap. Only used when UseTor is set and UseExternalTor is false.
	TorStartupTimeout time.Duration

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl results are saved to the database for historical comparison.
	// When empty, crawl results are not persisted.
	// Defaults to XDG data directory (~/.local/share/navfep-gopher on Linux).
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// GatewayAddress is the listen address for the serve command's HTTP
	// gateway in "host:port" format.
	GatewayAddress string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, port numbers).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxResponseSize:   DefaultMaxResponseSize,
		CrawlDepth:        DefaultCrawlDepth,
		MaxItems:          DefaultMaxItems,
		CrawlDelay:        DefaultCrawlDelay,
		FetchLeaves:       true,
		Charset:           DefaultCharset,
		BatchSize:         DefaultBatchSize,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		GatewayAddress:    DefaultGatewayAddress,
	}
}

// XDGDataDir returns the XDG data directory for the gopher client.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/navfep-gopher
// On macOS: ~/Library/Application Support/navfep-gopher
// On Windows: %LOCALAPPDATA%\navfep-gopher
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the gopher client.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/navfep-gopher
// On macOS: ~/Library/Application Support/navfep-gopher
// On Windows: %APPDATA%\navfep-gopher
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the gopher client.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/navfep-gopher
// On macOS: ~/Library/Caches/navfep-gopher
// On Windows: %LOCALAPPDATA%\navfep-gopher\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any fetching begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to fetch
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no crawling
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxResponseSize must be non-negative; 0 disables the cap
	if c.MaxResponseSize < 0 {
		return ErrInvalidMaxResponseSize
	}

	// CrawlDepth must be non-negative; 0 fetches only the start item
	if c.CrawlDepth < 0 {
		return ErrInvalidCrawlDepth
	}

	return nil
}
