package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/database"
	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/pipeline"
	"github.com/felipeandrian/navfep-gopher/internal/protocol"
	"github.com/felipeandrian/navfep-gopher/internal/render"
	"github.com/felipeandrian/navfep-gopher/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <gopher-url>...",
		Short: "Crawl gopher holes and audit them for privacy exposures",
		Long: `Crawl walks one or more gopher holes breadth-first, fetches their
items, and audits the collected content for details that identify the
operator:
- Email addresses in menus, about files, and phlog posts
- EXIF metadata (GPS coordinates, camera serial numbers) in images
- Links to the web and to onion services
- Item types that expose infrastructure (telnet, CSO, search)

Results are printed as a report and cached in the local database for
later comparison, unless --no-save is given.

Examples:
  # Crawl a single gopher hole
  navfep-gopher crawl gopher://example.org

  # Crawl several holes concurrently
  navfep-gopher crawl --batch 4 gopher://a.example.org gopher://b.example.org

  # Deep crawl with a JSON report written to a file
  navfep-gopher crawl --depth 5 --json -o report.json gopher://example.org

  # Structure-only crawl: menus without text or image content
  navfep-gopher crawl --fetch-leaves=false gopher://example.org

  # Crawl an onion hole through an external Tor proxy
  navfep-gopher crawl --external-tor 127.0.0.1:9050 gopher://example3bnif4vmg.onion

Configuration file (.navfep-gopher) example:
  defaults:
    charset: utf-8
  sites:
    gopher.example.org:
      charset: latin-1
      depth: 5
      ignorePatterns:
        - "/archive/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Idle timeout for each fetch")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum menu recursion depth")
	cmd.Flags().IntP("max-items", "n", config.DefaultMaxItems,
		"Maximum number of items to fetch per hole")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between requests")
	cmd.Flags().Bool("fetch-leaves", true,
		"Fetch text and image items in addition to menus (audit checks need leaf content)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .navfep-gopher in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save crawl results to the local database")

	addTransportFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, socks5, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCrawl(ctx, cfg, socks5, logger)
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, "", err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, "", err
	}

	cfg.MaxItems, err = cmd.Flags().GetInt("max-items")
	if err != nil {
		return nil, "", err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, "", err
	}

	cfg.FetchLeaves, err = cmd.Flags().GetBool("fetch-leaves")
	if err != nil {
		return nil, "", err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, "", err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}

	// Load per-host configurations from the config file.
	// If the user explicitly specified a path, a missing file is an error.
	// Without a path, a missing file silently means no overrides.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, "", fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, "", err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, "", err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, "", err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, "", err
	}
	if !noSave {
		cfg.SaveToDB = true
		cfg.DBDir = config.XDGDataDir()
	}

	socks5, err := transportFromFlags(cmd, cfg)
	if err != nil {
		return nil, "", err
	}

	// Positional arguments are the gopher URLs to crawl
	cfg.Targets = args

	return cfg, socks5, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, socks5 string, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more gopher URLs as arguments)")
	}

	// Normalize all targets upfront so typos fail before any network or
	// database work happens.
	targets, err := normalizeTargets(cfg.Targets)
	if err != nil {
		return err
	}
	cfg.Targets = targets

	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"depth", cfg.CrawlDepth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	enableTorForOnionTargets(cfg, socks5, logger)

	dialer, cleanup, err := setupDialer(ctx, cfg, socks5, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fetcher := newFetcher(dialer, cfg)

	// Use the batch processor for parallel crawling if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, fetcher, db, logger)
	}

	// Single target or sequential crawling
	return runSequentialCrawl(ctx, cfg, fetcher, db, logger)
}

// normalizeTargets parses every target and rewrites it in canonical URL
// form. Onion hosts fold to one spelling so the crawl store and later
// compare lookups agree however the address was typed.
func normalizeTargets(targets []string) ([]string, error) {
	normalized := make([]string, len(targets))
	for i, target := range targets {
		addr, err := model.ParseAddress(target)
		if err != nil {
			return nil, fmt.Errorf("invalid gopher URL %q: %w", target, err)
		}
		if canonical := canonicalOnionHost(addr.Host()); canonical != addr.Host() {
			addr, err = model.NewGopherAddress(canonical, addr.Port(), addr.Selector(), addr.ItemType())
			if err != nil {
				return nil, fmt.Errorf("invalid gopher URL %q: %w", target, err)
			}
		}
		normalized[i] = addr.String()
	}
	return normalized, nil
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, fetcher protocol.Fetcher, db *database.CrawlDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		addr, err := model.ParseAddress(target)
		if err != nil {
			// Targets were normalized upfront; this cannot happen.
			return fmt.Errorf("invalid gopher URL %q: %w", target, err)
		}

		// Per-host configuration, merged over the file's defaults
		siteConfig := getSiteConfig(cfg, addr.Host())

		p := createPipelineForTarget(fetcher, logger, cfg, siteConfig, db)

		crawlReport := model.NewCrawlReport(addr.String(), addr.Host(), addr.Port())

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple targets concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, fetcher protocol.Fetcher, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; per-host configs (charset, depth, patterns) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Per-host configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-host settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Batch mode shares one pipeline shape across targets, so only
			// the file's defaults apply; per-host overrides would require
			// per-target pipeline creation.
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createPipelineForTarget(fetcher, logger, cfg, siteConfig, db)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Targets), crawlReport.StartURL)

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", crawlReport.StartURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// getSiteConfig returns the per-host configuration for a target host,
// merged over the config file's defaults.
func getSiteConfig(cfg *config.Config, host string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	return cfg.SiteConfigs.GetSiteConfig(host)
}

// createPipelineForTarget creates a pipeline with the given configuration.
func createPipelineForTarget(fetcher protocol.Fetcher, logger *slog.Logger, cfg *config.Config, siteConfig config.SiteConfig, db *database.CrawlDB) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	// Per-host overrides win over global flags
	crawlDepth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		crawlDepth = siteConfig.Depth
	}
	maxItems := cfg.MaxItems
	if siteConfig.MaxItems > 0 {
		maxItems = siteConfig.MaxItems
	}
	delay := cfg.CrawlDelay
	if siteConfig.DelayMS > 0 {
		delay = time.Duration(siteConfig.DelayMS) * time.Millisecond
	}
	charset := cfg.Charset
	if siteConfig.Charset != "" {
		charset = siteConfig.Charset
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawlDepth(crawlDepth),
		pipeline.WithPipelineMaxItems(maxItems),
		pipeline.WithPipelineCrawlDelay(delay),
		pipeline.WithPipelineFetchLeaves(cfg.FetchLeaves),
	}

	enc, err := render.LookupCharset(charset)
	if err != nil {
		logger.Warn("unknown charset, using utf-8", "charset", charset)
	} else if enc != nil {
		configOpts = append(configOpts, pipeline.WithPipelineEncoding(enc))
	}

	// Add selector pattern filtering if configured
	if len(siteConfig.IgnorePatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineFollowPatterns(siteConfig.FollowPatterns))
	}

	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineDatabase(db))
	}

	return pipeline.DefaultPipeline(fetcher, pipelineOpts, configOpts...)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	// Generate summary if the pipeline was cut short before the audit step
	if crawlReport.SimpleReport == nil {
		crawlReport.SimpleReport = model.NewSimpleReport(crawlReport)
	}

	output, owned, err := openOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	if owned {
		defer output.Close() //nolint:errcheck
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(crawlReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(crawlReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err = writer.Write(crawlReport)
	return err
}
