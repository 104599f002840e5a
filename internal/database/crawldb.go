package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/felipeandrian/navfep-gopher/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl records and reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all crawled holes
// rather than one file per hole. This keeps cross-hole queries (stats,
// target listing) trivial and makes backup a single-file copy.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "navfep.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Items store individual gopher item fetches
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		host TEXT NOT NULL,
		port INTEGER NOT NULL DEFAULT 70,
		selector TEXT,
		item_type TEXT,
		size INTEGER DEFAULT 0,
		hash TEXT,
		snapshot TEXT,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(url, host)
	);

	CREATE INDEX IF NOT EXISTS idx_items_url ON items(url);
	CREATE INDEX IF NOT EXISTS idx_items_host ON items(host);
	CREATE INDEX IF NOT EXISTS idx_items_timestamp ON items(timestamp);

	-- Crawl reports store complete walk results as JSON
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		port INTEGER NOT NULL DEFAULT 70,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_host ON crawl_reports(host);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON crawl_reports(timestamp);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRecord inserts or updates a crawl record.
// Uses UPSERT to handle duplicates (same URL + host), so re-crawling a
// hole refreshes its rows in place.
//
// Design decision: We store model.Record directly rather than a separate
// row struct because the record's persistent fields map one-to-one onto
// columns. Raw bytes and parsed menu entries are deliberately not stored:
// raw content can be large and both are reproducible by re-fetching.
func (cdb *CrawlDB) SaveRecord(ctx context.Context, rec *model.Record) (int64, error) {
	query := `
	INSERT INTO items (url, host, port, selector, item_type, size, hash, snapshot, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, host) DO UPDATE SET
		port = excluded.port,
		selector = excluded.selector,
		item_type = excluded.item_type,
		size = excluded.size,
		hash = excluded.hash,
		snapshot = excluded.snapshot,
		error = excluded.error,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := cdb.db.ExecContext(ctx, query,
		rec.URL,
		rec.Host,
		rec.Port,
		rec.Selector,
		rec.Type.String(),
		rec.Size,
		rec.Hash,
		rec.Snapshot,
		rec.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save record: %w", err)
	}

	return result.LastInsertId()
}

// GetRecord retrieves a stored record by its canonical URL.
// Returns nil without error when the item was never stored.
func (cdb *CrawlDB) GetRecord(ctx context.Context, url string) (*model.Record, error) {
	query := `
	SELECT url, host, port, selector, item_type, size, hash, snapshot, error, timestamp
	FROM items
	WHERE url = ?
	`

	rec, err := scanRecord(cdb.db.QueryRowContext(ctx, query, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return rec, nil
}

// GetRecordsByHost retrieves all stored records for a host and port,
// ordered by URL for deterministic output.
func (cdb *CrawlDB) GetRecordsByHost(ctx context.Context, host string, port int) ([]*model.Record, error) {
	query := `
	SELECT url, host, port, selector, item_type, size, hash, snapshot, error, timestamp
	FROM items
	WHERE host = ? AND port = ?
	ORDER BY url
	`

	rows, err := cdb.db.QueryContext(ctx, query, host, port)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one items row into a model.Record.
func scanRecord(row rowScanner) (*model.Record, error) {
	var rec model.Record
	var itemType string
	var timestamp string

	err := row.Scan(
		&rec.URL,
		&rec.Host,
		&rec.Port,
		&rec.Selector,
		&itemType,
		&rec.Size,
		&rec.Hash,
		&rec.Snapshot,
		&rec.Error,
		&timestamp,
	)
	if err != nil {
		return nil, err
	}

	// A stored type is always a single character or empty, so the parse
	// cannot fail; guard anyway to keep corrupted rows readable.
	if t, err := model.ParseItemType(itemType); err == nil {
		rec.Type = t
	}
	rec.FetchedAt = parseTimestamp(timestamp)

	return &rec, nil
}

// HasRecentCrawl checks if a URL was fetched within the specified duration.
// Used to skip re-crawling fresh items.
func (cdb *CrawlDB) HasRecentCrawl(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM items
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// SaveReport saves a complete crawl report as JSON.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) error {
	// Serialize report to JSON
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Create risk summary
	riskSummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
	}
	if report.SimpleReport != nil {
		riskSummary["critical"] = report.SimpleReport.CriticalCount
		riskSummary["high"] = report.SimpleReport.HighCount
		riskSummary["medium"] = report.SimpleReport.MediumCount
		riskSummary["low"] = report.SimpleReport.LowCount
		riskSummary["info"] = report.SimpleReport.InfoCount
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO crawl_reports (host, port, report_json, risk_summary)
	VALUES (?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		report.Host,
		report.Port,
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}

	return nil
}

// GetLatestReport retrieves the most recent crawl report for a hole.
// Returns nil without error when the hole was never crawled.
func (cdb *CrawlDB) GetLatestReport(ctx context.Context, host string, port int) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE host = ? AND port = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, host, port).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetReportHistory retrieves all crawl reports for a hole, newest first.
func (cdb *CrawlDB) GetReportHistory(ctx context.Context, host string, port int) ([]*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE host = ? AND port = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, host, port)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var reports []*model.CrawlReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.CrawlReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ListCrawledTargets returns the host:port of every hole with at least
// one stored report, sorted for stable output.
func (cdb *CrawlDB) ListCrawledTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT host, port FROM crawl_reports
	ORDER BY host, port
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var host string
		var port int
		if err := rows.Scan(&host, &port); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, fmt.Sprintf("%s:%d", host, port))
	}

	return targets, rows.Err()
}

// Stats summarizes what the database holds.
type Stats struct {
	// Items is the number of stored item rows.
	Items int

	// Reports is the number of stored crawl reports.
	Reports int

	// Hosts is the number of distinct hosts with stored items.
	Hosts int
}

// Stats returns summary counts over the stored data.
func (cdb *CrawlDB) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&stats.Items); err != nil {
		return Stats{}, fmt.Errorf("failed to count items: %w", err)
	}
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawl_reports").Scan(&stats.Reports); err != nil {
		return Stats{}, fmt.Errorf("failed to count reports: %w", err)
	}
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT host) FROM items").Scan(&stats.Hosts); err != nil {
		return Stats{}, fmt.Errorf("failed to count hosts: %w", err)
	}

	return stats, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
