package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/seoscan/internal/model"
)

// AuditDB provides SQLite-based storage for audit reports.
// It manages connection pooling and provides methods for saving and
// querying audit history.
//
// Design decision: We use a single database file for all audited URLs
// rather than one per site. This keeps history queries across sites in
// one place and simplifies backup/restore operations.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
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

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "seoscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audit reports store complete audit results as JSON with
	-- denormalized severity counts for cheap history listings.
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		critical_count INTEGER NOT NULL DEFAULT 0,
		important_count INTEGER NOT NULL DEFAULT 0,
		minor_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_url ON audits(url);
	CREATE INDEX IF NOT EXISTS idx_audits_timestamp ON audits(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport saves a complete audit report and returns its database ID.
func (adb *AuditDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO audits (url, timestamp, critical_count, important_count, minor_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		report.URL,
		report.AuditedAt.UTC().Format("2006-01-02 15:04:05"),
		report.CriticalCount,
		report.ImportantCount,
		report.MinorCount,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestReport retrieves the most recent report for a URL.
// Returns nil without error when no report exists.
func (adb *AuditDB) GetLatestReport(ctx context.Context, url string) (*model.Report, error) {
	query := `
	SELECT report_json FROM audits
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, url).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetReportByID retrieves a report by its database ID.
// Returns nil without error when the ID does not exist.
func (adb *AuditDB) GetReportByID(ctx context.Context, id int64) (*model.Report, error) {
	query := `
	SELECT report_json FROM audits
	WHERE id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// AuditMetadata contains summary information about a stored audit.
// This is used for displaying history without loading full reports.
type AuditMetadata struct {
	// ID is the unique identifier of the audit in the database.
	ID int64

	// URL is the audited page URL.
	URL string

	// Timestamp is when the audit was performed.
	Timestamp time.Time

	// CriticalCount, ImportantCount, and MinorCount are the severity
	// counts at audit time.
	CriticalCount  int
	ImportantCount int
	MinorCount     int
}

// History retrieves audit metadata for a URL, newest first.
// limit bounds the number of rows; 0 means no limit.
func (adb *AuditDB) History(ctx context.Context, url string, limit int) ([]AuditMetadata, error) {
	query := `
	SELECT id, url, timestamp, critical_count, important_count, minor_count
	FROM audits
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{url}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp string

		if err := rows.Scan(&meta.ID, &meta.URL, &timestamp,
			&meta.CriticalCount, &meta.ImportantCount, &meta.MinorCount); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListAuditedURLs returns every URL with at least one stored audit.
func (adb *AuditDB) ListAuditedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM audits
	ORDER BY url
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
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
	return time.Time{}
}
