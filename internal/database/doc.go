// Package database provides SQLite-based persistence for audit reports.
//
// Reports are stored as JSON documents with a small metadata row per
// audit, so history listings do not need to load full reports. The pure
// Go modernc.org/sqlite driver keeps the binary cgo-free.
package database
