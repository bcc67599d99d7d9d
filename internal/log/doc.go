// Package log provides logging utilities for seoscan.
//
// The package wraps log/slog with a SecureHandler that redacts inference
// API keys and other credentials before records reach the underlying
// handler, so a --verbose run can never leak the key that authenticates
// the audit's language-model calls.
package log
