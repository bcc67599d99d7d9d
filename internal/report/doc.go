// Package report renders audit reports in multiple output formats.
//
// Three formats are supported:
//   - Simple: human-readable text for terminal display (default)
//   - JSON: machine-readable format for tool integration
//   - Markdown: documentation format with tables and charts
//
// All writers implement the Writer interface, and MultiWriter fans one
// report out to several destinations at once.
package report
