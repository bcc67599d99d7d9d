// Package model defines the core data structures shared across seoscan.
//
// The central types are:
//   - PageFacts: an immutable snapshot of a single scraped page, the
//     read-only input every analysis stage works from.
//   - Finding: a single observation about the page with a severity,
//     a claim, and the evidence backing it.
//   - Outcome: the per-stage result variant (success, degraded, failed).
//   - Report: the assembled audit report with per-stage sections and
//     a prioritized action list.
//
// Design decision: model has no dependencies on other internal packages.
// Every other package imports model, never the reverse, which keeps the
// dependency graph acyclic and the data structures reusable in tests.
package model
