// Package pipeline orchestrates the analysis stages of one audit run.
//
// The pipeline owns a declared set of stages, runs them concurrently
// against a shared read-only PageFacts snapshot, and guarantees exactly
// one terminal Outcome per declared stage no matter how individual
// stages fail. A shared RateLimiter throttles the stages' inference
// usage, the StageRunner gives every stage identical retry semantics,
// and the Aggregator merges the outcomes into a deterministic report.
//
// Design decision: stage errors never propagate as returned errors past
// the StageRunner. Every failure mode is converted into an Outcome
// value, so one broken stage can never abort the run or hide a sibling
// stage's results. Only PageFacts acquisition and configuration errors
// abort an audit, and both happen before the pipeline starts.
package pipeline
