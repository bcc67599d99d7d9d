// Package analyze implements the audit stages: content, image, keyword,
// backlink, and URL analysis. Every stage produces its rule-based
// findings from PageFacts alone; when an inference client is configured
// the stage additionally asks a language model to review the page and
// folds the answer into extra findings. Stages never depend on each
// other's output.
package analyze
