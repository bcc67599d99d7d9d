package inference

import "context"

// Client is the inference surface the analysis stages depend on.
//
// Design decision: stages accept this two-method interface rather than
// the concrete ChatClient so tests can substitute a canned fake and so a
// nil client cleanly disables enrichment (deterministic-only audits).
type Client interface {
	// AnalyzeText sends a system/user prompt pair to the text model and
	// returns the completion text.
	AnalyzeText(ctx context.Context, system, prompt string) (string, error)

	// AnalyzeImage sends a prompt plus one image to the vision model and
	// returns the completion text. The image is embedded in the request
	// as a base64 data URL, so no image hosting is required.
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
