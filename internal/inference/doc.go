// Package inference provides the language-model client used to enrich
// analysis stages with generated summaries and suggestions.
//
// The client speaks the OpenAI-compatible chat-completions protocol, so
// any backend exposing that surface works by swapping the base URL.
// Backend failures are classified into a small error taxonomy
// (rate-limited, transient, invalid input, auth) that the pipeline's
// retry logic keys off: only rate limits and transient backend errors
// are worth retrying.
package inference
