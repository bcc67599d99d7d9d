// Package scrape acquires the page under audit and turns it into the
// immutable PageFacts snapshot the analysis pipeline consumes.
//
// Acquisition has two modes: a plain HTTP fetch, and an optional
// headless-browser render (go-rod with a stealth page) for sites that
// assemble their content with JavaScript. A single DOM walk then
// extracts text blocks, images, links, and metadata in document order,
// and the page body is converted to markdown for use as inference
// prompt context.
package scrape
