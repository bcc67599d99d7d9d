// Package main provides the entry point for the seoscan CLI.
//
// seoscan audits a single web page for SEO problems. It fetches the
// page, runs independent analysis stages (content, images, keywords,
// backlinks, URL structure), and aggregates their findings into a
// prioritized report.
//
// Usage:
//
//	seoscan audit https://example.com/blog/post
//	seoscan audit --json https://example.com/blog/post
//
// See --help for all available options.
package main

// main is the entry point for seoscan.
func main() {
	Execute()
}
