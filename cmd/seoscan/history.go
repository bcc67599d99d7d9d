package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/report"
)

// Severity trend directions between two audits.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command displays audit history stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show audit history for a page",
		Long: `History lists past audits of a page stored in the database.

Each audit saves its severity counts and full report. This command shows:
- The list of audits for a URL with their severity counts
- The severity trend between the latest two audits
- Any stored report in full, by ID

Examples:
  # List audit history for a page
  seoscan history https://example.com/blog/post

  # Show the severity trend between the latest two audits
  seoscan history --trend https://example.com/blog/post

  # Print a stored report by ID
  seoscan history --show 5 https://example.com/blog/post

  # List all audited URLs in the database
  seoscan history --list-urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-urls", "L", false,
		"List all audited URLs in the database")
	cmd.Flags().Bool("trend", false,
		"Compare severity counts of the latest two audits")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the stored report with this ID (use the list to see IDs)")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of history rows to list (0 = all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the stored report in JSON format (with --show)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listURLs, err := cmd.Flags().GetBool("list-urls")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so bad invocations
	// do not create an empty database file.
	var pageURL string
	if !listURLs {
		if len(args) == 0 {
			return errors.New("page URL is required (use --list-urls to see audited pages)")
		}
		pageURL = args[0]
	}

	// The audit command writes here; open the same location read-mostly.
	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no audit history found (run 'seoscan audit' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listURLs {
		return listAuditedURLs(ctx, db)
	}

	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	if showID > 0 {
		jsonOutput, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		return showStoredReport(ctx, db, pageURL, showID, jsonOutput)
	}

	trend, err := cmd.Flags().GetBool("trend")
	if err != nil {
		return err
	}
	if trend {
		return showTrend(ctx, db, pageURL)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listAuditHistory(ctx, db, pageURL, limit)
}

// listAuditedURLs lists every URL with at least one stored audit.
func listAuditedURLs(ctx context.Context, db *database.AuditDB) error {
	urls, err := db.ListAuditedURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list URLs: %w", err)
	}

	if len(urls) == 0 {
		fmt.Println("No audited pages found in the database.")
		fmt.Println("\nUse 'seoscan audit <url>' to audit a page.")
		return nil
	}

	fmt.Printf("Audited pages (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Printf("  %s\n", u)
	}
	fmt.Println("\nUse 'seoscan history <url>' to see the audit history for a page.")

	return nil
}

// listAuditHistory lists stored audits for a page, newest first.
func listAuditHistory(ctx context.Context, db *database.AuditDB, pageURL string, limit int) error {
	audits, err := db.History(ctx, pageURL, limit)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(audits) == 0 {
		fmt.Printf("No audit history found for %s\n", pageURL)
		fmt.Println("\nUse 'seoscan audit' to audit this page.")
		return nil
	}

	fmt.Printf("Audit history for %s (%d audits):\n\n", pageURL, len(audits))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Findings")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range audits {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatSeverityCounts(meta),
		)
	}

	fmt.Println("\nUse 'seoscan history --trend <url>' to compare the latest two audits.")
	fmt.Println("Use 'seoscan history --show <id> <url>' to print a stored report.")

	return nil
}

// formatSeverityCounts formats an audit's severity counts for listing.
func formatSeverityCounts(meta database.AuditMetadata) string {
	total := meta.CriticalCount + meta.ImportantCount + meta.MinorCount
	if total == 0 {
		return "No findings"
	}

	var parts []string
	if meta.CriticalCount > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", meta.CriticalCount))
	}
	if meta.ImportantCount > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", meta.ImportantCount))
	}
	if meta.MinorCount > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", meta.MinorCount))
	}
	return strings.Join(parts, " ")
}

// showStoredReport prints one stored report in full.
func showStoredReport(ctx context.Context, db *database.AuditDB, pageURL string, id int64, jsonOutput bool) error {
	stored, err := db.GetReportByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get audit with ID %d: %w", id, err)
	}
	if stored == nil {
		return fmt.Errorf("audit with ID %d not found", id)
	}
	if stored.URL != pageURL {
		return fmt.Errorf("audit ID %d belongs to %s, not %s", id, stored.URL, pageURL)
	}

	if jsonOutput {
		_, err = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()).Write(stored)
		return err
	}
	_, err = report.NewSimpleWriter(os.Stdout).Write(stored)
	return err
}

// showTrend compares the severity counts of the latest two audits.
func showTrend(ctx context.Context, db *database.AuditDB, pageURL string) error {
	audits, err := db.History(ctx, pageURL, 2)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}
	if len(audits) < 2 {
		return fmt.Errorf("at least 2 audits are required for a trend (found %d)", len(audits))
	}

	current, previous := audits[0], audits[1]

	fmt.Printf("Severity trend for %s\n", pageURL)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nStatus: %s\n", formatTrendDirection(trendDirection(previous, current)))
	fmt.Printf("\nPrevious audit: %s\n", previous.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current audit:  %s\n", current.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		previous.CriticalCount, current.CriticalCount,
		formatDelta(current.CriticalCount-previous.CriticalCount))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Important",
		previous.ImportantCount, current.ImportantCount,
		formatDelta(current.ImportantCount-previous.ImportantCount))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Minor",
		previous.MinorCount, current.MinorCount,
		formatDelta(current.MinorCount-previous.MinorCount))

	prevTotal := previous.CriticalCount + previous.ImportantCount + previous.MinorCount
	currTotal := current.CriticalCount + current.ImportantCount + current.MinorCount
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		prevTotal, currTotal, formatDelta(currTotal-prevTotal))

	return nil
}

// trendDirection classifies the severity change between two audits
// using a weighted score so one new critical outweighs several fixed
// minors.
func trendDirection(previous, current database.AuditMetadata) string {
	previousScore := previous.CriticalCount*100 + previous.ImportantCount*10 + previous.MinorCount
	currentScore := current.CriticalCount*100 + current.ImportantCount*10 + current.MinorCount

	switch {
	case currentScore < previousScore:
		return trendImproved
	case currentScore > previousScore:
		return trendWorsened
	default:
		return trendUnchanged
	}
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer or less severe findings)"
	case trendWorsened:
		return "WORSENED (more or more severe findings)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
