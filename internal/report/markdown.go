package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/seoscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePriorityActions(md, report)
	w.writeSections(md, report)
	w.writeManifest(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page URL", "`" + report.URL + "`"},
			{"Audit Date", report.AuditedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(timeRounding).String()},
			{"Total Findings", strconv.Itoa(report.TotalFindings())},
		},
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 Important", strconv.Itoa(report.ImportantCount)},
			{"🔵 Minor", strconv.Itoa(report.MinorCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if report.TotalFindings() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if report.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(report.CriticalCount))
	}
	if report.ImportantCount > 0 {
		chart.LabelAndIntValue("Important", uint64(report.ImportantCount))
	}
	if report.MinorCount > 0 {
		chart.LabelAndIntValue("Minor", uint64(report.MinorCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"Critical SEO issues detected! %d critical finding(s) block indexing or core ranking signals.",
			report.CriticalCount,
		)
	case report.ImportantCount > 0:
		md.Warningf(
			"%d important finding(s) have a measurable ranking impact and should be addressed.",
			report.ImportantCount,
		)
	case report.TotalFindings() > 0:
		md.Note("Only minor findings detected.")
	default:
		md.Tip("No SEO issues detected on this page.")
	}
	md.PlainText("")
}

// writePriorityActions writes the top-priority fix list.
func (w *MarkdownWriter) writePriorityActions(md *markdown.Markdown, report *model.Report) {
	md.H2("Priority Actions")
	md.PlainText("")

	if len(report.PriorityActions) == 0 {
		md.PlainText("No critical or important findings.")
		md.PlainText("")
		return
	}

	items := make([]string, 0, len(report.PriorityActions))
	for _, f := range report.PriorityActions {
		item := "**" + f.SeverityText + "** " + f.Claim
		if f.Recommendation != "" {
			item += " (fix: " + f.Recommendation + ")"
		}
		items = append(items, item)
	}
	md.OrderedList(items...)
	md.PlainText("")
}

// writeSections writes every stage section in declaration order.
func (w *MarkdownWriter) writeSections(md *markdown.Markdown, report *model.Report) {
	md.H2("Findings by Stage")
	md.PlainText("")

	for _, section := range report.Sections {
		md.H3(section.Stage + " (" + section.StatusText + ")")
		md.PlainText("")

		if section.Caveat != "" {
			md.Warningf("%s", section.Caveat)
			md.PlainText("")
		}

		if len(section.Findings) == 0 {
			md.PlainText("No findings.")
			md.PlainText("")
			continue
		}
		w.writeFindingsTable(md, section.Findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		subject := f.SubjectID
		if subject == "" {
			subject = "-"
		}
		rows[i] = []string{
			f.SeverityText,
			f.Claim,
			truncateString(f.Basis, 60),
			subject,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Claim", "Basis", "Subject"},
		Rows:   rows,
	})
	md.PlainText("")

	// Expandable detail per finding carrying impact and recommendation.
	for _, f := range findings {
		if f.Impact == "" && f.Recommendation == "" {
			continue
		}
		detail := f.Impact
		if f.Recommendation != "" {
			if detail != "" {
				detail += " "
			}
			detail += "Fix: " + f.Recommendation
		}
		md.Details(f.Claim, detail)
	}
	md.PlainText("")
}

// writeManifest writes the stage execution manifest.
func (w *MarkdownWriter) writeManifest(md *markdown.Markdown, report *model.Report) {
	md.H2("Stage Manifest")
	md.PlainText("")

	rows := make([][]string, len(report.Manifest))
	for i, s := range report.Manifest {
		reason := s.Reason
		if reason == "" {
			reason = "-"
		}
		rows[i] = []string{
			s.Stage,
			s.Status,
			strconv.Itoa(s.Attempts),
			s.Elapsed.Round(timeRounding).String(),
			truncateString(reason, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Status", "Attempts", "Elapsed", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [seoscan](https://github.com/nao1215/seoscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
