package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables impact and recommendation detail per finding.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show sections with no findings.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePriorityActions(&sb, report)
	w.writeSections(&sb, report)
	w.writeManifest(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with audit information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          SEOSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Page URL:   %s\n", report.URL))
	sb.WriteString(fmt.Sprintf("Audit Date: %s\n", report.AuditedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", report.Elapsed.Round(timeRounding)))
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL:  %d\n", report.CriticalCount))
	sb.WriteString(fmt.Sprintf("  IMPORTANT: %d\n", report.ImportantCount))
	sb.WriteString(fmt.Sprintf("  MINOR:     %d\n", report.MinorCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:     %d findings\n", report.TotalFindings()))
	sb.WriteString("\n")
}

// writePriorityActions writes the top-priority fix list.
func (w *SimpleWriter) writePriorityActions(sb *strings.Builder, report *model.Report) {
	if len(report.PriorityActions) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PRIORITY ACTIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.PriorityActions) == 0 {
		sb.WriteString("  No critical or important findings\n")
	}
	for i, f := range report.PriorityActions {
		sb.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, f.SeverityText, f.Claim))
		if f.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("     Fix: %s\n", f.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// writeSections writes every stage section in declaration order.
func (w *SimpleWriter) writeSections(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS BY STAGE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, section := range report.Sections {
		if len(section.Findings) == 0 && section.Caveat == "" && !w.showEmpty {
			continue
		}
		w.writeSection(sb, section)
	}
}

// writeSection writes one stage section with its findings.
func (w *SimpleWriter) writeSection(sb *strings.Builder, section model.Section) {
	sb.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(section.StatusText), section.Stage))
	if section.Caveat != "" {
		sb.WriteString(fmt.Sprintf("  NOTE: %s\n", section.Caveat))
	}

	if len(section.Findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, f := range section.Findings {
		sb.WriteString(fmt.Sprintf("  * [%s] %s\n", f.SeverityText, f.Claim))
		sb.WriteString(fmt.Sprintf("    Basis: %s\n", f.Basis))
		if f.SubjectID != "" {
			sb.WriteString(fmt.Sprintf("    Subject: %s\n", f.SubjectID))
		}
		if w.verbose {
			if f.Impact != "" {
				sb.WriteString(fmt.Sprintf("    Impact: %s\n", f.Impact))
			}
			if f.Recommendation != "" {
				sb.WriteString(fmt.Sprintf("    Fix: %s\n", f.Recommendation))
			}
		}
	}
	sb.WriteString("\n")
}

// writeManifest writes the stage execution manifest.
func (w *SimpleWriter) writeManifest(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STAGE MANIFEST\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, s := range report.Manifest {
		line := fmt.Sprintf("  %-10s %-9s attempts=%d elapsed=%s",
			s.Stage, s.Status, s.Attempts, s.Elapsed.Round(timeRounding))
		if s.Reason != "" {
			line += " (" + s.Reason + ")"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by seoscan\n")
	sb.WriteString("https://github.com/nao1215/seoscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
