package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

func sampleReport() *model.Report {
	critical := model.NewFinding("missing_h1", model.CategoryContent,
		"the page has no H1 heading", "0 H1 elements were found")
	important := model.NewFinding("image_alt_missing", model.CategoryImage,
		"an image lacks alt text", "image 1 of 2 has no alt attribute").WithSubject("image-0")
	minor := model.NewFinding("url_underscores", model.CategoryURL,
		"the URL uses underscores as word separators", `the path segment "go_tips" contains underscores`)

	return &model.Report{
		URL:       "https://example.com/blog/go_tips",
		AuditedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Sections: []model.Section{
			{
				Stage: "content", Category: model.CategoryContent,
				Status: model.OutcomeSuccess, StatusText: "success",
				Findings: []model.Finding{critical},
			},
			{
				Stage: "image", Category: model.CategoryImage,
				Status: model.OutcomeSuccess, StatusText: "success",
				Findings: []model.Finding{important},
			},
			{
				Stage: "keyword", Category: model.CategoryKeyword,
				Status: model.OutcomeFailed, StatusText: "failed",
				Caveat: "unavailable: backend unavailable",
			},
			{
				Stage: "backlink", Category: model.CategoryBacklink,
				Status: model.OutcomeDegraded, StatusText: "degraded",
				Caveat: "partial: no input: page has no external links",
			},
			{
				Stage: "url", Category: model.CategoryURL,
				Status: model.OutcomeSuccess, StatusText: "success",
				Findings: []model.Finding{minor},
			},
		},
		PriorityActions: []model.Finding{critical, important},
		Manifest: []model.StageStatus{
			{Stage: "content", Category: model.CategoryContent, Status: "success", Attempts: 1, Elapsed: 1200 * time.Millisecond},
			{Stage: "image", Category: model.CategoryImage, Status: "success", Attempts: 1, Elapsed: 900 * time.Millisecond},
			{Stage: "keyword", Category: model.CategoryKeyword, Status: "failed", Reason: "backend unavailable", Attempts: 4, Elapsed: 8 * time.Second},
			{Stage: "backlink", Category: model.CategoryBacklink, Status: "degraded", Reason: "no input: page has no external links"},
			{Stage: "url", Category: model.CategoryURL, Status: "success", Attempts: 1, Elapsed: 5 * time.Millisecond},
		},
		CriticalCount:  1,
		ImportantCount: 1,
		MinorCount:     1,
		Elapsed:        9500 * time.Millisecond,
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewSimpleWriter(&buf).Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"SEOSCAN REPORT",
		"https://example.com/blog/go_tips",
		"CRITICAL:  1",
		"PRIORITY ACTIONS",
		"1. [CRITICAL] the page has no H1 heading",
		"NOTE: unavailable: backend unavailable",
		"NOTE: partial: no input: page has no external links",
		"STAGE MANIFEST",
		"attempts=4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestSimpleWriterVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Impact:") {
		t.Error("verbose output must include finding impact")
	}
	if !strings.Contains(buf.String(), "Fix:") {
		t.Error("verbose output must include recommendations")
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# SEO Audit Report",
		"## Severity Summary",
		"## Priority Actions",
		"### keyword (failed)",
		"unavailable: backend unavailable",
		"## Stage Manifest",
		"```mermaid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithVersion("1.0.0")).Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded struct {
		Version string        `json:"version"`
		Report  *model.Report `json:"report"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", decoded.Version)
	}
	if decoded.Report == nil || len(decoded.Report.Sections) != 5 {
		t.Fatalf("decoded report lost its sections")
	}
	if decoded.Report.Sections[2].Caveat != "unavailable: backend unavailable" {
		t.Errorf("caveat = %q", decoded.Report.Sections[2].Caveat)
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))

	total, err := mw.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if total != a.Len()+b.Len() {
		t.Errorf("total = %d, want %d", total, a.Len()+b.Len())
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("both writers must receive output")
	}
}

type failingWriter struct{}

func (failingWriter) Write(*model.Report) (int, error) {
	return 0, errors.New("sink closed")
}

func TestMultiWriterStopsOnError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))

	if _, err := mw.Write(sampleReport()); err == nil {
		t.Fatal("Write() error = nil, want sink error")
	}
	if buf.Len() != 0 {
		t.Error("writers after the failing one must not run")
	}
}
