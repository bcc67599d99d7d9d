package analyze

import (
	"context"
	"testing"

	"github.com/nao1215/seoscan/internal/model"
)

func linkFacts(links ...model.LinkRef) *model.PageFacts {
	return &model.PageFacts{
		CanonicalURL: "https://example.com/",
		StatusCode:   200,
		Links:        links,
	}
}

func TestBacklinkAnalyzerProfile(t *testing.T) {
	t.Parallel()

	facts := linkFacts(
		model.LinkRef{ID: "link-0", Href: "https://example.com/about", Anchor: "About us", Internal: true},
		model.LinkRef{ID: "link-1", Href: "https://research.example.org/study", Anchor: "the 2025 usage study"},
		model.LinkRef{ID: "link-2", Href: "https://bit.ly/3xYzAbC", Anchor: "our announcement"},
		model.LinkRef{ID: "link-3", Href: "http://203.0.113.7/download", Anchor: "download page"},
		model.LinkRef{ID: "link-4", Href: "https://partner.example.net/", Anchor: "click here"},
	)

	findings, err := NewBacklinkAnalyzer(nil).Analyze(context.Background(), facts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	wantSubjects := map[string]string{
		"link_shortener":      "link-2",
		"bare_ip_link":        "link-3",
		"generic_anchor_text": "link-4",
	}
	for wantType, wantSubject := range wantSubjects {
		found := false
		for _, f := range findings {
			if f.Type == wantType {
				found = true
				if f.SubjectID != wantSubject {
					t.Errorf("%s subject = %q, want %q", wantType, f.SubjectID, wantSubject)
				}
			}
		}
		if !found {
			t.Errorf("findings = %v, want %s", findingTypes(findings), wantType)
		}
	}

	// Internal links never contribute findings.
	for _, f := range findings {
		if f.SubjectID == "link-0" {
			t.Errorf("internal link produced finding %s", f.Type)
		}
	}
}

func TestBacklinkAnalyzerNofollowHeavy(t *testing.T) {
	t.Parallel()

	t.Run("mostly nofollow", func(t *testing.T) {
		t.Parallel()

		facts := linkFacts(
			model.LinkRef{ID: "link-0", Href: "https://a.example.org/", Anchor: "source one", Rel: "nofollow"},
			model.LinkRef{ID: "link-1", Href: "https://b.example.org/", Anchor: "source two", Rel: "nofollow noopener"},
			model.LinkRef{ID: "link-2", Href: "https://c.example.org/", Anchor: "source three", Rel: "nofollow"},
			model.LinkRef{ID: "link-3", Href: "https://d.example.org/", Anchor: "source four"},
		)

		findings, err := NewBacklinkAnalyzer(nil).Analyze(context.Background(), facts)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if !hasFinding(findings, "nofollow_heavy") {
			t.Errorf("findings = %v, want nofollow_heavy", findingTypes(findings))
		}
	})

	t.Run("few links never fire", func(t *testing.T) {
		t.Parallel()

		facts := linkFacts(
			model.LinkRef{ID: "link-0", Href: "https://a.example.org/", Anchor: "source one", Rel: "nofollow"},
			model.LinkRef{ID: "link-1", Href: "https://b.example.org/", Anchor: "source two", Rel: "nofollow"},
		)

		findings, err := NewBacklinkAnalyzer(nil).Analyze(context.Background(), facts)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if hasFinding(findings, "nofollow_heavy") {
			t.Error("two links are too few to judge the nofollow ratio")
		}
	})
}

func TestBacklinkAnalyzerReady(t *testing.T) {
	t.Parallel()

	a := NewBacklinkAnalyzer(nil)

	internalOnly := linkFacts(
		model.LinkRef{ID: "link-0", Href: "https://example.com/about", Anchor: "About", Internal: true},
	)
	if ok, reason := a.Ready(internalOnly); ok || reason != "page has no external links" {
		t.Errorf("Ready() = %v %q, want not ready without external links", ok, reason)
	}

	withExternal := linkFacts(
		model.LinkRef{ID: "link-0", Href: "https://research.example.org/", Anchor: "the study"},
	)
	if ok, _ := a.Ready(withExternal); !ok {
		t.Error("Ready() = false for a page with external links")
	}
}
