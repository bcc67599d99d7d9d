package model

import "testing"

func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity Severity
		want     string
	}{
		{name: "minor", severity: SeverityMinor, want: "MINOR"},
		{name: "important", severity: SeverityImportant, want: "IMPORTANT"},
		{name: "critical", severity: SeverityCritical, want: "CRITICAL"},
		{name: "unknown value", severity: Severity(99), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityMinor < SeverityImportant && SeverityImportant < SeverityCritical) {
		t.Error("severity constants must ascend with severity for sorting")
	}
}

func TestGetSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		findingType string
		want        Severity
	}{
		{name: "missing h1 is critical", findingType: "missing_h1", want: SeverityCritical},
		{name: "heading skip is critical", findingType: "heading_level_skip", want: SeverityCritical},
		{name: "missing alt is important", findingType: "image_alt_missing", want: SeverityImportant},
		{name: "underscores are minor", findingType: "url_underscores", want: SeverityMinor},
		{name: "unknown type defaults to minor", findingType: "no_such_type", want: SeverityMinor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetSeverity(tt.findingType); got != tt.want {
				t.Errorf("GetSeverity(%q) = %v, want %v", tt.findingType, got, tt.want)
			}
		})
	}
}

func TestGetFindingInfo(t *testing.T) {
	t.Parallel()

	t.Run("known type carries impact and recommendation", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("keyword_stuffing")
		if info.Severity != SeverityCritical {
			t.Errorf("severity = %v, want %v", info.Severity, SeverityCritical)
		}
		if info.Impact == "" || info.Recommendation == "" {
			t.Error("catalog entries must carry impact and recommendation text")
		}
	})

	t.Run("unknown type returns review default", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("no_such_type")
		if info.Severity != SeverityMinor {
			t.Errorf("severity = %v, want %v", info.Severity, SeverityMinor)
		}
		if info.Impact == "" || info.Recommendation == "" {
			t.Error("default info must still carry guidance text")
		}
	})
}

func TestCatalogCompleteness(t *testing.T) {
	t.Parallel()

	for findingType, info := range findingInfoMapping {
		if info.Impact == "" {
			t.Errorf("catalog entry %q has empty impact", findingType)
		}
		if info.Recommendation == "" {
			t.Errorf("catalog entry %q has empty recommendation", findingType)
		}
	}
}
