package model

import "testing"

func TestReportCounts(t *testing.T) {
	t.Parallel()

	r := &Report{CriticalCount: 1, ImportantCount: 2, MinorCount: 3}

	if got := r.TotalFindings(); got != 6 {
		t.Errorf("TotalFindings() = %d, want 6", got)
	}

	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityCritical, 1},
		{SeverityImportant, 2},
		{SeverityMinor, 3},
		{Severity(99), 0},
	}
	for _, tt := range tests {
		if got := r.CountBySeverity(tt.severity); got != tt.want {
			t.Errorf("CountBySeverity(%v) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestReportSectionFor(t *testing.T) {
	t.Parallel()

	r := &Report{
		Sections: []Section{
			{Stage: "content", Category: CategoryContent},
			{Stage: "image", Category: CategoryImage},
		},
	}

	if s := r.SectionFor("image"); s == nil || s.Category != CategoryImage {
		t.Errorf("SectionFor(image) = %v, want image section", s)
	}
	if s := r.SectionFor("missing"); s != nil {
		t.Errorf("SectionFor(missing) = %v, want nil", s)
	}
}
