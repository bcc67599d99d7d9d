package model

import "time"

// Section is one per-stage block of the report. Every declared stage gets
// a section regardless of how its outcome turned out; degraded and failed
// stages are flagged, never dropped.
type Section struct {
	// Stage is the declared stage name.
	Stage string `json:"stage"`

	// Category is the stage's audit dimension.
	Category Category `json:"category"`

	// Status is the stage outcome the section reflects.
	Status OutcomeStatus `json:"-"`

	// StatusText is the string form of Status for serialization.
	StatusText string `json:"status"`

	// Caveat is shown for degraded sections ("partial: ...") and failed
	// sections ("unavailable: ..."). Empty for success.
	Caveat string `json:"caveat,omitempty"`

	// Findings are sorted by severity descending, ties broken by the
	// order the stage emitted them (document order).
	Findings []Finding `json:"findings"`
}

// StageStatus is one manifest row recording how a stage's outcome was
// reached, so a reader can always tell a clean empty section from a
// failed one.
type StageStatus struct {
	Stage    string        `json:"stage"`
	Category Category      `json:"category"`
	Status   string        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Report is the assembled result of one audit run.
//
// Design decision: the report stores pre-sorted sections and a pre-computed
// priority list rather than sorting at render time. Writers then emit
// byte-identical output for identical outcome sets no matter which order
// the stages finished in.
type Report struct {
	// URL is the audited page URL.
	URL string `json:"url"`

	// AuditedAt is when the audit started.
	AuditedAt time.Time `json:"audited_at"`

	// Sections appear in stage declaration order, one per declared stage.
	Sections []Section `json:"sections"`

	// PriorityActions are the top findings across all sections, ordered
	// by severity descending, then stage declaration order, then
	// in-section order. Only critical and important findings qualify.
	PriorityActions []Finding `json:"priority_actions"`

	// Manifest records the execution status of every declared stage.
	Manifest []StageStatus `json:"manifest"`

	// Severity counts across all sections.
	CriticalCount  int `json:"critical_count"`
	ImportantCount int `json:"important_count"`
	MinorCount     int `json:"minor_count"`

	// Elapsed is the wall-clock duration of the whole pipeline run.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// TotalFindings returns the number of findings across all sections.
func (r *Report) TotalFindings() int {
	return r.CriticalCount + r.ImportantCount + r.MinorCount
}

// CountBySeverity returns the number of findings at the given severity.
func (r *Report) CountBySeverity(s Severity) int {
	switch s {
	case SeverityCritical:
		return r.CriticalCount
	case SeverityImportant:
		return r.ImportantCount
	case SeverityMinor:
		return r.MinorCount
	default:
		return 0
	}
}

// SectionFor returns the section for the named stage, or nil.
func (r *Report) SectionFor(stage string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Stage == stage {
			return &r.Sections[i]
		}
	}
	return nil
}
