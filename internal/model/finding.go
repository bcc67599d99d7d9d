package model

// Finding is a single observation about the audited page.
// Every finding separates the claim ("images are missing alt text") from
// the basis backing it ("3 of 5 images have no alt attribute"), so report
// readers can always see the evidence behind a statement.
type Finding struct {
	// Type is the machine-readable finding type, e.g. "image_alt_missing".
	// It keys into the severity catalog in severity.go.
	Type string `json:"type"`

	// Category is the audit dimension this finding belongs to.
	Category Category `json:"category"`

	// Severity is the numeric severity for sorting and counting.
	Severity Severity `json:"-"`

	// SeverityText is the string form of Severity for serialization.
	SeverityText string `json:"severity"`

	// SubjectID optionally names the PageFacts element the finding is
	// about (a block, image, or link ID). Empty for page-level findings.
	SubjectID string `json:"subject_id,omitempty"`

	// Claim is the human-readable statement of the problem.
	Claim string `json:"claim"`

	// Basis is the observable evidence supporting the claim.
	Basis string `json:"basis"`

	// Impact describes why the finding matters for search performance.
	Impact string `json:"impact,omitempty"`

	// Recommendation describes how to fix the finding.
	Recommendation string `json:"recommendation,omitempty"`
}

// NewFinding creates a finding of the given type, filling severity, impact,
// and recommendation from the central catalog.
func NewFinding(findingType string, category Category, claim, basis string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Category:       category,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Claim:          claim,
		Basis:          basis,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
	}
}

// WithSubject returns a copy of the finding bound to a PageFacts element ID.
func (f Finding) WithSubject(subjectID string) Finding {
	f.SubjectID = subjectID
	return f
}
