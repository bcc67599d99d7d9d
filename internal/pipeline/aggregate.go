package pipeline

import (
	"sort"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// Aggregator merges terminal outcomes into a Report.
//
// Design decision: all ordering decisions happen here, once, against
// the declared stage order. Stages finish in arbitrary order under
// concurrency; because the aggregator consumes the outcome map keyed by
// name and walks stages in declaration order, identical outcome sets
// always produce identical reports.
type Aggregator struct {
	// maxActions bounds the priority action list.
	maxActions int
}

// NewAggregator creates an aggregator with the given priority list size.
// Non-positive sizes fall back to a single slot so the list never
// silently disappears.
func NewAggregator(maxActions int) *Aggregator {
	if maxActions <= 0 {
		maxActions = 1
	}
	return &Aggregator{maxActions: maxActions}
}

// Aggregate builds the report for one audit run. auditedAt is supplied
// by the caller so report content is a pure function of the outcomes.
func (a *Aggregator) Aggregate(url string, auditedAt time.Time, result *Result) *model.Report {
	report := &model.Report{
		URL:       url,
		AuditedAt: auditedAt,
		Sections:  make([]model.Section, 0, len(result.StageOrder)),
		Manifest:  make([]model.StageStatus, 0, len(result.StageOrder)),
		Elapsed:   result.Elapsed,
	}

	for _, stage := range result.StageOrder {
		o := result.Outcomes[stage]

		section := model.Section{
			Stage:      o.Stage,
			Category:   o.Category,
			Status:     o.Status,
			StatusText: o.StatusText,
		}

		switch o.Status {
		case model.OutcomeSuccess:
			section.Findings = sortSection(o.Findings)
		case model.OutcomeDegraded:
			section.Findings = sortSection(o.Findings)
			section.Caveat = "partial: " + o.Reason
		case model.OutcomeFailed:
			// Failed stages keep their section so the report accounts
			// for every declared stage; the caveat carries the reason.
			section.Caveat = "unavailable: " + o.ErrMessage
		}
		report.Sections = append(report.Sections, section)

		reason := o.Reason
		if o.Status == model.OutcomeFailed {
			reason = o.ErrMessage
		}
		report.Manifest = append(report.Manifest, model.StageStatus{
			Stage:    o.Stage,
			Category: o.Category,
			Status:   o.StatusText,
			Reason:   reason,
			Attempts: o.Attempts,
			Elapsed:  o.Elapsed,
		})

		for _, f := range section.Findings {
			switch f.Severity {
			case model.SeverityCritical:
				report.CriticalCount++
			case model.SeverityImportant:
				report.ImportantCount++
			case model.SeverityMinor:
				report.MinorCount++
			}
		}
	}

	report.PriorityActions = a.priorityActions(report.Sections)
	return report
}

// sortSection orders findings by severity descending; the stable sort
// preserves document order among equals.
func sortSection(findings []model.Finding) []model.Finding {
	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	return sorted
}

// priorityActions builds the top-N action list: critical and important
// findings across all sections, ordered by severity descending, then
// stage declaration order, then in-section order.
//
// Collecting in section order and stable-sorting by severity alone
// yields exactly that tie-break, and makes the truncation property hold
// by construction: every critical finding sorts before every important
// one, so a cut can never keep an important finding at a critical
// finding's expense.
func (a *Aggregator) priorityActions(sections []model.Section) []model.Finding {
	candidates := make([]model.Finding, 0)
	for _, s := range sections {
		for _, f := range s.Findings {
			if f.Severity >= model.SeverityImportant {
				candidates = append(candidates, f)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Severity > candidates[j].Severity
	})

	if len(candidates) > a.maxActions {
		candidates = candidates[:a.maxActions]
	}
	return candidates
}
