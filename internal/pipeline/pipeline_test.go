package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/model"
)

func okAnalyzer(name string, category model.Category, findings ...model.Finding) *fakeAnalyzer {
	return &fakeAnalyzer{
		name: name, category: category, ready: true,
		analyze: func(context.Context, *model.PageFacts) ([]model.Finding, error) {
			return findings, nil
		},
	}
}

func fiveStages(analyzers ...Analyzer) []StageSpec {
	specs := make([]StageSpec, 0, len(analyzers))
	for _, a := range analyzers {
		specs = append(specs, spec(a))
	}
	return specs
}

func newTestPipeline(t *testing.T, stages []StageSpec) *Pipeline {
	t.Helper()

	runner := NewStageRunner(NewRateLimiter(100, 0),
		WithSleep(func(context.Context, time.Duration) error { return nil }),
		WithJitter(func() float64 { return 0 }),
	)
	p, err := New(stages, runner, 100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestPipelineValidation(t *testing.T) {
	t.Parallel()

	runner := NewStageRunner(NewRateLimiter(100, 0))
	content := okAnalyzer("content", model.CategoryContent)

	tests := []struct {
		name    string
		stages  []StageSpec
		wantErr error
	}{
		{name: "no stages", stages: nil, wantErr: ErrNoStages},
		{
			name:    "duplicate names",
			stages:  []StageSpec{spec(content), spec(content)},
			wantErr: ErrDuplicateStage,
		},
		{
			name: "missing analyzer",
			stages: []StageSpec{{
				Name: "content", Category: model.CategoryContent,
				Cost: 10, Timeout: time.Second,
			}},
			wantErr: ErrInvalidStage,
		},
		{
			name: "zero cost",
			stages: []StageSpec{{
				Name: "content", Category: model.CategoryContent,
				Timeout: time.Second, Analyzer: content,
			}},
			wantErr: ErrInvalidStage,
		},
		{
			name: "cost exceeds quota",
			stages: []StageSpec{{
				Name: "content", Category: model.CategoryContent,
				Cost: 500, Timeout: time.Second, MaxRetries: 1, Analyzer: content,
			}},
			wantErr: ErrCostExceedsQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.stages, runner, 100)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPipelineManifestCompleteness(t *testing.T) {
	t.Parallel()

	stages := fiveStages(
		okAnalyzer("content", model.CategoryContent),
		okAnalyzer("image", model.CategoryImage),
		okAnalyzer("keyword", model.CategoryKeyword),
		okAnalyzer("backlink", model.CategoryBacklink),
		okAnalyzer("url", model.CategoryURL),
	)
	p := newTestPipeline(t, stages)

	result, err := p.Execute(context.Background(), &model.PageFacts{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Outcomes) != len(stages) {
		t.Fatalf("got %d outcomes, want %d", len(result.Outcomes), len(stages))
	}
	for _, s := range stages {
		o, ok := result.Outcomes[s.Name]
		if !ok {
			t.Errorf("stage %q missing from outcomes", s.Name)
			continue
		}
		if o.Stage != s.Name {
			t.Errorf("outcome stage = %q, want %q", o.Stage, s.Name)
		}
	}
	if len(result.StageOrder) != len(stages) {
		t.Errorf("StageOrder = %v, want all declared stages", result.StageOrder)
	}
}

func TestPipelineFailureIsolation(t *testing.T) {
	t.Parallel()

	// One stage always fails hard; its siblings' outcomes must be
	// exactly what they would be anyway.
	failing := &fakeAnalyzer{
		name: "image", category: model.CategoryImage, ready: true,
		analyze: func(context.Context, *model.PageFacts) ([]model.Finding, error) {
			return nil, inference.ErrInvalidInput
		},
	}
	finding := model.NewFinding("missing_h1", model.CategoryContent, "no H1", "0 H1 elements")
	stages := fiveStages(
		okAnalyzer("content", model.CategoryContent, finding),
		failing,
		okAnalyzer("keyword", model.CategoryKeyword),
	)
	p := newTestPipeline(t, stages)

	result, err := p.Execute(context.Background(), &model.PageFacts{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Outcomes["image"].Status != model.OutcomeFailed {
		t.Errorf("image status = %v, want failed", result.Outcomes["image"].StatusText)
	}
	if result.Outcomes["content"].Status != model.OutcomeSuccess {
		t.Errorf("content status = %v, want success despite sibling failure", result.Outcomes["content"].StatusText)
	}
	if len(result.Outcomes["content"].Findings) != 1 {
		t.Errorf("content findings = %d, want 1", len(result.Outcomes["content"].Findings))
	}
	if result.Outcomes["keyword"].Status != model.OutcomeSuccess {
		t.Errorf("keyword status = %v, want success", result.Outcomes["keyword"].StatusText)
	}
}

func TestPipelineNoInputShortCircuit(t *testing.T) {
	t.Parallel()

	invoked := false
	noInput := &fakeAnalyzer{
		name: "backlink", category: model.CategoryBacklink,
		ready: false, reason: "page has no external links",
		analyze: func(context.Context, *model.PageFacts) ([]model.Finding, error) {
			invoked = true
			return nil, nil
		},
	}
	p := newTestPipeline(t, fiveStages(noInput, okAnalyzer("url", model.CategoryURL)))

	result, err := p.Execute(context.Background(), &model.PageFacts{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	o := result.Outcomes["backlink"]
	if o.Status != model.OutcomeDegraded {
		t.Fatalf("status = %v, want degraded", o.StatusText)
	}
	if o.Reason != "no input: page has no external links" {
		t.Errorf("reason = %q", o.Reason)
	}
	if o.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 (runner not invoked)", o.Attempts)
	}
	if invoked {
		t.Error("analyzer must not run when its input is absent")
	}
}

func TestPipelineGlobalTimeoutDegradesGracefully(t *testing.T) {
	t.Parallel()

	fast := okAnalyzer("url", model.CategoryURL,
		model.NewFinding("url_underscores", model.CategoryURL, "underscores", "1 segment"))
	slow := &fakeAnalyzer{
		name: "content", category: model.CategoryContent, ready: true,
		analyze: func(ctx context.Context, _ *model.PageFacts) ([]model.Finding, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	p := newTestPipeline(t, fiveStages(fast, slow))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := p.Execute(ctx, &model.PageFacts{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// The slow stage is abandoned as a timeout failure...
	slowOutcome := result.Outcomes["content"]
	if slowOutcome.Status != model.OutcomeFailed {
		t.Fatalf("slow stage status = %v, want failed", slowOutcome.StatusText)
	}
	if !errors.Is(slowOutcome.Err, ErrStageTimeout) {
		t.Errorf("slow stage err = %v, want ErrStageTimeout", slowOutcome.Err)
	}

	// ...while the completed stage keeps its real outcome.
	fastOutcome := result.Outcomes["url"]
	if fastOutcome.Status != model.OutcomeSuccess || len(fastOutcome.Findings) != 1 {
		t.Errorf("fast stage = %v/%d findings, want success with 1 finding",
			fastOutcome.StatusText, len(fastOutcome.Findings))
	}
}

func TestPipelineNilFacts(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, fiveStages(okAnalyzer("content", model.CategoryContent)))
	_, err := p.Execute(context.Background(), nil)
	if !errors.Is(err, ErrNilFacts) {
		t.Errorf("Execute(nil) error = %v, want ErrNilFacts", err)
	}
}
