package analyze

import (
	"testing"

	"github.com/nao1215/seoscan/internal/config"
)

func TestDefaultStages(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	stages := DefaultStages(cfg, nil, nil, nil, config.SiteConfig{Keywords: []string{"espresso"}})

	wantOrder := []string{"content", "image", "keyword", "backlink", "url"}
	if len(stages) != len(wantOrder) {
		t.Fatalf("stages = %d, want %d", len(stages), len(wantOrder))
	}
	for i, s := range stages {
		if s.Name != wantOrder[i] {
			t.Errorf("stage %d = %q, want %q", i, s.Name, wantOrder[i])
		}
		if s.Cost <= 0 || s.Cost > cfg.QuotaUnits {
			t.Errorf("stage %q cost = %d, must fit the default quota %d", s.Name, s.Cost, cfg.QuotaUnits)
		}
		if s.Analyzer == nil {
			t.Errorf("stage %q has no analyzer", s.Name)
		}
		if s.Timeout != cfg.StageTimeout || s.MaxRetries != cfg.MaxRetries {
			t.Errorf("stage %q does not inherit the configured budget", s.Name)
		}
	}

	// The two heaviest stages must be able to hold quota together.
	if contentCost+keywordCost > cfg.QuotaUnits {
		t.Errorf("content (%d) + keyword (%d) exceed the default quota %d",
			contentCost, keywordCost, cfg.QuotaUnits)
	}
}
