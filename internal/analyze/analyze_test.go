package analyze

import (
	"context"

	"github.com/nao1215/seoscan/internal/model"
)

// fakeClient is a canned inference client for stage tests.
type fakeClient struct {
	textResp   string
	textErr    error
	imageResp  string
	imageErr   error
	textCalls  int
	imageCalls int
	lastPrompt string
}

func (c *fakeClient) AnalyzeText(_ context.Context, _, prompt string) (string, error) {
	c.textCalls++
	c.lastPrompt = prompt
	return c.textResp, c.textErr
}

func (c *fakeClient) AnalyzeImage(_ context.Context, prompt string, _ []byte, _ string) (string, error) {
	c.imageCalls++
	c.lastPrompt = prompt
	return c.imageResp, c.imageErr
}

// findingTypes collects the finding types in order for assertions.
func findingTypes(findings []model.Finding) []string {
	types := make([]string, 0, len(findings))
	for _, f := range findings {
		types = append(types, f.Type)
	}
	return types
}

func hasFinding(findings []model.Finding, findingType string) bool {
	for _, f := range findings {
		if f.Type == findingType {
			return true
		}
	}
	return false
}

func heading(id string, level int, text string) model.TextBlock {
	role := model.RoleHeading1 + model.BlockRole(level-1)
	return model.TextBlock{ID: id, Role: role, RoleText: role.String(), Text: text}
}

func paragraph(id, text string) model.TextBlock {
	return model.TextBlock{ID: id, Role: model.RoleParagraph, RoleText: "paragraph", Text: text}
}
