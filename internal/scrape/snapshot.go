package scrape

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// maxSnapshotLen bounds the markdown snapshot so it fits in an inference
// prompt together with the instructions.
const maxSnapshotLen = 12000

// Snapshot converts page HTML to markdown for use as inference prompt
// context. Markdown keeps the heading structure and link texts visible
// to the model while dropping markup noise.
//
// Conversion failures degrade to an empty snapshot; the stages then
// fall back to raw block text for their prompts.
func Snapshot(pageHTML, pageURL string) string {
	if strings.TrimSpace(pageHTML) == "" {
		return ""
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertString(pageHTML, converter.WithDomain(pageURL))
	if err != nil {
		return ""
	}

	md = strings.TrimSpace(md)
	if len(md) > maxSnapshotLen {
		md = truncate(md, maxSnapshotLen)
	}
	return md
}
