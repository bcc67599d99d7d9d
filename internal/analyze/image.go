package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/model"
)

// maxVisionImages bounds the number of vision-model calls per audit.
// Each call costs a paced inference request, so only the first images
// on the page get a description review.
const maxVisionImages = 2

// webImageExtensions are the formats suitable for web delivery.
var webImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".svg":  true,
	".avif": true,
}

// genericAltText is boilerplate that adds no descriptive value.
var genericAltText = map[string]bool{
	"image":   true,
	"img":     true,
	"photo":   true,
	"picture": true,
	"icon":    true,
	"graphic": true,
}

const visionPromptFormat = "This image is published with the alt text %q. " +
	"Does the alt text describe what the image actually shows? Answer " +
	"YES or NO on the first line, then explain in one sentence."

// ImageAnalyzer audits alt-text coverage, delivery formats, and
// embedded metadata of the page's images.
type ImageAnalyzer struct {
	enricher
}

// NewImageAnalyzer creates the image stage. client may be nil to skip
// the vision review.
func NewImageAnalyzer(client inference.Client, pacer Pacer, logger *slog.Logger) *ImageAnalyzer {
	return &ImageAnalyzer{enricher: newEnricher(client, pacer, logger)}
}

// Name implements pipeline.Analyzer.
func (a *ImageAnalyzer) Name() string { return "image" }

// Category implements pipeline.Analyzer.
func (a *ImageAnalyzer) Category() model.Category { return model.CategoryImage }

// Ready implements pipeline.Analyzer.
func (a *ImageAnalyzer) Ready(facts *model.PageFacts) (bool, string) {
	if len(facts.Images) == 0 {
		return false, "page has no images"
	}
	return true, ""
}

// Analyze implements pipeline.Analyzer.
func (a *ImageAnalyzer) Analyze(ctx context.Context, facts *model.PageFacts) ([]model.Finding, error) {
	findings := a.deterministic(facts)

	if !a.enabled() {
		return findings, nil
	}

	visionFindings, err := a.reviewAltText(ctx, facts)
	findings = append(findings, visionFindings...)
	if err != nil {
		return findings, err
	}
	return findings, nil
}

func (a *ImageAnalyzer) deterministic(facts *model.PageFacts) []model.Finding {
	var findings []model.Finding
	total := len(facts.Images)

	for i, img := range facts.Images {
		switch {
		case !img.HasAlt:
			findings = append(findings, model.NewFinding("image_alt_missing", model.CategoryImage,
				"an image lacks alt text",
				fmt.Sprintf("image %d of %d has no alt attribute", i+1, total)).WithSubject(img.ID))
		case poorAltText(img):
			findings = append(findings, model.NewFinding("image_alt_poor", model.CategoryImage,
				"an image has placeholder alt text",
				fmt.Sprintf("image %d of %d has the alt text %q", i+1, total, img.Alt)).WithSubject(img.ID))
		}

		if ext := strings.ToLower(path.Ext(strippedPath(img.SourceURL))); ext != "" && !webImageExtensions[ext] {
			findings = append(findings, model.NewFinding("image_format_unsuitable", model.CategoryImage,
				"an image uses a format unsuited to web delivery",
				fmt.Sprintf("image %d of %d is served as %s", i+1, total, ext)).WithSubject(img.ID))
		}

		if img.LocalPath != "" && hasExifData(img.LocalPath) {
			findings = append(findings, model.NewFinding("exif_metadata", model.CategoryImage,
				"an image carries embedded EXIF metadata",
				fmt.Sprintf("image %d of %d contains EXIF data", i+1, total)).WithSubject(img.ID))
		}
	}
	return findings
}

// reviewAltText asks the vision model whether the alt text of the first
// few downloaded images matches what the image shows.
func (a *ImageAnalyzer) reviewAltText(ctx context.Context, facts *model.PageFacts) ([]model.Finding, error) {
	var findings []model.Finding
	reviewed := 0

	for _, img := range facts.Images {
		if reviewed >= maxVisionImages {
			break
		}
		if img.LocalPath == "" || !img.HasAlt || img.Alt == "" {
			continue
		}

		data, err := os.ReadFile(img.LocalPath)
		if err != nil {
			a.logger.Debug("skipping vision review", "image", img.ID, "error", err)
			continue
		}

		if err := a.pace(ctx); err != nil {
			return findings, err
		}
		answer, err := a.client.AnalyzeImage(ctx,
			fmt.Sprintf(visionPromptFormat, img.Alt), data, mimeTypeFor(img.LocalPath))
		if err != nil {
			return findings, a.tolerate("image", err)
		}
		reviewed++

		if answerIsNo(answer) {
			findings = append(findings, model.NewFinding("image_alt_poor", model.CategoryImage,
				"the alt text does not describe the image",
				fmt.Sprintf("model review of %s: %s", img.ID, firstLine(answer))).WithSubject(img.ID))
		}
	}
	return findings, nil
}

// poorAltText flags alt text that is empty, trivially short, generic
// boilerplate, or just the image's filename.
func poorAltText(img model.ImageRef) bool {
	alt := strings.TrimSpace(img.Alt)
	if alt == "" {
		return true
	}
	if utf8.RuneCountInString(alt) < 5 {
		return true
	}
	if genericAltText[strings.ToLower(alt)] {
		return true
	}
	base := path.Base(strippedPath(img.SourceURL))
	return strings.EqualFold(alt, base) ||
		strings.EqualFold(alt, strings.TrimSuffix(base, path.Ext(base)))
}

// hasExifData reports whether the downloaded file carries an EXIF
// block. Unreadable files just skip the check.
func hasExifData(localPath string) bool {
	rawExif, err := exif.SearchFileAndExtractExif(localPath)
	return err == nil && len(rawExif) > 0
}

// strippedPath drops the query and fragment so extension checks see the
// real filename.
func strippedPath(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func mimeTypeFor(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// answerIsNo checks whether the first word of the model's answer is a
// verdict of NO.
func answerIsNo(answer string) bool {
	first := strings.ToUpper(firstLine(answer))
	word := first
	if i := strings.IndexFunc(first, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		word = first[:i]
	}
	return word == "NO"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
