package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// maxImageSize caps one downloaded image. Larger files are skipped, not
// failed: the stage can still reason about the reference itself.
const maxImageSize = 10 * 1024 * 1024 // 10MB

// unsafeFilenameChars are characters that cannot appear in filenames on
// common filesystems.
var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Downloader stores page images locally so the image stage can inspect
// bytes (EXIF, format sniffing) and feed them to the vision model.
type Downloader struct {
	client    *http.Client
	dir       string
	userAgent string
	logger    *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadTimeout sets the per-image timeout.
func WithDownloadTimeout(d time.Duration) DownloaderOption {
	return func(dl *Downloader) {
		dl.client.Timeout = d
	}
}

// WithDownloadUserAgent sets the User-Agent header.
func WithDownloadUserAgent(ua string) DownloaderOption {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(logger *slog.Logger) DownloaderOption {
	return func(dl *Downloader) {
		dl.logger = logger
	}
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(dir string, opts ...DownloaderOption) *Downloader {
	dl := &Downloader{
		client:    &http.Client{Timeout: 30 * time.Second},
		dir:       dir,
		userAgent: "seoscan/1.0",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(dl)
	}
	return dl
}

// Download fetches each image and fills in its LocalPath. Failures are
// logged and skipped; a missing local copy only reduces what the image
// stage can check, it never fails the audit.
func (dl *Downloader) Download(ctx context.Context, images []model.ImageRef) []model.ImageRef {
	if len(images) == 0 {
		return images
	}

	if err := os.MkdirAll(dl.dir, 0o750); err != nil {
		dl.logger.Warn("cannot create image directory", "dir", dl.dir, "error", err)
		return images
	}

	out := make([]model.ImageRef, len(images))
	copy(out, images)

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		localPath, err := dl.downloadOne(ctx, out[i])
		if err != nil {
			dl.logger.Debug("image download skipped", "url", out[i].SourceURL, "error", err)
			continue
		}
		out[i].LocalPath = localPath
	}
	return out
}

func (dl *Downloader) downloadOne(ctx context.Context, img model.ImageRef) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.SourceURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", dl.userAgent)

	resp, err := dl.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty body")
	}

	name := img.ID + "_" + SanitizeFilename(filenameFromURL(img.SourceURL))
	localPath := filepath.Join(dl.dir, name)
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return "", err
	}
	return localPath, nil
}

// SanitizeFilename replaces characters that are unsafe in filenames
// with underscores.
func SanitizeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "_")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "image"
	}
	return cleaned
}

// filenameFromURL extracts the last path element of an image URL,
// falling back to "image" when the path carries no usable name.
func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "image"
	}
	base := path.Base(u.Path)
	if base == "" || base == "/" || base == "." {
		return "image"
	}
	return base
}
