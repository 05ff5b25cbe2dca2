package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
)

const userAgent = "pgfa"

// Fetcher downloads a tool archive and unpacks it into a scratch directory.
// There is no retry and no checksum verification: any failure is returned to the caller.
type Fetcher struct {
	client     *http.Client
	scratchDir string
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher that unpacks archives below scratchDir.
// A nil client means http.DefaultClient.
func NewFetcher(client *http.Client, scratchDir string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:     client,
		scratchDir: scratchDir,
		logger:     logger.With("component", "fetcher"),
	}
}

// Fetch downloads the archive for d and returns the root of the extracted tree.
// The archive's internal layout is not interpreted here; see Locate.
func (f *Fetcher) Fetch(ctx context.Context, d Descriptor) (string, error) {
	src := d.DownloadURL()
	f.logger.Info("Downloading "+d.String(), "url", src)

	archive, cleanup, err := f.download(ctx, src)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if err = os.MkdirAll(f.scratchDir, 0o755); err != nil {
		return "", &ExtractionError{Archive: src, Wrapped: err}
	}
	dest, err := os.MkdirTemp(f.scratchDir, "extract-*")
	if err != nil {
		return "", &ExtractionError{Archive: src, Wrapped: err}
	}

	if err = extractZip(archive, dest); err != nil {
		_ = os.RemoveAll(dest)
		return "", &ExtractionError{Archive: src, Wrapped: err}
	}

	f.logger.Debug("archive extracted", "dest", dest)
	return dest, nil
}

// download places the archive at a local path. Local file URLs are used in place.
func (f *Fetcher) download(ctx context.Context, src string) (string, func(), error) {
	noop := func() {}

	u, err := url.Parse(src)
	if err != nil {
		return "", noop, &DownloadError{URL: src, Wrapped: err}
	}

	if u.Scheme == "file" {
		if _, err = os.Stat(u.Path); err != nil {
			return "", noop, &DownloadError{URL: src, Wrapped: err}
		}
		return u.Path, noop, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return "", noop, &DownloadError{URL: src, Wrapped: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", noop, &DownloadError{URL: src, Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", noop, &DownloadError{
			URL:     src,
			Status:  resp.StatusCode,
			Wrapped: errors.New(resp.Status),
		}
	}

	if err = os.MkdirAll(f.scratchDir, 0o755); err != nil {
		return "", noop, &DownloadError{URL: src, Wrapped: err}
	}
	out, err := os.CreateTemp(f.scratchDir, "archive-*.zip")
	if err != nil {
		return "", noop, &DownloadError{URL: src, Wrapped: err}
	}
	cleanup := func() { _ = os.Remove(out.Name()) }

	n, err := io.Copy(out, resp.Body)
	if cErr := out.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		cleanup()
		return "", noop, &DownloadError{URL: src, Wrapped: fmt.Errorf("write %s: %w", out.Name(), err)}
	}

	f.logger.Debug("archive downloaded", "path", out.Name(), "bytes", n)
	return out.Name(), cleanup, nil
}
