package imaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type FetcherOptions struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Fetcher resolves remote image URLs into data URLs.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Fetcher{
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchDataURL downloads the image at url and encodes it as a data URL.
// Credentials are never sent. 404 maps to ErrNotFound, other non-success
// statuses to ErrFetch, and transport failures to ErrCrossOrigin.
func (f *Fetcher) FetchDataURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFetch, err)
	}
	req.Header.Set("accept", "image/*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Debug("remote image fetch failed", "url", url, "err", err)
		return "", fmt.Errorf("%w (%s)", ErrCrossOrigin, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s", ErrFetch, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFetch, err)
	}

	mimeType := stripMimeParams(resp.Header.Get("content-type"))
	if mimeType == "" || mimeType == "application/octet-stream" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = stripMimeParams(http.DetectContentType(data))
	}

	return EncodeBytes(data, mimeType), nil
}
