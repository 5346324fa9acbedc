package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/imbecility/yt-keywords/pkg/models"
)

// DefaultMaxBodyBytes covers a full watch page, which runs to a couple of MB.
const DefaultMaxBodyBytes = 8 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Fetcher struct {
	Client HTTPClient
	// MaxBodyBytes caps how much of the body is read; longer bodies are truncated.
	MaxBodyBytes int64
}

// Fetch performs a single GET and returns the body text of a 2xx response.
// Every failure is a *models.KeywordError of kind KindNetwork. There is no retry.
func (f *Fetcher) Fetch(ctx context.Context, proxyURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL, nil)
	if err != nil {
		return "", models.NetworkFailure(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", models.NetworkFailure(0, err)
	}
	defer func(Body io.ReadCloser) {
		cerr := Body.Close()
		if cerr != nil {
			slog.Warn("Failed to close response body", "err", cerr)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", models.NetworkFailure(resp.StatusCode, nil)
	}

	limit := f.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", models.NetworkFailure(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	slog.Debug("Page source fetched", "bytes", len(body), "status", resp.StatusCode)
	return string(body), nil
}
