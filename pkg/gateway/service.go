package gateway

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/imbecility/yt-keywords/pkg/extractor"
	"github.com/imbecility/yt-keywords/pkg/models"
	"github.com/imbecility/yt-keywords/pkg/proxy"
	"github.com/imbecility/yt-keywords/pkg/store"
	"github.com/imbecility/yt-keywords/pkg/utils"
)

const (
	msgEmptyInput = "please enter a YouTube video URL"
	msgInvalidURL = "please enter a valid YouTube video URL"
)

type PageFetcher interface {
	Fetch(ctx context.Context, proxyURL string) (string, error)
}

type Service struct {
	Proxy   proxy.Builder
	Fetcher PageFetcher
	// Store is optional; a nil store records nothing.
	Store   store.LastLookupStore
	Timeout time.Duration

	group singleflight.Group
	now   func() time.Time

	mu      sync.Mutex
	waiters map[string]int
}

func NewService(f PageFetcher, b proxy.Builder, st store.LastLookupStore, timeoutSec int) *Service {
	var timeout time.Duration
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return &Service{
		Proxy:   b,
		Fetcher: f,
		Store:   st,
		Timeout: timeout,
		now:     time.Now,
	}
}

// ExtractKeywords validates rawURL, fetches the page through the proxy and
// returns the keywords meta content. A page without the tag yields a result
// with Found=false and a nil error. Failures are *models.KeywordError.
//
// Concurrent calls for the same URL share one fetch. The fetch is detached
// from every caller's context and bounded only by Timeout, so a caller that
// gives up fails alone and the others still get the page.
func (s *Service) ExtractKeywords(ctx context.Context, rawURL string) (*models.KeywordResult, error) {
	url := utils.NormalizeInput(rawURL)
	if url == "" {
		return nil, models.InvalidURL(msgEmptyInput)
	}
	if !utils.IsValidYouTubeURL(url) {
		slog.Debug("Rejected URL", "url", url)
		return nil, models.InvalidURL(msgInvalidURL)
	}

	s.join(url)
	defer s.leave(url)

	ch := s.group.DoChan(url, func() (any, error) {
		return s.lookup(context.WithoutCancel(ctx), url)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			slog.Debug("Lookup shared with concurrent caller", "url", url)
		}
		res := *r.Val.(*models.KeywordResult)
		return &res, nil
	case <-ctx.Done():
		slog.Debug("Caller gave up waiting", "url", url, "err", ctx.Err())
		return nil, models.NetworkFailure(0, ctx.Err())
	}
}

func (s *Service) lookup(ctx context.Context, url string) (*models.KeywordResult, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	vidID := utils.ExtractVideoID(url)
	slog.Info("Fetching page source", "vid", vidID)

	body, err := s.Fetcher.Fetch(ctx, s.Proxy.Build(url))
	if err != nil {
		slog.Warn("Fetch failed", "vid", vidID, "err", err)
		return nil, err
	}

	keywords, found := extractor.ExtractKeywords(body)
	res := &models.KeywordResult{
		URL:       url,
		VideoID:   vidID,
		Keywords:  keywords,
		Found:     found,
		FetchedAt: s.clock(),
	}
	slog.Info("Keywords extracted", "vid", vidID, "found", found, "count", len(extractor.SplitKeywords(keywords)))

	// A lookup every caller abandoned must not overwrite a newer last lookup.
	if s.Store != nil && s.waiting(url) {
		if serr := s.Store.Save(ctx, res); serr != nil {
			slog.Warn("Failed to record lookup", "vid", vidID, "err", serr)
		}
	}
	return res, nil
}

func (s *Service) join(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiters == nil {
		s.waiters = make(map[string]int)
	}
	s.waiters[url]++
}

func (s *Service) leave(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiters[url]--; s.waiters[url] <= 0 {
		delete(s.waiters, url)
	}
}

func (s *Service) waiting(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters[url] > 0
}

// LastLookup returns the most recently recorded lookup.
func (s *Service) LastLookup(ctx context.Context) (*models.KeywordResult, error) {
	if s.Store == nil {
		return nil, store.ErrEmpty
	}
	return s.Store.Last(ctx)
}

// LookupByVideo returns the latest recorded lookup of one video.
func (s *Service) LookupByVideo(ctx context.Context, videoID string) (*models.KeywordResult, error) {
	if s.Store == nil || videoID == "" {
		return nil, store.ErrEmpty
	}
	return s.Store.Get(ctx, videoID)
}

// Close releases the store connection, if the store holds one.
func (s *Service) Close() error {
	if c, ok := s.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
