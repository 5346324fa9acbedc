package ui

import (
	"context"
	"sync"

	"github.com/imbecility/yt-keywords/pkg/models"
)

type Extractor interface {
	ExtractKeywords(ctx context.Context, rawURL string) (*models.KeywordResult, error)
}

// Session runs lookups one at a time from the user's point of view: a new
// Submit cancels the lookup in flight, and only the newest submission may
// publish states.
type Session struct {
	ex      Extractor
	publish func(State)

	base context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSession(ctx context.Context, ex Extractor, publish func(State)) *Session {
	base, stop := context.WithCancel(ctx)
	return &Session{ex: ex, publish: publish, base: base, stop: stop}
}

func (s *Session) Submit(url string) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	id := s.seq
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.mu.Unlock()

	s.emit(id, Loading(url))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		res, err := s.ex.ExtractKeywords(ctx, url)
		s.emit(id, Reduce(url, res, err))
	}()
}

// Wait blocks until every submitted lookup has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding lookups and waits for them. Nothing is
// published after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	s.seq++
	s.mu.Unlock()
	s.stop()
	s.wg.Wait()
}

func (s *Session) emit(id uint64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.seq {
		return
	}
	s.publish(st)
}
