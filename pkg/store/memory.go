package store

import (
	"context"
	"sync"
	"time"

	"github.com/imbecility/yt-keywords/pkg/models"
)

type memoryEntry struct {
	res       models.KeywordResult
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	last    *memoryEntry
	byVideo map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore keeps entries for ttl; ttl <= 0 keeps them forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		byVideo: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, res *models.KeywordResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &memoryEntry{res: *res}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.last = e
	if res.VideoID != "" {
		m.byVideo[res.VideoID] = e
	}
	return nil
}

func (m *MemoryStore) Last(_ context.Context) (*models.KeywordResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil || m.expired(m.last) {
		return nil, ErrEmpty
	}
	res := m.last.res
	return &res, nil
}

func (m *MemoryStore) Get(_ context.Context, videoID string) (*models.KeywordResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byVideo[videoID]
	if !ok || m.expired(e) {
		return nil, ErrEmpty
	}
	res := e.res
	return &res, nil
}

// Sweep drops expired entries and reports how many per-video entries went.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.byVideo {
		if m.expired(e) {
			delete(m.byVideo, id)
			removed++
		}
	}
	if m.last != nil && m.expired(m.last) {
		m.last = nil
	}
	return removed
}

func (m *MemoryStore) expired(e *memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}
