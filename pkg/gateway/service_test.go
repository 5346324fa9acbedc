package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbecility/yt-keywords/pkg/fetcher"
	"github.com/imbecility/yt-keywords/pkg/models"
	"github.com/imbecility/yt-keywords/pkg/proxy"
	"github.com/imbecility/yt-keywords/pkg/store"
)

const watchPage = `<!DOCTYPE html><html><head>
<meta name="description" content="A video">
<meta name="keywords" content="never gonna, give you up, rick astley">
</head><body></body></html>`

// newProxy stands in for the CORS proxy and counts requests per quest target.
func newProxy(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("quest") == "" {
			http.Error(w, "missing quest", http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestService(srv *httptest.Server, st store.LastLookupStore) *Service {
	f := &fetcher.Fetcher{Client: srv.Client()}
	return NewService(f, proxy.Builder{Endpoint: srv.URL + "/v1/proxy"}, st, 5)
}

func TestExtractKeywordsFound(t *testing.T) {
	srv, hits := newProxy(t, http.StatusOK, watchPage)
	st := store.NewMemoryStore(0)
	svc := newTestService(srv, st)

	res, err := svc.ExtractKeywords(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "never gonna, give you up, rick astley", res.Keywords)
	assert.Equal(t, "dQw4w9WgXcQ", res.VideoID)
	assert.False(t, res.FetchedAt.IsZero())
	assert.EqualValues(t, 1, hits.Load())

	last, err := svc.LastLookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Keywords, last.Keywords)
}

func TestExtractKeywordsNotFoundIsNotAnError(t *testing.T) {
	srv, _ := newProxy(t, http.StatusOK, `<html><head><title>x</title></head></html>`)
	st := store.NewMemoryStore(0)
	svc := newTestService(srv, st)

	res, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Keywords)

	recorded, err := st.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, recorded.Found)
}

func TestExtractKeywordsInvalidURLSkipsNetwork(t *testing.T) {
	srv, hits := newProxy(t, http.StatusOK, watchPage)
	svc := newTestService(srv, nil)

	for _, in := range []string{"https://vimeo.com/123", "not a url", "", "   "} {
		res, err := svc.ExtractKeywords(context.Background(), in)
		assert.Nil(t, res)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, models.ErrInvalidURL)
		assert.Equal(t, models.KindInvalidURL, models.KindOf(err))
	}
	assert.EqualValues(t, 0, hits.Load())

	_, err := svc.ExtractKeywords(context.Background(), "")
	assert.EqualError(t, err, msgEmptyInput)
}

func TestExtractKeywordsNetworkFailure(t *testing.T) {
	srv, hits := newProxy(t, http.StatusInternalServerError, watchPage)
	st := store.NewMemoryStore(0)
	svc := newTestService(srv, st)

	res, err := svc.ExtractKeywords(context.Background(), "https://youtube.com/shorts/xyz-9")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNetwork)
	assert.EqualValues(t, 1, hits.Load(), "no retry")

	_, err = svc.LastLookup(context.Background())
	assert.ErrorIs(t, err, store.ErrEmpty)
}

func TestExtractKeywordsIndependentInvocations(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(watchPage))
	}))
	defer srv.Close()
	svc := newTestService(srv, nil)

	_, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/abc")
	require.Error(t, err)

	fail.Store(false)
	res, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.True(t, res.Found)
}

type blockingFetcher struct {
	calls   atomic.Int32
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, _ string) (string, error) {
	f.calls.Add(1)
	select {
	case <-f.release:
		return watchPage, nil
	case <-ctx.Done():
		return "", models.NetworkFailure(0, ctx.Err())
	}
}

func TestExtractKeywordsSharesConcurrentFetch(t *testing.T) {
	bf := &blockingFetcher{release: make(chan struct{})}
	svc := NewService(bf, proxy.Builder{}, nil, 0)

	const n = 8
	var wg sync.WaitGroup
	results := make([]*models.KeywordResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/same")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(bf.release)
	wg.Wait()

	assert.EqualValues(t, 1, bf.calls.Load())
	for i := 1; i < n; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].Keywords, results[i].Keywords)
		assert.NotSame(t, results[0], results[i])
	}
}

func TestExtractKeywordsTimeout(t *testing.T) {
	bf := &blockingFetcher{release: make(chan struct{})}
	svc := NewService(bf, proxy.Builder{}, nil, 0)
	svc.Timeout = 20 * time.Millisecond

	_, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, models.KindNetwork, models.KindOf(err))
}

type failingStore struct{ store.LastLookupStore }

func (failingStore) Save(context.Context, *models.KeywordResult) error {
	return errors.New("redis down")
}

func TestExtractKeywordsStoreFailureIsNotFatal(t *testing.T) {
	srv, _ := newProxy(t, http.StatusOK, watchPage)
	svc := newTestService(srv, failingStore{})

	res, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.True(t, res.Found)
}

// slowFetcher returns the page after delay unless its own context ends first.
type slowFetcher struct {
	delay time.Duration
	calls atomic.Int32
}

func (f *slowFetcher) Fetch(ctx context.Context, _ string) (string, error) {
	f.calls.Add(1)
	select {
	case <-time.After(f.delay):
		return watchPage, nil
	case <-ctx.Done():
		return "", models.NetworkFailure(0, ctx.Err())
	}
}

func TestExtractKeywordsCanceledCallerDoesNotFailOthers(t *testing.T) {
	sf := &slowFetcher{delay: 100 * time.Millisecond}
	svc := NewService(sf, proxy.Builder{}, nil, 5)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ExtractKeywords(firstCtx, "https://youtu.be/abc")
		firstErr <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancelFirst()

	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.KindNetwork, models.KindOf(err))

	res, err := svc.ExtractKeywords(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "never gonna, give you up, rick astley", res.Keywords)
	assert.EqualValues(t, 1, sf.calls.Load())
}

func TestExtractKeywordsAbandonedLookupIsNotRecorded(t *testing.T) {
	sf := &slowFetcher{delay: 50 * time.Millisecond}
	st := store.NewMemoryStore(0)
	svc := NewService(sf, proxy.Builder{}, st, 5)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := svc.ExtractKeywords(ctx, "https://youtu.be/gone")
	require.Error(t, err)

	// let the detached fetch finish
	time.Sleep(100 * time.Millisecond)
	_, err = st.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, store.ErrEmpty)
}

func TestLookupByVideo(t *testing.T) {
	srv, _ := newProxy(t, http.StatusOK, watchPage)
	st := store.NewMemoryStore(0)
	svc := newTestService(srv, st)

	_, err := svc.LookupByVideo(context.Background(), "abc")
	assert.ErrorIs(t, err, store.ErrEmpty)

	_, err = svc.ExtractKeywords(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)

	res, err := svc.LookupByVideo(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, res.Found)

	_, err = svc.LookupByVideo(context.Background(), "")
	assert.ErrorIs(t, err, store.ErrEmpty)

	_, err = NewService(nil, proxy.Builder{}, nil, 0).LookupByVideo(context.Background(), "abc")
	assert.ErrorIs(t, err, store.ErrEmpty)
}

type closingStore struct {
	store.LastLookupStore
	closed bool
}

func (c *closingStore) Close() error {
	c.closed = true
	return nil
}

func TestServiceClose(t *testing.T) {
	cs := &closingStore{LastLookupStore: store.NewMemoryStore(0)}
	require.NoError(t, NewService(nil, proxy.Builder{}, cs, 0).Close())
	assert.True(t, cs.closed)

	assert.NoError(t, NewService(nil, proxy.Builder{}, store.NewMemoryStore(0), 0).Close())
	assert.NoError(t, NewService(nil, proxy.Builder{}, nil, 0).Close())
}
