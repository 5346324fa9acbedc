package gateway

import (
	"fmt"
	"time"

	"github.com/imbecility/yt-keywords/pkg/client"
	"github.com/imbecility/yt-keywords/pkg/fetcher"
	"github.com/imbecility/yt-keywords/pkg/logger"
	"github.com/imbecility/yt-keywords/pkg/proxy"
	"github.com/imbecility/yt-keywords/pkg/store"
)

// Config represents the configuration for gateway initialization.
type Config struct {
	// ProxyEndpoint is the CORS proxy base URL (defaults to proxy.DefaultEndpoint).
	ProxyEndpoint string
	// TimeoutSec bounds one lookup in seconds (defaults to 60).
	TimeoutSec int
	// MaxBodyBytes caps how much page source is read (defaults to 8 MiB).
	MaxBodyBytes int64
	// RedisURL enables the Redis last-lookup store; empty keeps it in memory.
	RedisURL string
	// StoreTTL is how long recorded lookups are kept (defaults to 24h).
	StoreTTL time.Duration
	// InsecureSkipVerify disables TLS verification towards the proxy.
	InsecureSkipVerify bool
	// Debug enables verbose logging.
	Debug bool
	// JSONLog switches the log output to JSON.
	JSONLog bool
}

// New creates a ready-to-use Service instance with all necessary dependencies.
func New(cfg Config) (*Service, error) {
	logger.SetupGlobal(logger.Options{Debug: cfg.Debug, JSON: cfg.JSONLog})

	if cfg.ProxyEndpoint == "" {
		cfg.ProxyEndpoint = proxy.DefaultEndpoint
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 60
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = fetcher.DefaultMaxBodyBytes
	}
	if cfg.StoreTTL == 0 {
		cfg.StoreTTL = 24 * time.Hour
	}

	httpClient, err := client.NewHttpClient(client.Config{
		TimeoutSec:         cfg.TimeoutSec,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init http client: %w", err)
	}

	f := &fetcher.Fetcher{Client: httpClient, MaxBodyBytes: cfg.MaxBodyBytes}
	st := store.Open(cfg.RedisURL, cfg.StoreTTL)

	return NewService(f, proxy.Builder{Endpoint: cfg.ProxyEndpoint}, st, cfg.TimeoutSec), nil
}
