package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/imbecility/yt-keywords/pkg/api"
	"github.com/imbecility/yt-keywords/pkg/gateway"
	"github.com/imbecility/yt-keywords/pkg/store"
	"github.com/imbecility/yt-keywords/pkg/ui"
)

func main() {
	// .env is optional; variables may already be set in the environment
	_ = godotenv.Load()

	urlFlag := flag.String("url", "", "YouTube video URL")
	interactive := flag.Bool("i", false, "Read URLs from stdin, one per line")
	proxyFlag := flag.String("proxy", os.Getenv("YTKW_PROXY"), "CORS proxy endpoint")
	redisFlag := flag.String("redis", os.Getenv("YTKW_REDIS_URL"), "Redis URL for the last-lookup store")
	timeoutFlag := flag.Int("timeout", 60, "Max seconds per lookup")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	jsonLog := flag.Bool("json-log", false, "Log as JSON")

	apiMode := flag.Bool("api", false, "Run in API Server mode")
	apiPort := flag.Int("port", envInt("YTKW_PORT", 8080), "Port for API server")
	webMode := flag.Bool("onweb", false, "Enable simple Web UI")

	flag.Parse()

	svc, err := gateway.New(gateway.Config{
		ProxyEndpoint: *proxyFlag,
		TimeoutSec:    *timeoutFlag,
		RedisURL:      *redisFlag,
		Debug:         *debugFlag,
		JSONLog:       *jsonLog,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Initialization failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// API Server
	if *apiMode {
		if mem, ok := svc.Store.(*store.MemoryStore); ok {
			go api.BackgroundSweeper(ctx, mem, 10*time.Minute)
		}

		srv := &api.Server{Port: *apiPort, Service: svc}
		sterr := srv.Start(ctx, *webMode)
		closeService(svc)
		if sterr != nil {
			slog.Error("Server crashed", "err", sterr)
			os.Exit(1)
		}
		return
	}

	if *interactive {
		runInteractive(ctx, svc)
		closeService(svc)
		return
	}

	// CLI
	if *urlFlag == "" {
		slog.Error("Usage: -url <LINK>, -i or -api")
		os.Exit(1)
	}

	res, err := svc.ExtractKeywords(ctx, *urlFlag)
	st := ui.Reduce(*urlFlag, res, err)
	if rerr := ui.Render(os.Stdout, st); rerr != nil {
		slog.Error("Failed to write output", "err", rerr)
	}
	closeService(svc)
	if st.Phase == ui.PhaseFailed {
		os.Exit(1)
	}
}

// runInteractive treats every line as a new submission; a line arriving
// while a lookup is in flight supersedes it.
func runInteractive(ctx context.Context, svc *gateway.Service) {
	sess := ui.NewSession(ctx, svc, func(st ui.State) {
		if err := ui.Render(os.Stdout, st); err != nil {
			slog.Error("Failed to write output", "err", err)
		}
	})
	defer sess.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			slog.Error("Failed to read stdin", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				sess.Wait()
				return
			}
			sess.Submit(line)
		}
	}
}

func closeService(svc *gateway.Service) {
	if err := svc.Close(); err != nil {
		slog.Warn("Failed to close store", "err", err)
	}
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
