package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/imbecility/yt-keywords/pkg/models"
	"github.com/imbecility/yt-keywords/pkg/store"
)

type KeywordService interface {
	ExtractKeywords(ctx context.Context, rawURL string) (*models.KeywordResult, error)
	LastLookup(ctx context.Context) (*models.KeywordResult, error)
	LookupByVideo(ctx context.Context, videoID string) (*models.KeywordResult, error)
}

type Server struct {
	Port    int
	Service KeywordService
}

const shutdownTimeout = 10 * time.Second

var indexTmpl = template.Must(template.New("index").Parse(tmpl))

func (s *Server) Handler(enableWeb bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/keywords", s.handleAPIKeywords)
	mux.HandleFunc("/api/last", s.handleAPILast)

	if enableWeb {
		mux.HandleFunc("/", s.handleWebIndex)
	}
	return mux
}

// Start serves until ctx ends, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, enableWeb bool) error {
	addr := fmt.Sprintf(":%d", s.Port)
	fullAddr := fmt.Sprintf("http://localhost:%d", s.Port)
	slog.Info("Starting API server", "addr", fullAddr, "web_ui", enableWeb)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(enableWeb),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleAPIKeywords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqID := uuid.NewString()

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("API request received", "req", reqID, "url", req.URL, "remote", r.RemoteAddr)

	res, err := s.Service.ExtractKeywords(r.Context(), req.URL)
	if err != nil {
		kind := models.KindOf(err)
		status := http.StatusBadGateway
		if kind == models.KindInvalidURL {
			status = http.StatusBadRequest
		}
		slog.Warn("Lookup failed", "req", reqID, "kind", kind, "err", err)
		s.respondJSON(w, status, models.APIResponse{
			Success:   false,
			RequestID: reqID,
			Error:     err.Error(),
			ErrorKind: kind,
			URL:       req.URL,
		})
		return
	}

	s.respondJSON(w, http.StatusOK, resultResponse(reqID, res, false))
}

func (s *Server) handleAPILast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqID := uuid.NewString()

	var (
		res *models.KeywordResult
		err error
	)
	if vid := r.URL.Query().Get("video"); vid != "" {
		res, err = s.Service.LookupByVideo(r.Context(), vid)
	} else {
		res, err = s.Service.LastLookup(r.Context())
	}
	if errors.Is(err, store.ErrEmpty) {
		s.respondJSON(w, http.StatusNotFound, models.APIResponse{Success: false, RequestID: reqID, Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Last lookup unavailable", "req", reqID, "err", err)
		s.respondJSON(w, http.StatusInternalServerError, models.APIResponse{Success: false, RequestID: reqID, Error: "store unavailable"})
		return
	}

	s.respondJSON(w, http.StatusOK, resultResponse(reqID, res, true))
}

func resultResponse(reqID string, res *models.KeywordResult, withTime bool) models.APIResponse {
	resp := models.APIResponse{
		Success:   true,
		RequestID: reqID,
		URL:       res.URL,
		VideoID:   res.VideoID,
		Keywords:  res.Keywords,
		Found:     res.Found,
	}
	if !res.Found {
		resp.ErrorKind = models.KindNotFound
	}
	if withTime {
		t := res.FetchedAt
		resp.FetchedAt = &t
	}
	return resp
}

// BackgroundSweeper drops expired in-memory lookups until ctx ends.
func BackgroundSweeper(ctx context.Context, st *store.MemoryStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Debug("Swept expired lookups", "count", n)
			}
		}
	}
}

func (s *Server) handleWebIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		slog.Error("Template execution failed", "error", err, "remote", r.RemoteAddr)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	jerr := json.NewEncoder(w).Encode(data)
	if jerr != nil {
		slog.Error("JSON encoding failed", "error", jerr)
	}
}
