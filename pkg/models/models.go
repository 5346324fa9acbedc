package models

import (
	"errors"
	"fmt"
	"time"
)

// KeywordResult is the outcome of one successful lookup.
// Found=false with empty Keywords means the page had no keywords meta tag.
type KeywordResult struct {
	URL       string    `json:"url"`
	VideoID   string    `json:"video_id,omitempty"`
	Keywords  string    `json:"keywords"`
	Found     bool      `json:"found"`
	FetchedAt time.Time `json:"fetched_at"`
}

type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindInvalidURL ErrorKind = "invalid_url"
	KindNetwork    ErrorKind = "network_error"
	// KindNotFound is never carried by an error; it labels a result with Found=false.
	KindNotFound ErrorKind = "not_found"
)

var (
	ErrInvalidURL = errors.New("invalid youtube url")
	ErrNetwork    = errors.New("network error")
)

// KeywordError is the single failure signal of a lookup.
type KeywordError struct {
	Kind ErrorKind
	Msg  string
	// StatusCode is the proxy response status, 0 for transport failures.
	StatusCode int
	Err        error
}

func (e *KeywordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *KeywordError) Unwrap() error { return e.Err }

func (e *KeywordError) Is(target error) bool {
	switch target {
	case ErrInvalidURL:
		return e.Kind == KindInvalidURL
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

func InvalidURL(msg string) *KeywordError {
	return &KeywordError{Kind: KindInvalidURL, Msg: msg}
}

func NetworkFailure(status int, err error) *KeywordError {
	msg := "network response was not ok"
	if status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, status)
	}
	return &KeywordError{Kind: KindNetwork, Msg: msg, StatusCode: status, Err: err}
}

// KindOf reports the kind of a lookup error, KindNone for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ke *KeywordError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindNetwork
}

type APIResponse struct {
	Success   bool      `json:"success"`
	RequestID string    `json:"request_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	URL       string    `json:"url,omitempty"`
	VideoID   string    `json:"video_id,omitempty"`
	Keywords  string    `json:"keywords,omitempty"`
	Found     bool      `json:"found"`
	// FetchedAt is set only for results served from the last-lookup store.
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}
