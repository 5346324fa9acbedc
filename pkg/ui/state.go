// Package ui holds the presentation state of a lookup and the policy for
// overlapping lookups. Nothing here touches the network directly.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/imbecility/yt-keywords/pkg/models"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	MsgFetching   = "Fetching keywords..."
	MsgEmptyInput = "Please enter a YouTube video URL to extract keywords."
	MsgInvalidURL = "Please enter a valid YouTube video URL."
	MsgNotFound   = "No keywords found in the video page source."
	msgFetchError = "Error fetching page source: "
)

type State struct {
	Phase    Phase
	URL      string
	Keywords string
	Kind     models.ErrorKind
	Message  string
}

func Loading(url string) State {
	return State{Phase: PhaseLoading, URL: url, Message: MsgFetching}
}

// Reduce maps the outcome of one lookup to the state to display.
func Reduce(url string, res *models.KeywordResult, err error) State {
	if err != nil {
		kind := models.KindOf(err)
		st := State{Phase: PhaseFailed, URL: url, Kind: kind}
		switch {
		case kind == models.KindInvalidURL && strings.TrimSpace(url) == "":
			st.Message = MsgEmptyInput
		case kind == models.KindInvalidURL:
			st.Message = MsgInvalidURL
		default:
			st.Message = msgFetchError + err.Error()
		}
		return st
	}

	if res == nil || !res.Found {
		return State{Phase: PhaseDone, URL: url, Kind: models.KindNotFound, Message: MsgNotFound}
	}
	return State{Phase: PhaseDone, URL: url, Keywords: res.Keywords}
}

// Render writes st as the single line a terminal user would see.
func Render(w io.Writer, st State) error {
	var line string
	switch {
	case st.Phase == PhaseIdle:
		return nil
	case st.Phase == PhaseDone && st.Kind != models.KindNotFound:
		line = st.Keywords
	default:
		line = st.Message
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
