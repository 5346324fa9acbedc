package utils

import (
	"regexp"
	"strings"
)

// videoURLPattern accepts youtube.com watch/shorts/embed/live URLs and youtu.be
// short links. After the id only a query string may follow. Watch URLs have
// already opened the query with "?v=", so they may also continue with "&".
var videoURLPattern = regexp.MustCompile(
	`^(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=([\w-]+)(?:[?&].*)?|(?:youtube\.com/(?:shorts|embed|live)/|youtu\.be/)([\w-]+)(?:\?.*)?)$`,
)

// IsValidYouTubeURL reports whether input has the shape of a YouTube video URL.
func IsValidYouTubeURL(input string) bool {
	return videoURLPattern.MatchString(input)
}

// ExtractVideoID returns the id segment of a valid video URL, or "".
func ExtractVideoID(input string) string {
	matches := videoURLPattern.FindStringSubmatch(input)
	if len(matches) < 3 {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	return matches[2]
}

// NormalizeInput strips the whitespace a pasted URL usually carries.
func NormalizeInput(input string) string {
	return strings.TrimSpace(input)
}
