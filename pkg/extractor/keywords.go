package extractor

import (
	"regexp"
	"strings"
)

// keywordsMeta only matches name before content. Reversed attributes, extra
// attributes in between, empty content and content holding a quote of either
// kind are deliberately left unmatched or truncated.
var keywordsMeta = regexp.MustCompile(`(?i)<meta\s+name=["']keywords["']\s+content=["']([^"']+)["']`)

// ExtractKeywords returns the content of the first keywords meta tag verbatim.
func ExtractKeywords(html string) (string, bool) {
	m := keywordsMeta.FindStringSubmatch(html)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// SplitKeywords splits a comma separated keywords value for display.
func SplitKeywords(keywords string) []string {
	var out []string
	for _, k := range strings.Split(keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
