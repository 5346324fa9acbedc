package proxy

import (
	"strings"

	"github.com/google/go-querystring/query"
)

// DefaultEndpoint is the CORS proxy that returns the raw HTML of the page named by "quest".
const DefaultEndpoint = "https://api.codetabs.com/v1/proxy"

type request struct {
	Quest string `url:"quest"`
}

type Builder struct {
	Endpoint string
}

// Build returns the proxy URL for target. Any string is encodable.
func (b Builder) Build(target string) string {
	endpoint := b.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	// query.Values only fails for non-struct input.
	v, _ := query.Values(request{Quest: target})

	// url.Values escapes spaces as "+"; the proxy expects encodeURIComponent
	// output. A literal "+" has already become "%2B" at this point.
	encoded := strings.ReplaceAll(v.Encode(), "+", "%20")

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + encoded
}

// BuildURL builds a request against DefaultEndpoint.
func BuildURL(target string) string {
	return Builder{}.Build(target)
}
