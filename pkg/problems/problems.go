// Package problems renders RFC 7807 application/problem+json responses.
package problems

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
)

// Problem type slugs.
const (
	BadRequest   = "bad-request"
	Unauthorized = "unauthorized"
	Forbidden    = "forbidden"
	NotFound     = "not-found"
	NotSupported = "not-supported"
	Unavailable  = "backend-unavailable"
	Internal     = "internal"
)

// Base returns the base URL for problem type identifiers.
// Order of precedence:
// 1. PROBLEM_BASE_URL (exact base, e.g. https://mydomain.com/problems)
// 2. https://apl.saleor.app/problems (fallback)
func Base() string {
	if b := os.Getenv("PROBLEM_BASE_URL"); b != "" {
		return strings.TrimRight(b, "/")
	}
	return "https://apl.saleor.app/problems"
}

// Type builds a full problem type URL for the given slug.
func Type(slug string) string { return Base() + "/" + slug }

type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Write sends a problem document with the given status.
func Write(w http.ResponseWriter, r *http.Request, status int, slug, detail string) {
	p := Problem{
		Type:   Type(slug),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	if r != nil {
		p.Instance = r.URL.Path
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
