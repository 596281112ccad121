// Package problem renders RFC 7807 error bodies for the wallet API.
package problem

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	contentType   = "application/problem+json"
	baseTypeURL   = "https://errors.lottery-wallet.dev/"
	traceIDHeader = "X-Trace-ID"
)

// Details is the problem body. RequestID carries the trace id so a client
// report can be matched to the server log line.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	RequestID string `json:"request_id"`
}

// Type expands a slug such as "wallet/insufficient-funds" into a problem
// type URI. Absolute URIs pass through.
func Type(slug string) string {
	if slug == "" || strings.HasPrefix(slug, "about:") || strings.Contains(slug, "://") {
		return slug
	}
	return baseTypeURL + strings.TrimPrefix(slug, "/")
}

// New builds the body for r without writing it.
func New(r *http.Request, status int, problemType, title, detail string) Details {
	if title == "" {
		title = http.StatusText(status)
	}
	if problemType == "" {
		problemType = "about:blank"
	}
	d := Details{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
	if r != nil {
		d.Instance = r.URL.Path
		d.RequestID = r.Header.Get(traceIDHeader)
	}
	return d
}

// Write sends the problem body. The trace id already echoed on the response
// wins over the one the client sent.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	d := New(r, status, problemType, title, detail)
	if id := w.Header().Get(traceIDHeader); id != "" {
		d.RequestID = id
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(d)
}
