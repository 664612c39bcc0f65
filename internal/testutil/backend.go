package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is a call recorded by Backend.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend is a scripted storefront server for tests.
//
// Routes are matched on method and exact path. Unrouted requests get a 404
// with a JSON {"message"} body. Every request is recorded, routed or not.
//
// Thread-safety: All methods are safe for concurrent use.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// NewBackend starts a Backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := StartBackend()
	t.Cleanup(b.Close)
	return b
}

// StartBackend starts a Backend the caller must Close.
func StartBackend() *Backend {
	b := &Backend{routes: make(map[string]http.HandlerFunc)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// HandleFunc installs fn for method and path, replacing any earlier route.
func (b *Backend) HandleFunc(method, path string, fn http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = fn
}

// Reply answers method and path with a fixed status and raw body.
func (b *Backend) Reply(method, path string, status int, body string) {
	b.HandleFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// ReplyJSON answers method and path with v encoded as JSON.
func (b *Backend) ReplyJSON(method, path string, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	b.Reply(method, path, status, string(data))
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many requests matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request for method and path.
func (b *Backend) Last(method, path string) (Request, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	fn := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if fn == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	fn(w, r)
}
