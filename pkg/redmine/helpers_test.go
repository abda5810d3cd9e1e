package redmine

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

const testBaseURL = "https://redmine.example.com"

const (
	eventuallyTimeout = 2 * time.Second
	eventuallyTick    = 10 * time.Millisecond
)

// stubTransport records requests and answers them with respond.
type stubTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	respond  func(req *http.Request) (*http.Response, error)
}

func (s *stubTransport) Do(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *stubTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubTransport) request(i int) *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}

func (s *stubTransport) body(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[i]
}

func respondWith(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return jsonResponse(status, body), nil
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, transport HTTPClient) *Client {
	t.Helper()
	c := NewWithAPIKey(testBaseURL, "secret", true)
	c.SetHTTPClient(transport)
	t.Cleanup(c.Close)
	return c
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(eventuallyTimeout):
		t.Fatal("timed out waiting for callback")
	}
	var zero T
	return zero
}

type listResult[T any] struct {
	items    []T
	kind     ErrorKind
	messages []string
}

func collectList[T any](ch chan listResult[T]) ListCallback[T] {
	return func(items []T, kind ErrorKind, messages []string) {
		ch <- listResult[T]{items: items, kind: kind, messages: messages}
	}
}
