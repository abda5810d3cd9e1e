// Package redmine is an asynchronous client for the Redmine REST API.
//
// Every operation returns immediately and reports its result through a
// callback. Callbacks run one at a time on a goroutine owned by the Client,
// so callers never need to synchronize between them.
package redmine

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	// DefaultUserAgent is sent when no user agent has been configured.
	DefaultUserAgent = "redmine-go"
	// DefaultPageLimit is the page size used by list operations.
	DefaultPageLimit = 100
	// MaxPageLimit is the largest page Redmine returns, whatever limit is
	// requested.
	MaxPageLimit = 100
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 30 * time.Second
)

// HTTPClient is the transport used to perform requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Handle identifies one in-flight request.
type Handle uuid.UUID

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return uuid.UUID(h) == uuid.Nil
}

// Mode selects the HTTP method of a request.
type Mode int

const (
	ModeRead Mode = iota
	ModeCreate
	ModeUpdate
	ModeDelete
)

func (m Mode) method() (string, bool) {
	switch m {
	case ModeRead:
		return http.MethodGet, true
	case ModeCreate:
		return http.MethodPost, true
	case ModeUpdate:
		return http.MethodPut, true
	case ModeDelete:
		return http.MethodDelete, true
	}
	return "", false
}

func (m Mode) String() string {
	if method, ok := m.method(); ok {
		return method
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Reply is the completed exchange handed to a ResponseHandler.
type Reply struct {
	Handle     Handle
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Err        error
}

// Failed reports whether the exchange hit a transport error or returned a
// non-2xx status.
func (r *Reply) Failed() bool {
	return r.Err != nil || r.StatusCode < 200 || r.StatusCode > 299
}

// ErrorString describes why the exchange failed.
func (r *Reply) ErrorString() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Status != "" {
		return r.Status
	}
	return fmt.Sprintf("unexpected status code %d", r.StatusCode)
}

// ResponseHandler receives a completed exchange and its parsed body.
type ResponseHandler func(reply *Reply, doc Document)

// settings is the configuration snapshot taken when a request is sent.
type settings struct {
	url        string
	auth       Authenticator
	userAgent  string
	httpClient HTTPClient
	pageLimit  int
}

// Client talks to one Redmine instance.
type Client struct {
	mu sync.Mutex

	url        string
	auth       Authenticator
	userAgent  string
	checkSSL   bool
	timeout    time.Duration
	pageLimit  int
	httpClient HTTPClient
	customHTTP bool
	logger     *slog.Logger

	pending map[Handle]ResponseHandler

	connState    ConnectionState
	connListener func(ConnectionState)

	events    chan *Reply
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a client without credentials.
func New(baseURL string) *Client {
	c := &Client{
		url:       strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		checkSSL:  true,
		timeout:   DefaultTimeout,
		pageLimit: DefaultPageLimit,
		logger:    slog.Default(),
		pending:   make(map[Handle]ResponseHandler),
		events:    make(chan *Reply, 64),
		done:      make(chan struct{}),
	}
	c.httpClient = newHTTPClient(c.checkSSL, c.timeout)
	go c.run()
	return c
}

// NewWithAPIKey creates a client authenticating with an API key.
func NewWithAPIKey(baseURL, apiKey string, checkSSL bool) *Client {
	c := New(baseURL)
	c.SetAPIKey(apiKey)
	c.SetCheckSSL(checkSSL)
	return c
}

// NewWithPassword creates a client authenticating with login and password.
func NewWithPassword(baseURL, login, password string, checkSSL bool) *Client {
	c := New(baseURL)
	c.SetBasicAuth(login, password)
	c.SetCheckSSL(checkSSL)
	return c
}

func newHTTPClient(checkSSL bool, timeout time.Duration) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	if !checkSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// URL returns the base endpoint.
func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// SetURL replaces the base endpoint. Requests already sent are unaffected.
func (c *Client) SetURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = strings.TrimRight(baseURL, "/")
}

// SetAPIKey switches to API key authentication.
func (c *Client) SetAPIKey(key string) {
	c.SetAuthenticator(APIKeyAuth{Key: key})
}

// SetBasicAuth switches to login/password authentication.
func (c *Client) SetBasicAuth(login, password string) {
	c.SetAuthenticator(BasicAuth{Login: login, Password: password})
}

// SetAuthenticator replaces the authenticator. A nil authenticator sends
// requests without credentials.
func (c *Client) SetAuthenticator(auth Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = auth
}

// SetUserAgent sets the value of the User-Agent headers.
func (c *Client) SetUserAgent(ua string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userAgent = ua
}

// SetCheckSSL toggles TLS certificate verification. It has no effect once a
// custom HTTP client has been installed.
func (c *Client) SetCheckSSL(check bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkSSL = check
	if !c.customHTTP {
		c.httpClient = newHTTPClient(c.checkSSL, c.timeout)
	}
}

// SetTimeout bounds each HTTP exchange. Like SetCheckSSL it only applies to
// the built-in transport.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
	if !c.customHTTP {
		c.httpClient = newHTTPClient(c.checkSSL, c.timeout)
	}
}

// SetHTTPClient installs a custom transport.
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hc == nil {
		c.customHTTP = false
		c.httpClient = newHTTPClient(c.checkSSL, c.timeout)
		return
	}
	c.customHTTP = true
	c.httpClient = hc
}

// SetPageLimit sets the number of records requested per page. Non-positive
// values select DefaultPageLimit and values above MaxPageLimit are clamped.
func (c *Client) SetPageLimit(limit int) {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageLimit = limit
}

// SetLogger replaces the logger used for request tracing.
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

func (c *Client) log() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

func (c *Client) snapshot() settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return settings{
		url:        c.url,
		auth:       c.auth,
		userAgent:  c.userAgent,
		httpClient: c.httpClient,
		pageLimit:  c.pageLimit,
	}
}

// Pending returns the number of requests whose handler has not run yet.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close stops the completion loop. Handlers of requests still in flight are
// never invoked.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.pending = make(map[Handle]ResponseHandler)
		c.mu.Unlock()
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Send issues a request for resource and arranges for handler to receive the
// reply. The request URL is <base>/<resource>.json?<query>.
//
// Rejections that need no network action are returned as errors and handler
// is never invoked. A nil handler is allowed for every mode except ModeRead.
func (c *Client) Send(ctx context.Context, resource string, handler ResponseHandler, mode Mode, query string, body []byte) (Handle, error) {
	h, err := c.send(ctx, resource, handler, mode, query, body)
	if err != nil {
		c.log().Warn("request rejected", "resource", resource, "mode", mode.String(), "error", err)
	}
	return h, err
}

func (c *Client) send(ctx context.Context, resource string, handler ResponseHandler, mode Mode, query string, body []byte) (Handle, error) {
	if resource == "" {
		return Handle{}, ErrNoResource
	}
	method, ok := mode.method()
	if !ok {
		return Handle{}, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if mode == ModeRead && handler == nil {
		return Handle{}, ErrNoHandler
	}
	if c.closed() {
		return Handle{}, ErrClosed
	}

	s := c.snapshot()
	endpoint := s.url + "/" + strings.TrimPrefix(resource, "/") + ".json"
	if query != "" {
		endpoint += "?" + query
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidURL, endpoint)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("X-Custom-User-Agent", s.userAgent)
	req.ContentLength = int64(len(body))
	if s.auth != nil {
		s.auth.apply(req.Header)
	}

	h := Handle(uuid.New())
	c.mu.Lock()
	// Close may have run since the first check; it clears pending under mu.
	if c.closed() {
		c.mu.Unlock()
		return Handle{}, ErrClosed
	}
	if handler != nil {
		c.pending[h] = handler
	}
	c.mu.Unlock()

	c.log().Debug("sending request", "handle", h.String(), "method", method, "url", u.Redacted())
	go c.exchange(h, req, s.httpClient)
	return h, nil
}

// exchange performs the HTTP round trip and posts the reply to the loop.
func (c *Client) exchange(h Handle, req *http.Request, hc HTTPClient) {
	reply := &Reply{Handle: h, Method: req.Method, URL: req.URL.String()}

	resp, err := hc.Do(req)
	if err != nil {
		reply.Err = err
	} else {
		defer resp.Body.Close()
		reply.StatusCode = resp.StatusCode
		reply.Status = resp.Status
		reply.Header = resp.Header
		reply.Body, err = io.ReadAll(resp.Body)
		if err != nil {
			reply.Err = fmt.Errorf("failed to read response body: %w", err)
		}
	}

	select {
	case c.events <- reply:
	case <-c.done:
	}
}

// run is the completion loop. It is the only goroutine that invokes handlers.
func (c *Client) run() {
	for {
		select {
		case reply := <-c.events:
			c.deliver(reply)
		case <-c.done:
			return
		}
	}
}

// deliver routes a completed exchange to its handler. The pending entry is
// removed before the handler runs so that a handle is delivered at most once.
func (c *Client) deliver(reply *Reply) {
	c.mu.Lock()
	handler, ok := c.pending[reply.Handle]
	delete(c.pending, reply.Handle)
	logger := c.logger
	c.mu.Unlock()

	if reply.Failed() {
		logger.Debug("request failed", "handle", reply.Handle.String(), "url", reply.URL, "error", reply.ErrorString())
	} else {
		logger.Debug("request completed", "handle", reply.Handle.String(), "status", reply.StatusCode)
	}
	if !ok {
		return
	}
	handler(reply, ParseDocument(reply.Body))
}
