package lazyroute

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"go.uber.org/atomic"
)

// TestResult holds the response of a route under test.
//
// Provides convenience methods for asserting on HTML content, headers,
// status codes and redirects.
type TestResult struct {
	HTML        string
	StatusCode  int
	Headers     http.Header
	RedirectURL string // from Location or HX-Location
}

// TestRoute sends a plain GET request for target to h.
//
//	result := lazyroute.TestRoute(reg.Handler(), "/admin")
//	if !result.RedirectedTo("/login") {
//	    t.Fatal("expected login redirect")
//	}
func TestRoute(h http.Handler, target string) *TestResult {
	return NewTestRequest(http.MethodGet, target).Execute(h)
}

// TestHTMXRoute sends an HTMX GET request for target to h, as a lazy
// placeholder would.
func TestHTMXRoute(h http.Handler, target string) *TestResult {
	return NewTestRequest(http.MethodGet, target).HTMX().Execute(h)
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// IsEmpty checks if nothing was rendered.
func (r *TestResult) IsEmpty() bool {
	return r.HTML == ""
}

// WasRedirected checks if the response navigated away.
func (r *TestResult) WasRedirected() bool {
	return r.RedirectURL != ""
}

// RedirectedTo checks if the response navigated to path, ignoring the query
// string (which may carry sealed state).
func (r *TestResult) RedirectedTo(path string) bool {
	if r.RedirectURL == "" {
		return false
	}
	u, err := url.Parse(r.RedirectURL)
	if err != nil {
		return false
	}
	return u.Path == path
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// GetHeader returns the value of a header.
func (r *TestResult) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// FollowRequest builds a request for the redirect target, carrying the
// sealed state the way a browser (or HTMX) would.
func (r *TestResult) FollowRequest() *http.Request {
	target := r.RedirectURL
	if hl := r.Headers.Get("HX-Location"); hl != "" {
		var loc hxLocation
		if err := json.Unmarshal([]byte(hl), &loc); err == nil && len(loc.Values) > 0 {
			u, _ := url.Parse(loc.Path)
			q := u.Query()
			for k, v := range loc.Values {
				q.Set(k, v)
			}
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

// TestRequestBuilder provides a fluent interface for building test requests.
//
//	result := lazyroute.NewTestRequest("GET", "/admin").
//	    WithHeader("Cookie", "role=admin").
//	    WithContext(ctx).
//	    Execute(reg.Handler())
type TestRequestBuilder struct {
	method  string
	url     string
	headers map[string]string
	ctx     context.Context
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:  method,
		url:     url,
		headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

// HTMX marks the request as sent by HTMX.
func (b *TestRequestBuilder) HTMX() *TestRequestBuilder {
	b.headers["HX-Request"] = "true"
	return b
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute executes the request against h.
func (b *TestRequestBuilder) Execute(h http.Handler) *TestResult {
	req := httptest.NewRequest(b.method, b.url, nil)
	req = req.WithContext(b.ctx)
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}

	if loc := rec.Header().Get("Location"); loc != "" {
		result.RedirectURL = loc
	}
	if hl := rec.Header().Get("HX-Location"); hl != "" {
		var loc hxLocation
		if err := json.Unmarshal([]byte(hl), &loc); err == nil {
			result.RedirectURL = loc.Path
		}
	}

	return result
}

type deferredResult struct {
	value any
	err   error
}

// Deferred is a Loader whose outcome the test decides.
//
// Each invocation of the loader blocks until Resolve or Reject is called
// (or the load context ends), which makes pending states and racing loads
// easy to reproduce:
//
//	d := lazyroute.NewDeferred("admin")
//	b := lazyroute.NewBundle(ctx, d.Loader())
//	<-d.Started()
//	// b is Pending here
//	d.Resolve(lazyroute.Element(view))
type Deferred struct {
	loader  *Loader
	calls   *atomic.Int32
	started chan struct{}
	results chan deferredResult
}

// NewDeferred creates a Deferred loader.
func NewDeferred(name string) *Deferred {
	d := &Deferred{
		calls:   atomic.NewInt32(0),
		started: make(chan struct{}, 16),
		results: make(chan deferredResult, 16),
	}
	d.loader = NewLoader(name, func(ctx context.Context) (any, error) {
		d.calls.Inc()
		d.started <- struct{}{}
		select {
		case res := <-d.results:
			return res.value, res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	return d
}

// Loader returns the controlled loader. It is the same pointer on every
// call.
func (d *Deferred) Loader() *Loader {
	return d.loader
}

// Started receives once per loader invocation.
func (d *Deferred) Started() <-chan struct{} {
	return d.started
}

// Calls returns how many times the loader has been invoked.
func (d *Deferred) Calls() int {
	return int(d.calls.Load())
}

// Resolve settles the oldest waiting (or next) invocation with v.
func (d *Deferred) Resolve(v any) {
	d.results <- deferredResult{value: v}
}

// Reject settles the oldest waiting (or next) invocation with err.
func (d *Deferred) Reject(err error) {
	d.results <- deferredResult{err: err}
}
