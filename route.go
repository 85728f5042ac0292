package lazyroute

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// AllowFunc decides per request whether a restricted route may be shown.
type AllowFunc func(ctx context.Context, props Props) bool

// Route is a lazily loaded view mounted at a URL pattern.
//
// The first allowed request mounts the route's Bundle, which loads the
// render loader once and keeps the result for later requests. Forbidden
// requests never touch that bundle: they get a one-off bundle around the
// loader chosen by Authorize, so the real loader is not invoked for them.
//
//	admin := lazyroute.NewRoute("/admin", adminLoader,
//	    lazyroute.Restrict(),
//	    lazyroute.AllowWhen(isAdmin),
//	    lazyroute.OnForbidden(lazyroute.Redirect("/login")),
//	    lazyroute.OnLoading(lazyroute.Element(spinner())),
//	)
type Route struct {
	pattern string

	restrict    bool
	allow       AllowFunc
	onForbidden View
	noReferrer  bool
	onLoading   View
	onError     View
	wait        time.Duration
	poll        time.Duration

	ctx         context.Context
	codec       *Codec
	log         *slog.Logger
	renderError func(http.ResponseWriter, *http.Request, error)

	mu     sync.Mutex
	loader *Loader
	bundle *Bundle
}

// RouteOption configures a Route.
type RouteOption func(*Route)

// Restrict marks the route as protected. Without Allow or AllowWhen every
// request is forbidden.
func Restrict() RouteOption {
	return func(rt *Route) {
		rt.restrict = true
	}
}

// Allow sets a fixed authorization outcome.
func Allow(ok bool) RouteOption {
	return func(rt *Route) {
		rt.allow = func(context.Context, Props) bool { return ok }
	}
}

// AllowWhen decides authorization per request.
func AllowWhen(fn AllowFunc) RouteOption {
	return func(rt *Route) {
		rt.allow = fn
	}
}

// OnForbidden sets what forbidden requests see. Defaults to
// DefaultForbiddenView.
func OnForbidden(v View) RouteOption {
	return func(rt *Route) {
		rt.onForbidden = v
	}
}

// OnLoading sets the placeholder shown while the module loads. Defaults to
// rendering nothing.
func OnLoading(v View) RouteOption {
	return func(rt *Route) {
		rt.onLoading = v
	}
}

// OnError sets the view shown when the load fails. Defaults to
// DefaultErrorView.
func OnError(v View) RouteOption {
	return func(rt *Route) {
		rt.onError = v
	}
}

// NoReferrer stops forbidden redirects from carrying the current location.
func NoReferrer() RouteOption {
	return func(rt *Route) {
		rt.noReferrer = true
	}
}

// WithWait lets a request wait up to d for a pending load before falling
// back to the loading view.
func WithWait(d time.Duration) RouteOption {
	return func(rt *Route) {
		rt.wait = d
	}
}

// WithPolling wraps pending responses in a placeholder that re-requests the
// route every d until the module has loaded.
func WithPolling(d time.Duration) RouteOption {
	return func(rt *Route) {
		rt.poll = d
	}
}

// WithCodec sets the codec sealing referrer state. Routes added to a
// Registry use the registry's codec.
func WithCodec(c *Codec) RouteOption {
	return func(rt *Route) {
		rt.codec = c
	}
}

// WithLogger sets the route logger.
func WithLogger(l *slog.Logger) RouteOption {
	return func(rt *Route) {
		rt.log = l
	}
}

// WithContext sets the context handed to load functions. Defaults to
// context.Background.
func WithContext(ctx context.Context) RouteOption {
	return func(rt *Route) {
		rt.ctx = ctx
	}
}

// NewRoute creates a route rendering the module produced by render.
//
// Panics with a *ConfigError if render is nil or has no load function:
// a route without a loader is a wiring mistake, not a runtime condition.
func NewRoute(pattern string, render *Loader, opts ...RouteOption) *Route {
	if !render.valid() {
		panic(&ConfigError{Route: pattern, Err: ErrNoLoader})
	}

	rt := &Route{
		pattern: pattern,
		loader:  render,
		ctx:     context.Background(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.log = rt.log.With(slog.String("route", pattern))

	if rt.codec == nil {
		rt.codec = randomCodec()
	}
	if rt.renderError == nil {
		rt.renderError = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}
	return rt
}

// randomCodec creates a codec with a throwaway key, suitable for routes
// used outside a Registry and for development.
func randomCodec() *Codec {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("lazyroute: failed to generate random key: %v", err))
	}
	c, err := NewCodec(key, false)
	if err != nil {
		panic(fmt.Sprintf("lazyroute: failed to create codec: %v", err))
	}
	return c
}

// Pattern returns the route's URL pattern.
func (rt *Route) Pattern() string {
	return rt.pattern
}

// Restricted reports whether the route is protected.
func (rt *Route) Restricted() bool {
	return rt.restrict
}

// Codec returns the codec sealing referrer state for this route.
func (rt *Route) Codec() *Codec {
	return rt.codec
}

// Loader returns the route's real loader.
func (rt *Route) Loader() *Loader {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.loader
}

// SetLoader replaces the real loader. A mounted route reloads when l is a
// different loader; the previous load's result is discarded.
//
// Panics with a *ConfigError if l is nil or has no load function.
func (rt *Route) SetLoader(l *Loader) {
	if !l.valid() {
		panic(&ConfigError{Route: rt.pattern, Err: ErrNoLoader})
	}

	// Updating under rt.mu keeps the bundle's loader equal to rt.loader
	// when SetLoader races with itself.
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.loader = l
	if rt.bundle != nil {
		rt.bundle.Update(l)
	}
}

// State returns the mounted bundle's state, or an Idle snapshot if the
// route has not been mounted.
func (rt *Route) State() Snapshot {
	rt.mu.Lock()
	b := rt.bundle
	rt.mu.Unlock()
	if b == nil {
		return Snapshot{}
	}
	return b.Snapshot()
}

// Mount creates the route's bundle if needed and starts loading.
func (rt *Route) Mount() *Bundle {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.bundle == nil {
		rt.bundle = NewBundle(rt.ctx, rt.loader, WithBundleLogger(rt.log))
	}
	return rt.bundle
}

// Close unmounts the route. Pending loads are discarded; the next allowed
// request mounts a fresh bundle.
func (rt *Route) Close() {
	rt.mu.Lock()
	b := rt.bundle
	rt.bundle = nil
	rt.mu.Unlock()

	if b != nil {
		b.Dispose()
	}
}

// attach hands the route a registry's shared settings and unmounts any
// bundle built with the previous ones.
func (rt *Route) attach(ctx context.Context, codec *Codec, log *slog.Logger, renderError func(http.ResponseWriter, *http.Request, error)) {
	rt.mu.Lock()
	rt.codec = codec
	rt.ctx = ctx
	rt.log = log
	rt.renderError = renderError
	b := rt.bundle
	rt.bundle = nil
	rt.mu.Unlock()

	if b != nil {
		b.Dispose()
	}
}

// access computes the authorization input for one request.
func (rt *Route) access(ctx context.Context, props Props) Access {
	a := Access{
		Restrict:    rt.restrict,
		OnForbidden: rt.onForbidden,
		NoReferrer:  rt.noReferrer,
	}
	if rt.restrict && rt.allow != nil {
		a.Allow = rt.allow(ctx, props)
	}
	return a
}

// ServeHTTP serves the route, taking URL params from chi when present.
func (rt *Route) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.Serve(w, r, PropsFromRequest(r, chiParams(r)))
}

// Serve resolves and writes the route for one request with explicit props.
// Router adapters call this after extracting their own URL params.
func (rt *Route) Serve(w http.ResponseWriter, r *http.Request, props Props) {
	out, pending := rt.Resolve(r.Context(), props)
	if pending && rt.poll > 0 && !out.IsRedirect() {
		out = Rendered(Poll(r.URL.RequestURI(), out.Component(), rt.poll))
	}
	rt.write(w, r, out)
}

// Resolve runs authorization, loading and resolution for one request and
// returns the output along with whether the load is still pending.
func (rt *Route) Resolve(ctx context.Context, props Props) (Output, bool) {
	render := rt.Loader()
	loader, err := Authorize(ctx, rt.access(ctx, props), render, props)
	if err != nil {
		// render is validated by NewRoute and SetLoader.
		panic(err)
	}

	var b *Bundle
	if loader == render {
		b = rt.Mount()
		if rt.wait > 0 {
			wctx, cancel := context.WithTimeout(ctx, rt.wait)
			_, _ = b.Wait(wctx)
			cancel()
		}
	} else {
		b = NewBundle(rt.ctx, loader, WithBundleLogger(rt.log))
		defer b.Dispose()
		// The forbidden loader resolves immediately.
		if _, err := b.Wait(ctx); err != nil {
			return Output{}, true
		}
		rt.log.DebugContext(ctx, "request forbidden", slog.String("path", props.Location.Pathname))
	}

	pending := b.Snapshot().State == Pending
	out := b.Render(func(err error, value any) Output {
		return ResolveValue(ctx, props, err, value, rt.onLoading, rt.onError)
	})
	return out, pending
}

// write sends out to the client.
func (rt *Route) write(w http.ResponseWriter, r *http.Request, out Output) {
	if loc, ok := out.Redirect(); ok {
		if err := Navigate(w, r, loc, rt.codec); err != nil {
			rt.fail(w, r, err)
		}
		return
	}

	var buf bytes.Buffer
	if err := out.Render(r.Context(), &buf); err != nil {
		rt.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (rt *Route) fail(w http.ResponseWriter, r *http.Request, err error) {
	rt.log.ErrorContext(r.Context(), "render failed", slog.Any("error", err))
	rt.renderError(w, r, err)
}

// chiParams collects URL params from a chi route context.
func chiParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) {
			params[k] = rctx.URLParams.Values[i]
		}
	}
	return params
}
