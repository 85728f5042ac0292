package lazyroute

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Registry mounts lazy routes on a chi router and shares one codec, logger
// and error handler between them.
type Registry struct {
	mu      sync.RWMutex
	router  chi.Router
	codec   *Codec
	ctx     context.Context
	log     *slog.Logger
	routes  map[string]*Route
	mounted map[string]bool

	// OnError is called when writing a route's response fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger shared by all routes.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(reg *Registry) {
		if l != nil {
			reg.log = l
		}
	}
}

// WithBaseContext sets the context handed to every load function.
func WithBaseContext(ctx context.Context) RegistryOption {
	return func(reg *Registry) {
		reg.ctx = ctx
	}
}

// WithRouter mounts routes on an existing chi router instead of a new one.
func WithRouter(r chi.Router) RegistryOption {
	return func(reg *Registry) {
		reg.router = r
	}
}

// NewRegistry creates a registry whose referrer state is signed with key.
// Pass sealed=true to encrypt the state instead.
func NewRegistry(key []byte, sealed bool, opts ...RegistryOption) *Registry {
	codec, err := NewCodec(key, sealed)
	if err != nil {
		panic(fmt.Sprintf("lazyroute: failed to create codec: %v", err))
	}

	reg := &Registry{
		router:  chi.NewRouter(),
		codec:   codec,
		ctx:     context.Background(),
		log:     slog.Default(),
		routes:  make(map[string]*Route),
		mounted: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(reg)
	}

	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		if IsDecryptionError(err) {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}

	return reg
}

// Codec returns the registry's codec. Destination handlers use it with
// ReferrerFrom.
func (reg *Registry) Codec() *Codec {
	return reg.codec
}

// Add registers routes with the registry. Routes take over the registry's
// codec, base context, logger and error handler. Add routes before they
// serve requests; a route that is already mounted is unmounted so its next
// request loads under the registry's context.
// Panics if a pattern is already registered.
func (reg *Registry) Add(routes ...*Route) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, rt := range routes {
		if _, exists := reg.routes[rt.pattern]; exists {
			panic(fmt.Sprintf("lazyroute: duplicate route %q", rt.pattern))
		}

		rt.attach(reg.ctx, reg.codec, reg.log.With(slog.String("route", rt.pattern)),
			func(w http.ResponseWriter, r *http.Request, err error) {
				reg.OnError(w, r, err)
			})
		reg.routes[rt.pattern] = rt

		// chi has no way to unregister, so the handler looks the route up on
		// every request and Remove only has to drop it from the map.
		if !reg.mounted[rt.pattern] {
			pattern := rt.pattern
			reg.router.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
				cur, ok := reg.Route(pattern)
				if !ok {
					http.NotFound(w, r)
					return
				}
				cur.ServeHTTP(w, r)
			})
			reg.mounted[pattern] = true
		}
	}
}

// Remove unmounts and unregisters the route at pattern. Reports whether a
// route was removed.
func (reg *Registry) Remove(pattern string) bool {
	reg.mu.Lock()
	rt, ok := reg.routes[pattern]
	delete(reg.routes, pattern)
	reg.mu.Unlock()

	if ok {
		rt.Close()
	}
	return ok
}

// Route returns the route registered at pattern.
func (reg *Registry) Route(pattern string) (*Route, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rt, ok := reg.routes[pattern]
	return rt, ok
}

// Routes returns all registered routes ordered by pattern.
func (reg *Registry) Routes() []*Route {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	routes := make([]*Route, 0, len(reg.routes))
	for _, rt := range reg.routes {
		routes = append(routes, rt)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].pattern < routes[j].pattern
	})
	return routes
}

// Preload mounts every unrestricted route and waits for the loads to
// settle. Restricted routes are left alone so their loaders only run for
// allowed requests. Returns the first load failure.
func (reg *Registry) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, rt := range reg.Routes() {
		if rt.Restricted() {
			continue
		}
		rt := rt
		g.Go(func() error {
			snap, err := rt.Mount().Wait(ctx)
			if err != nil {
				return fmt.Errorf("preload %s: %w", rt.pattern, err)
			}
			if snap.State == Failed {
				return fmt.Errorf("preload %s: %w", rt.pattern, snap.Err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close unmounts every route.
func (reg *Registry) Close() {
	for _, rt := range reg.Routes() {
		rt.Close()
	}
}

// Router returns the chi router routes are mounted on, for adding
// ordinary pages next to lazy routes.
func (reg *Registry) Router() chi.Router {
	return reg.router
}

// Handler returns the HTTP handler serving all registered routes.
func (reg *Registry) Handler() http.Handler {
	return reg.router
}
