// Package lazyrouteecho provides Echo framework integration for lazy routes.
//
// Mount a registry onto an Echo instance or group:
//
//	e := echo.New()
//	reg := lazyrouteecho.Mount(e, lazyrouteecho.WithPath("/app/"))
//	reg.Add(lazyroute.NewRoute("/app/reports/{id}", reportsLoader))
//
// Or route single lazy routes with Echo's own router:
//
//	e.GET("/reports/:id", lazyrouteecho.Handler(route))
package lazyrouteecho

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/lazyroute"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key    []byte
	path   string
	sealed bool
	log    *slog.Logger
	ctx    context.Context
}

// WithKey sets the key used to sign referrer state.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the URL prefix the registry answers under.
// Defaults to "/". Route patterns must include the prefix.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithSealed encrypts referrer state instead of only signing it.
func WithSealed() Option {
	return func(o *options) {
		o.sealed = true
	}
}

// WithLogger sets the logger shared by the registry's routes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithContext sets the context handed to every load function.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Mount creates a registry and mounts its handler on an Echo instance.
//
//	e := echo.New()
//	reg := lazyrouteecho.Mount(e)
//	reg.Add(route)
//
//	// With options:
//	reg := lazyrouteecho.Mount(e, lazyrouteecho.WithKey(key))
func Mount(e *echo.Echo, opts ...Option) *lazyroute.Registry {
	reg, path := newRegistry(opts)
	e.GET(path+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

// MountGroup creates a registry and mounts its handler on an Echo group.
// This lets lazy routes share middleware with the group (auth, logging, etc.).
// The group prefix is part of the path the registry sees.
//
//	g := e.Group("/app", authMiddleware)
//	reg := lazyrouteecho.MountGroup(g)
//	reg.Add(lazyroute.NewRoute("/app/admin", adminLoader, lazyroute.Restrict()))
func MountGroup(g *echo.Group, opts ...Option) *lazyroute.Registry {
	reg, path := newRegistry(opts)
	g.GET(path+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

func newRegistry(opts []Option) (*lazyroute.Registry, string) {
	o := &options{path: "/"}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("lazyrouteecho: failed to generate random key: %v", err))
		}
	}

	var ropts []lazyroute.RegistryOption
	if o.log != nil {
		ropts = append(ropts, lazyroute.WithRegistryLogger(o.log))
	}
	if o.ctx != nil {
		ropts = append(ropts, lazyroute.WithBaseContext(o.ctx))
	}
	return lazyroute.NewRegistry(key, o.sealed, ropts...), o.path
}

// Handler adapts a single route to an Echo handler. Echo path parameters
// become Props.Params.
//
//	e.GET("/reports/:id", lazyrouteecho.Handler(route))
func Handler(rt *lazyroute.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		names := c.ParamNames()
		values := c.ParamValues()

		var params map[string]string
		if len(names) > 0 {
			params = make(map[string]string, len(names))
			for i, name := range names {
				if i < len(values) {
					params[name] = values[i]
				}
			}
		}

		rt.Serve(c.Response(), c.Request(), lazyroute.PropsFromRequest(c.Request(), params))
		return nil
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return lazyrouteecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
