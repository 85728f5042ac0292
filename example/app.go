// Package example is a small report dashboard built from lazy routes. It is
// served by cmd/lazyroute on either chi or echo.
package example

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/lazyroute"
	lazyrouteecho "github.com/pthm/lazyroute/adapters/echo"
)

// Engine names the router the app is mounted on.
type Engine string

const (
	EngineChi  Engine = "chi"
	EngineEcho Engine = "echo"
)

var (
	// ErrUnknownEngine is returned by Handler for an unsupported engine.
	ErrUnknownEngine = errors.New("example: unknown engine")
	// ErrReportService is the failure of the broken route's loader.
	ErrReportService = errors.New("example: report service unavailable")
)

const roleCookie = "role"

// Config configures the app.
type Config struct {
	// Key signs referrer state. Required.
	Key []byte
	// Sealed encrypts referrer state instead of only signing it.
	Sealed bool
	// Delay is the simulated load time of the reports module.
	Delay time.Duration
	// Poll is how often a pending report section re-requests itself.
	Poll time.Duration
	// Wait holds requests until a load settles, up to this long.
	Wait time.Duration
	// Context is handed to load functions. Cancelling it abandons loads.
	Context context.Context
	Logger  *slog.Logger
}

// DefaultConfig returns the settings used by the demo server.
func DefaultConfig() Config {
	return Config{
		Delay: 1500 * time.Millisecond,
		Poll:  500 * time.Millisecond,
	}
}

// App holds the store and the registry the routes are mounted on.
type App struct {
	cfg   Config
	store *Store
	log   *slog.Logger
	reg   *lazyroute.Registry
}

// New creates an app with sample data.
func New(cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Poll <= 0 {
		cfg.Poll = DefaultConfig().Poll
	}
	return &App{
		cfg:   cfg,
		store: NewStore(),
		log:   cfg.Logger,
	}
}

// Store returns the app's report store.
func (a *App) Store() *Store {
	return a.store
}

// Registry returns the registry created by Handler, or nil before it.
func (a *App) Registry() *lazyroute.Registry {
	return a.reg
}

// Handler builds the HTTP handler for engine.
func (a *App) Handler(engine Engine) (http.Handler, error) {
	switch engine {
	case EngineChi, "":
		reg := lazyroute.NewRegistry(a.cfg.Key, a.cfg.Sealed,
			lazyroute.WithRegistryLogger(a.log),
			lazyroute.WithBaseContext(a.cfg.Context),
		)
		a.reg = reg
		reg.Add(a.routes()...)

		r := reg.Router()
		r.Get("/", a.index)
		r.Get("/login", a.loginForm)
		r.Post("/login", a.login)
		r.Post("/logout", a.logout)
		return reg.Handler(), nil

	case EngineEcho:
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true

		opts := []lazyrouteecho.Option{
			lazyrouteecho.WithKey(a.cfg.Key),
			lazyrouteecho.WithLogger(a.log),
			lazyrouteecho.WithContext(a.cfg.Context),
		}
		if a.cfg.Sealed {
			opts = append(opts, lazyrouteecho.WithSealed())
		}
		reg := lazyrouteecho.Mount(e, opts...)
		a.reg = reg
		reg.Add(a.routes()...)

		e.GET("/", echo.WrapHandler(http.HandlerFunc(a.index)))
		e.GET("/login", echo.WrapHandler(http.HandlerFunc(a.loginForm)))
		e.POST("/login", echo.WrapHandler(http.HandlerFunc(a.login)))
		e.POST("/logout", echo.WrapHandler(http.HandlerFunc(a.logout)))
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
}

// Preload warms the unrestricted routes. A failing route is logged, not fatal.
func (a *App) Preload(ctx context.Context) {
	if a.reg == nil {
		return
	}
	if err := a.reg.Preload(ctx); err != nil {
		a.log.Warn("preload incomplete", slog.Any("error", err))
	}
}

// Close unmounts every route.
func (a *App) Close() {
	if a.reg != nil {
		a.reg.Close()
	}
}

func (a *App) routes() []*lazyroute.Route {
	var wait []lazyroute.RouteOption
	if a.cfg.Wait > 0 {
		wait = append(wait, lazyroute.WithWait(a.cfg.Wait))
	}

	reports := lazyroute.NewRoute("/reports/{id}", a.reportsLoader(),
		append([]lazyroute.RouteOption{
			lazyroute.OnLoading(lazyroute.Element(Spinner("Loading report…"))),
			lazyroute.WithPolling(a.cfg.Poll),
		}, wait...)...,
	)

	admin := lazyroute.NewRoute("/admin", a.adminLoader(),
		append([]lazyroute.RouteOption{
			lazyroute.Restrict(),
			lazyroute.AllowWhen(isAdmin),
			lazyroute.OnForbidden(lazyroute.Redirect("/login")),
		}, wait...)...,
	)

	broken := lazyroute.NewRoute("/broken", lazyroute.NewLoader("broken", func(ctx context.Context) (any, error) {
		return nil, ErrReportService
	}), append([]lazyroute.RouteOption{
		lazyroute.OnError(lazyroute.Func(func(ctx context.Context, p lazyroute.Props) lazyroute.View {
			return lazyroute.Element(Layout("Unavailable", Unavailable("The report service")))
		})),
	}, wait...)...)

	return []*lazyroute.Route{reports, admin, broken}
}

// reportsLoader simulates fetching the reports module. The loaded view
// renders whichever report the request names.
func (a *App) reportsLoader() *lazyroute.Loader {
	return lazyroute.NewLoader("reports", func(ctx context.Context) (any, error) {
		if a.cfg.Delay > 0 {
			t := time.NewTimer(a.cfg.Delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return lazyroute.Component(lazyroute.RendererFunc(func(ctx context.Context, p lazyroute.Props) templ.Component {
			return ReportView(a.store.Get(p.Param("id")))
		})), nil
	})
}

func (a *App) adminLoader() *lazyroute.Loader {
	return lazyroute.NewLoader("admin", func(ctx context.Context) (any, error) {
		return lazyroute.Module{
			Default: lazyroute.Func(func(ctx context.Context, p lazyroute.Props) lazyroute.View {
				return lazyroute.Element(Layout("Admin", AdminPanel(len(a.store.List()))))
			}),
		}, nil
	})
}

func isAdmin(ctx context.Context, p lazyroute.Props) bool {
	if p.Request == nil {
		return false
	}
	c, err := p.Request.Cookie(roleCookie)
	return err == nil && c.Value == "admin"
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	if err := lazyroute.Render(w, r, Layout("Reports", IndexPage(a.store.List()))); err != nil {
		a.log.Error("render index", slog.Any("error", err))
	}
}

func (a *App) loginForm(w http.ResponseWriter, r *http.Request) {
	back := "/"
	from, err := lazyroute.ReferrerFrom(r, a.reg.Codec())
	switch {
	case err == nil:
		back = from.String()
	case !errors.Is(err, lazyroute.ErrNoReferrer):
		a.log.Warn("bad referrer state", slog.Any("error", err))
	}
	if err := lazyroute.Render(w, r, Layout("Sign in", LoginPage(back))); err != nil {
		a.log.Error("render login", slog.Any("error", err))
	}
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     roleCookie,
		Value:    "admin",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeBack(r.FormValue("back")), http.StatusSeeOther)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     roleCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeBack keeps post-login redirects on this site.
func safeBack(back string) string {
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.HasPrefix(back, "/\\") {
		return "/"
	}
	return back
}
