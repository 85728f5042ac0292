// Package lazyroute serves server-rendered views whose code is loaded on
// demand, behind an authorization decision, using Go, Templ templates, and
// HTMX.
//
// A route pairs a URL pattern with a Loader. The first allowed request
// mounts the route's Bundle, which runs the loader once in the background
// and remembers the outcome. Every request then resolves to exactly one
// Output: the loaded view, a loading placeholder, an error view, or a
// redirect.
//
// # Views
//
// Anything a route can show is a View, an explicit tagged union:
//
//	lazyroute.Element(spinner())                   // ready-made templ.Component
//	lazyroute.Component(&AdminPanel{store: s})     // Renderer, instantiated with Props
//	lazyroute.Func(func(ctx context.Context, p lazyroute.Props) lazyroute.View {
//	    return lazyroute.Element(hello(p.Param("name")))
//	})
//	lazyroute.Redirect("/login")                   // path + referrer state
//	lazyroute.RedirectLocation(lazyroute.Location{Pathname: "/"})
//
// Loaded module values are converted with ViewOf, so a loader may return a
// templ.Component, a Renderer, a ViewFunc, a View, or a Module wrapping any
// of these as its Default export.
//
// # Loading
//
// Bundles compare loaders by identity. Handing a bundle the loader it
// already has is a no-op; a different *Loader resets the state to Pending
// and starts a new load, and whatever the previous load returns later is
// discarded. There are no retries and no timeouts: retry and timeout policy
// belong to the load function.
//
// # Authorization
//
// Routes built with Restrict are forbidden unless Allow or AllowWhen
// grants access. Forbidden requests never invoke the real loader; they see
// OnForbidden instead (an element, a component, a function of Props, or a
// redirect), or DefaultForbiddenView. Path redirects carry the current
// location as referrer state, sealed with the registry's codec, so the
// destination can send the user back:
//
//	from, err := lazyroute.ReferrerFrom(r, reg.Codec())
//
// # Resolution
//
// Resolve applies one precedence for every request: a load error shows
// OnError (DefaultErrorView if unset); otherwise the loaded value; otherwise
// OnLoading; otherwise nothing.
//
// # Registration
//
// Routes are registered explicitly with a Registry, which mounts them on a
// chi router:
//
//	reg := lazyroute.NewRegistry(key, false)
//	reg.Add(
//	    lazyroute.NewRoute("/reports/{id}", reportsLoader, lazyroute.OnLoading(lazyroute.Element(spinner()))),
//	    lazyroute.NewRoute("/admin", adminLoader, lazyroute.Restrict(), lazyroute.AllowWhen(isAdmin),
//	        lazyroute.OnForbidden(lazyroute.Redirect("/login"))),
//	)
//	http.ListenAndServe(":8080", reg.Handler())
//
// A route without a loader is a wiring mistake: NewRoute panics with a
// *ConfigError at startup rather than failing at request time.
package lazyroute
