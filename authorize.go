package lazyroute

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Access is the authorization input of a route.
//
// A route is forbidden iff Restrict is set and Allow is not. OnForbidden
// picks what a forbidden request sees; NoReferrer suppresses the referrer
// state on path redirects.
type Access struct {
	Restrict    bool
	Allow       bool
	OnForbidden View
	NoReferrer  bool
}

// Forbidden reports whether a is a denial.
func (a Access) Forbidden() bool {
	return a.Restrict && !a.Allow
}

// DefaultForbiddenView is rendered for forbidden requests without an
// OnForbidden view.
var DefaultForbiddenView = Element(staticElement(`<div class="lazy-route-forbidden">`, "Permission denied", `</div>`))

// Authorize decides which loader a request gets.
//
// Allowed requests get render back unchanged. Forbidden requests get a fresh
// loader that resolves immediately to the view chosen by a.OnForbidden, so
// render itself is never invoked. A nil render is a configuration error:
// Authorize reports it as a *ConfigError instead of deferring it to the load.
func Authorize(ctx context.Context, a Access, render *Loader, props Props) (*Loader, error) {
	if !render.valid() {
		return nil, &ConfigError{Route: props.Location.Pathname, Err: ErrNoLoader}
	}
	if !a.Forbidden() {
		return render, nil
	}

	return NewLoader(render.Name()+":forbidden", func(ctx context.Context) (any, error) {
		return forbiddenView(ctx, a, props), nil
	}), nil
}

// forbiddenView classifies a.OnForbidden. A Func's result is classified
// again, so a redirect it returns honours a.NoReferrer too.
func forbiddenView(ctx context.Context, a Access, props Props) View {
	v := a.OnForbidden
	for depth := 0; v.Kind() == KindFunc; depth++ {
		if depth >= maxFuncDepth {
			return View{}
		}
		v = v.fn(ctx, props)
		if v.IsZero() {
			return v
		}
	}
	switch v.Kind() {
	case KindElement, KindComponent:
		return v
	case KindRedirect:
		t := v.target
		t.NoReferrer = t.NoReferrer || a.NoReferrer
		return RedirectLocation(BuildRedirect(t, props))
	default:
		return DefaultForbiddenView
	}
}

// staticElement renders open + escaped text + end.
func staticElement(open, text, end string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, open+html.EscapeString(text)+end)
		return err
	})
}
