package lazyroute

import (
	"context"

	"github.com/a-h/templ"
)

// Kind identifies which shape a View holds.
type Kind uint8

const (
	// KindNone is the zero View: nothing was supplied.
	KindNone Kind = iota
	// KindElement is a ready-made templ.Component rendered as is.
	KindElement
	// KindComponent is a Renderer instantiated with the request Props.
	KindComponent
	// KindFunc is a ViewFunc invoked with the request Props.
	KindFunc
	// KindRedirect is a navigation target handed to BuildRedirect.
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindComponent:
		return "component"
	case KindFunc:
		return "func"
	case KindRedirect:
		return "redirect"
	default:
		return "none"
	}
}

// Renderer is a component reference: it is instantiated with the request
// Props each time it is resolved.
//
//	type AdminPanel struct{ store *Store }
//
//	func (a *AdminPanel) Render(ctx context.Context, props lazyroute.Props) templ.Component {
//	    return adminTemplate(a.store.Stats(), props.Location)
//	}
type Renderer interface {
	Render(ctx context.Context, props Props) templ.Component
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(ctx context.Context, props Props) templ.Component

// Render calls f(ctx, props).
func (f RendererFunc) Render(ctx context.Context, props Props) templ.Component {
	return f(ctx, props)
}

// ViewFunc computes a View from the request Props. The returned View is
// resolved in turn, so a ViewFunc may choose to redirect.
type ViewFunc func(ctx context.Context, props Props) View

// Target is a redirect destination: either a path, which BuildRedirect turns
// into a Location (with referrer state unless NoReferrer), or a fully
// specified Location used unmodified.
type Target struct {
	Path       string
	Location   *Location
	NoReferrer bool
}

// View is the tagged union of things a route can render: an element, a
// component reference, a view function, or a redirect target.
//
// Views are built with Element, Component, Func, Redirect and
// RedirectLocation. The zero View means "not supplied".
type View struct {
	kind      Kind
	element   templ.Component
	component Renderer
	fn        ViewFunc
	target    Target
}

// Element wraps a ready-made templ component.
func Element(c templ.Component) View {
	if c == nil {
		return View{}
	}
	return View{kind: KindElement, element: c}
}

// Component wraps a component reference.
func Component(r Renderer) View {
	if r == nil {
		return View{}
	}
	return View{kind: KindComponent, component: r}
}

// Func wraps a view function.
func Func(fn ViewFunc) View {
	if fn == nil {
		return View{}
	}
	return View{kind: KindFunc, fn: fn}
}

// Redirect targets a path. The current location is attached as referrer
// state unless WithoutReferrer is applied.
func Redirect(path string) View {
	if path == "" {
		return View{}
	}
	return View{kind: KindRedirect, target: Target{Path: path}}
}

// RedirectLocation targets a fully specified Location, used unmodified.
func RedirectLocation(loc Location) View {
	return View{kind: KindRedirect, target: Target{Location: &loc}}
}

// WithoutReferrer disables referrer state on a path redirect.
func (v View) WithoutReferrer() View {
	v.target.NoReferrer = true
	return v
}

// Kind returns the shape held by v.
func (v View) Kind() Kind {
	return v.kind
}

// IsZero reports whether v was not supplied.
func (v View) IsZero() bool {
	return v.kind == KindNone
}

// Target returns the redirect target of a KindRedirect view.
func (v View) Target() Target {
	return v.target
}

// ViewOf converts a loaded module value into a View. Values of any other
// type yield the zero View, which renders nothing.
func ViewOf(x any) View {
	switch v := x.(type) {
	case nil:
		return View{}
	case View:
		return v
	case *View:
		if v == nil {
			return View{}
		}
		return *v
	case templ.Component:
		return Element(v)
	case Renderer:
		return Component(v)
	case ViewFunc:
		return Func(v)
	case func(context.Context, Props) View:
		return Func(v)
	case func(context.Context, Props) templ.Component:
		return Component(RendererFunc(v))
	case Target:
		return View{kind: KindRedirect, target: v}
	case Location:
		return RedirectLocation(v)
	case *Location:
		if v == nil {
			return View{}
		}
		return RedirectLocation(*v)
	default:
		return View{}
	}
}
