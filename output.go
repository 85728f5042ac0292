package lazyroute

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Output is what Resolve settles on for one request: a component to render,
// a location to navigate to, or nothing.
//
// Output carries intent only. Route writes it to the response: components
// are rendered, redirects go through Navigate, and an empty Output produces
// an empty body.
type Output struct {
	component templ.Component
	redirect  *Location
}

// Rendered creates an Output that renders c. A nil c renders nothing.
func Rendered(c templ.Component) Output {
	return Output{component: c}
}

// Redirected creates an Output that navigates to loc.
func Redirected(loc Location) Output {
	return Output{redirect: &loc}
}

// Component returns the component to render, or nil.
func (o Output) Component() templ.Component {
	return o.component
}

// Redirect returns the navigation target, if any.
func (o Output) Redirect() (Location, bool) {
	if o.redirect == nil {
		return Location{}, false
	}
	return *o.redirect, true
}

// IsRedirect reports whether the output navigates away.
func (o Output) IsRedirect() bool {
	return o.redirect != nil
}

// IsEmpty reports whether the output renders nothing.
func (o Output) IsEmpty() bool {
	return o.component == nil && o.redirect == nil
}

// Render writes the component, if any. Redirects and empty outputs write
// nothing.
func (o Output) Render(ctx context.Context, w io.Writer) error {
	if o.component == nil {
		return nil
	}
	return o.component.Render(ctx, w)
}

// AsComponent returns the output as a templ component that can be nested
// in a page. Redirects render nothing.
func (o Output) AsComponent() templ.Component {
	return templ.ComponentFunc(o.Render)
}
