package lazyroute

import (
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/a-h/templ"
)

// LazyOptions controls the HTMX attributes of a deferred placeholder.
type LazyOptions struct {
	Trigger string   // hx-trigger value
	Swap    SwapMode // hx-swap value, SwapOuter if empty
	Target  string   // hx-target selector, the placeholder itself if empty
}

// Lazy returns a placeholder that fetches url when scrolled into view.
//
// Use it to embed a lazy route in a page without blocking the initial
// render:
//
//	@lazyroute.Lazy("/reports/42", spinner())
//
// Uses HTMX's "intersect once" trigger.
func Lazy(url string, placeholder templ.Component) templ.Component {
	return LazyWith(url, placeholder, LazyOptions{Trigger: "intersect once"})
}

// Defer returns a placeholder that fetches url right after page load.
//
// Uses HTMX's "load" trigger.
func Defer(url string, placeholder templ.Component) templ.Component {
	return LazyWith(url, placeholder, LazyOptions{Trigger: "load"})
}

// Poll returns a placeholder that fetches url once after every. Route uses
// it for pending responses when WithPolling is set: each fetch either
// swaps in the loaded view or returns another Poll placeholder.
func Poll(url string, placeholder templ.Component, every time.Duration) templ.Component {
	return LazyWith(url, placeholder, LazyOptions{
		Trigger: fmt.Sprintf("load delay:%dms", every.Milliseconds()),
	})
}

// LazyWith returns a placeholder with explicit HTMX options.
func LazyWith(url string, placeholder templ.Component, opts LazyOptions) templ.Component {
	swap := opts.Swap
	if swap == "" {
		swap = SwapOuter
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		open := fmt.Sprintf(`<div hx-get="%s" hx-trigger="%s" hx-swap="%s"`,
			html.EscapeString(url), html.EscapeString(opts.Trigger), swap)
		if opts.Target != "" {
			open += fmt.Sprintf(` hx-target="%s"`, html.EscapeString(opts.Target))
		}
		if _, err := io.WriteString(w, open+">"); err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
