package example

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/pthm/lazyroute"
)

const htmxScript = `<script src="https://unpkg.com/htmx.org@2.0.4"></script>`

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title>%s</head><body><nav><a href="/">Home</a> <a href="/admin">Admin</a> <a href="/broken">Broken</a></nav><main id="main">`,
			templ.EscapeString(title), htmxScript)
		if err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Spinner is the loading placeholder shared by lazy sections.
func Spinner(label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="spinner" aria-busy="true">%s</div>`, templ.EscapeString(label))
		return err
	})
}

// IndexPage lists the reports, each embedded as a lazy section.
func IndexPage(reports []*Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Reports</h1>`); err != nil {
			return err
		}
		for i, r := range reports {
			url := "/reports/" + r.ID
			// The first report loads straight away; the rest wait until scrolled into view.
			section := lazyroute.Lazy(url, Spinner("Loading "+r.Title+"…"))
			if i == 0 {
				section = lazyroute.Defer(url, Spinner("Loading "+r.Title+"…"))
			}
			if _, err := fmt.Fprintf(w, `<section id="report-%s">`, templ.EscapeString(r.ID)); err != nil {
				return err
			}
			if err := section.Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</section>`); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReportView renders one report as a table.
func ReportView(r *Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if r == nil {
			_, err := io.WriteString(w, `<p class="empty">No such report.</p>`)
			return err
		}
		if _, err := fmt.Fprintf(w, `<article class="report"><h2>%s</h2><table>`, templ.EscapeString(r.Title)); err != nil {
			return err
		}
		for _, row := range r.Rows {
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%d</td></tr>`, templ.EscapeString(row.Label), row.Value); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<tr class="total"><td>Total</td><td>%d</td></tr></table></article>`, r.Total())
		return err
	})
}

// AdminPanel is the restricted admin view.
func AdminPanel(reports int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="admin"><h1>Admin</h1><p>%d reports configured.</p><form method="post" action="/logout"><button>Sign out</button></form></section>`, reports)
		return err
	})
}

// LoginPage offers a sign-in that returns the visitor to back.
func LoginPage(back string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>Sign in</h1><p class="referrer">You were sent here from <code>%s</code>.</p><form method="post" action="/login"><input type="hidden" name="back" value="%s"><button>Sign in as admin</button></form>`,
			templ.EscapeString(back), templ.EscapeString(back))
		return err
	})
}

// Unavailable is the error view of the broken route.
func Unavailable(name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="unavailable">%s is unavailable right now.</div>`, templ.EscapeString(name))
		return err
	})
}
