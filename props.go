package lazyroute

import (
	"net/http"
	"net/url"
)

// Location describes a navigation target or the place a request came from.
//
// State carries data that should survive the navigation without being part
// of the URL path. BuildRedirect stores the originating Location under the
// "from" key so the destination can link back.
type Location struct {
	Pathname string         `msgpack:"p" json:"pathname"`
	Search   string         `msgpack:"q,omitempty" json:"search,omitempty"`
	Hash     string         `msgpack:"h,omitempty" json:"hash,omitempty"`
	State    map[string]any `msgpack:"s,omitempty" json:"state,omitempty"`
}

// LocationFromURL builds a Location from a parsed URL. Search keeps its
// leading "?" and Hash its leading "#" when non-empty.
func LocationFromURL(u *url.URL) Location {
	loc := Location{Pathname: u.Path}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if u.RawQuery != "" {
		loc.Search = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		loc.Hash = "#" + u.Fragment
	}
	return loc
}

// String returns the path, query and fragment joined as a URL reference.
func (l Location) String() string {
	return l.Pathname + l.Search + l.Hash
}

// Props is the per-request bag handed to components and view functions.
//
// The resolution core never inspects Props beyond Location; everything
// else is forwarded untouched.
type Props struct {
	Location Location
	Params   map[string]string
	Request  *http.Request
}

// Param returns a named route parameter, or "" if absent.
func (p Props) Param(name string) string {
	return p.Params[name]
}

// PropsFromRequest builds Props for r with the given route params.
//
// For HTMX requests the browser's page URL (HX-Current-URL) is used as the
// location, since a partial fetch is not where the user actually is.
func PropsFromRequest(r *http.Request, params map[string]string) Props {
	loc := LocationFromURL(r.URL)
	if IsHTMX(r) {
		if cur := CurrentURL(r); cur != "" {
			if u, err := url.Parse(cur); err == nil {
				loc = LocationFromURL(u)
			}
		}
	}
	return Props{
		Location: loc,
		Params:   params,
		Request:  r,
	}
}
