package lazyroute

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// StateParam is the query parameter carrying sealed navigation state.
const StateParam = "_s"

// hxLocation is the JSON form of the HX-Location response header.
type hxLocation struct {
	Path   string            `json:"path"`
	Values map[string]string `json:"values,omitempty"`
}

// Navigate sends the client to loc.
//
// HTMX requests get an HX-Location header (client-side navigation with a
// history entry); other requests get a 302. A non-empty loc.State is sealed
// with codec and travels in the StateParam parameter, where StateFrom and
// ReferrerFrom recover it.
func Navigate(w http.ResponseWriter, r *http.Request, loc Location, codec *Codec) error {
	var token string
	if len(loc.State) > 0 && codec != nil {
		t, err := codec.Encode(loc.State)
		if err != nil {
			return fmt.Errorf("lazyroute: seal state: %w", err)
		}
		token = t
	}

	if IsHTMX(r) {
		hl := hxLocation{Path: loc.String()}
		if token != "" {
			hl.Values = map[string]string{StateParam: token}
		}
		data, err := json.Marshal(hl)
		if err != nil {
			return fmt.Errorf("lazyroute: encode HX-Location: %w", err)
		}
		w.Header().Set("HX-Location", string(data))
		// HTMX only acts on the header for 2xx responses.
		w.WriteHeader(http.StatusOK)
		return nil
	}

	target := loc.String()
	if token != "" {
		u, err := url.Parse(target)
		if err != nil {
			return fmt.Errorf("lazyroute: redirect target %q: %w", target, err)
		}
		q := u.Query()
		q.Set(StateParam, token)
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

// StateFrom recovers the navigation state sealed by Navigate.
// It returns ErrNoReferrer when the request carries none.
func StateFrom(r *http.Request, codec *Codec) (map[string]any, error) {
	token := r.URL.Query().Get(StateParam)
	if token == "" {
		return nil, ErrNoReferrer
	}
	var state map[string]any
	if err := codec.Decode(token, &state); err != nil {
		return nil, wrapCodecError(err)
	}
	return state, nil
}

// ReferrerFrom recovers the location a redirect was issued from, as stored
// by BuildRedirect under ReferrerKey.
//
//	func loginPage(w http.ResponseWriter, r *http.Request) {
//	    back := "/"
//	    if from, err := lazyroute.ReferrerFrom(r, codec); err == nil {
//	        back = from.String()
//	    }
//	    ...
//	}
func ReferrerFrom(r *http.Request, codec *Codec) (Location, error) {
	token := r.URL.Query().Get(StateParam)
	if token == "" {
		return Location{}, ErrNoReferrer
	}
	var state struct {
		From *Location `msgpack:"from"`
	}
	if err := codec.Decode(token, &state); err != nil {
		return Location{}, wrapCodecError(err)
	}
	if state.From == nil {
		return Location{}, ErrNoReferrer
	}
	return *state.From, nil
}
