package lazyroute

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/a-h/templ"
)

func TestIsHTMX(t *testing.T) {
	tests := []struct {
		name   string
		header string
		expect bool
	}{
		{"with HX-Request true", "true", true},
		{"with HX-Request false", "false", false},
		{"without header", "", false},
		{"with other value", "yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Request", tt.header)
			}

			result := IsHTMX(req)
			if result != tt.expect {
				t.Errorf("IsHTMX() = %v, want %v", result, tt.expect)
			}
		})
	}
}

func TestIsBoosted(t *testing.T) {
	tests := []struct {
		name   string
		header string
		expect bool
	}{
		{"with HX-Boosted true", "true", true},
		{"with HX-Boosted false", "false", false},
		{"without header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Boosted", tt.header)
			}

			result := IsBoosted(req)
			if result != tt.expect {
				t.Errorf("IsBoosted() = %v, want %v", result, tt.expect)
			}
		})
	}
}

func TestCurrentURL(t *testing.T) {
	tests := []struct {
		name   string
		header string
		expect string
	}{
		{"with URL", "http://example.com/page", "http://example.com/page"},
		{"without header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Current-URL", tt.header)
			}

			result := CurrentURL(req)
			if result != tt.expect {
				t.Errorf("CurrentURL() = %q, want %q", result, tt.expect)
			}
		})
	}
}

func TestRenderHelper(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hi</p>")
		return err
	})
	if err := Render(rec, req, comp); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	if rec.Body.String() != "<p>hi</p>" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "<p>hi</p>")
	}
}

func TestLocationFromURL(t *testing.T) {
	tests := []struct {
		raw    string
		expect Location
	}{
		{"/a", Location{Pathname: "/a"}},
		{"/a?x=1", Location{Pathname: "/a", Search: "?x=1"}},
		{"/a?x=1#top", Location{Pathname: "/a", Search: "?x=1", Hash: "#top"}},
		{"http://example.com", Location{Pathname: "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatalf("url.Parse: %v", err)
			}
			got := LocationFromURL(u)
			if got.Pathname != tt.expect.Pathname || got.Search != tt.expect.Search || got.Hash != tt.expect.Hash {
				t.Errorf("LocationFromURL(%q) = %+v, want %+v", tt.raw, got, tt.expect)
			}
			if got.String() != tt.expect.String() {
				t.Errorf("String() = %q, want %q", got.String(), tt.expect.String())
			}
		})
	}
}

func TestPropsFromRequest(t *testing.T) {
	t.Run("plain request uses request URL", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports?year=2024", nil)
		props := PropsFromRequest(req, map[string]string{"id": "7"})

		if props.Location.Pathname != "/reports" || props.Location.Search != "?year=2024" {
			t.Errorf("Location = %+v, want /reports?year=2024", props.Location)
		}
		if props.Param("id") != "7" {
			t.Errorf("Param(id) = %q, want %q", props.Param("id"), "7")
		}
		if props.Param("missing") != "" {
			t.Errorf("Param(missing) = %q, want empty", props.Param("missing"))
		}
		if props.Request != req {
			t.Error("Request not forwarded")
		}
	})

	t.Run("HTMX request uses current browser URL", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/_partial/admin", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Current-URL", "http://example.com/dashboard?tab=2")

		props := PropsFromRequest(req, nil)
		if props.Location.String() != "/dashboard?tab=2" {
			t.Errorf("Location = %q, want %q", props.Location.String(), "/dashboard?tab=2")
		}
	})
}
