package lazyroute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadView runs l synchronously and converts its value.
func loadView(t *testing.T, l *Loader) View {
	t.Helper()
	v, err := l.load(context.Background())
	require.NoError(t, err)
	return ViewOf(unwrapModule(v))
}

func TestAccessForbidden(t *testing.T) {
	tests := []struct {
		restrict, allow, expect bool
	}{
		{false, false, false},
		{false, true, false},
		{true, true, false},
		{true, false, true},
	}
	for _, tt := range tests {
		a := Access{Restrict: tt.restrict, Allow: tt.allow}
		assert.Equal(t, tt.expect, a.Forbidden(), "restrict=%v allow=%v", tt.restrict, tt.allow)
	}
}

func TestAuthorize_AllowedPassesLoaderThrough(t *testing.T) {
	render := Static("real", "module")
	props := Props{Location: Location{Pathname: "/admin"}}

	for _, a := range []Access{{}, {Restrict: true, Allow: true}} {
		got, err := Authorize(context.Background(), a, render, props)
		require.NoError(t, err)
		assert.Same(t, render, got)
	}
}

func TestAuthorize_ForbiddenNeverInvokesRealLoader(t *testing.T) {
	d := NewDeferred("real")
	a := Access{Restrict: true, Allow: false}

	got, err := Authorize(context.Background(), a, d.Loader(), Props{})
	require.NoError(t, err)
	assert.NotSame(t, d.Loader(), got)

	b := NewBundle(testContext(t), got)
	t.Cleanup(b.Dispose)
	snap := waitSettled(t, b)

	assert.Equal(t, Loaded, snap.State)
	assert.Equal(t, 0, d.Calls())
}

func TestAuthorize_ForbiddenClassification(t *testing.T) {
	props := Props{Location: Location{Pathname: "/admin"}, Params: map[string]string{"name": "ann"}}
	el := textComponent("no entry")

	t.Run("element used as is", func(t *testing.T) {
		l, err := Authorize(context.Background(), Access{Restrict: true, OnForbidden: Element(el)}, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		assert.Equal(t, KindElement, v.Kind())
		assert.Equal(t, "no entry", renderString(t, v.element))
	})

	t.Run("component used as is", func(t *testing.T) {
		l, err := Authorize(context.Background(), Access{Restrict: true, OnForbidden: Component(greeter{})}, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		assert.Equal(t, KindComponent, v.Kind())
		out := Resolve(context.Background(), props, nil, v, View{}, View{})
		assert.Equal(t, "hello ann", renderString(t, out.Component()))
	})

	t.Run("function invoked with props", func(t *testing.T) {
		var seen Props
		fn := Func(func(ctx context.Context, p Props) View {
			seen = p
			return Element(textComponent("denied for " + p.Location.Pathname))
		})
		l, err := Authorize(context.Background(), Access{Restrict: true, OnForbidden: fn}, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		assert.Equal(t, KindElement, v.Kind())
		assert.Equal(t, "denied for /admin", renderString(t, v.element))
		assert.Equal(t, "ann", seen.Param("name"))
	})

	t.Run("path delegates to BuildRedirect", func(t *testing.T) {
		l, err := Authorize(context.Background(), Access{Restrict: true, OnForbidden: Redirect("/login")}, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		require.Equal(t, KindRedirect, v.Kind())
		require.NotNil(t, v.Target().Location)
		assert.Equal(t, Location{
			Pathname: "/login",
			State:    map[string]any{"from": Location{Pathname: "/admin"}},
		}, *v.Target().Location)
	})

	t.Run("NoReferrer applies to path redirects", func(t *testing.T) {
		a := Access{Restrict: true, OnForbidden: Redirect("/login"), NoReferrer: true}
		l, err := Authorize(context.Background(), a, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		assert.Equal(t, Location{Pathname: "/login"}, *v.Target().Location)
	})

	t.Run("NoReferrer applies to redirects returned by a function", func(t *testing.T) {
		fn := Func(func(ctx context.Context, p Props) View {
			return Redirect("/login")
		})
		a := Access{Restrict: true, OnForbidden: fn, NoReferrer: true}
		l, err := Authorize(context.Background(), a, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		require.Equal(t, KindRedirect, v.Kind())
		assert.Equal(t, Location{Pathname: "/login"}, *v.Target().Location)
	})

	t.Run("function redirect carries the referrer by default", func(t *testing.T) {
		fn := Func(func(ctx context.Context, p Props) View {
			return Redirect("/login")
		})
		l, err := Authorize(context.Background(), Access{Restrict: true, OnForbidden: fn}, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		require.Equal(t, KindRedirect, v.Kind())
		assert.Equal(t, map[string]any{"from": Location{Pathname: "/admin"}}, v.Target().Location.State)
	})

	t.Run("location used unmodified", func(t *testing.T) {
		loc := Location{Pathname: "/signin", Search: "?r=1"}
		a := Access{Restrict: true, OnForbidden: RedirectLocation(loc)}
		l, err := Authorize(context.Background(), a, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		assert.Equal(t, loc, *v.Target().Location)
	})

	t.Run("absent falls back to permission denied", func(t *testing.T) {
		l, err := Authorize(context.Background(), Access{Restrict: true}, Static("real", 1), props)
		require.NoError(t, err)

		v := loadView(t, l)
		assert.Equal(t, KindElement, v.Kind())
		assert.Equal(t, `<div class="lazy-route-forbidden">Permission denied</div>`, renderString(t, v.element))
	})
}

func TestAuthorize_NilRenderIsConfigError(t *testing.T) {
	props := Props{Location: Location{Pathname: "/admin"}}

	for _, render := range []*Loader{nil, NewLoader("empty", nil)} {
		got, err := Authorize(context.Background(), Access{}, render, props)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNoLoader)
		assert.True(t, IsConfigError(err))
	}

	// Checked before the forbidden branch, never deferred into a load.
	_, err := Authorize(context.Background(), Access{Restrict: true}, nil, props)
	assert.True(t, IsConfigError(err))
}
