package lazyroute

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Nothing(t *testing.T) {
	out := Resolve(context.Background(), Props{}, nil, View{}, View{}, View{})
	assert.True(t, out.IsEmpty())
	assert.Nil(t, out.Component())
	assert.False(t, out.IsRedirect())
}

func TestResolve_DefaultErrorView(t *testing.T) {
	out := Resolve(context.Background(), Props{}, errors.New("boom"), View{}, View{}, View{})
	assert.Equal(t, `<div class="lazy-route-error">Couldn&#39;t load component.</div>`, renderString(t, out.Component()))
}

func TestResolve_Precedence(t *testing.T) {
	value := Element(textComponent("value"))
	loading := Element(textComponent("loading"))
	onErr := Element(textComponent("error"))
	boom := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		value   View
		loading View
		onError View
		expect  string
	}{
		{"error beats value", boom, value, loading, onErr, "error"},
		{"value beats loading", nil, value, loading, onErr, "value"},
		{"loading when no value", nil, View{}, loading, onErr, "loading"},
		{"error view ignored without error", nil, View{}, View{}, onErr, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resolve(context.Background(), Props{}, tt.err, tt.value, tt.loading, tt.onError)
			if tt.expect == "" {
				assert.True(t, out.IsEmpty())
				return
			}
			assert.Equal(t, tt.expect, renderString(t, out.Component()))
		})
	}
}

func TestResolve_ClassificationIsSameForEveryBranch(t *testing.T) {
	props := Props{Location: Location{Pathname: "/here"}, Params: map[string]string{"name": "bo"}}
	boom := errors.New("boom")

	views := map[string]View{
		"element":   Element(textComponent("static")),
		"component": Component(greeter{}),
		"func": Func(func(ctx context.Context, p Props) View {
			return Element(textComponent("fn " + p.Location.Pathname))
		}),
	}
	expect := map[string]string{
		"element":   "static",
		"component": "hello bo",
		"func":      "fn /here",
	}

	for name, v := range views {
		t.Run(name, func(t *testing.T) {
			asValue := Resolve(context.Background(), props, nil, v, View{}, View{})
			asLoading := Resolve(context.Background(), props, nil, View{}, v, View{})
			asError := Resolve(context.Background(), props, boom, View{}, View{}, v)

			assert.Equal(t, expect[name], renderString(t, asValue.Component()))
			assert.Equal(t, expect[name], renderString(t, asLoading.Component()))
			assert.Equal(t, expect[name], renderString(t, asError.Component()))
		})
	}
}

func TestResolve_Redirect(t *testing.T) {
	props := Props{Location: Location{Pathname: "/a"}}

	out := Resolve(context.Background(), props, errors.New("boom"), View{}, View{}, Redirect("/oops"))
	loc, ok := out.Redirect()
	require.True(t, ok)
	assert.Equal(t, "/oops", loc.Pathname)
	assert.Equal(t, Location{Pathname: "/a"}, loc.State[ReferrerKey])

	out = Resolve(context.Background(), props, nil, Redirect("/next").WithoutReferrer(), View{}, View{})
	loc, ok = out.Redirect()
	require.True(t, ok)
	assert.Equal(t, Location{Pathname: "/next"}, loc)
}

func TestResolve_FuncReturningFunc(t *testing.T) {
	inner := Func(func(context.Context, Props) View { return Element(textComponent("inner")) })
	outer := Func(func(context.Context, Props) View { return inner })

	out := Resolve(context.Background(), Props{}, nil, outer, View{}, View{})
	assert.Equal(t, "inner", renderString(t, out.Component()))
}

func TestResolve_SelfReferentialFuncStops(t *testing.T) {
	var loop View
	loop = Func(func(context.Context, Props) View { return loop })

	out := Resolve(context.Background(), Props{}, nil, loop, View{}, View{})
	assert.True(t, out.IsEmpty())
}

func TestResolve_FuncReturningNothing(t *testing.T) {
	fn := Func(func(context.Context, Props) View { return View{} })

	out := Resolve(context.Background(), Props{}, nil, fn, View{}, View{})
	assert.True(t, out.IsEmpty())
}

func TestOutput_AsComponent(t *testing.T) {
	out := Rendered(textComponent("body"))
	assert.Equal(t, "body", renderString(t, out.AsComponent()))

	redirect := Redirected(Location{Pathname: "/x"})
	assert.Equal(t, "", renderString(t, redirect.AsComponent()))
	assert.False(t, redirect.IsEmpty())

	assert.True(t, Rendered(nil).IsEmpty())
}

func TestResolveValue(t *testing.T) {
	ctx := context.Background()
	loading := Element(textComponent("loading"))

	tests := []struct {
		name   string
		err    error
		value  any
		expect string
	}{
		{"pending shows loading", nil, nil, "loading"},
		{"unclassifiable value renders nothing", nil, 12345, ""},
		{"zero view value renders nothing", nil, View{}, ""},
		{"classified value", nil, Element(textComponent("v")), "v"},
		{"error wins", errors.New("boom"), nil, `<div class="lazy-route-error">Couldn&#39;t load component.</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResolveValue(ctx, Props{}, tt.err, tt.value, loading, View{})
			if tt.expect == "" {
				assert.True(t, out.IsEmpty())
				return
			}
			require.NotNil(t, out.Component())
			assert.Equal(t, tt.expect, renderString(t, out.Component()))
		})
	}
}
