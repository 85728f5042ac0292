package lazyroute

import "context"

// maxFuncDepth bounds how many ViewFuncs may return ViewFuncs in a row.
const maxFuncDepth = 8

// DefaultErrorView is rendered for failed loads without an OnError view.
var DefaultErrorView = Element(staticElement(`<div class="lazy-route-error">`, "Couldn't load component.", `</div>`))

// Resolve picks the one output a request renders.
//
// With a load error, onError is resolved (DefaultErrorView if absent).
// Otherwise the loaded value wins, then onLoading, then nothing. Every
// view is resolved the same way: elements as is, components instantiated
// with props, functions invoked with props (their result resolved in turn),
// redirects built with BuildRedirect.
func Resolve(ctx context.Context, props Props, err error, value, onLoading, onError View) Output {
	if err != nil {
		if onError.IsZero() {
			onError = DefaultErrorView
		}
		return resolveView(ctx, onError, props, 0)
	}
	if !value.IsZero() {
		return resolveView(ctx, value, props, 0)
	}
	if !onLoading.IsZero() {
		return resolveView(ctx, onLoading, props, 0)
	}
	return Output{}
}

// ResolveValue is Resolve for a raw loaded value. A non-nil value that
// ViewOf cannot classify still counts as loaded and renders nothing; it
// never falls back to onLoading.
func ResolveValue(ctx context.Context, props Props, err error, value any, onLoading, onError View) Output {
	if err == nil && value != nil {
		return resolveView(ctx, ViewOf(value), props, 0)
	}
	return Resolve(ctx, props, err, View{}, onLoading, onError)
}

func resolveView(ctx context.Context, v View, props Props, depth int) Output {
	switch v.Kind() {
	case KindElement:
		return Rendered(v.element)
	case KindComponent:
		return Rendered(v.component.Render(ctx, props))
	case KindFunc:
		if depth >= maxFuncDepth {
			return Output{}
		}
		return resolveView(ctx, v.fn(ctx, props), props, depth+1)
	case KindRedirect:
		return Redirected(BuildRedirect(v.target, props))
	default:
		return Output{}
	}
}
