package lazyroute

// SwapMode defines HTMX swap strategies for how a loaded view replaces its
// placeholder.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

const (
	// SwapOuter replaces the placeholder element itself (outerHTML).
	// This is the default for lazy placeholders.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the placeholder's contents (innerHTML).
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends the loaded view inside the target.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterBegin prepends the loaded view inside the target.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapNone discards the response. Useful when the route only redirects.
	SwapNone SwapMode = "none"
)
