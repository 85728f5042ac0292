package lazyroute

// ReferrerKey is the Location.State key holding the originating Location.
const ReferrerKey = "from"

// BuildRedirect turns t into a navigation Location.
//
// A Target carrying a Location is returned unmodified: the caller already
// fully specified it. A path becomes Location{Pathname: path} and, unless
// t.NoReferrer, gains State{"from": props.Location}.
//
// BuildRedirect never navigates; see Navigate.
func BuildRedirect(t Target, props Props) Location {
	if t.Location != nil {
		return *t.Location
	}

	loc := Location{Pathname: t.Path}
	if !t.NoReferrer {
		loc.State = map[string]any{ReferrerKey: props.Location}
	}
	return loc
}
