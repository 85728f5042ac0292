package lazyroute

import (
	"context"
	"fmt"
)

// LoadFunc produces a module value. It may block; it runs on its own
// goroutine and is never cancelled by the bundle that started it.
type LoadFunc func(ctx context.Context) (any, error)

// Loader is a load function with identity. Bundles compare loaders by
// pointer: handing the same *Loader back never triggers a reload, while a
// new *Loader (even wrapping the same function) always does. Keep loaders
// in package-level variables or struct fields, not in per-request code.
type Loader struct {
	name string
	fn   LoadFunc
}

// NewLoader creates a Loader. name is used in logs only.
func NewLoader(name string, fn LoadFunc) *Loader {
	return &Loader{name: name, fn: fn}
}

// Static creates a Loader that resolves immediately to v.
func Static(name string, v any) *Loader {
	return NewLoader(name, func(context.Context) (any, error) {
		return v, nil
	})
}

// Name returns the loader's log name.
func (l *Loader) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// valid reports whether l can be invoked.
func (l *Loader) valid() bool {
	return l != nil && l.fn != nil
}

// load invokes the load function, turning a panic into ErrLoaderPanic.
func (l *Loader) load(ctx context.Context) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v = nil
			err = fmt.Errorf("%w: %s: %v", ErrLoaderPanic, l.name, p)
		}
	}()
	return l.fn(ctx)
}

// DefaultExporter is implemented by module values that wrap their payload,
// the way a package exposes one default export among many.
type DefaultExporter interface {
	DefaultExport() any
}

// Module is a wrapped module value. A loader returning Module{Default: x}
// resolves to x for any non-nil x, zero values such as "" or 0 included.
type Module struct {
	Default any
	Exports map[string]any
}

// DefaultExport returns m.Default.
func (m Module) DefaultExport() any {
	return m.Default
}

// unwrapModule returns the default export of m when it has a non-nil one,
// and m itself otherwise. Only nil counts as an absent default: "", 0 and
// false are real exports and are returned as they are.
func unwrapModule(m any) any {
	if d, ok := m.(DefaultExporter); ok {
		if v := d.DefaultExport(); v != nil {
			return v
		}
	}
	return m
}
