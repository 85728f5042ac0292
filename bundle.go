package lazyroute

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// RenderFunc turns a bundle's current pair into an Output. The error comes
// first; at most one of err and value is non-nil.
type RenderFunc func(err error, value any) Output

// Bundle owns one lazily loaded module and its load state.
//
// A bundle starts loading as soon as it is created and again every time
// Update is handed a different *Loader. Results from loads that have since
// been superseded, or that arrive after Dispose, are dropped without
// touching the state. Loads are never retried or cancelled: a new attempt
// needs a new loader, and a stalled loader leaves the bundle Pending.
type Bundle struct {
	id  string
	ctx context.Context
	log *slog.Logger

	mu       sync.Mutex
	loader   *Loader
	gen      uint64
	snap     Snapshot
	settled  chan struct{} // closed once generation gen settles or is superseded
	done     chan struct{}
	disposed bool
}

// BundleOption configures a Bundle.
type BundleOption func(*Bundle)

// WithBundleLogger sets the logger used for load transitions.
func WithBundleLogger(l *slog.Logger) BundleOption {
	return func(b *Bundle) {
		if l != nil {
			b.log = l
		}
	}
}

// WithBundleID overrides the generated bundle ID used in logs.
func WithBundleID(id string) BundleOption {
	return func(b *Bundle) {
		if id != "" {
			b.id = id
		}
	}
}

// NewBundle mounts a bundle and starts loading l. ctx is handed to every
// load function and should outlive individual requests.
//
// Panics with a *ConfigError if l is nil or has no load function.
func NewBundle(ctx context.Context, l *Loader, opts ...BundleOption) *Bundle {
	b := &Bundle{
		id:   uuid.NewString(),
		ctx:  ctx,
		log:  slog.Default(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With(slog.String("bundle", b.id))

	b.Update(l)
	return b
}

// ID returns the bundle's identifier.
func (b *Bundle) ID() string {
	return b.id
}

// Loader returns the loader of the current generation.
func (b *Bundle) Loader() *Loader {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loader
}

// Update hands the bundle a loader. If l is the loader already in use,
// nothing happens. Otherwise the state becomes Pending before Update
// returns and l is invoked. Reports whether a load was started; a disposed
// bundle never starts one.
//
// Panics with a *ConfigError if l is nil or has no load function.
func (b *Bundle) Update(l *Loader) bool {
	if !l.valid() {
		panic(&ConfigError{Err: ErrNoLoader})
	}

	b.mu.Lock()
	if b.disposed || l == b.loader {
		b.mu.Unlock()
		return false
	}

	// The superseded load will never settle its channel; release its waiters.
	if b.snap.State == Pending && b.settled != nil {
		close(b.settled)
	}

	b.loader = l
	b.gen++
	gen := b.gen
	settled := make(chan struct{})
	b.settled = settled
	b.snap = Snapshot{State: Pending}
	b.mu.Unlock()

	b.log.Debug("load started", slog.String("loader", l.Name()), slog.Uint64("generation", gen))
	go b.run(gen, l, settled)
	return true
}

func (b *Bundle) run(gen uint64, l *Loader, settled chan struct{}) {
	v, err := l.load(b.ctx)

	b.mu.Lock()
	if b.disposed || gen != b.gen {
		b.mu.Unlock()
		b.log.Debug("stale load discarded", slog.String("loader", l.Name()), slog.Uint64("generation", gen))
		return
	}
	if err != nil {
		b.snap = Snapshot{State: Failed, Err: err}
	} else {
		b.snap = Snapshot{State: Loaded, Value: unwrapModule(v)}
	}
	close(settled)
	b.mu.Unlock()

	if err != nil {
		b.log.Warn("load failed", slog.String("loader", l.Name()), slog.Any("error", err))
		return
	}
	b.log.Debug("load finished", slog.String("loader", l.Name()), slog.Uint64("generation", gen))
}

// Snapshot returns the current state.
func (b *Bundle) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// Render calls fn with the current (err, value) pair.
func (b *Bundle) Render(fn RenderFunc) Output {
	s := b.Snapshot()
	return fn(s.Err, s.Value)
}

// Wait blocks until the current load settles and returns the settled
// snapshot. If the loader changes while waiting, Wait follows the new one.
// It returns early with ctx.Err() when ctx ends and with ErrDisposed once
// the bundle is disposed.
func (b *Bundle) Wait(ctx context.Context) (Snapshot, error) {
	for {
		b.mu.Lock()
		snap, settled, disposed := b.snap, b.settled, b.disposed
		b.mu.Unlock()

		if disposed {
			return snap, ErrDisposed
		}
		if snap.State != Pending {
			return snap, nil
		}

		select {
		case <-settled:
		case <-b.done:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Done is closed when the bundle is disposed.
func (b *Bundle) Done() <-chan struct{} {
	return b.done
}

// Dispose unmounts the bundle. Loads still in flight run to completion but
// their results are discarded. Dispose is idempotent.
func (b *Bundle) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	b.disposed = true
	close(b.done)
}
