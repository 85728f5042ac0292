package lazyroute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderIdentity(t *testing.T) {
	fn := func(context.Context) (any, error) { return 1, nil }
	a := NewLoader("a", fn)
	b := NewLoader("a", fn)

	assert.NotSame(t, a, b, "each NewLoader is a distinct identity")
	assert.Equal(t, "a", a.Name())
	assert.Equal(t, "", (*Loader)(nil).Name())
}

func TestStatic(t *testing.T) {
	v, err := Static("s", "payload").load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "payload", v)
}

func TestUnwrapModule(t *testing.T) {
	assert.Equal(t, "x", unwrapModule(Module{Default: "x"}))
	assert.Equal(t, "bare", unwrapModule("bare"))
	assert.Nil(t, unwrapModule(nil))

	// Zero values are real defaults; only nil means absent.
	assert.Equal(t, "", unwrapModule(Module{Default: ""}))
	assert.Equal(t, 0, unwrapModule(Module{Default: 0}))
	assert.Equal(t, false, unwrapModule(Module{Default: false}))

	m := Module{Exports: map[string]any{"a": 1}}
	assert.Equal(t, m, unwrapModule(m))
}

func TestDeferred(t *testing.T) {
	d := NewDeferred("d")
	assert.Same(t, d.Loader(), d.Loader())

	done := make(chan any, 1)
	go func() {
		v, _ := d.Loader().load(context.Background())
		done <- v
	}()

	<-d.Started()
	assert.Equal(t, 1, d.Calls())
	d.Resolve("ok")
	assert.Equal(t, "ok", <-done)
}
