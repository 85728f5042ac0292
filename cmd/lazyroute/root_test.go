package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "lazyroute dev (unknown)\n", out.String())
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestServeFlagsFromEnv(t *testing.T) {
	t.Setenv("LAZYROUTE_ENGINE", "echo")
	t.Setenv("LAZYROUTE_DELAY", "3s")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	newServeCmd(v)

	assert.Equal(t, "echo", v.GetString("engine"))
	assert.Equal(t, 3*time.Second, v.GetDuration("delay"))
	assert.Equal(t, ":8080", v.GetString("addr"))
}

func TestServeRejectsUnknownEngine(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"serve", "--engine", "gin", "--key", "k"})

	err := root.Execute()
	assert.ErrorContains(t, err, "unknown engine")
}
