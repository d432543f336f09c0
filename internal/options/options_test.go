package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	value int
	name  string
}

func TestApply(t *testing.T) {
	cfg := &testConfig{}
	err := Apply(cfg,
		NoError(func(c *testConfig) { c.value = 42 }),
		NoError(func(c *testConfig) { c.name = "spool" }),
	)
	require.NoError(t, err)
	require.Equal(t, 42, cfg.value)
	require.Equal(t, "spool", cfg.name)
}

func TestApplyStopsOnError(t *testing.T) {
	boom := errors.New("boom")

	cfg := &testConfig{}
	err := Apply(cfg,
		New(func(c *testConfig) error { return boom }),
		NoError(func(c *testConfig) { c.value = 1 }),
	)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, cfg.value)
}
