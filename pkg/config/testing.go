package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetFlagForTest overrides the named flag for the duration of the test. The
// flag must already be defined; the previous value comes back at cleanup, so
// tests cannot leak configuration into each other.
func SetFlagForTest(t *testing.T, name, value string) {
	t.Helper()
	target := flag.Lookup(name)
	require.NotNilf(t, target, "flag %q is not defined", name)
	previous := target.Value.String()
	require.NoError(t, flag.Set(name, value))
	t.Cleanup(func() { require.NoError(t, flag.Set(name, previous)) })
}
