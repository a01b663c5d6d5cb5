package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occupy(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln.Addr().String()
}

func TestListenWithFallback_ExplicitAddr(t *testing.T) {
	ln, err := ListenWithFallback("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = ListenWithFallback(occupy(t))
	assert.Error(t, err, "an explicit address never falls back")
}

func TestListenFirst(t *testing.T) {
	t.Run("skips taken ports", func(t *testing.T) {
		taken := occupy(t)

		ln, err := listenFirst([]string{taken, "127.0.0.1:0"})
		require.NoError(t, err)
		defer ln.Close()
		assert.NotEqual(t, taken, ln.Addr().String())
	})

	t.Run("all taken", func(t *testing.T) {
		_, err := listenFirst([]string{occupy(t), occupy(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all fallback ports are in use")
	})

	t.Run("nothing to try", func(t *testing.T) {
		_, err := listenFirst(nil)
		assert.Error(t, err)
	})
}
