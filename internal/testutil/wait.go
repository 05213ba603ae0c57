package testutil

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const pollInterval = 10 * time.Millisecond

// WaitForListener ждёт, пока на addr начнут принимать TCP-подключения.
// Нужен тестам stream.Hub.Run: http.Server стартует в горутине.
func WaitForListener(tb testing.TB, addr string, timeout time.Duration) {
	tb.Helper()
	require.Eventually(tb, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, timeout, pollInterval, "nothing listens on %s", addr)
}

// WaitUntil ждёт, пока cond станет true, например пока хаб не отпустит клиента.
func WaitUntil(tb testing.TB, cond func() bool, timeout time.Duration) {
	tb.Helper()
	require.Eventually(tb, cond, timeout, pollInterval)
}
