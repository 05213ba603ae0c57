package testutil

import (
	"net"
	"testing"
)

// FreeAddr возвращает свободный адрес "127.0.0.1:port" для тестового сервера.
// Порт освобождается до возврата, поэтому возможна гонка с другими процессами.
func FreeAddr(t testing.TB) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve TCP port: %v", err)
	}
	addr := listener.Addr().String()
	if err := listener.Close(); err != nil {
		t.Fatalf("failed to release TCP port: %v", err)
	}
	return addr
}
