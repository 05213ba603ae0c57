package ai

import (
	"io"
	"log/slog"
	"testing"

	"github.com/udisondev/hostile/internal/model"
)

// benchmarkShots measures Combat.Fire with the debug guard set to enabled.
func benchmarkShots(b *testing.B, enabled bool) {
	prevLogger := slog.Default()
	prevEnabled := IsDebugEnabled()
	b.Cleanup(func() {
		slog.SetDefault(prevLogger)
		EnableDebugLogging(prevEnabled)
	})
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})))
	EnableDebugLogging(enabled)

	w := preciseWeapon()
	w.MagazineSize = b.N + 1
	w.FireRate = 1000
	c := NewCombat(newTestAgent(), w, nil, nil, nil, nil, nil)
	target := model.V3(0, 0, 10)

	b.ResetTimer()
	for range b.N {
		c.Update(0.01)
		c.Fire(target)
	}
}

func BenchmarkCombatFire_DebugOff(b *testing.B) {
	benchmarkShots(b, false)
}

func BenchmarkCombatFire_DebugOn(b *testing.B) {
	benchmarkShots(b, true)
}

func BenchmarkIsDebugEnabled(b *testing.B) {
	for range b.N {
		_ = IsDebugEnabled()
	}
}
