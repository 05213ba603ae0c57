package ai

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hostile/internal/model"
)

// captureDebugLog routes slog to a buffer at debug level for the test.
func captureDebugLog(t *testing.T, enabled bool) *bytes.Buffer {
	t.Helper()
	prevLogger := slog.Default()
	prevEnabled := IsDebugEnabled()
	t.Cleanup(func() {
		slog.SetDefault(prevLogger)
		EnableDebugLogging(prevEnabled)
	})

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	EnableDebugLogging(enabled)
	return &buf
}

func TestCombat_ShotDebugLog(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		buf := captureDebugLog(t, true)
		f := newCombatFixture(t, preciseWeapon())

		require.True(t, f.combat.Fire(model.V3(0, 0, 10)).Fired)

		out := buf.String()
		assert.Contains(t, out, `msg="agent fired"`)
		assert.Contains(t, out, "agent=grunt")
		assert.Contains(t, out, "ammo=29")
		assert.Contains(t, out, "hit=true")
	})

	t.Run("disabled", func(t *testing.T) {
		buf := captureDebugLog(t, false)
		f := newCombatFixture(t, preciseWeapon())

		require.True(t, f.combat.Fire(model.V3(0, 0, 10)).Fired)
		assert.Empty(t, buf.String(), "guard skips slog even at debug level")
	})
}

func TestAgentAI_TransitionDebugLog(t *testing.T) {
	buf := captureDebugLog(t, true)
	f := newAgentFixture(t, model.V3(0, 0, 14), nil, nil)
	f.ai.Start()

	f.step(1)

	out := buf.String()
	assert.Contains(t, out, `msg="agent state changed"`)
	assert.Contains(t, out, "from=IDLE")
	assert.Contains(t, out, "to=ALERT")
}

func TestEnableDebugLogging_ConcurrentToggle(t *testing.T) {
	prev := IsDebugEnabled()
	t.Cleanup(func() { EnableDebugLogging(prev) })

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for range 1000 {
				EnableDebugLogging(i%2 == 0)
				_ = IsDebugEnabled()
			}
		})
	}
	wg.Wait()

	EnableDebugLogging(true)
	assert.True(t, IsDebugEnabled())
	EnableDebugLogging(false)
	assert.False(t, IsDebugEnabled())
}
