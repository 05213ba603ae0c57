package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hostile/internal/testutil"
)

func TestEventRepository_InsertAndQuery(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewEventRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	records := []EventRecord{
		{RunID: "r1", Kind: "EnemyAlerted", AgentID: 7, SimTime: 1.0, Payload: json.RawMessage(`{"by_damage":false}`)},
		{RunID: "r1", Kind: "EnemyWeaponFired", AgentID: 7, SimTime: 2.0},
		{RunID: "r1", Kind: "EnemyWeaponFired", AgentID: 7, SimTime: 2.5},
		{RunID: "r1", Kind: "EnemyWeaponFired", AgentID: 8, SimTime: 2.5},
		{RunID: "r2", Kind: "EnemyDied", AgentID: 7, SimTime: 9.0},
	}
	require.NoError(t, repo.InsertEvents(ctx, records))

	recent, err := repo.RecentEvents(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "EnemyDied", recent[0].Kind)
	assert.Equal(t, 9.0, recent[0].SimTime)
	assert.Equal(t, 2.5, recent[1].SimTime)
	assert.False(t, recent[0].RecordedAt.IsZero())

	counts, err := repo.CountByKind(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"EnemyAlerted": 1, "EnemyWeaponFired": 3}, counts)
}

func TestEventRepository_PayloadRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewEventRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	require.NoError(t, repo.InsertEvents(ctx, []EventRecord{
		{RunID: "r1", Kind: "PlayerHit", AgentID: 3, SimTime: 4, Payload: json.RawMessage(`{"amount":10,"player_id":1}`)},
	}))

	recent, err := repo.RecentEvents(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.JSONEq(t, `{"amount":10,"player_id":1}`, string(recent[0].Payload))
}

func TestEventRepository_InsertEmpty(t *testing.T) {
	// Пустой batch не требует соединения
	repo := NewEventRepository(nil)
	assert.NoError(t, repo.InsertEvents(context.Background(), nil))
}

func TestRunRepository_SaveSummaries(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRunRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	require.NoError(t, repo.SaveSummaries(ctx, "run-a", []AgentSummary{
		{AgentID: 2, Name: "gunner", FinalState: "ATTACK", Health: 40, Shots: 12, Hits: 5, SimTime: 30},
		{AgentID: 1, Name: "grunt", FinalState: "DEAD", Health: 0, Shots: 3, Hits: 0, SimTime: 30},
	}))

	// Повторное сохранение обновляет строку
	require.NoError(t, repo.SaveSummaries(ctx, "run-a", []AgentSummary{
		{AgentID: 2, Name: "gunner", FinalState: "SEARCH", Health: 40, Shots: 14, Hits: 6, SimTime: 31},
	}))

	got, err := repo.Summaries(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].AgentID)
	assert.Equal(t, "DEAD", got[0].FinalState)
	assert.Equal(t, "SEARCH", got[1].FinalState)
	assert.Equal(t, 14, got[1].Shots)

	empty, err := repo.Summaries(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
