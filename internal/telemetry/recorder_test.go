package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hostile/internal/db"
	"github.com/udisondev/hostile/internal/event"
	"github.com/udisondev/hostile/internal/model"
	"github.com/udisondev/hostile/internal/testutil"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]db.EventRecord
	err     error
}

func (s *fakeStore) InsertEvents(_ context.Context, records []db.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, append([]db.EventRecord(nil), records...))
	return nil
}

func (s *fakeStore) records() []db.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.EventRecord
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func (s *fakeStore) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func runRecorder(t *testing.T, r *Recorder) (stop func()) {
	t.Helper()
	ctx, cancel := testutil.ContextWithCancel(t)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("recorder did not stop")
		}
	}
}

func TestRecorder_FlushesOnBatchSize(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, "run", Config{BatchSize: 3, FlushInterval: time.Hour})
	bus := event.NewBus()
	r.Attach(bus)
	stop := runRecorder(t, r)
	defer stop()

	for i := range 3 {
		bus.Publish(event.EnemyWeaponFired{Header: event.Header{AgentID: 1, SimTime: float64(i)}})
	}

	assert.Eventually(t, func() bool { return store.batchCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	recs := store.records()
	require.Len(t, recs, 3)
	assert.Equal(t, "run", recs[0].RunID)
	assert.Equal(t, "EnemyWeaponFired", recs[0].Kind)
	assert.Equal(t, uint32(1), recs[0].AgentID)
}

func TestRecorder_FlushesOnInterval(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, "run", Config{BatchSize: 100, FlushInterval: 20 * time.Millisecond})
	stop := runRecorder(t, r)
	defer stop()

	r.Handle(event.EnemyAlerted{Header: event.Header{AgentID: 2}})

	assert.Eventually(t, func() bool { return len(store.records()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRecorder_FlushesOnShutdown(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, "run", Config{BatchSize: 100, FlushInterval: time.Hour})
	stop := runRecorder(t, r)

	r.Handle(event.EnemyStateChanged{Header: event.Header{AgentID: 4}, From: model.StateIdle, To: model.StatePatrol})
	r.Handle(event.EnemyDied{Header: event.Header{AgentID: 4}})
	stop()

	recs := store.records()
	require.Len(t, recs, 2)
	assert.JSONEq(t, `{"from":"IDLE","to":"PATROL"}`, string(recs[0].Payload))
	assert.Equal(t, uint64(2), r.Stats().Stored)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, "run", Config{BufferSize: 2})

	// Run не запущен: буфер не разгружается
	for range 5 {
		r.Handle(event.EnemyDamaged{})
	}

	stats := r.Stats()
	assert.Equal(t, uint64(5), stats.Received)
	assert.Equal(t, uint64(3), stats.Dropped)
}

func TestRecorder_StoreFailure(t *testing.T) {
	store := &fakeStore{err: testutil.ErrStoreDown}
	r := NewRecorder(store, "run", Config{BatchSize: 1, FlushInterval: time.Hour})
	stop := runRecorder(t, r)

	r.Handle(event.PlayerHit{PlayerID: 1, Amount: 10})

	assert.Eventually(t, func() bool { return r.Stats().Failed == 1 }, 2*time.Second, 10*time.Millisecond)
	stop()
	assert.Empty(t, store.records())
}
