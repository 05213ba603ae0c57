// Package telemetry persists agent events to a store in batches.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/hostile/internal/db"
	"github.com/udisondev/hostile/internal/event"
)

// Defaults for zero Config fields.
const (
	DefaultBufferSize    = 4096
	DefaultBatchSize     = 256
	DefaultFlushInterval = time.Second
	shutdownTimeout      = 5 * time.Second
)

// Store persists event records.
type Store interface {
	InsertEvents(ctx context.Context, records []db.EventRecord) error
}

// Config configures buffering of the recorder.
type Config struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// Recorder receives events from the bus without blocking publishers and
// writes them to the store from its own goroutine. Events that do not fit
// into the buffer are dropped and counted.
type Recorder struct {
	store Store
	runID string
	cfg   Config
	ch    chan db.EventRecord

	received atomic.Uint64
	dropped  atomic.Uint64
	stored   atomic.Uint64
	failed   atomic.Uint64
}

// NewRecorder creates a recorder tagging every record with runID.
func NewRecorder(store Store, runID string, cfg Config) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	return &Recorder{
		store: store,
		runID: runID,
		cfg:   cfg,
		ch:    make(chan db.EventRecord, cfg.BufferSize),
	}
}

// Attach subscribes the recorder to every event of bus.
func (r *Recorder) Attach(bus *event.Bus) (detach func()) {
	return bus.SubscribeAll(r.Handle)
}

// Handle enqueues e. Never blocks.
func (r *Recorder) Handle(e event.Event) {
	r.received.Add(1)

	env := event.Encode(e)
	payload, err := json.Marshal(env.Payload)
	if err != nil {
		r.dropped.Add(1)
		slog.Warn("encoding event payload", "kind", env.Kind, "error", err)
		return
	}

	rec := db.EventRecord{
		RunID:      r.runID,
		Kind:       env.Kind,
		AgentID:    env.AgentID,
		SimTime:    env.SimTime,
		Payload:    payload,
		RecordedAt: time.Now(),
	}
	select {
	case r.ch <- rec:
	default:
		r.dropped.Add(1)
	}
}

// Run writes buffered events until ctx is canceled, then flushes what is
// left with a bounded timeout.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]db.EventRecord, 0, r.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			batch = r.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			r.flush(flushCtx, batch)
			cancel()
			slog.Info("telemetry recorder stopped",
				"stored", r.stored.Load(),
				"dropped", r.dropped.Load(),
				"failed", r.failed.Load())
			return nil

		case rec := <-r.ch:
			batch = append(batch, rec)
			if len(batch) >= r.cfg.BatchSize {
				batch = r.flush(ctx, batch)
			}

		case <-ticker.C:
			batch = r.flush(ctx, batch)
		}
	}
}

// drain moves everything buffered into batch.
func (r *Recorder) drain(batch []db.EventRecord) []db.EventRecord {
	for {
		select {
		case rec := <-r.ch:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

// flush writes batch and returns it emptied. Failed batches are discarded.
func (r *Recorder) flush(ctx context.Context, batch []db.EventRecord) []db.EventRecord {
	if len(batch) == 0 {
		return batch
	}
	if err := r.store.InsertEvents(ctx, batch); err != nil {
		r.failed.Add(uint64(len(batch)))
		slog.Error("flushing telemetry batch", "count", len(batch), "error", err)
	} else {
		r.stored.Add(uint64(len(batch)))
	}
	return batch[:0]
}

// Stats reports recorder counters.
type Stats struct {
	Received uint64
	Dropped  uint64
	Stored   uint64
	Failed   uint64
}

// Stats returns a snapshot of the counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Received: r.received.Load(),
		Dropped:  r.dropped.Load(),
		Stored:   r.stored.Load(),
		Failed:   r.failed.Load(),
	}
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("received=%d stored=%d dropped=%d failed=%d", s.Received, s.Stored, s.Dropped, s.Failed)
}
