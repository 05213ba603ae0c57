package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRecord is one stored agent event.
type EventRecord struct {
	RunID      string
	Kind       string
	AgentID    uint32
	SimTime    float64
	Payload    json.RawMessage
	RecordedAt time.Time
}

// EventRepository stores agent events.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a repository over pool.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// InsertEvents bulk-inserts records with COPY.
func (r *EventRepository) InsertEvents(ctx context.Context, records []EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		payload := rec.Payload
		if len(payload) == 0 {
			payload = json.RawMessage(`{}`)
		}
		recordedAt := rec.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now()
		}
		rows = append(rows, []any{rec.RunID, rec.Kind, int64(rec.AgentID), rec.SimTime, []byte(payload), recordedAt})
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"agent_events"},
		[]string{"run_id", "kind", "agent_id", "sim_time", "payload", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %d agent events: %w", len(records), err)
	}

	slog.Debug("stored agent events", "count", n)
	return nil
}

// RecentEvents returns the latest events of an agent, newest first.
func (r *EventRepository) RecentEvents(ctx context.Context, agentID uint32, limit int) ([]EventRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT run_id, kind, agent_id, sim_time, payload, recorded_at
		 FROM agent_events WHERE agent_id = $1
		 ORDER BY sim_time DESC, id DESC
		 LIMIT $2`,
		int64(agentID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events of agent %d: %w", agentID, err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec     EventRecord
			id      int64
			payload []byte
		)
		if err := rows.Scan(&rec.RunID, &rec.Kind, &id, &rec.SimTime, &payload, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning event of agent %d: %w", agentID, err)
		}
		rec.AgentID = uint32(id)
		rec.Payload = payload
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events of agent %d: %w", agentID, err)
	}
	return out, nil
}

// CountByKind returns number of stored events per kind for a run.
func (r *EventRepository) CountByKind(ctx context.Context, runID string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, count(*) FROM agent_events WHERE run_id = $1 GROUP BY kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("counting events of run %q: %w", runID, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			kind string
			n    int64
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning event count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event counts: %w", err)
	}
	return counts, nil
}
