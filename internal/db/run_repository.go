package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AgentSummary is the end-of-run state of one agent.
type AgentSummary struct {
	AgentID    uint32
	Name       string
	FinalState string
	Health     float64
	Shots      int
	Hits       int
	SimTime    float64
}

// RunRepository stores per-run agent summaries.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a repository over pool.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveSummaries upserts summaries of a run in a single transaction.
func (r *RunRepository) SaveSummaries(ctx context.Context, runID string, summaries []AgentSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, s := range summaries {
		batch.Queue(
			`INSERT INTO agent_runs
			 (run_id, agent_id, name, final_state, health, shots, hits, sim_time)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 ON CONFLICT (run_id, agent_id) DO UPDATE SET
			  name=$3, final_state=$4, health=$5, shots=$6, hits=$7, sim_time=$8`,
			runID, int64(s.AgentID), s.Name, s.FinalState, s.Health, s.Shots, s.Hits, s.SimTime,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range summaries {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("save agent summary batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close summary batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %q: %w", runID, err)
	}
	return nil
}

// Summaries returns summaries of a run ordered by agent ID.
func (r *RunRepository) Summaries(ctx context.Context, runID string) ([]AgentSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT agent_id, name, final_state, health, shots, hits, sim_time
		 FROM agent_runs WHERE run_id = $1 ORDER BY agent_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run %q: %w", runID, err)
	}
	defer rows.Close()

	var out []AgentSummary
	for rows.Next() {
		var (
			s  AgentSummary
			id int64
		)
		if err := rows.Scan(&id, &s.Name, &s.FinalState, &s.Health, &s.Shots, &s.Hits, &s.SimTime); err != nil {
			return nil, fmt.Errorf("scanning run %q: %w", runID, err)
		}
		s.AgentID = uint32(id)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run %q: %w", runID, err)
	}
	return out, nil
}
