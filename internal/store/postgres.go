package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

var prospectColumns = []string{
	"run_id", "rank", "domain", "name", "confidence", "why_good_fit", "what_they_do", "source",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	icp        JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prospects (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rank         INTEGER NOT NULL,
	domain       TEXT NOT NULL,
	name         TEXT NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	why_good_fit TEXT NOT NULL DEFAULT '',
	what_they_do TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	PRIMARY KEY (run_id, domain)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_prospects_run_rank ON prospects(run_id, rank);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, icp model.ICP) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	icpJSON, err := json.Marshal(icp)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal icp")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, icp, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, icpJSON, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		ICP:       icp,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	resultJSON, err := json.Marshal(summary(result))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, msg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, icp, status, result, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]model.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, icp, status, result, error, created_at, updated_at FROM runs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(filter.Status), listLimit(filter), max(filter.Offset, 0),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list runs")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveProspects deletes any earlier rows for the run and copies the new list
// in one transaction.
func (s *PostgresStore) SaveProspects(ctx context.Context, runID string, prospects []model.Prospect) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM prospects WHERE run_id = $1`, runID); err != nil {
		return eris.Wrapf(err, "postgres: clear prospects for run %s", runID)
	}

	rows := make([][]any, 0, len(prospects))
	for i, p := range prospects {
		rows = append(rows, []any{
			runID, i + 1, p.Domain, p.Name, p.Confidence, p.WhyGoodFit, p.WhatTheyDo, string(p.Source),
		})
	}
	if _, err := db.CopyFrom(ctx, tx, "prospects", prospectColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: save prospects for run %s", runID)
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit prospects")
}

func (s *PostgresStore) ListProspects(ctx context.Context, runID string) ([]model.Prospect, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, domain, confidence, why_good_fit, what_they_do, source
		FROM prospects WHERE run_id = $1 ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list prospects for run %s", runID)
	}
	defer rows.Close()

	out := []model.Prospect{}
	for rows.Next() {
		var p model.Prospect
		var source string
		if err := rows.Scan(&p.Name, &p.Domain, &p.Confidence, &p.WhyGoodFit, &p.WhatTheyDo, &source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan prospect")
		}
		p.Source = model.ProspectSource(source)
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list prospects iterate")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var status string
	var icpJSON, resultJSON []byte

	if err := row.Scan(&r.ID, &icpJSON, &status, &resultJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)

	if err := json.Unmarshal(icpJSON, &r.ICP); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal icp")
	}
	if resultJSON != nil {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}
