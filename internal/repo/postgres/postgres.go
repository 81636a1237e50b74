package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/campusnet/internal/domain"
	"github.com/hamed0406/campusnet/internal/repo"
)

var _ repo.AttemptStore = (*Store)(nil)

// Schema is applied by New; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS session_attempts (
  id          TEXT PRIMARY KEY,
  action      TEXT NOT NULL,
  outcome     TEXT NOT NULL,
  rounds      INTEGER NOT NULL,
  error       TEXT NOT NULL DEFAULT '',
  started_at  TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_attempts_started ON session_attempts (started_at DESC);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("postgres_ready")
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Append(ctx context.Context, a *domain.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	if a.FinishedAt.IsZero() {
		a.FinishedAt = a.StartedAt
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_attempts
		   (id, action, outcome, rounds, error, started_at, finished_at)
		 VALUES
		   ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, string(a.Action), string(a.Outcome), a.Rounds, a.Error, a.StartedAt, a.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]domain.Attempt, error) {
	q := `SELECT id, action, outcome, rounds, error, started_at, finished_at
	        FROM session_attempts
	       ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Latest(ctx context.Context) (*domain.Attempt, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, action, outcome, rounds, error, started_at, finished_at
		   FROM session_attempts
		  ORDER BY started_at DESC, id DESC
		  LIMIT 1`)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var (
		a               domain.Attempt
		action, outcome string
	)
	if err := row.Scan(&a.ID, &action, &outcome, &a.Rounds, &a.Error, &a.StartedAt, &a.FinishedAt); err != nil {
		return domain.Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.Action = domain.Action(action)
	a.Outcome = domain.Outcome(outcome)
	return a, nil
}
