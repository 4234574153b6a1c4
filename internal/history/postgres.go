package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/partsignal/sourcing-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
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
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS part_history (
	id          TEXT PRIMARY KEY,
	part_number TEXT NOT NULL,
	supplier    TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	stock       BIGINT NOT NULL DEFAULT 0,
	risk_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_part_history_part ON part_history(part_number, recorded_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, sample model.HistorySample) error {
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO part_history (id, part_number, supplier, price, stock, risk_score, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sample.ID, sample.PartNumber, sample.Supplier, sample.Price, sample.Stock, sample.RiskScore, sample.RecordedAt,
	)
	return eris.Wrapf(err, "postgres: append sample for %s", sample.PartNumber)
}

func (s *PostgresStore) Query(ctx context.Context, partNumber string) ([]model.HistorySample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, part_number, supplier, price, stock, risk_score, recorded_at
		 FROM part_history WHERE part_number = $1 ORDER BY recorded_at ASC`,
		partNumber,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query history for %s", partNumber)
	}
	defer rows.Close()

	var samples []model.HistorySample
	for rows.Next() {
		var h model.HistorySample
		if err := rows.Scan(&h.ID, &h.PartNumber, &h.Supplier, &h.Price, &h.Stock, &h.RiskScore, &h.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sample")
		}
		samples = append(samples, h)
	}
	return samples, eris.Wrap(rows.Err(), "postgres: iterate history")
}

func (s *PostgresStore) Latest(ctx context.Context, partNumber string) (*model.HistorySample, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, part_number, supplier, price, stock, risk_score, recorded_at
		 FROM part_history WHERE part_number = $1 ORDER BY recorded_at DESC LIMIT 1`,
		partNumber,
	)

	var h model.HistorySample
	err := row.Scan(&h.ID, &h.PartNumber, &h.Supplier, &h.Price, &h.Stock, &h.RiskScore, &h.RecordedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest sample for %s", partNumber)
	}
	return &h, nil
}
