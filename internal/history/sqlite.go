package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/partsignal/sourcing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS part_history (
	id          TEXT PRIMARY KEY,
	part_number TEXT NOT NULL,
	supplier    TEXT NOT NULL,
	price       REAL NOT NULL DEFAULT 0,
	stock       INTEGER NOT NULL DEFAULT 0,
	risk_score  REAL NOT NULL DEFAULT 0,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_part_history_part ON part_history(part_number, recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, sample model.HistorySample) error {
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO part_history (id, part_number, supplier, price, stock, risk_score, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sample.ID, sample.PartNumber, sample.Supplier, sample.Price, sample.Stock, sample.RiskScore, sample.RecordedAt,
	)
	return eris.Wrapf(err, "sqlite: append sample for %s", sample.PartNumber)
}

func (s *SQLiteStore) Query(ctx context.Context, partNumber string) ([]model.HistorySample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, part_number, supplier, price, stock, risk_score, recorded_at
		 FROM part_history WHERE part_number = ? ORDER BY recorded_at ASC`,
		partNumber,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query history for %s", partNumber)
	}
	defer rows.Close()

	var samples []model.HistorySample
	for rows.Next() {
		var h model.HistorySample
		if err := rows.Scan(&h.ID, &h.PartNumber, &h.Supplier, &h.Price, &h.Stock, &h.RiskScore, &h.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sample")
		}
		samples = append(samples, h)
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: iterate history")
}

func (s *SQLiteStore) Latest(ctx context.Context, partNumber string) (*model.HistorySample, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, part_number, supplier, price, stock, risk_score, recorded_at
		 FROM part_history WHERE part_number = ? ORDER BY recorded_at DESC LIMIT 1`,
		partNumber,
	)

	var h model.HistorySample
	err := row.Scan(&h.ID, &h.PartNumber, &h.Supplier, &h.Price, &h.Stock, &h.RiskScore, &h.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest sample for %s", partNumber)
	}
	return &h, nil
}
