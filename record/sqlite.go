package record

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteIndex keeps one row per recorded episode
type SQLiteIndex struct {
	db   *sql.DB
	once sync.Once
}

var _ Sink = &SQLiteIndex{}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL,
			experiment TEXT NOT NULL,
			run INTEGER NOT NULL,
			episode INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			return REAL NOT NULL,
			deliveries INTEGER NOT NULL,
			terminal INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, experiment, run, episode)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_experiment ON episodes(experiment);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) WriteEpisode(ctx context.Context, rec EpisodeRecord, _ []StepRecord) error {
	terminal := 0
	if rec.Terminal {
		terminal = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO episodes(run_id, experiment, run, episode, steps, return, deliveries, terminal, recorded_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Experiment, rec.Run, rec.Episode, rec.Steps, rec.Return, rec.Deliveries, terminal,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Summary aggregates the episodes of an experiment over all runs
type Summary struct {
	Experiment string  `json:"experiment"`
	Episodes   int     `json:"episodes"`
	MeanReturn float64 `json:"mean_return"`
	MaxReturn  float64 `json:"max_return"`
	Deliveries int     `json:"deliveries"`
}

func (s *SQLiteIndex) Summary(ctx context.Context, experiment string) (Summary, error) {
	out := Summary{Experiment: experiment}
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(return), 0), COALESCE(MAX(return), 0), COALESCE(SUM(deliveries), 0)
		FROM episodes WHERE experiment = ?`, experiment)
	if err := row.Scan(&out.Episodes, &out.MeanReturn, &out.MaxReturn, &out.Deliveries); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// Experiments lists the recorded experiment names in order
func (s *SQLiteIndex) Experiments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT experiment FROM episodes ORDER BY experiment`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}
