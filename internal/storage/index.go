package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/fortress-finder/internal/finder"
	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Index is a SQLite index of runs and their matches, queryable by seed.
type Index struct {
	db *sql.DB
}

// IndexedMatch is a match row read back from the index.
type IndexedMatch struct {
	RunID         string
	Seed          int64
	Chunk         fortress.ChunkPos
	Center        fortress.BlockPos
	Bounds        fortress.BoundingBox
	PieceCount    int
	CrossingCount int
}

// Run is a run row read back from the index.
type Run struct {
	ID         string
	Seed       int64
	Request    finder.Request
	Cells      int
	Structures int
	Matches    int
	Failures   int
	RecordedAt time.Time
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
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
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("index pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			center_x INTEGER NOT NULL,
			center_z INTEGER NOT NULL,
			radius INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			structures INTEGER NOT NULL,
			matches INTEGER NOT NULL,
			failures INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);`,
		`CREATE TABLE IF NOT EXISTS matches (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			chunk_x INTEGER NOT NULL,
			chunk_z INTEGER NOT NULL,
			center_x INTEGER NOT NULL,
			center_y INTEGER NOT NULL,
			center_z INTEGER NOT NULL,
			min_x INTEGER NOT NULL,
			min_y INTEGER NOT NULL,
			min_z INTEGER NOT NULL,
			max_x INTEGER NOT NULL,
			max_y INTEGER NOT NULL,
			max_z INTEGER NOT NULL,
			pieces INTEGER NOT NULL,
			crossings INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_seed ON matches(seed, chunk_x, chunk_z);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("index schema: %w", err)
		}
	}
	return nil
}

// RecordRun stores res and its matches under runID in one transaction.
func (x *Index) RecordRun(ctx context.Context, runID string, res *finder.Result) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	req := res.Request
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, seed, center_x, center_z, radius, cells, structures, matches, failures, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.Seed, req.CenterX, req.CenterZ, req.Radius,
		res.Cells, res.Structures, len(res.Matches), len(res.Failures),
		time.Now().UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (run_id, seq, seed, chunk_x, chunk_z, center_x, center_y, center_z,
			min_x, min_y, min_z, max_x, max_y, max_z, pieces, crossings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range res.Matches {
		c, b := m.Quad.Center, m.Quad.Bounds
		if _, err := stmt.ExecContext(ctx,
			runID, i, res.Seed, m.Chunk.X, m.Chunk.Z, c.X, c.Y, c.Z,
			b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ, m.PieceCount, m.CrossingCount,
		); err != nil {
			return fmt.Errorf("insert match %d of run %s: %w", i, runID, err)
		}
	}
	return tx.Commit()
}

// MatchesForSeed returns every indexed match for seed, oldest run first.
func (x *Index) MatchesForSeed(ctx context.Context, seed int64) ([]IndexedMatch, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT m.run_id, m.seed, m.chunk_x, m.chunk_z, m.center_x, m.center_y, m.center_z,
			m.min_x, m.min_y, m.min_z, m.max_x, m.max_y, m.max_z, m.pieces, m.crossings
		 FROM matches m JOIN runs r ON r.id = m.run_id
		 WHERE m.seed = ?
		 ORDER BY r.recorded_at, m.run_id, m.seq`, seed)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []IndexedMatch
	for rows.Next() {
		var m IndexedMatch
		b := &m.Bounds
		if err := rows.Scan(&m.RunID, &m.Seed, &m.Chunk.X, &m.Chunk.Z, &m.Center.X, &m.Center.Y, &m.Center.Z,
			&b.MinX, &b.MinY, &b.MinZ, &b.MaxX, &b.MaxY, &b.MaxZ, &m.PieceCount, &m.CrossingCount); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Runs returns the recorded runs for seed, oldest first.
func (x *Index) Runs(ctx context.Context, seed int64) ([]Run, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, seed, center_x, center_z, radius, cells, structures, matches, failures, recorded_at
		 FROM runs WHERE seed = ? ORDER BY recorded_at, id`, seed)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			recorded string
		)
		if err := rows.Scan(&r.ID, &r.Seed, &r.Request.CenterX, &r.Request.CenterZ, &r.Request.Radius,
			&r.Cells, &r.Structures, &r.Matches, &r.Failures, &recorded); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Request.Seed = r.Seed
		if r.RecordedAt, err = time.Parse(timeLayout, recorded); err != nil {
			return nil, fmt.Errorf("run %s: recorded_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}
