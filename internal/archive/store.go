// Package archive keeps a SQLite history of randomizer runs so a spoiler
// log can be looked up again after the patched image has been written.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xtding233/card-randomizer/internal/patch"
)

var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	seed        TEXT    NOT NULL,
	style       TEXT    NOT NULL,
	profile     TEXT    NOT NULL,
	option_log  TEXT    NOT NULL,
	spoiler_log TEXT    NOT NULL,
	patch_count INTEGER NOT NULL,
	patches     TEXT    NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// Run is one archived randomizer run.
type Run struct {
	ID         int64
	Seed       uint64
	Style      string
	Profile    string
	OptionLog  string
	SpoilerLog string
	Patches    []patch.HexEntry
	CreatedAt  time.Time
}

// Store provides SQLite-backed run history.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the archive at path, creating the schema if needed.
// ":memory:" opens a private in-memory archive.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record stores run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	run.Style = strings.TrimSpace(run.Style)
	if run.Style == "" {
		return 0, fmt.Errorf("style is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	patches, err := json.Marshal(run.Patches)
	if err != nil {
		return 0, fmt.Errorf("encode patches: %w", err)
	}

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO runs (
	seed,
	style,
	profile,
	option_log,
	spoiler_log,
	patch_count,
	patches,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		// uint64 seeds do not fit an INTEGER column
		strconv.FormatUint(run.Seed, 10),
		run.Style,
		run.Profile,
		run.OptionLog,
		run.SpoilerLog,
		len(run.Patches),
		string(patches),
		run.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit runs, newest first, without their patches.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, seed, style, profile, option_log, spoiler_log, created_at
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			seed    string
			created int64
		)
		if err := rows.Scan(&r.ID, &seed, &r.Style, &r.Profile, &r.OptionLog, &r.SpoilerLog, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("run %d seed: %w", r.ID, err)
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Get returns one run including its patches.
func (s *Store) Get(ctx context.Context, id int64) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("storage is not configured")
	}
	var (
		r       Run
		seed    string
		patches string
		created int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, seed, style, profile, option_log, spoiler_log, patches, created_at
FROM runs
WHERE id = ?
`, id).Scan(&r.ID, &seed, &r.Style, &r.Profile, &r.OptionLog, &r.SpoilerLog, &patches, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Run{}, fmt.Errorf("run %d seed: %w", id, err)
	}
	if err := json.Unmarshal([]byte(patches), &r.Patches); err != nil {
		return Run{}, fmt.Errorf("run %d patches: %w", id, err)
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	return r, nil
}
