// Package sqlstore is a SQLite-backed implementation of the
// registry.Registry contract (spec.md §4.9, §6's "Registry storage"),
// grounded on the teacher's internal/infra/sqlite connection and
// migration conventions: WAL mode, a 5-second busy timeout, and a
// single-writer connection pool that itself serializes every operation,
// satisfying the contract's "internally serialized" requirement without
// an additional in-process lock.
package sqlstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
)

var storeJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// DB wraps a SQLite connection implementing registry.Registry.
type DB struct {
	db *sql.DB
}

var _ registry.Registry = (*DB)(nil)

// Open creates or opens the SQLite database at dir/registry.db, enabling
// WAL mode and a 5-second busy timeout, and runs migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create registry data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "registry.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open registry sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping registry sqlite: %w", err)
	}

	// SQLite is single-writer; this pool setting is what serializes every
	// contract operation, matching spec.md §5's "the registry is accessed
	// only through its contract (operations are internally serialized by
	// the implementation)".
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	return d, nil
}

// Close shuts the database down.
func (d *DB) Close() error { return d.db.Close() }

// Ping verifies the underlying SQLite connection is still reachable, for
// package health's periodic registry liveness probe.
func (d *DB) Ping() error { return d.db.Ping() }

func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS particles (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			point             TEXT NOT NULL UNIQUE,
			parent            TEXT NOT NULL,
			point_segment     TEXT NOT NULL,
			segments_json     TEXT NOT NULL,
			kind_discriminant TEXT NOT NULL,
			kind_sub          TEXT NOT NULL DEFAULT '',
			status            INTEGER NOT NULL,
			owner             TEXT NOT NULL DEFAULT '',
			star_segments     TEXT,
			host_segments     TEXT,
			sequence          INTEGER NOT NULL DEFAULT 0,
			created_at        INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_particles_parent_segment ON particles(parent, point_segment)`,
		`CREATE INDEX IF NOT EXISTS idx_particles_query_root ON particles(parent)`,
		`CREATE TABLE IF NOT EXISTS properties (
			point  TEXT NOT NULL,
			key    TEXT NOT NULL,
			value  TEXT NOT NULL,
			locked BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (point, key)
		)`,
		`CREATE TABLE IF NOT EXISTS access_grants (
			id           TEXT PRIMARY KEY,
			on_point     TEXT NOT NULL,
			on_segments  TEXT NOT NULL DEFAULT '',
			to_key       TEXT NOT NULL,
			or_mask      INTEGER NOT NULL DEFAULT 0,
			and_mask     INTEGER NOT NULL DEFAULT 0,
			has_and      BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_access_grants_on ON access_grants(on_point)`,
	}
	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ─── point <-> storage encoding ─────────────────────────────────────────

func encodeSegments(segs []point.Segment) (string, error) {
	data, err := storeJSON.Marshal(segs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSegments(s string) ([]point.Segment, error) {
	var segs []point.Segment
	if err := storeJSON.Unmarshal([]byte(s), &segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func pointFromSegments(segs []point.Segment) point.Point {
	return point.Point{Segments: segs}
}

func segmentKey(s point.Segment) string {
	return fmt.Sprintf("%d:%s", s.Kind, s.Value)
}

func parentString(p point.Point) string {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent.String()
}
