package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
)

// Register inserts a particle with status Pending. A (parent, last
// segment) collision fails with registry.ErrDupe unless reg.Strategy is
// registry.Ensure, in which case the existing record is left untouched.
func (d *DB) Register(reg registry.Registration) error {
	lastSeg, ok := reg.Point.LastSegment()
	if !ok {
		return fmt.Errorf("sqlstore: register: point %q has no segments", reg.Point.String())
	}
	rendered := reg.Point.String()
	parent := parentString(reg.Point)
	segKey := segmentKey(lastSeg)
	segJSON, err := encodeSegments(reg.Point.Segments)
	if err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRow(`SELECT id FROM particles WHERE parent = ? AND point_segment = ?`, parent, segKey).Scan(&existing)
	switch {
	case err == nil:
		if reg.Strategy == registry.Ensure {
			return nil
		}
		return registry.ErrDupe
	case err != sql.ErrNoRows:
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO particles (point, parent, point_segment, segments_json, kind_discriminant, kind_sub, status, owner, sequence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		rendered, parent, segKey, segJSON,
		string(reg.Kind.Discriminant), reg.Kind.Sub, int(registry.Pending), reg.Owner, time.Now().Unix(),
	)
	if err != nil {
		return err
	}

	for key, prop := range reg.Properties {
		if _, err := tx.Exec(
			`INSERT INTO properties (point, key, value, locked) VALUES (?, ?, ?, ?)`,
			rendered, key, prop.Value, prop.Locked,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AssignStar sets location.star for point.
func (d *DB) AssignStar(p point.Point, star point.Point) error {
	segJSON, err := encodeSegments(star.Segments)
	if err != nil {
		return err
	}
	return d.updateOne(`UPDATE particles SET star_segments = ? WHERE point = ?`, segJSON, p.String())
}

// AssignHost sets location.host for point.
func (d *DB) AssignHost(p point.Point, host point.Point) error {
	segJSON, err := encodeSegments(host.Segments)
	if err != nil {
		return err
	}
	return d.updateOne(`UPDATE particles SET host_segments = ? WHERE point = ?`, segJSON, p.String())
}

// SetStatus transitions a particle's status.
func (d *DB) SetStatus(p point.Point, status registry.Status) error {
	return d.updateOne(`UPDATE particles SET status = ? WHERE point = ?`, int(status), p.String())
}

func (d *DB) updateOne(query string, args ...any) error {
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return registry.ErrNotFound
	}
	return nil
}

// SetProperties applies property mods. Any key whose existing stored
// entry is locked rejects the whole call with registry.ErrLocked before
// any write is applied.
func (d *DB) SetProperties(p point.Point, props map[string]registry.Property) error {
	rendered := p.String()

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key := range props {
		var locked bool
		err := tx.QueryRow(`SELECT locked FROM properties WHERE point = ? AND key = ?`, rendered, key).Scan(&locked)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == nil && locked {
			return registry.ErrLocked
		}
	}

	for key, prop := range props {
		if _, err := tx.Exec(
			`INSERT INTO properties (point, key, value, locked) VALUES (?, ?, ?, ?)
			 ON CONFLICT(point, key) DO UPDATE SET value = excluded.value, locked = excluded.locked`,
			rendered, key, prop.Value, prop.Locked,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetProperties returns point's full property map.
func (d *DB) GetProperties(p point.Point) (map[string]registry.Property, error) {
	rows, err := d.db.Query(`SELECT key, value, locked FROM properties WHERE point = ?`, p.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := make(map[string]registry.Property)
	for rows.Next() {
		var key, value string
		var locked bool
		if err := rows.Scan(&key, &value, &locked); err != nil {
			return nil, err
		}
		props[key] = registry.Property{Value: value, Locked: locked}
	}
	return props, rows.Err()
}

// Sequence atomically increments and returns point's monotonic counter.
// The underlying connection pool's single-writer serialization (see
// Open) is what makes this strictly increasing under concurrent access.
func (d *DB) Sequence(p point.Point) (int64, error) {
	rendered := p.String()

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE particles SET sequence = sequence + 1 WHERE point = ?`, rendered)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, registry.ErrNotFound
	}

	var seq int64
	if err := tx.QueryRow(`SELECT sequence FROM particles WHERE point = ?`, rendered).Scan(&seq); err != nil {
		return 0, err
	}

	return seq, tx.Commit()
}

// Record returns point's full joined ParticleRecord.
func (d *DB) Record(p point.Point) (registry.ParticleRecord, error) {
	row := d.db.QueryRow(
		`SELECT segments_json, kind_discriminant, kind_sub, status, owner, star_segments, host_segments
		 FROM particles WHERE point = ?`, p.String(),
	)

	var segJSON, kindDisc, kindSub, owner string
	var status int
	var starSeg, hostSeg sql.NullString
	if err := row.Scan(&segJSON, &kindDisc, &kindSub, &status, &owner, &starSeg, &hostSeg); err != nil {
		if err == sql.ErrNoRows {
			return registry.ParticleRecord{}, registry.ErrNotFound
		}
		return registry.ParticleRecord{}, err
	}

	segs, err := decodeSegments(segJSON)
	if err != nil {
		return registry.ParticleRecord{}, err
	}

	stub := registry.ParticleStub{
		Point:  pointFromSegments(segs),
		Kind:   point.Kind{Discriminant: point.Discriminant(kindDisc), Sub: kindSub},
		Status: registry.Status(status),
		Owner:  owner,
	}

	var loc registry.Location
	if starSeg.Valid {
		segs, err := decodeSegments(starSeg.String)
		if err != nil {
			return registry.ParticleRecord{}, err
		}
		starPt := pointFromSegments(segs)
		loc.Star = &starPt
	}
	if hostSeg.Valid {
		segs, err := decodeSegments(hostSeg.String)
		if err != nil {
			return registry.ParticleRecord{}, err
		}
		hostPt := pointFromSegments(segs)
		loc.Host = &hostPt
	}

	props, err := d.GetProperties(p)
	if err != nil {
		return registry.ParticleRecord{}, err
	}

	return registry.ParticleRecord{Stub: stub, Location: loc, Properties: props}, nil
}
