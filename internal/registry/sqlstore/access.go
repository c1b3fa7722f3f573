package sqlstore

import (
	"database/sql"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
)

// Grant inserts or updates an access grant.
func (d *DB) Grant(grant registry.AccessGrant) error {
	segJSON, err := encodeSegments(grant.On.Segments)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		`INSERT INTO access_grants (id, on_point, on_segments, to_key, or_mask, and_mask, has_and)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			on_point = excluded.on_point, on_segments = excluded.on_segments, to_key = excluded.to_key,
			or_mask = excluded.or_mask, and_mask = excluded.and_mask, has_and = excluded.has_and`,
		grant.ID, grant.On.String(), segJSON, grant.To,
		uint32(grant.Mask.Or), uint32(grant.Mask.And), grant.Mask.HasAnd,
	)
	return err
}

// RemoveAccess deletes the grant with the given id held by to.
func (d *DB) RemoveAccess(id string, to string) error {
	return d.updateOne(`DELETE FROM access_grants WHERE id = ? AND to_key = ?`, id, to)
}

// Chown reassigns a particle's owner.
func (d *DB) Chown(p point.Point, newOwner string) error {
	return d.updateOne(`UPDATE particles SET owner = ? WHERE point = ?`, newOwner, p.String())
}

// ListAccess returns every grant recorded directly on on (not including
// grants inherited from ancestors).
func (d *DB) ListAccess(on point.Point) ([]registry.AccessGrant, error) {
	rows, err := d.db.Query(
		`SELECT id, on_segments, to_key, or_mask, and_mask, has_and FROM access_grants WHERE on_point = ? ORDER BY id`,
		on.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []registry.AccessGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func scanGrant(s scanner) (registry.AccessGrant, error) {
	var id, onSeg, to string
	var orMask, andMask uint32
	var hasAnd bool
	if err := s.Scan(&id, &onSeg, &to, &orMask, &andMask, &hasAnd); err != nil {
		return registry.AccessGrant{}, err
	}
	segs, err := decodeSegments(onSeg)
	if err != nil {
		return registry.AccessGrant{}, err
	}
	return registry.AccessGrant{
		ID: id, On: pointFromSegments(segs), To: to,
		Mask: registry.PermissionsMask{Or: registry.Permission(orMask), And: registry.Permission(andMask), HasAnd: hasAnd},
	}, nil
}

// Access computes to's Access over on (spec.md §4.9): hyperuser always
// resolves to Super (or SuperOwner if it also owns on), an owner
// resolves to Owner, and otherwise every applicable grant from on up to
// the root is composed per registry.ComposeGrants.
func (d *DB) Access(to string, on point.Point) (registry.Access, error) {
	var owner string
	err := d.db.QueryRow(`SELECT owner FROM particles WHERE point = ?`, on.String()).Scan(&owner)
	if err == sql.ErrNoRows {
		return registry.Access{}, registry.ErrNotFound
	}
	if err != nil {
		return registry.Access{}, err
	}

	if to == registry.HyperUser {
		level := registry.Super
		if owner == to {
			level = registry.SuperOwner
		}
		return registry.Access{Level: level, Permissions: registry.PermAll}, nil
	}
	if owner == to {
		return registry.Access{Level: registry.Owner, Permissions: registry.PermAll}, nil
	}

	var applicable []registry.AccessGrant
	for cur := on; ; {
		rows, err := d.db.Query(
			`SELECT id, on_segments, to_key, or_mask, and_mask, has_and FROM access_grants WHERE on_point = ? AND to_key = ?`,
			cur.String(), to,
		)
		if err != nil {
			return registry.Access{}, err
		}
		for rows.Next() {
			g, err := scanGrant(rows)
			if err != nil {
				rows.Close()
				return registry.Access{}, err
			}
			applicable = append(applicable, g)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return registry.Access{}, err
		}
		rows.Close()

		parent, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}

	// A registered particle with neither a matching grant, ownership, nor
	// hyperuser status still reports Enumerated — the caller is known to
	// the registry, just with no privileges yet (spec.md §4.9's
	// registered-but-ungranted case), distinct from None's "particle
	// doesn't exist at all" per the earlier ErrNotFound check above.
	mask := registry.ComposeGrants(applicable)
	return registry.Access{Level: registry.Enumerated, Permissions: mask}, nil
}
