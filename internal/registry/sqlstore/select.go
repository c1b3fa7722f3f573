package sqlstore

import (
	"database/sql"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
)

// matchingRow is one particle row scanned during a selection query.
type matchingRow struct {
	point  point.Point
	kind   point.Kind
	status registry.Status
	owner  string
}

// selectRows runs the hierarchical match a Select/SubSelect/Delete share:
// direct children of base if !recursive, or base itself plus every
// descendant at any depth if recursive.
func (d *DB) selectRows(base point.Point, recursive bool, kind *point.Selector) ([]matchingRow, error) {
	rendered := base.String()

	var rows *sql.Rows
	var err error
	if recursive {
		rows, err = d.db.Query(
			`SELECT segments_json, kind_discriminant, kind_sub, status, owner FROM particles
			 WHERE point = ? OR point LIKE ? ESCAPE '\'`,
			rendered, likePrefix(rendered)+"%",
		)
	} else {
		rows, err = d.db.Query(
			`SELECT segments_json, kind_discriminant, kind_sub, status, owner FROM particles WHERE parent = ?`,
			rendered,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []matchingRow
	for rows.Next() {
		var segJSON, kindDisc, kindSub, owner string
		var status int
		if err := rows.Scan(&segJSON, &kindDisc, &kindSub, &status, &owner); err != nil {
			return nil, err
		}
		segs, err := decodeSegments(segJSON)
		if err != nil {
			return nil, err
		}
		k := point.Kind{Discriminant: point.Discriminant(kindDisc), Sub: kindSub}
		if kind != nil && !kind.Matches(k) {
			continue
		}
		matches = append(matches, matchingRow{
			point:  pointFromSegments(segs),
			kind:   k,
			status: registry.Status(status),
			owner:  owner,
		})
	}
	return matches, rows.Err()
}

func likePrefix(rendered string) string {
	escaped := make([]byte, 0, len(rendered)+1)
	for i := 0; i < len(rendered); i++ {
		c := rendered[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + ":"
}

// Select hierarchically matches particles at or under sel.Pattern.
func (d *DB) Select(sel registry.Select) ([]registry.ParticleStub, error) {
	rows, err := d.selectRows(sel.Pattern, sel.Recursive, sel.Kind)
	if err != nil {
		return nil, err
	}
	stubs := make([]registry.ParticleStub, len(rows))
	for i, r := range rows {
		stubs[i] = registry.ParticleStub{Point: r.point, Kind: r.kind, Status: r.status, Owner: r.owner}
	}
	return stubs, nil
}

// SubSelect is Select's internal recursive helper, returning bare points.
func (d *DB) SubSelect(sel registry.SubSelect) ([]point.Point, error) {
	rows, err := d.selectRows(sel.Parent, sel.Recursive, sel.Kind)
	if err != nil {
		return nil, err
	}
	points := make([]point.Point, len(rows))
	for i, r := range rows {
		points[i] = r.point
	}
	return points, nil
}

// QueryPointHierarchy returns the root-to-point kind path: Kinds[0] is
// p's top-level ancestor's kind, Kinds[len-1] is p's own kind.
func (d *DB) QueryPointHierarchy(p point.Point) (registry.PointHierarchy, error) {
	var chain []point.Point
	for cur := p; ; {
		chain = append(chain, cur)
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}
	// chain is leaf-to-root; reverse to root-to-leaf.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	kinds := make([]point.Kind, len(chain))
	for i, anc := range chain {
		var kindDisc, kindSub string
		err := d.db.QueryRow(`SELECT kind_discriminant, kind_sub FROM particles WHERE point = ?`, anc.String()).
			Scan(&kindDisc, &kindSub)
		if err == sql.ErrNoRows {
			return registry.PointHierarchy{}, registry.ErrNotFound
		}
		if err != nil {
			return registry.PointHierarchy{}, err
		}
		kinds[i] = point.Kind{Discriminant: point.Discriminant(kindDisc), Sub: kindSub}
	}

	return registry.PointHierarchy{Point: p, Kinds: kinds}, nil
}

// Delete removes the set Select would have matched and returns the
// deleted points.
func (d *DB) Delete(del registry.Delete) ([]point.Point, error) {
	rows, err := d.selectRows(del.Pattern, del.Recursive, del.Kind)
	if err != nil {
		return nil, err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	deleted := make([]point.Point, 0, len(rows))
	for _, r := range rows {
		rendered := r.point.String()
		if _, err := tx.Exec(`DELETE FROM particles WHERE point = ?`, rendered); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`DELETE FROM properties WHERE point = ?`, rendered); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`DELETE FROM access_grants WHERE on_point = ?`, rendered); err != nil {
			return nil, err
		}
		deleted = append(deleted, r.point)
	}

	return deleted, tx.Commit()
}
