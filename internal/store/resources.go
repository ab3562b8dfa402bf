package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

// UpsertResource inserts or replaces a resource row keyed by name.
// Names are normalized by the caller before they reach the store.
func (s *Store) UpsertResource(ctx context.Context, r gamedata.Resource) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO resources
		(name, tt_value, decay, data_updated)
		VALUES (?, ?, ?, ?)
	`,
		r.Name,
		decToReal(r.TTValue),
		decToReal(r.Decay),
		timeOrNil(r.DataUpdated),
	)
	if err != nil {
		return fmt.Errorf("upsert resource %s: %w", r.Name, err)
	}
	return nil
}

// ResourceByName returns the resource with the given name, or ok=false.
func (s *Store) ResourceByName(ctx context.Context, name string) (gamedata.Resource, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, tt_value, decay, data_updated
		FROM resources
		WHERE name = ?
	`, name)
	r, err := scanResource(row)
	if err == sql.ErrNoRows {
		return gamedata.Resource{}, false, nil
	}
	if err != nil {
		return gamedata.Resource{}, false, fmt.Errorf("scan resource: %w", err)
	}
	return r, true, nil
}

// AllResources returns every resource ordered by name ascending.
func (s *Store) AllResources(ctx context.Context) ([]gamedata.Resource, error) {
	return s.queryResources(ctx, `
		SELECT name, tt_value, decay, data_updated
		FROM resources
		ORDER BY name ASC
	`)
}

// SearchResources returns resources whose name contains the query,
// ordered by name ascending, capped at limit.
func (s *Store) SearchResources(ctx context.Context, query string, limit int) ([]gamedata.Resource, error) {
	return s.queryResources(ctx, `
		SELECT name, tt_value, decay, data_updated
		FROM resources
		WHERE name LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`, "%"+query+"%", limit)
}

func (s *Store) queryResources(ctx context.Context, query string, args ...any) ([]gamedata.Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	resources := []gamedata.Resource{}
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return resources, nil
}

func scanResource(sc scanner) (gamedata.Resource, error) {
	var (
		r       gamedata.Resource
		tt      sql.NullFloat64
		decay   sql.NullFloat64
		updated sql.NullTime
	)
	if err := sc.Scan(&r.Name, &tt, &decay, &updated); err != nil {
		return gamedata.Resource{}, err
	}
	r.TTValue = realToDec(tt)
	r.Decay = realToDec(decay)
	r.DataUpdated = nullTime(updated)
	return r, nil
}
