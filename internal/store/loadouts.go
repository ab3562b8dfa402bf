package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

const loadoutColumns = `id, name, weapon, amplifier, scope, sight_1, sight_2, damage_enh, accuracy_enh, economy_enh, created_at, updated_at`

// SaveLoadout inserts or updates a saved loadout keyed by its unique name.
// created_at is preserved on update; updated_at always advances.
func (s *Store) SaveLoadout(ctx context.Context, l gamedata.Loadout, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loadouts
		(name, weapon, amplifier, scope, sight_1, sight_2, damage_enh, accuracy_enh, economy_enh, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			weapon = excluded.weapon,
			amplifier = excluded.amplifier,
			scope = excluded.scope,
			sight_1 = excluded.sight_1,
			sight_2 = excluded.sight_2,
			damage_enh = excluded.damage_enh,
			accuracy_enh = excluded.accuracy_enh,
			economy_enh = excluded.economy_enh,
			updated_at = excluded.updated_at
	`,
		l.Name,
		l.Weapon,
		nullString(l.Amplifier),
		nullString(l.Scope),
		nullString(l.Sight1),
		nullString(l.Sight2),
		l.DamageEnh,
		l.AccuracyEnh,
		l.EconomyEnh,
		now.UTC(),
		now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save loadout %s: %w", l.Name, err)
	}
	return nil
}

// LoadoutByName returns one loadout, or ok=false.
func (s *Store) LoadoutByName(ctx context.Context, name string) (gamedata.Loadout, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+loadoutColumns+`
		FROM loadouts
		WHERE name = ?
	`, name)
	l, err := scanLoadout(row)
	if err == sql.ErrNoRows {
		return gamedata.Loadout{}, false, nil
	}
	if err != nil {
		return gamedata.Loadout{}, false, fmt.Errorf("scan loadout: %w", err)
	}
	return l, true, nil
}

// AllLoadouts returns every saved loadout ordered by name ascending.
func (s *Store) AllLoadouts(ctx context.Context) ([]gamedata.Loadout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+loadoutColumns+`
		FROM loadouts
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query loadouts: %w", err)
	}
	defer rows.Close()

	loadouts := []gamedata.Loadout{}
	for rows.Next() {
		l, err := scanLoadout(rows)
		if err != nil {
			return nil, err
		}
		loadouts = append(loadouts, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loadouts: %w", err)
	}
	return loadouts, nil
}

// DeleteLoadout removes a saved loadout. Missing names are a no-op.
func (s *Store) DeleteLoadout(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM loadouts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete loadout %s: %w", name, err)
	}
	return nil
}

func scanLoadout(sc scanner) (gamedata.Loadout, error) {
	var (
		l         gamedata.Loadout
		amplifier sql.NullString
		scope     sql.NullString
		sight1    sql.NullString
		sight2    sql.NullString
		created   sql.NullTime
		updated   sql.NullTime
	)
	err := sc.Scan(
		&l.ID,
		&l.Name,
		&l.Weapon,
		&amplifier,
		&scope,
		&sight1,
		&sight2,
		&l.DamageEnh,
		&l.AccuracyEnh,
		&l.EconomyEnh,
		&created,
		&updated,
	)
	if err != nil {
		return gamedata.Loadout{}, err
	}
	l.Amplifier = amplifier.String
	l.Scope = scope.String
	l.Sight1 = sight1.String
	l.Sight2 = sight2.String
	l.CreatedAt = nullTime(created)
	l.UpdatedAt = nullTime(updated)
	return l, nil
}
