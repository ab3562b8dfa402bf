package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

const weaponColumns = `id, name, ammo, decay, weapon_type, dps, eco, range_value, damage, reload_time, hits, data_updated`

// UpsertWeapon inserts or replaces a weapon row keyed by id.
// Re-migration of the same snapshot therefore never duplicates rows.
func (s *Store) UpsertWeapon(ctx context.Context, w gamedata.Weapon) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO weapons
		(`+weaponColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID,
		w.Name,
		w.Ammo,
		decToReal(w.Decay),
		w.WeaponType,
		decToReal(w.DPS),
		decToReal(w.Eco),
		w.Range,
		decToReal(w.Damage),
		decToReal(w.ReloadTime),
		w.Hits,
		timeOrNil(w.DataUpdated),
	)
	if err != nil {
		return fmt.Errorf("upsert weapon %s: %w", w.ID, err)
	}
	return nil
}

// WeaponByID returns the weapon with the given id, or ok=false if absent.
func (s *Store) WeaponByID(ctx context.Context, id string) (gamedata.Weapon, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+weaponColumns+`
		FROM weapons
		WHERE id = ?
	`, id)
	return scanWeaponRow(row)
}

// WeaponByName returns the weapon with the given name, or ok=false if
// absent. Names are not guaranteed unique; ties resolve by id ascending.
func (s *Store) WeaponByName(ctx context.Context, name string) (gamedata.Weapon, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+weaponColumns+`
		FROM weapons
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1
	`, name)
	return scanWeaponRow(row)
}

// AllWeapons returns every weapon ordered by name ascending.
func (s *Store) AllWeapons(ctx context.Context) ([]gamedata.Weapon, error) {
	return s.queryWeapons(ctx, `
		SELECT `+weaponColumns+`
		FROM weapons
		ORDER BY name ASC, id ASC
	`)
}

// SearchWeapons returns weapons whose name or id contains the query,
// ordered by name ascending, capped at limit.
func (s *Store) SearchWeapons(ctx context.Context, query string, limit int) ([]gamedata.Weapon, error) {
	pattern := "%" + query + "%"
	return s.queryWeapons(ctx, `
		SELECT `+weaponColumns+`
		FROM weapons
		WHERE name LIKE ? OR id LIKE ?
		ORDER BY name ASC, id ASC
		LIMIT ?
	`, pattern, pattern, limit)
}

// WeaponsByType returns weapons of the given type ordered by name.
func (s *Store) WeaponsByType(ctx context.Context, weaponType string) ([]gamedata.Weapon, error) {
	return s.queryWeapons(ctx, `
		SELECT `+weaponColumns+`
		FROM weapons
		WHERE weapon_type = ?
		ORDER BY name ASC, id ASC
	`, weaponType)
}

func (s *Store) queryWeapons(ctx context.Context, query string, args ...any) ([]gamedata.Weapon, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weapons: %w", err)
	}
	defer rows.Close()

	weapons := []gamedata.Weapon{}
	for rows.Next() {
		w, err := scanWeapon(rows)
		if err != nil {
			return nil, err
		}
		weapons = append(weapons, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weapons: %w", err)
	}
	return weapons, nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanWeapon(sc scanner) (gamedata.Weapon, error) {
	var (
		w          gamedata.Weapon
		weaponType sql.NullString
		decay      sql.NullFloat64
		dps        sql.NullFloat64
		eco        sql.NullFloat64
		damage     sql.NullFloat64
		reload     sql.NullFloat64
		updated    sql.NullTime
	)
	err := sc.Scan(
		&w.ID,
		&w.Name,
		&w.Ammo,
		&decay,
		&weaponType,
		&dps,
		&eco,
		&w.Range,
		&damage,
		&reload,
		&w.Hits,
		&updated,
	)
	if err != nil {
		return gamedata.Weapon{}, err
	}
	w.WeaponType = weaponType.String
	w.Decay = realToDec(decay)
	w.DPS = realToDec(dps)
	w.Eco = realToDec(eco)
	w.Damage = realToDec(damage)
	w.ReloadTime = realToDec(reload)
	w.DataUpdated = nullTime(updated)
	return w, nil
}

func scanWeaponRow(row *sql.Row) (gamedata.Weapon, bool, error) {
	w, err := scanWeapon(row)
	if err == sql.ErrNoRows {
		return gamedata.Weapon{}, false, nil
	}
	if err != nil {
		return gamedata.Weapon{}, false, fmt.Errorf("scan weapon: %w", err)
	}
	return w, true, nil
}
