package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

const customWeaponColumns = `id, name, ammo, decay, weapon_type, dps, eco, range_value, damage, reload_time, created_at, updated_at`

// SaveCustomWeapon inserts or updates a user-entered weapon keyed by its
// unique name. These live in the user-data store so they survive
// re-migration of the static reference data.
func (s *Store) SaveCustomWeapon(ctx context.Context, w gamedata.CustomWeapon, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_weapons
		(name, ammo, decay, weapon_type, dps, eco, range_value, damage, reload_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ammo = excluded.ammo,
			decay = excluded.decay,
			weapon_type = excluded.weapon_type,
			dps = excluded.dps,
			eco = excluded.eco,
			range_value = excluded.range_value,
			damage = excluded.damage,
			reload_time = excluded.reload_time,
			updated_at = excluded.updated_at
	`,
		w.Name,
		w.Ammo,
		decToReal(w.Decay),
		w.WeaponType,
		decToReal(w.DPS),
		decToReal(w.Eco),
		w.Range,
		decToReal(w.Damage),
		decToReal(w.ReloadTime),
		now.UTC(),
		now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save custom weapon %s: %w", w.Name, err)
	}
	return nil
}

// CustomWeaponByName returns one custom weapon, or ok=false.
func (s *Store) CustomWeaponByName(ctx context.Context, name string) (gamedata.CustomWeapon, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customWeaponColumns+`
		FROM custom_weapons
		WHERE name = ?
	`, name)
	w, err := scanCustomWeapon(row)
	if err == sql.ErrNoRows {
		return gamedata.CustomWeapon{}, false, nil
	}
	if err != nil {
		return gamedata.CustomWeapon{}, false, fmt.Errorf("scan custom weapon: %w", err)
	}
	return w, true, nil
}

// AllCustomWeapons returns every custom weapon ordered by name ascending.
func (s *Store) AllCustomWeapons(ctx context.Context) ([]gamedata.CustomWeapon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customWeaponColumns+`
		FROM custom_weapons
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query custom weapons: %w", err)
	}
	defer rows.Close()

	weapons := []gamedata.CustomWeapon{}
	for rows.Next() {
		w, err := scanCustomWeapon(rows)
		if err != nil {
			return nil, err
		}
		weapons = append(weapons, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom weapons: %w", err)
	}
	return weapons, nil
}

// DeleteCustomWeapon removes a custom weapon. Missing names are a no-op.
func (s *Store) DeleteCustomWeapon(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM custom_weapons WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete custom weapon %s: %w", name, err)
	}
	return nil
}

func scanCustomWeapon(sc scanner) (gamedata.CustomWeapon, error) {
	var (
		w          gamedata.CustomWeapon
		weaponType sql.NullString
		decay      sql.NullFloat64
		dps        sql.NullFloat64
		eco        sql.NullFloat64
		damage     sql.NullFloat64
		reload     sql.NullFloat64
		created    sql.NullTime
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
		&created,
		&updated,
	)
	if err != nil {
		return gamedata.CustomWeapon{}, err
	}
	w.WeaponType = weaponType.String
	w.Decay = realToDec(decay)
	w.DPS = realToDec(dps)
	w.Eco = realToDec(eco)
	w.Damage = realToDec(damage)
	w.ReloadTime = realToDec(reload)
	w.CreatedAt = nullTime(created)
	w.UpdatedAt = nullTime(updated)
	return w, nil
}
