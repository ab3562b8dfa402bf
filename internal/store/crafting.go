package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

const blueprintColumns = `id, name, result_item, result_quantity, skill_required, condition_limit, data_updated`

// UpsertBlueprint inserts or replaces a blueprint row keyed by id.
func (s *Store) UpsertBlueprint(ctx context.Context, b gamedata.Blueprint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO blueprints
		(`+blueprintColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.Name,
		b.ResultItem,
		b.ResultQuantity,
		nullString(b.SkillRequired),
		b.ConditionLimit,
		timeOrNil(b.DataUpdated),
	)
	if err != nil {
		return fmt.Errorf("upsert blueprint %s: %w", b.ID, err)
	}
	return nil
}

// InsertBlueprintMaterial appends one material requirement, silently
// keeping the existing row when (blueprint_id, material_name) already
// exists. Re-migration therefore never duplicates materials.
func (s *Store) InsertBlueprintMaterial(ctx context.Context, m gamedata.BlueprintMaterial) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO blueprint_materials
		(blueprint_id, material_name, quantity)
		VALUES (?, ?, ?)
	`,
		m.BlueprintID,
		m.MaterialName,
		m.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert material %s/%s: %w", m.BlueprintID, m.MaterialName, err)
	}
	return nil
}

// BlueprintByID returns the blueprint with the given id, or ok=false.
func (s *Store) BlueprintByID(ctx context.Context, id string) (gamedata.Blueprint, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+blueprintColumns+`
		FROM blueprints
		WHERE id = ?
	`, id)
	b, err := scanBlueprint(row)
	if err == sql.ErrNoRows {
		return gamedata.Blueprint{}, false, nil
	}
	if err != nil {
		return gamedata.Blueprint{}, false, fmt.Errorf("scan blueprint: %w", err)
	}
	return b, true, nil
}

// AllBlueprints returns every blueprint ordered by name ascending.
func (s *Store) AllBlueprints(ctx context.Context) ([]gamedata.Blueprint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blueprintColumns+`
		FROM blueprints
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query blueprints: %w", err)
	}
	defer rows.Close()

	blueprints := []gamedata.Blueprint{}
	for rows.Next() {
		b, err := scanBlueprint(rows)
		if err != nil {
			return nil, err
		}
		blueprints = append(blueprints, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blueprints: %w", err)
	}
	return blueprints, nil
}

// BlueprintMaterials returns the material requirements for one blueprint,
// ordered by material name ascending.
func (s *Store) BlueprintMaterials(ctx context.Context, blueprintID string) ([]gamedata.BlueprintMaterial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT blueprint_id, material_name, quantity
		FROM blueprint_materials
		WHERE blueprint_id = ?
		ORDER BY material_name ASC
	`, blueprintID)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := []gamedata.BlueprintMaterial{}
	for rows.Next() {
		var m gamedata.BlueprintMaterial
		if err := rows.Scan(&m.BlueprintID, &m.MaterialName, &m.Quantity); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, nil
}

// DeleteBlueprint removes a blueprint; its materials cascade away with it.
func (s *Store) DeleteBlueprint(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blueprints WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete blueprint %s: %w", id, err)
	}
	return nil
}

func scanBlueprint(sc scanner) (gamedata.Blueprint, error) {
	var (
		b         gamedata.Blueprint
		result    sql.NullString
		resultQty sql.NullInt64
		skill     sql.NullString
		condLimit sql.NullInt64
		updated   sql.NullTime
	)
	err := sc.Scan(&b.ID, &b.Name, &result, &resultQty, &skill, &condLimit, &updated)
	if err != nil {
		return gamedata.Blueprint{}, err
	}
	b.ResultItem = result.String
	b.ResultQuantity = resultQty.Int64
	b.SkillRequired = skill.String
	b.ConditionLimit = condLimit.Int64
	b.DataUpdated = nullTime(updated)
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
