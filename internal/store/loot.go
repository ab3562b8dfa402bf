package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

// UpsertSessionLootItem inserts or replaces the aggregated loot row for
// (session_id, item_name). Callers supply the full accumulated quantity
// and value, not deltas.
func (s *Store) UpsertSessionLootItem(ctx context.Context, item gamedata.SessionLootItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_loot_items
		(session_id, item_name, quantity, total_value, markup_percent)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, item_name) DO UPDATE SET
			quantity = excluded.quantity,
			total_value = excluded.total_value,
			markup_percent = excluded.markup_percent
	`,
		item.SessionID,
		item.ItemName,
		item.Quantity,
		decToReal(item.TotalValue),
		decToReal(item.MarkupPercent),
	)
	if err != nil {
		return fmt.Errorf("upsert loot item %s/%s: %w", item.SessionID, item.ItemName, err)
	}
	return nil
}

// SessionLootItems returns a session's aggregated loot, most valuable
// first.
func (s *Store) SessionLootItems(ctx context.Context, sessionID string) ([]gamedata.SessionLootItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, item_name, quantity, total_value, markup_percent
		FROM session_loot_items
		WHERE session_id = ?
		ORDER BY total_value DESC, item_name ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query loot items: %w", err)
	}
	defer rows.Close()

	items := []gamedata.SessionLootItem{}
	for rows.Next() {
		var (
			item   gamedata.SessionLootItem
			value  sql.NullFloat64
			markup sql.NullFloat64
		)
		if err := rows.Scan(&item.ID, &item.SessionID, &item.ItemName, &item.Quantity, &value, &markup); err != nil {
			return nil, fmt.Errorf("scan loot item: %w", err)
		}
		item.TotalValue = realToDec(value)
		item.MarkupPercent = realToDec(markup)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loot items: %w", err)
	}
	return items, nil
}

// SetMarkup stores the user's markup value for an item name.
func (s *Store) SetMarkup(ctx context.Context, itemName string, value decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO markup_config (item_name, markup_value)
		VALUES (?, ?)
	`, itemName, decToReal(value))
	if err != nil {
		return fmt.Errorf("set markup %s: %w", itemName, err)
	}
	return nil
}

// MarkupValue returns the stored markup for an item name, or ok=false.
func (s *Store) MarkupValue(ctx context.Context, itemName string) (decimal.Decimal, bool, error) {
	var value sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT markup_value FROM markup_config WHERE item_name = ?
	`, itemName).Scan(&value)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get markup %s: %w", itemName, err)
	}
	return realToDec(value), true, nil
}

// AllMarkups returns the whole markup table keyed by item name.
func (s *Store) AllMarkups(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_name, markup_value FROM markup_config ORDER BY item_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query markups: %w", err)
	}
	defer rows.Close()

	markups := map[string]decimal.Decimal{}
	for rows.Next() {
		var (
			name  string
			value sql.NullFloat64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan markup: %w", err)
		}
		markups[name] = realToDec(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markups: %w", err)
	}
	return markups, nil
}

// DeleteMarkup removes one markup entry. Missing entries are a no-op.
func (s *Store) DeleteMarkup(ctx context.Context, itemName string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM markup_config WHERE item_name = ?`, itemName); err != nil {
		return fmt.Errorf("delete markup %s: %w", itemName, err)
	}
	return nil
}
