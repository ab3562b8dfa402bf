package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

const attachmentColumns = `id, name, attachment_type, ammo, decay, damage_bonus, ammo_bonus, decay_modifier, economy_bonus, range_bonus, data_updated`

// UpsertAttachment inserts or replaces an attachment row keyed by id.
func (s *Store) UpsertAttachment(ctx context.Context, a gamedata.Attachment) error {
	return s.writeAttachment(ctx, "INSERT OR REPLACE", a)
}

// InsertAttachmentIgnore inserts an attachment row, silently keeping the
// existing row on id conflict. Scopes and sights are loaded this way so a
// primary attachment row always wins over a derived one.
func (s *Store) InsertAttachmentIgnore(ctx context.Context, a gamedata.Attachment) error {
	return s.writeAttachment(ctx, "INSERT OR IGNORE", a)
}

func (s *Store) writeAttachment(ctx context.Context, verb string, a gamedata.Attachment) error {
	_, err := s.db.ExecContext(ctx, verb+` INTO attachments
		(`+attachmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.Name,
		a.AttachmentType,
		a.Ammo,
		decToReal(a.Decay),
		decToReal(a.DamageBonus),
		decToReal(a.AmmoBonus),
		decToReal(a.DecayModifier),
		decToReal(a.EconomyBonus),
		a.RangeBonus,
		timeOrNil(a.DataUpdated),
	)
	if err != nil {
		return fmt.Errorf("write attachment %s: %w", a.ID, err)
	}
	return nil
}

// AttachmentByID returns the attachment with the given id, or ok=false.
func (s *Store) AttachmentByID(ctx context.Context, id string) (gamedata.Attachment, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+attachmentColumns+`
		FROM attachments
		WHERE id = ?
	`, id)
	a, err := scanAttachment(row)
	if err == sql.ErrNoRows {
		return gamedata.Attachment{}, false, nil
	}
	if err != nil {
		return gamedata.Attachment{}, false, fmt.Errorf("scan attachment: %w", err)
	}
	return a, true, nil
}

// AllAttachments returns every attachment ordered by name ascending.
func (s *Store) AllAttachments(ctx context.Context) ([]gamedata.Attachment, error) {
	return s.queryAttachments(ctx, `
		SELECT `+attachmentColumns+`
		FROM attachments
		ORDER BY name ASC, id ASC
	`)
}

// AttachmentsByType returns attachments of one type ordered by name.
func (s *Store) AttachmentsByType(ctx context.Context, attachmentType string) ([]gamedata.Attachment, error) {
	return s.queryAttachments(ctx, `
		SELECT `+attachmentColumns+`
		FROM attachments
		WHERE attachment_type = ?
		ORDER BY name ASC, id ASC
	`, attachmentType)
}

// SearchAttachments returns attachments whose name or id contains the
// query, ordered by name ascending, capped at limit.
func (s *Store) SearchAttachments(ctx context.Context, query string, limit int) ([]gamedata.Attachment, error) {
	pattern := "%" + query + "%"
	return s.queryAttachments(ctx, `
		SELECT `+attachmentColumns+`
		FROM attachments
		WHERE name LIKE ? OR id LIKE ?
		ORDER BY name ASC, id ASC
		LIMIT ?
	`, pattern, pattern, limit)
}

func (s *Store) queryAttachments(ctx context.Context, query string, args ...any) ([]gamedata.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	attachments := []gamedata.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return attachments, nil
}

func scanAttachment(sc scanner) (gamedata.Attachment, error) {
	var (
		a       gamedata.Attachment
		decay   sql.NullFloat64
		dmgB    sql.NullFloat64
		ammoB   sql.NullFloat64
		decayM  sql.NullFloat64
		econB   sql.NullFloat64
		updated sql.NullTime
	)
	err := sc.Scan(
		&a.ID,
		&a.Name,
		&a.AttachmentType,
		&a.Ammo,
		&decay,
		&dmgB,
		&ammoB,
		&decayM,
		&econB,
		&a.RangeBonus,
		&updated,
	)
	if err != nil {
		return gamedata.Attachment{}, err
	}
	a.Decay = realToDec(decay)
	a.DamageBonus = realToDec(dmgB)
	a.AmmoBonus = realToDec(ammoB)
	a.DecayModifier = realToDec(decayM)
	a.EconomyBonus = realToDec(econB)
	a.DataUpdated = nullTime(updated)
	return a, nil
}
