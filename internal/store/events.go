package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

// SessionTypeCounts is the SQL-aggregated event breakdown for one session.
type SessionTypeCounts struct {
	EventCount  int64
	CombatCount int64
	LootCount   int64
}

// InsertEvent appends one event row and returns its assigned id. The
// ledger is append-only: events are never updated, and session_id is
// deliberately unchecked so events may precede or outlive their session.
func (s *Store) InsertEvent(ctx context.Context, ev gamedata.Event) (int64, error) {
	payload, err := marshalPayload(ev.ParsedData)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(timestamp, event_type, activity_type, raw_message, parsed_data, session_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		timeOrNil(ev.Timestamp),
		string(ev.EventType),
		string(ev.ActivityType),
		ev.RawMessage,
		payload,
		nullString(ev.SessionID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert event: last id: %w", err)
	}
	return id, nil
}

// SessionEvents returns a session's events ordered by timestamp ascending.
// A row whose parsed_data payload fails to decode is returned with an
// empty payload rather than dropped; the coercion error is reported
// through the errs slice so callers can log it.
func (s *Store) SessionEvents(ctx context.Context, sessionID string) ([]gamedata.Event, []error, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, event_type, activity_type, raw_message, parsed_data, session_id
		FROM events
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []gamedata.Event{}
	var coercionErrs []error
	for rows.Next() {
		var (
			ev        gamedata.Event
			ts        sql.NullTime
			evType    sql.NullString
			actType   sql.NullString
			rawMsg    sql.NullString
			payload   sql.NullString
			sessionFK sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ts, &evType, &actType, &rawMsg, &payload, &sessionFK); err != nil {
			return nil, nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = nullTime(ts)
		ev.EventType = gamedata.EventType(evType.String)
		ev.ActivityType = gamedata.ActivityType(actType.String)
		ev.RawMessage = rawMsg.String
		ev.SessionID = sessionFK.String

		parsed, err := unmarshalPayload(payload)
		if err != nil {
			coercionErrs = append(coercionErrs, fmt.Errorf("event %d: %w", ev.ID, err))
			parsed = map[string]any{}
		}
		ev.ParsedData = parsed
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, coercionErrs, nil
}

// SessionRawMessages streams a session's raw_message texts in insertion
// order. Used by the ledger's substring-based creature/global/HOF counts.
func (s *Store) SessionRawMessages(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_message
		FROM events
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query raw messages: %w", err)
	}
	defer rows.Close()

	messages := []string{}
	for rows.Next() {
		var msg sql.NullString
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan raw message: %w", err)
		}
		messages = append(messages, msg.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw messages: %w", err)
	}
	return messages, nil
}

// SessionEventTypeCounts aggregates a session's events by type in SQL.
func (s *Store) SessionEventTypeCounts(ctx context.Context, sessionID string) (SessionTypeCounts, error) {
	var counts SessionTypeCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN event_type = 'combat' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN event_type = 'loot' THEN 1 ELSE 0 END), 0)
		FROM events
		WHERE session_id = ?
	`, sessionID).Scan(&counts.EventCount, &counts.CombatCount, &counts.LootCount)
	if err != nil {
		return SessionTypeCounts{}, fmt.Errorf("count events: %w", err)
	}
	return counts, nil
}

// SessionEventPayloads returns the decoded parsed_data payloads of a
// session's events matching the given types, in timestamp order. Rows
// whose payload fails to decode are skipped and reported via errs.
func (s *Store) SessionEventPayloads(ctx context.Context, sessionID string, types ...gamedata.EventType) ([]map[string]any, []error, error) {
	if len(types) == 0 {
		return []map[string]any{}, nil, nil
	}

	query := `
		SELECT id, parsed_data
		FROM events
		WHERE session_id = ? AND event_type IN (?` + repeatPlaceholder(len(types)-1) + `)
		ORDER BY timestamp ASC, id ASC
	`
	args := make([]any, 0, len(types)+1)
	args = append(args, sessionID)
	for _, t := range types {
		args = append(args, string(t))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query payloads: %w", err)
	}
	defer rows.Close()

	payloads := []map[string]any{}
	var coercionErrs []error
	for rows.Next() {
		var (
			id      int64
			payload sql.NullString
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, nil, fmt.Errorf("scan payload: %w", err)
		}
		parsed, err := unmarshalPayload(payload)
		if err != nil {
			coercionErrs = append(coercionErrs, fmt.Errorf("event %d: %w", id, err))
			continue
		}
		payloads = append(payloads, parsed)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate payloads: %w", err)
	}
	return payloads, coercionErrs, nil
}

// repeatPlaceholder returns ", ?" repeated n times for IN clauses.
func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
