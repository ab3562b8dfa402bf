package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

const sessionColumns = `id, start_time, end_time, activity_type, total_cost, total_return, total_markup`

// InsertSession creates a session row. Fails with a *StorageError of
// CodeDuplicateSession when the id already exists; totals are whatever the
// caller provides (the ledger engine zeroes them).
func (s *Store) InsertSession(ctx context.Context, sess gamedata.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		timeOrNil(sess.StartTime),
		timeOrNil(sess.EndTime),
		string(sess.ActivityType),
		decToReal(sess.TotalCost),
		decToReal(sess.TotalReturn),
		decToReal(sess.TotalMarkup),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return &StorageError{
				Code:    CodeDuplicateSession,
				Message: "session already exists",
				Store:   string(s.kind),
				Key:     sess.ID,
				Err:     err,
			}
		}
		return fmt.Errorf("insert session %s: %w", sess.ID, err)
	}
	return nil
}

// SessionByID returns one session, or ok=false if absent.
func (s *Store) SessionByID(ctx context.Context, id string) (gamedata.Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return gamedata.Session{}, false, nil
	}
	if err != nil {
		return gamedata.Session{}, false, fmt.Errorf("scan session: %w", err)
	}
	return sess, true, nil
}

// AllSessions returns every session, most recently started first.
func (s *Store) AllSessions(ctx context.Context) ([]gamedata.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY start_time DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []gamedata.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSessionTotals overwrites the three totals and stamps end_time.
// This is a recompute-and-store operation: callers supply the full
// recomputed sums, never deltas.
func (s *Store) UpdateSessionTotals(ctx context.Context, id string, cost, ret, markup decimal.Decimal, end time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET total_cost = ?, total_return = ?, total_markup = ?, end_time = ?
		WHERE id = ?
	`,
		decToReal(cost),
		decToReal(ret),
		decToReal(markup),
		timeOrNil(end),
		id,
	)
	if err != nil {
		return fmt.Errorf("update session totals %s: %w", id, err)
	}
	return nil
}

// UpdateSessionEnd stamps end_time only, leaving totals untouched.
func (s *Store) UpdateSessionEnd(ctx context.Context, id string, end time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET end_time = ? WHERE id = ?
	`, timeOrNil(end), id)
	if err != nil {
		return fmt.Errorf("update session end %s: %w", id, err)
	}
	return nil
}

// DeleteSession removes a session together with its events and aggregated
// loot items, atomically. Irreversible.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete session %s: begin tx: %w", id, err)
	}
	defer tx.Rollback() // No-op if committed

	for _, stmt := range []string{
		"DELETE FROM events WHERE session_id = ?",
		"DELETE FROM session_loot_items WHERE session_id = ?",
		"DELETE FROM sessions WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete session %s: commit: %w", id, err)
	}
	return nil
}

// DeleteAllSessions clears the whole ledger: all sessions, events and
// aggregated loot items. Irreversible.
func (s *Store) DeleteAllSessions(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete all sessions: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM events",
		"DELETE FROM session_loot_items",
		"DELETE FROM sessions",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("delete all sessions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete all sessions: commit: %w", err)
	}
	return nil
}

func scanSession(sc scanner) (gamedata.Session, error) {
	var (
		sess     gamedata.Session
		start    sql.NullTime
		end      sql.NullTime
		activity sql.NullString
		cost     sql.NullFloat64
		ret      sql.NullFloat64
		markup   sql.NullFloat64
	)
	err := sc.Scan(&sess.ID, &start, &end, &activity, &cost, &ret, &markup)
	if err != nil {
		return gamedata.Session{}, err
	}
	sess.StartTime = nullTime(start)
	sess.EndTime = nullTime(end)
	sess.ActivityType = gamedata.ActivityType(activity.String)
	sess.TotalCost = realToDec(cost)
	sess.TotalReturn = realToDec(ret)
	sess.TotalMarkup = realToDec(markup)
	return sess, nil
}
