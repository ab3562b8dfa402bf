// Package ledger implements the append-only session and event record on
// top of the user-data store. Sessions are bookkeeping rows; events are
// the ground truth and are never rewritten, so every aggregate here is a
// recompute over events rather than an incremental counter.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
	"github.com/lewtnanny/lewtnanny/internal/store"
)

// SessionStats is the per-session event breakdown.
type SessionStats struct {
	EventCount  int64
	CombatCount int64
	LootCount   int64
}

// SessionCounts holds the substring-derived kill counters for a session.
// Creatures and Globals move together: the producer text has no separate
// marker for a plain kill, so one "killed a creature" line bumps both.
// Downstream displays rely on that coupling, so it stays as-is.
type SessionCounts struct {
	Creatures int64
	Globals   int64
	HOFs      int64
}

// Engine is the ledger facade over the user-data store.
type Engine struct {
	store *store.Store
	clock Clock
	log   *slog.Logger
}

// NewEngine wires the ledger to an open user-data store. A nil clock
// falls back to the system clock.
func NewEngine(s *store.Store, clock Clock, log *slog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: s, clock: clock, log: log}
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string { return uuid.NewString() }

// CreateSession opens a new session with zeroed totals and start_time set
// to now. Fails with a *store.StorageError of CodeDuplicateSession when
// the id is already taken.
func (e *Engine) CreateSession(ctx context.Context, id string, activity gamedata.ActivityType) (gamedata.Session, error) {
	sess := gamedata.Session{
		ID:           id,
		StartTime:    e.clock.Now(),
		ActivityType: activity,
		TotalCost:    decimal.Zero,
		TotalReturn:  decimal.Zero,
		TotalMarkup:  decimal.Zero,
	}
	if err := e.store.InsertSession(ctx, sess); err != nil {
		return gamedata.Session{}, err
	}
	e.log.Info("session created", "session_id", id, "activity", string(activity))
	return sess, nil
}

// AddEvent appends one event and returns its assigned id. A zero
// timestamp is stamped with now. The session_id is deliberately not
// validated: events may precede their session row or outlive it.
func (e *Engine) AddEvent(ctx context.Context, ev gamedata.Event) (int64, error) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.clock.Now()
	}
	id, err := e.store.InsertEvent(ctx, ev)
	if err != nil {
		return 0, fmt.Errorf("add event: %w", err)
	}
	return id, nil
}

// UpdateSessionTotals overwrites the session's three totals with the
// caller's recomputed sums and stamps end_time = now, closing the
// session. Callers supply full totals, never deltas.
func (e *Engine) UpdateSessionTotals(ctx context.Context, id string, cost, ret, markup decimal.Decimal) error {
	return e.store.UpdateSessionTotals(ctx, id, cost, ret, markup, e.clock.Now())
}

// CloseSession stamps end_time = now without touching the totals.
func (e *Engine) CloseSession(ctx context.Context, id string) error {
	return e.store.UpdateSessionEnd(ctx, id, e.clock.Now())
}

// Session returns one session, or ok=false.
func (e *Engine) Session(ctx context.Context, id string) (gamedata.Session, bool, error) {
	return e.store.SessionByID(ctx, id)
}

// Sessions returns every session, most recently started first.
func (e *Engine) Sessions(ctx context.Context) ([]gamedata.Session, error) {
	return e.store.AllSessions(ctx)
}

// SessionEvents returns a session's events in timestamp order. Events
// with undecodable payloads come back with empty payloads; each decode
// failure is logged and the scan continues.
func (e *Engine) SessionEvents(ctx context.Context, sessionID string) ([]gamedata.Event, error) {
	events, coercionErrs, err := e.store.SessionEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, cerr := range coercionErrs {
		e.log.Warn("event payload unreadable", "session_id", sessionID, "error", cerr)
	}
	return events, nil
}

// SessionStats aggregates a session's events by type.
func (e *Engine) SessionStats(ctx context.Context, sessionID string) (SessionStats, error) {
	counts, err := e.store.SessionEventTypeCounts(ctx, sessionID)
	if err != nil {
		return SessionStats{}, err
	}
	return SessionStats{
		EventCount:  counts.EventCount,
		CombatCount: counts.CombatCount,
		LootCount:   counts.LootCount,
	}, nil
}

// SessionCounts derives creature/global/HOF counters by scanning each
// event's raw_message for marker phrases. The HOF check wins over the
// kill check when both phrases appear in one message.
func (e *Engine) SessionCounts(ctx context.Context, sessionID string) (SessionCounts, error) {
	messages, err := e.store.SessionRawMessages(ctx, sessionID)
	if err != nil {
		return SessionCounts{}, err
	}

	var counts SessionCounts
	for _, msg := range messages {
		switch {
		case strings.Contains(msg, "Hall of Fame") || strings.Contains(msg, "HOF"):
			counts.HOFs++
		case strings.Contains(msg, "killed a creature"):
			counts.Globals++
			counts.Creatures++
		}
	}
	return counts, nil
}

// SessionSkills returns the decoded payloads of a session's skill events.
func (e *Engine) SessionSkills(ctx context.Context, sessionID string) ([]map[string]any, error) {
	return e.sessionPayloads(ctx, sessionID, gamedata.EventSkillGain, gamedata.EventSkill)
}

// SessionCombatEvents returns the decoded payloads of a session's combat
// events.
func (e *Engine) SessionCombatEvents(ctx context.Context, sessionID string) ([]map[string]any, error) {
	return e.sessionPayloads(ctx, sessionID, gamedata.EventCombat)
}

func (e *Engine) sessionPayloads(ctx context.Context, sessionID string, types ...gamedata.EventType) ([]map[string]any, error) {
	payloads, coercionErrs, err := e.store.SessionEventPayloads(ctx, sessionID, types...)
	if err != nil {
		return nil, err
	}
	for _, cerr := range coercionErrs {
		e.log.Warn("event payload unreadable", "session_id", sessionID, "error", cerr)
	}
	return payloads, nil
}

// DeleteSession removes a session with its events and loot. Irreversible.
func (e *Engine) DeleteSession(ctx context.Context, id string) error {
	if err := e.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	e.log.Info("session deleted", "session_id", id)
	return nil
}

// DeleteAllSessions clears the whole ledger. Irreversible.
func (e *Engine) DeleteAllSessions(ctx context.Context) error {
	if err := e.store.DeleteAllSessions(ctx); err != nil {
		return err
	}
	e.log.Info("all sessions deleted")
	return nil
}

// SaveSessionLootItem stores the aggregated loot row for a session item.
func (e *Engine) SaveSessionLootItem(ctx context.Context, item gamedata.SessionLootItem) error {
	return e.store.UpsertSessionLootItem(ctx, item)
}

// SessionLootItems returns a session's aggregated loot, most valuable
// first.
func (e *Engine) SessionLootItems(ctx context.Context, sessionID string) ([]gamedata.SessionLootItem, error) {
	return e.store.SessionLootItems(ctx, sessionID)
}

// SetMarkup stores a user markup override for an item name.
func (e *Engine) SetMarkup(ctx context.Context, itemName string, value decimal.Decimal) error {
	return e.store.SetMarkup(ctx, itemName, value)
}

// Markup returns the stored markup for an item, or ok=false.
func (e *Engine) Markup(ctx context.Context, itemName string) (decimal.Decimal, bool, error) {
	return e.store.MarkupValue(ctx, itemName)
}

// Markups returns the full markup table keyed by item name.
func (e *Engine) Markups(ctx context.Context) (map[string]decimal.Decimal, error) {
	return e.store.AllMarkups(ctx)
}

// DeleteMarkup removes one markup entry.
func (e *Engine) DeleteMarkup(ctx context.Context, itemName string) error {
	return e.store.DeleteMarkup(ctx, itemName)
}

// SaveLoadout stores or updates a named loadout.
func (e *Engine) SaveLoadout(ctx context.Context, l gamedata.Loadout) error {
	return e.store.SaveLoadout(ctx, l, e.clock.Now())
}

// Loadout returns one loadout by name, or ok=false.
func (e *Engine) Loadout(ctx context.Context, name string) (gamedata.Loadout, bool, error) {
	return e.store.LoadoutByName(ctx, name)
}

// Loadouts returns every saved loadout ordered by name.
func (e *Engine) Loadouts(ctx context.Context) ([]gamedata.Loadout, error) {
	return e.store.AllLoadouts(ctx)
}

// DeleteLoadout removes a saved loadout.
func (e *Engine) DeleteLoadout(ctx context.Context, name string) error {
	return e.store.DeleteLoadout(ctx, name)
}

// SaveCustomWeapon stores or updates a user-entered weapon.
func (e *Engine) SaveCustomWeapon(ctx context.Context, w gamedata.CustomWeapon) error {
	return e.store.SaveCustomWeapon(ctx, w, e.clock.Now())
}

// CustomWeapon returns one custom weapon by name, or ok=false.
func (e *Engine) CustomWeapon(ctx context.Context, name string) (gamedata.CustomWeapon, bool, error) {
	return e.store.CustomWeaponByName(ctx, name)
}

// CustomWeapons returns every custom weapon ordered by name.
func (e *Engine) CustomWeapons(ctx context.Context) ([]gamedata.CustomWeapon, error) {
	return e.store.AllCustomWeapons(ctx)
}

// DeleteCustomWeapon removes a custom weapon.
func (e *Engine) DeleteCustomWeapon(ctx context.Context, name string) error {
	return e.store.DeleteCustomWeapon(ctx, name)
}
