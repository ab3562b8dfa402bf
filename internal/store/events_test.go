package store

import (
	"context"
	"testing"
	"time"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

func TestInsertEvent_DanglingSessionAllowed(t *testing.T) {
	s := openTestStore(t, KindUserData)

	// No session row exists; the ledger is permissive about session_id.
	id, err := s.InsertEvent(context.Background(), gamedata.Event{
		Timestamp:  time.Now().UTC(),
		EventType:  gamedata.EventCombat,
		RawMessage: "You inflicted 28.0 points of damage",
		SessionID:  "never-created",
	})
	if err != nil {
		t.Fatalf("InsertEvent() with dangling session failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("InsertEvent() returned id %d", id)
	}
}

func TestSessionEvents_RoundTripPayload(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	ev := gamedata.Event{
		Timestamp:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EventType:    gamedata.EventLoot,
		ActivityType: gamedata.ActivityHunting,
		RawMessage:   "You received Animal Oil x (10) Value: 0.10 PED",
		ParsedData:   map[string]any{"item": "Animal Oil", "quantity": float64(10)},
		SessionID:    "sess-1",
	}
	if _, err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	events, coercionErrs, err := s.SessionEvents(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionEvents() failed: %v", err)
	}
	if len(coercionErrs) != 0 {
		t.Fatalf("unexpected coercion errors: %v", coercionErrs)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	got := events[0]
	if got.RawMessage != ev.RawMessage || got.EventType != ev.EventType || got.ActivityType != ev.ActivityType {
		t.Errorf("event mismatch: %+v", got)
	}
	if got.ParsedData["item"] != "Animal Oil" {
		t.Errorf("ParsedData[item] = %v", got.ParsedData["item"])
	}
	if got.ParsedData["quantity"] != float64(10) {
		t.Errorf("ParsedData[quantity] = %v", got.ParsedData["quantity"])
	}
}

func TestSessionEvents_MalformedPayloadReported(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	// Bypass the typed insert to plant a corrupted payload.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (timestamp, event_type, raw_message, parsed_data, session_id)
		VALUES (?, 'loot', 'garbled', '{not json', 'sess-1')
	`, time.Now().UTC())
	if err != nil {
		t.Fatalf("planting bad payload: %v", err)
	}

	events, coercionErrs, err := s.SessionEvents(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected the bad row returned, got %d events", len(events))
	}
	if len(coercionErrs) != 1 {
		t.Fatalf("expected 1 coercion error, got %d", len(coercionErrs))
	}
	if len(events[0].ParsedData) != 0 {
		t.Errorf("bad payload decoded to %v, want empty map", events[0].ParsedData)
	}
}

func TestSessionEventTypeCounts(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	inserts := []gamedata.EventType{
		gamedata.EventCombat, gamedata.EventCombat, gamedata.EventCombat,
		gamedata.EventLoot, gamedata.EventLoot,
		gamedata.EventSkillGain,
	}
	for i, et := range inserts {
		if _, err := s.InsertEvent(ctx, gamedata.Event{
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
			EventType: et,
			SessionID: "sess-1",
		}); err != nil {
			t.Fatalf("InsertEvent(%d) failed: %v", i, err)
		}
	}

	counts, err := s.SessionEventTypeCounts(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionEventTypeCounts() failed: %v", err)
	}
	if counts.EventCount != 6 {
		t.Errorf("EventCount = %d, want 6", counts.EventCount)
	}
	if counts.CombatCount != 3 {
		t.Errorf("CombatCount = %d, want 3", counts.CombatCount)
	}
	if counts.LootCount != 2 {
		t.Errorf("LootCount = %d, want 2", counts.LootCount)
	}
}

func TestSessionEventPayloads_FiltersByType(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	events := []gamedata.Event{
		{EventType: gamedata.EventSkillGain, ParsedData: map[string]any{"skill": "Rifle"}, SessionID: "sess-1"},
		{EventType: gamedata.EventSkill, ParsedData: map[string]any{"skill": "Anatomy"}, SessionID: "sess-1"},
		{EventType: gamedata.EventLoot, ParsedData: map[string]any{"item": "Wool"}, SessionID: "sess-1"},
	}
	for i, ev := range events {
		ev.Timestamp = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if _, err := s.InsertEvent(ctx, ev); err != nil {
			t.Fatalf("InsertEvent(%d) failed: %v", i, err)
		}
	}

	payloads, coercionErrs, err := s.SessionEventPayloads(ctx, "sess-1", gamedata.EventSkillGain, gamedata.EventSkill)
	if err != nil {
		t.Fatalf("SessionEventPayloads() failed: %v", err)
	}
	if len(coercionErrs) != 0 {
		t.Fatalf("unexpected coercion errors: %v", coercionErrs)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	if payloads[0]["skill"] != "Rifle" || payloads[1]["skill"] != "Anatomy" {
		t.Errorf("payloads = %v", payloads)
	}
}
