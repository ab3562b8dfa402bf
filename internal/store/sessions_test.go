package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

func TestInsertSession_Duplicate(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	sess := gamedata.Session{
		ID:           "sess-1",
		StartTime:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ActivityType: gamedata.ActivityHunting,
	}
	if err := s.InsertSession(ctx, sess); err != nil {
		t.Fatalf("first InsertSession() failed: %v", err)
	}

	err := s.InsertSession(ctx, sess)
	if err == nil {
		t.Fatal("second InsertSession() succeeded on duplicate id")
	}
	if !IsDuplicateSession(err) {
		t.Errorf("expected duplicate-session error, got %v", err)
	}
}

func TestSessionOpenThenClosed(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := s.InsertSession(ctx, gamedata.Session{
		ID:           "sess-1",
		StartTime:    start,
		ActivityType: gamedata.ActivityMining,
	}); err != nil {
		t.Fatalf("InsertSession() failed: %v", err)
	}

	got, ok, err := s.SessionByID(ctx, "sess-1")
	if err != nil || !ok {
		t.Fatalf("SessionByID() = ok=%v err=%v", ok, err)
	}
	if got.Closed() {
		t.Error("new session reported closed")
	}
	if !got.TotalCost.IsZero() || !got.TotalReturn.IsZero() || !got.TotalMarkup.IsZero() {
		t.Errorf("new session has nonzero totals: %+v", got)
	}

	end := start.Add(2 * time.Hour)
	err = s.UpdateSessionTotals(ctx, "sess-1",
		decimal.RequireFromString("10.50"),
		decimal.RequireFromString("8.25"),
		decimal.RequireFromString("1.10"),
		end)
	if err != nil {
		t.Fatalf("UpdateSessionTotals() failed: %v", err)
	}

	got, _, err = s.SessionByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionByID() after update failed: %v", err)
	}
	if !got.Closed() {
		t.Error("session still open after totals update")
	}
	if !got.TotalCost.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("TotalCost = %s, want 10.50", got.TotalCost)
	}
	if !got.TotalReturn.Equal(decimal.RequireFromString("8.25")) {
		t.Errorf("TotalReturn = %s, want 8.25", got.TotalReturn)
	}
	if !got.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, end)
	}
}

func TestUpdateSessionTotals_Overwrites(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	if err := s.InsertSession(ctx, gamedata.Session{ID: "sess-1", StartTime: time.Now().UTC()}); err != nil {
		t.Fatalf("InsertSession() failed: %v", err)
	}

	// Totals are recompute-and-store: the second call replaces, never adds.
	end := time.Now().UTC()
	for _, cost := range []string{"5", "2"} {
		if err := s.UpdateSessionTotals(ctx, "sess-1",
			decimal.RequireFromString(cost), decimal.Zero, decimal.Zero, end); err != nil {
			t.Fatalf("UpdateSessionTotals(%s) failed: %v", cost, err)
		}
	}

	got, _, err := s.SessionByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if !got.TotalCost.Equal(decimal.RequireFromString("2")) {
		t.Errorf("TotalCost = %s, want 2 (overwrite, not sum)", got.TotalCost)
	}
}

func TestAllSessions_MostRecentFirst(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.InsertSession(ctx, gamedata.Session{
			ID:        id,
			StartTime: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("InsertSession(%s) failed: %v", id, err)
		}
	}

	got, err := s.AllSessions(ctx)
	if err != nil {
		t.Fatalf("AllSessions() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(got))
	}
	if got[0].ID != "new" || got[2].ID != "old" {
		t.Errorf("order = %s,%s,%s; want new,mid,old", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestDeleteSession_RemovesEventsAndLoot(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	if err := s.InsertSession(ctx, gamedata.Session{ID: "sess-1", StartTime: time.Now().UTC()}); err != nil {
		t.Fatalf("InsertSession() failed: %v", err)
	}
	if _, err := s.InsertEvent(ctx, gamedata.Event{
		Timestamp:  time.Now().UTC(),
		EventType:  gamedata.EventLoot,
		RawMessage: "You received Animal Oil x (10)",
		SessionID:  "sess-1",
	}); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}
	if err := s.UpsertSessionLootItem(ctx, gamedata.SessionLootItem{
		SessionID: "sess-1",
		ItemName:  "Animal Oil",
		Quantity:  10,
	}); err != nil {
		t.Fatalf("UpsertSessionLootItem() failed: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() failed: %v", err)
	}

	_, ok, err := s.SessionByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if ok {
		t.Error("session still present after delete")
	}
	events, _, err := s.SessionEvents(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionEvents() failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("%d events survived the delete", len(events))
	}
	loot, err := s.SessionLootItems(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionLootItems() failed: %v", err)
	}
	if len(loot) != 0 {
		t.Errorf("%d loot items survived the delete", len(loot))
	}
}

func TestDeleteAllSessions(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := s.InsertSession(ctx, gamedata.Session{ID: id, StartTime: time.Now().UTC()}); err != nil {
			t.Fatalf("InsertSession(%s) failed: %v", id, err)
		}
	}
	if err := s.DeleteAllSessions(ctx); err != nil {
		t.Fatalf("DeleteAllSessions() failed: %v", err)
	}

	got, err := s.AllSessions(ctx)
	if err != nil {
		t.Fatalf("AllSessions() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("%d sessions survived the clear", len(got))
	}
}
