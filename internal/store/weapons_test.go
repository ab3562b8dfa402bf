package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

func openTestStore(t *testing.T, kind Kind) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), kind.FileName()), kind)
	if err != nil {
		t.Fatalf("open %s store: %v", kind, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func TestWeaponRoundTrip(t *testing.T) {
	s := openTestStore(t, KindWeapons)
	ctx := context.Background()

	w := gamedata.Weapon{
		ID:          "Korss H400 (L)",
		Name:        "Korss H400 (L)",
		Ammo:        10,
		Decay:       dec(t, "0.05"),
		WeaponType:  "Pistol",
		DPS:         dec(t, "5"),
		Eco:         dec(t, "3000"),
		Range:       55,
		Damage:      dec(t, "15"),
		ReloadTime:  dec(t, "3"),
		Hits:        36,
		DataUpdated: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.UpsertWeapon(ctx, w); err != nil {
		t.Fatalf("UpsertWeapon() failed: %v", err)
	}

	got, ok, err := s.WeaponByName(ctx, "Korss H400 (L)")
	if err != nil {
		t.Fatalf("WeaponByName() failed: %v", err)
	}
	if !ok {
		t.Fatal("WeaponByName() found nothing")
	}

	if got.ID != w.ID || got.Name != w.Name || got.Ammo != w.Ammo ||
		got.WeaponType != w.WeaponType || got.Range != w.Range || got.Hits != w.Hits {
		t.Errorf("scalar fields mismatch: got %+v", got)
	}
	if !got.Decay.Equal(w.Decay) {
		t.Errorf("Decay = %s, want %s", got.Decay, w.Decay)
	}
	if !got.DPS.Equal(w.DPS) {
		t.Errorf("DPS = %s, want %s", got.DPS, w.DPS)
	}
	if !got.Eco.Equal(w.Eco) {
		t.Errorf("Eco = %s, want %s", got.Eco, w.Eco)
	}
	if !got.DataUpdated.Equal(w.DataUpdated) {
		t.Errorf("DataUpdated = %v, want %v", got.DataUpdated, w.DataUpdated)
	}
}

func TestWeaponUpsertReplaces(t *testing.T) {
	s := openTestStore(t, KindWeapons)
	ctx := context.Background()

	w := gamedata.Weapon{ID: "w1", Name: "Opalo", WeaponType: "Rifle"}
	if err := s.UpsertWeapon(ctx, w); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	w.WeaponType = "Carbine"
	if err := s.UpsertWeapon(ctx, w); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	all, err := s.AllWeapons(ctx)
	if err != nil {
		t.Fatalf("AllWeapons() failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 weapon after re-upsert, got %d", len(all))
	}
	if all[0].WeaponType != "Carbine" {
		t.Errorf("WeaponType = %q, want Carbine", all[0].WeaponType)
	}
}

func TestWeaponLookupMissing(t *testing.T) {
	s := openTestStore(t, KindWeapons)

	_, ok, err := s.WeaponByName(context.Background(), "does not exist")
	if err != nil {
		t.Fatalf("WeaponByName() failed: %v", err)
	}
	if ok {
		t.Error("WeaponByName() claimed to find a missing weapon")
	}
}

func TestSearchWeaponsOrderedAndCapped(t *testing.T) {
	s := openTestStore(t, KindWeapons)
	ctx := context.Background()

	for _, name := range []string{"Breer M2a", "Breer M1a", "Opalo", "Breer M3a"} {
		if err := s.UpsertWeapon(ctx, gamedata.Weapon{ID: name, Name: name}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	got, err := s.SearchWeapons(ctx, "Breer", 2)
	if err != nil {
		t.Fatalf("SearchWeapons() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Name != "Breer M1a" || got[1].Name != "Breer M2a" {
		t.Errorf("results out of order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestAllWeaponsEmptyIsNotNil(t *testing.T) {
	s := openTestStore(t, KindWeapons)

	got, err := s.AllWeapons(context.Background())
	if err != nil {
		t.Fatalf("AllWeapons() failed: %v", err)
	}
	if got == nil {
		t.Error("AllWeapons() returned nil, want empty slice")
	}
}
