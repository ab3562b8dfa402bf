package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

func TestLoadoutRoundTrip(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	l := gamedata.Loadout{
		Name:       "eco hunting",
		Weapon:     "Korss H400 (L)",
		Amplifier:  "A101",
		DamageEnh:  2,
		EconomyEnh: 5,
	}
	if err := s.SaveLoadout(ctx, l, now); err != nil {
		t.Fatalf("SaveLoadout() failed: %v", err)
	}

	got, ok, err := s.LoadoutByName(ctx, "eco hunting")
	if err != nil || !ok {
		t.Fatalf("LoadoutByName() = ok=%v err=%v", ok, err)
	}
	if got.Weapon != l.Weapon || got.Amplifier != l.Amplifier ||
		got.DamageEnh != 2 || got.EconomyEnh != 5 {
		t.Errorf("loadout mismatch: %+v", got)
	}

	// Saving again under the same name updates in place.
	l.Weapon = "Opalo"
	if err := s.SaveLoadout(ctx, l, now.Add(time.Hour)); err != nil {
		t.Fatalf("second SaveLoadout() failed: %v", err)
	}
	all, err := s.AllLoadouts(ctx)
	if err != nil {
		t.Fatalf("AllLoadouts() failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 loadout, got %d", len(all))
	}
	if all[0].Weapon != "Opalo" {
		t.Errorf("Weapon = %q after update", all[0].Weapon)
	}

	if err := s.DeleteLoadout(ctx, "eco hunting"); err != nil {
		t.Fatalf("DeleteLoadout() failed: %v", err)
	}
	_, ok, err = s.LoadoutByName(ctx, "eco hunting")
	if err != nil {
		t.Fatalf("LoadoutByName() after delete failed: %v", err)
	}
	if ok {
		t.Error("loadout still present after delete")
	}
}

func TestCustomWeaponRoundTrip(t *testing.T) {
	s := openTestStore(t, KindUserData)
	ctx := context.Background()
	now := time.Now().UTC()

	w := gamedata.CustomWeapon{
		Name:       "My Tweaked Rifle",
		Ammo:       25,
		Decay:      decimal.RequireFromString("0.12"),
		WeaponType: "Rifle",
		Damage:     decimal.RequireFromString("44"),
		ReloadTime: decimal.RequireFromString("2.8"),
		Range:      62,
	}
	if err := s.SaveCustomWeapon(ctx, w, now); err != nil {
		t.Fatalf("SaveCustomWeapon() failed: %v", err)
	}

	got, ok, err := s.CustomWeaponByName(ctx, "My Tweaked Rifle")
	if err != nil || !ok {
		t.Fatalf("CustomWeaponByName() = ok=%v err=%v", ok, err)
	}
	if got.Ammo != 25 || got.WeaponType != "Rifle" || got.Range != 62 {
		t.Errorf("custom weapon mismatch: %+v", got)
	}
	if !got.Damage.Equal(w.Damage) {
		t.Errorf("Damage = %s, want %s", got.Damage, w.Damage)
	}

	if err := s.DeleteCustomWeapon(ctx, "My Tweaked Rifle"); err != nil {
		t.Fatalf("DeleteCustomWeapon() failed: %v", err)
	}
	all, err := s.AllCustomWeapons(ctx)
	if err != nil {
		t.Fatalf("AllCustomWeapons() failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("%d custom weapons after delete", len(all))
	}
}
