package econ

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateEnhancedStats_Reference(t *testing.T) {
	// base_damage=28, ammo_burn=11, decay=0.10, reload=3.0, no enhancers,
	// no attachments.
	input := WeaponInput{
		Damage:     dec("28"),
		AmmoBurn:   dec("11"),
		Decay:      dec("0.10"),
		ReloadTime: dec("3.0"),
	}

	stats := CalculateEnhancedStats(input, nil, nil, 0, 0)

	if !stats.AmmoCost.Equal(dec("0.0011")) {
		t.Errorf("AmmoCost = %s, want 0.0011", stats.AmmoCost)
	}
	if !stats.TotalCostPerShot.Equal(dec("0.1011")) {
		t.Errorf("TotalCostPerShot = %s, want 0.1011", stats.TotalCostPerShot)
	}
	if got := stats.DPS.StringFixed(4); got != "9.3333" {
		t.Errorf("DPS = %s, want 9.3333", got)
	}
	// dpp = 28 / (0.1011 * 100) ~= 2.7695
	if got := stats.DamagePerPEC.StringFixed(4); got != "2.7695" {
		t.Errorf("DamagePerPEC = %s, want 2.7695", got)
	}
}

func TestCalculateEnhancedStats_Enhancers(t *testing.T) {
	input := WeaponInput{
		Damage:     dec("20"),
		AmmoBurn:   dec("10"),
		Decay:      dec("0.10"),
		ReloadTime: dec("2"),
	}

	// 3 damage enhancers: x1.3 on damage and ammo. 10 economy enhancers:
	// x0.9 on decay.
	stats := CalculateEnhancedStats(input, nil, nil, 3, 10)

	if !stats.Damage.Equal(dec("26")) {
		t.Errorf("Damage = %s, want 26", stats.Damage)
	}
	if !stats.AmmoBurn.Equal(dec("13")) {
		t.Errorf("AmmoBurn = %s, want 13", stats.AmmoBurn)
	}
	if !stats.Decay.Equal(dec("0.09")) {
		t.Errorf("Decay = %s, want 0.09", stats.Decay)
	}
}

func TestCalculateEnhancedStats_AmplifierAddsAfterEnhancers(t *testing.T) {
	input := WeaponInput{
		Damage:     dec("20"),
		AmmoBurn:   dec("10"),
		Decay:      dec("0.10"),
		ReloadTime: dec("2"),
	}
	amp := &gamedata.Attachment{
		DamageBonus:   dec("5"),
		AmmoBonus:     dec("2"),
		DecayModifier: dec("0.01"),
	}

	// Enhancers scale the base first; amplifier bonuses land flat on top,
	// so the amplifier itself is not enhanced.
	stats := CalculateEnhancedStats(input, amp, nil, 1, 0)

	if !stats.Damage.Equal(dec("27")) { // 20*1.1 + 5
		t.Errorf("Damage = %s, want 27", stats.Damage)
	}
	if !stats.AmmoBurn.Equal(dec("13")) { // 10*1.1 + 2
		t.Errorf("AmmoBurn = %s, want 13", stats.AmmoBurn)
	}
	if !stats.Decay.Equal(dec("0.11")) { // 0.10 + 0.01
		t.Errorf("Decay = %s, want 0.11", stats.Decay)
	}
}

func TestCalculateEnhancedStats_ScopeRange(t *testing.T) {
	input := WeaponInput{Damage: dec("10"), ReloadTime: dec("2"), Range: 55}
	scope := &gamedata.Attachment{AttachmentType: gamedata.AttachmentScope}

	without := CalculateEnhancedStats(input, nil, nil, 0, 0)
	if without.EffectiveRange != 55 {
		t.Errorf("range without scope = %d, want 55", without.EffectiveRange)
	}

	with := CalculateEnhancedStats(input, nil, scope, 0, 0)
	if with.EffectiveRange != 66 { // 55 * 1.2 truncated
		t.Errorf("range with scope = %d, want 66", with.EffectiveRange)
	}
}

func TestCalculateEnhancedStats_ZeroGuards(t *testing.T) {
	stats := CalculateEnhancedStats(WeaponInput{Damage: dec("10")}, nil, nil, 0, 0)
	if !stats.DPS.IsZero() {
		t.Errorf("DPS = %s with zero reload, want 0", stats.DPS)
	}

	free := CalculateEnhancedStats(WeaponInput{Damage: dec("10"), ReloadTime: dec("2")}, nil, nil, 0, 0)
	if !free.DamagePerPEC.IsZero() {
		t.Errorf("DamagePerPEC = %s with zero cost, want 0", free.DamagePerPEC)
	}
}

func TestBaseHelpers(t *testing.T) {
	w := WeaponInput{Damage: dec("28"), AmmoBurn: dec("11"), Decay: dec("0.10"), ReloadTime: dec("3")}

	if got := BaseCostPerShot(w); !got.Equal(dec("0.1011")) {
		t.Errorf("BaseCostPerShot = %s, want 0.1011", got)
	}
	if got := BaseDPS(w).StringFixed(4); got != "9.3333" {
		t.Errorf("BaseDPS = %s, want 9.3333", got)
	}
	if got := BaseDPS(WeaponInput{Damage: dec("28")}); !got.IsZero() {
		t.Errorf("BaseDPS with zero reload = %s, want 0", got)
	}
}

func TestCalculateSessionStats_LinearScaling(t *testing.T) {
	stats := EnhancedStats{
		Damage:           dec("28"),
		AmmoBurn:         dec("11"),
		Decay:            dec("0.10"),
		TotalCostPerShot: dec("0.1011"),
		DPS:              dec("9.3333"),
		DamagePerPEC:     dec("2.7695"),
	}

	session := CalculateSessionStats(stats, 1000)

	if session.ShotsFired != 1000 {
		t.Errorf("ShotsFired = %d", session.ShotsFired)
	}
	if !session.TotalCost.Equal(dec("101.1")) {
		t.Errorf("TotalCost = %s, want 101.1", session.TotalCost)
	}
	if !session.TotalDamage.Equal(dec("28000")) {
		t.Errorf("TotalDamage = %s, want 28000", session.TotalDamage)
	}
	if !session.AvgCostPerShot.Equal(stats.TotalCostPerShot) {
		t.Errorf("AvgCostPerShot = %s", session.AvgCostPerShot)
	}

	zero := CalculateSessionStats(stats, 0)
	if !zero.TotalCost.IsZero() || !zero.TotalDamage.IsZero() {
		t.Errorf("zero shots produced nonzero totals: %+v", zero)
	}
}

func TestCalculateEnhancedStats_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := WeaponInput{
			Damage:     decimal.New(rapid.Int64Range(1, 10_000).Draw(t, "damage"), -2),
			AmmoBurn:   decimal.New(rapid.Int64Range(0, 100_000).Draw(t, "ammo"), -2),
			Decay:      decimal.New(rapid.Int64Range(1, 10_000).Draw(t, "decay"), -4),
			ReloadTime: decimal.New(rapid.Int64Range(1, 100).Draw(t, "reload"), -1),
			Range:      rapid.Int64Range(0, 200).Draw(t, "range"),
		}
		damageEnh := rapid.Int64Range(0, 10).Draw(t, "damageEnh")
		economyEnh := rapid.Int64Range(0, 10).Draw(t, "economyEnh")

		stats := CalculateEnhancedStats(input, nil, nil, damageEnh, economyEnh)

		// Cost decomposes exactly.
		if !stats.TotalCostPerShot.Equal(stats.AmmoCost.Add(stats.Decay)) {
			t.Fatalf("cost decomposition broken: %s != %s + %s",
				stats.TotalCostPerShot, stats.AmmoCost, stats.Decay)
		}

		// Damage enhancers never reduce damage; economy enhancers never
		// increase decay.
		if stats.Damage.LessThan(input.Damage) {
			t.Fatalf("enhanced damage %s below base %s", stats.Damage, input.Damage)
		}
		if stats.Decay.GreaterThan(input.Decay) {
			t.Fatalf("enhanced decay %s above base %s", stats.Decay, input.Decay)
		}

		// dps = damage/reload exactly, since reload is always positive here.
		if !stats.DPS.Equal(stats.Damage.Div(input.ReloadTime)) {
			t.Fatalf("dps mismatch: %s", stats.DPS)
		}
	})
}
