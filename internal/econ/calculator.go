// Package econ derives per-shot weapon economics. Everything here is
// pure fixed-point arithmetic over decimal values; nothing touches
// storage. Monetary amounts are PED, with PEC = 1/100 PED appearing only
// inside the damage-per-PEC ratio.
package econ

import (
	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
)

var (
	enhStepDamage  = decimal.RequireFromString("0.1")
	enhStepEconomy = decimal.RequireFromString("0.01")
	scopeRangeMult = decimal.RequireFromString("1.2")
	ammoToPED      = decimal.NewFromInt(10000)
	pedToPEC       = decimal.NewFromInt(100)
)

// WeaponInput is the base weapon profile fed to the calculator.
type WeaponInput struct {
	Damage     decimal.Decimal
	AmmoBurn   decimal.Decimal
	Decay      decimal.Decimal
	Range      int64
	ReloadTime decimal.Decimal
}

// EnhancedStats is the derived per-shot profile after enhancers and
// attachments are applied.
type EnhancedStats struct {
	Damage           decimal.Decimal
	AmmoBurn         decimal.Decimal
	Decay            decimal.Decimal
	AmmoCost         decimal.Decimal
	TotalCostPerShot decimal.Decimal
	DPS              decimal.Decimal
	DamagePerPEC     decimal.Decimal
	EffectiveRange   int64
}

// SessionStats scales a per-shot profile to a whole session.
type SessionStats struct {
	ShotsFired     int64
	TotalAmmoUsed  decimal.Decimal
	TotalDecay     decimal.Decimal
	TotalCost      decimal.Decimal
	TotalDamage    decimal.Decimal
	AvgCostPerShot decimal.Decimal
	AvgDPS         decimal.Decimal
	DamagePerPEC   decimal.Decimal
}

// BaseCostPerShot is decay plus ammo burn converted to PED at the fixed
// 1:10000 rate, with no enhancers applied.
func BaseCostPerShot(w WeaponInput) decimal.Decimal {
	return w.Decay.Add(w.AmmoBurn.Div(ammoToPED))
}

// BaseDPS is damage over reload time, or zero when reload time is not
// positive.
func BaseDPS(w WeaponInput) decimal.Decimal {
	if w.ReloadTime.IsPositive() {
		return w.Damage.Div(w.ReloadTime)
	}
	return decimal.Zero
}

// CalculateEnhancedStats applies damage and economy enhancers, an
// optional amplifier and an optional scope to the base weapon. Enhancer
// multipliers scale the base stats first; amplifier bonuses are then
// added flat, so an amplifier is not itself enhanced. A scope stretches
// range by 1.2, truncated to a whole meter.
func CalculateEnhancedStats(w WeaponInput, amplifier, scope *gamedata.Attachment, damageEnh, economyEnh int64) EnhancedStats {
	damageMult := decimal.NewFromInt(1).Add(enhStepDamage.Mul(decimal.NewFromInt(damageEnh)))
	economyMult := decimal.NewFromInt(1).Sub(enhStepEconomy.Mul(decimal.NewFromInt(economyEnh)))

	damage := w.Damage.Mul(damageMult)
	ammo := w.AmmoBurn.Mul(damageMult)
	decay := w.Decay.Mul(economyMult)

	if amplifier != nil {
		damage = damage.Add(amplifier.DamageBonus)
		ammo = ammo.Add(amplifier.AmmoBonus)
		decay = decay.Add(amplifier.DecayModifier)
	}

	effectiveRange := w.Range
	if scope != nil {
		effectiveRange = decimal.NewFromInt(w.Range).Mul(scopeRangeMult).IntPart()
	}

	ammoCost := ammo.Div(ammoToPED)
	totalCost := ammoCost.Add(decay)

	dps := decimal.Zero
	if w.ReloadTime.IsPositive() {
		dps = damage.Div(w.ReloadTime)
	}

	dpp := decimal.Zero
	if costPEC := totalCost.Mul(pedToPEC); costPEC.IsPositive() {
		dpp = damage.Div(costPEC)
	}

	return EnhancedStats{
		Damage:           damage,
		AmmoBurn:         ammo,
		Decay:            decay,
		AmmoCost:         ammoCost,
		TotalCostPerShot: totalCost,
		DPS:              dps,
		DamagePerPEC:     dpp,
		EffectiveRange:   effectiveRange,
	}
}

// CalculateSessionStats scales the per-shot profile linearly by the
// number of shots fired. No error conditions: zero shots yields zeros.
func CalculateSessionStats(s EnhancedStats, shotsFired int64) SessionStats {
	n := decimal.NewFromInt(shotsFired)
	return SessionStats{
		ShotsFired:     shotsFired,
		TotalAmmoUsed:  s.AmmoBurn.Mul(n),
		TotalDecay:     s.Decay.Mul(n),
		TotalCost:      s.TotalCostPerShot.Mul(n),
		TotalDamage:    s.Damage.Mul(n),
		AvgCostPerShot: s.TotalCostPerShot,
		AvgDPS:         s.DPS,
		DamagePerPEC:   s.DamagePerPEC,
	}
}
