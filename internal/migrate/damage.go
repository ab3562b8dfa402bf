package migrate

import "github.com/shopspring/decimal"

// damageEstimates maps a weapon type string to an estimated base damage.
// These are heuristic figures used to derive dps/eco for snapshot data that
// carries no damage values; downstream ranking depends on exact parity with
// this table, so do not "improve" the numbers.
var damageEstimates = map[string]int64{
	"Pistol":        15,
	"Rifle":         25,
	"Carbine":       20,
	"Shotgun":       35,
	"Flamethrower":  10,
	"Melee":         40,
	"Shortblades":   12,
	"Longblades":    25,
	"Axis":          30,
	"Bow":           20,
	"Crossbow":      22,
	"Mindforce":     50,
	"Support":       5,
	"RifleS":        25,
	"PistolS":       15,
	"Laser Rifle":   28,
	"Laser Pistol":  12,
	"Assault Rifle": 22,
	"Sniper Rifle":  40,
}

// defaultDamage is used for weapon types missing from the table.
const defaultDamage = 15

// estimateDamage returns the estimated base damage for a weapon type.
func estimateDamage(weaponType string) decimal.Decimal {
	if d, ok := damageEstimates[weaponType]; ok {
		return decimal.NewFromInt(d)
	}
	return decimal.NewFromInt(defaultDamage)
}
