// Package gamedata defines the typed records persisted by the stores.
//
// Static reference data (weapons, attachments, resources, blueprints) is
// created and refreshed exclusively by the migration pipeline and is
// read-only at runtime. Dynamic user activity (sessions, events, loot
// items, markup, loadouts, custom weapons) is owned by the ledger engine.
//
// All monetary and decay values are fixed-point decimals denominated in
// PED (the game's base currency). They are never binary floats in Go code;
// conversion to/from the REAL columns happens once, at the store boundary.
package gamedata

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType classifies a parsed chat event.
type EventType string

const (
	EventCombat    EventType = "combat"
	EventLoot      EventType = "loot"
	EventCrafting  EventType = "crafting"
	EventSkillGain EventType = "skill_gain"
	EventSkill     EventType = "skill"
	EventGlobal    EventType = "global"
	EventHOF       EventType = "hof"
	EventSystem    EventType = "system"
	EventTrade     EventType = "trade"
	EventLocation  EventType = "location"
)

// ActivityType classifies what the player was doing when a session or
// event was recorded.
type ActivityType string

const (
	ActivityHunting   ActivityType = "hunting"
	ActivityCrafting  ActivityType = "crafting"
	ActivityMining    ActivityType = "mining"
	ActivityTrading   ActivityType = "trading"
	ActivityExploring ActivityType = "exploring"
)

// Attachment types written by the migration pipeline. Amplifier types come
// through from the source data unchanged; scopes and sights are synthesized
// into the attachments store with these fixed type strings.
const (
	AttachmentScope = "Scope"
	AttachmentSight = "Sight"
)

// Weapon is a static reference weapon row. Identity is ID.
type Weapon struct {
	ID          string
	Name        string
	Ammo        int64 // ammo burn per shot
	Decay       decimal.Decimal
	WeaponType  string
	DPS         decimal.Decimal
	Eco         decimal.Decimal
	Range       int64
	Damage      decimal.Decimal
	ReloadTime  decimal.Decimal
	Hits        int64 // hits per clip
	DataUpdated time.Time
}

// Attachment is a static reference attachment row (amplifier, scope or
// sight). Identity is ID.
type Attachment struct {
	ID             string
	Name           string
	AttachmentType string
	Ammo           int64
	Decay          decimal.Decimal
	DamageBonus    decimal.Decimal
	AmmoBonus      decimal.Decimal
	DecayModifier  decimal.Decimal
	EconomyBonus   decimal.Decimal
	RangeBonus     int64
	DataUpdated    time.Time
}

// Resource is a static reference resource row keyed by name.
type Resource struct {
	Name        string
	TTValue     decimal.Decimal
	Decay       decimal.Decimal
	DataUpdated time.Time
}

// Blueprint is a crafting recipe. Materials are owned rows that cannot
// outlive the blueprint.
type Blueprint struct {
	ID             string
	Name           string
	ResultItem     string
	ResultQuantity int64
	SkillRequired  string
	ConditionLimit int64
	DataUpdated    time.Time
}

// BlueprintMaterial is one material requirement of a blueprint, unique per
// (blueprint_id, material_name).
type BlueprintMaterial struct {
	BlueprintID  string
	MaterialName string
	Quantity     int64
}

// Session is one tracked activity run. EndTime is the zero time while the
// session is open. Totals are recomputed externally and stored whole, not
// accumulated incrementally.
type Session struct {
	ID           string
	StartTime    time.Time
	EndTime      time.Time
	ActivityType ActivityType
	TotalCost    decimal.Decimal
	TotalReturn  decimal.Decimal
	TotalMarkup  decimal.Decimal
}

// Closed reports whether the session has an end time recorded.
func (s Session) Closed() bool {
	return !s.EndTime.IsZero()
}

// Event is one appended ledger entry. SessionID may reference a session
// that does not (or no longer) exists; the ledger does not enforce the
// relationship. RawMessage holds the producer's text verbatim.
type Event struct {
	ID           int64
	Timestamp    time.Time
	EventType    EventType
	ActivityType ActivityType
	RawMessage   string
	ParsedData   map[string]any
	SessionID    string // empty for out-of-session events
}

// SessionLootItem aggregates looted quantity and value per
// (session_id, item_name).
type SessionLootItem struct {
	ID            int64
	SessionID     string
	ItemName      string
	Quantity      int64
	TotalValue    decimal.Decimal
	MarkupPercent decimal.Decimal
}

// Loadout is a user-saved weapon configuration, unique by name.
type Loadout struct {
	ID          int64
	Name        string
	Weapon      string
	Amplifier   string
	Scope       string
	Sight1      string
	Sight2      string
	DamageEnh   int64
	AccuracyEnh int64
	EconomyEnh  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CustomWeapon is a user-entered weapon row, unique by name. It mirrors the
// static Weapon shape but lives in the user-data store so it survives
// re-migration of the reference data.
type CustomWeapon struct {
	ID         int64
	Name       string
	Ammo       int64
	Decay      decimal.Decimal
	WeaponType string
	DPS        decimal.Decimal
	Eco        decimal.Decimal
	Range      int64
	Damage     decimal.Decimal
	ReloadTime decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
