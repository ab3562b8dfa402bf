// Package migrate implements the one-shot pipeline that loads exporter
// JSON snapshots into the domain stores.
//
// The pipeline is a best-effort bulk load, not a transaction: a missing
// category file contributes zero rows, a malformed row is logged with its
// key and skipped, and the run always completes with a per-category count
// of what actually landed. Re-running in the default mode upserts by key
// and never duplicates rows; force mode clears each category table first
// for a full rebuild.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lewtnanny/lewtnanny/internal/gamedata"
	"github.com/lewtnanny/lewtnanny/internal/store"
)

// Category file names inside the snapshot directory.
var categoryFiles = map[string]string{
	"weapons":     "weapons.json",
	"attachments": "attachments.json",
	"scopes":      "scopes.json",
	"sights":      "sights.json",
	"resources":   "resources.json",
	"crafting":    "crafting.json",
}

// Pipeline loads snapshot JSON into the stores owned by a Manager.
type Pipeline struct {
	snapshotDir string
	manager     *store.Manager
	log         *slog.Logger
}

// NewPipeline creates a pipeline reading from snapshotDir and writing
// through the given manager's stores.
func NewPipeline(snapshotDir string, manager *store.Manager, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{snapshotDir: snapshotDir, manager: manager, log: log}
}

// MigrateAll loads every category and returns the per-category counts of
// rows that were actually written. Missing files and bad rows reduce the
// counts; they never abort the run. With force=true each category table is
// cleared before loading (full rebuild).
//
// Satisfies store.Manager's Migrator interface for first-run loading.
func (p *Pipeline) MigrateAll(ctx context.Context, force bool) (map[string]int, error) {
	if force {
		p.clearAll(ctx)
	}

	counts := map[string]int{
		"weapons":             p.migrateWeapons(ctx),
		"attachments":         p.migrateAttachments(ctx),
		"scopes":              p.migrateScopes(ctx),
		"sights":              p.migrateSights(ctx),
		"resources":           p.migrateResources(ctx),
		"blueprints":          p.migrateBlueprints(ctx),
		"blueprint_materials": p.migrateBlueprintMaterials(ctx),
	}
	return counts, nil
}

// clearAll empties every static-data table. Child tables first so the
// blueprint cascade never fires mid-clear.
func (p *Pipeline) clearAll(ctx context.Context) {
	targets := []struct {
		kind   store.Kind
		tables []string
	}{
		{store.KindCrafting, []string{"blueprint_materials", "blueprints"}},
		{store.KindResources, []string{"resources"}},
		{store.KindAttachments, []string{"attachments"}},
		{store.KindWeapons, []string{"weapons"}},
	}
	for _, t := range targets {
		s, ok := p.manager.Store(t.kind)
		if !ok {
			p.log.Warn("force clear skipped: store unavailable", "kind", t.kind)
			continue
		}
		if err := s.Clear(ctx, t.tables...); err != nil {
			p.log.Error("force clear failed", "kind", t.kind, "error", err)
		}
	}
	p.log.Info("cleared existing static data")
}

// loadSnapshot reads one category file; a missing file logs and returns
// nil so the category contributes zero rows.
func (p *Pipeline) loadSnapshot(category string) *snapshot {
	path := filepath.Join(p.snapshotDir, categoryFiles[category])
	snap, err := readSnapshot(path)
	if errors.Is(err, errMissingSource) {
		p.log.Warn("snapshot file not found", "category", category, "path", path)
		return nil
	}
	if err != nil {
		p.log.Error("snapshot unreadable", "category", category, "error", err)
		return nil
	}
	return snap
}

// sortedKeys returns the entry keys in a stable order so logs and row
// insertion order are reproducible across runs.
func sortedKeys(data map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Pipeline) migrateWeapons(ctx context.Context) int {
	snap := p.loadSnapshot("weapons")
	if snap == nil {
		return 0
	}
	ws, ok := p.manager.Store(store.KindWeapons)
	if !ok {
		p.log.Error("weapons store unavailable, skipping category")
		return 0
	}

	updated := snap.UpdatedTime()
	count := 0
	for _, id := range sortedKeys(snap.Data) {
		var entry weaponEntry
		if err := json.Unmarshal(snap.Data[id], &entry); err != nil {
			p.log.Warn("skipping weapon row", "id", id, "error", err)
			continue
		}

		weaponType := entry.Type
		if weaponType == "" {
			weaponType = "Unknown"
		}

		ammo := int64(entry.Ammo)

		// Heuristic derivations. The exporter carries no damage data, so
		// dps/eco are estimated from the type table; downstream ranking
		// depends on exact parity with these formulas.
		decayPerHit := entry.Decay
		if ammo > 0 {
			decayPerHit = entry.Decay.Div(decimal.NewFromInt(ammo))
		}
		damage := estimateDamage(entry.Type)
		dps := decimal.Zero
		if damage.IsPositive() {
			dps = damage.Div(decimal.NewFromInt(3))
		}
		eco := decimal.Zero
		if decayPerHit.IsPositive() {
			eco = damage.Div(decayPerHit)
		}

		w := gamedata.Weapon{
			ID:          id,
			Name:        id,
			Ammo:        ammo,
			Decay:       entry.Decay,
			WeaponType:  weaponType,
			DPS:         dps,
			Eco:         eco,
			DataUpdated: updated,
		}
		if err := ws.UpsertWeapon(ctx, w); err != nil {
			p.log.Warn("skipping weapon row", "id", id, "error", err)
			continue
		}
		count++
	}
	p.log.Info("migrated weapons", "count", count)
	return count
}

func (p *Pipeline) migrateAttachments(ctx context.Context) int {
	snap := p.loadSnapshot("attachments")
	if snap == nil {
		return 0
	}
	as, ok := p.manager.Store(store.KindAttachments)
	if !ok {
		p.log.Error("attachments store unavailable, skipping category")
		return 0
	}

	updated := snap.UpdatedTime()
	count := 0
	for _, id := range sortedKeys(snap.Data) {
		var entry attachmentEntry
		if err := json.Unmarshal(snap.Data[id], &entry); err != nil {
			p.log.Warn("skipping attachment row", "id", id, "error", err)
			continue
		}

		attachmentType := entry.Type
		if attachmentType == "" {
			attachmentType = "Unknown"
		}

		a := gamedata.Attachment{
			ID:             id,
			Name:           id,
			AttachmentType: attachmentType,
			Ammo:           int64(entry.Ammo),
			Decay:          entry.Decay,
			DataUpdated:    updated,
		}
		if err := as.UpsertAttachment(ctx, a); err != nil {
			p.log.Warn("skipping attachment row", "id", id, "error", err)
			continue
		}
		count++
	}
	p.log.Info("migrated attachments", "count", count)
	return count
}

// migrateScopes loads scopes into the attachments store as a synthetic
// attachment type with a fixed +20 range bonus. The bonus is a uniform
// simplification, not derived from source data.
func (p *Pipeline) migrateScopes(ctx context.Context) int {
	return p.migrateDerivedAttachments(ctx, "scopes", func(id string, entry attachmentEntry, updated gamedata.Attachment) gamedata.Attachment {
		updated.AttachmentType = gamedata.AttachmentScope
		updated.RangeBonus = 20
		return updated
	})
}

// migrateSights loads sights into the attachments store as a synthetic
// attachment type with a fixed +0.05 economy bonus.
func (p *Pipeline) migrateSights(ctx context.Context) int {
	return p.migrateDerivedAttachments(ctx, "sights", func(id string, entry attachmentEntry, updated gamedata.Attachment) gamedata.Attachment {
		updated.AttachmentType = gamedata.AttachmentSight
		updated.EconomyBonus = decimal.NewFromFloat(0.05)
		return updated
	})
}

// migrateDerivedAttachments handles the scope/sight categories, which
// share the attachment entry shape but land with synthetic bonuses.
// Derived rows are insert-or-ignore so a primary attachment row with the
// same id always wins.
func (p *Pipeline) migrateDerivedAttachments(ctx context.Context, category string, shape func(string, attachmentEntry, gamedata.Attachment) gamedata.Attachment) int {
	snap := p.loadSnapshot(category)
	if snap == nil {
		return 0
	}
	as, ok := p.manager.Store(store.KindAttachments)
	if !ok {
		p.log.Error("attachments store unavailable, skipping category", "category", category)
		return 0
	}

	updated := snap.UpdatedTime()
	count := 0
	for _, id := range sortedKeys(snap.Data) {
		var entry attachmentEntry
		if err := json.Unmarshal(snap.Data[id], &entry); err != nil {
			p.log.Warn("skipping row", "category", category, "id", id, "error", err)
			continue
		}

		a := shape(id, entry, gamedata.Attachment{
			ID:          id,
			Name:        id,
			Ammo:        int64(entry.Ammo),
			Decay:       entry.Decay,
			DataUpdated: updated,
		})
		if err := as.InsertAttachmentIgnore(ctx, a); err != nil {
			p.log.Warn("skipping row", "category", category, "id", id, "error", err)
			continue
		}
		count++
	}
	p.log.Info("migrated "+category, "count", count)
	return count
}

func (p *Pipeline) migrateResources(ctx context.Context) int {
	snap := p.loadSnapshot("resources")
	if snap == nil {
		return 0
	}
	rs, ok := p.manager.Store(store.KindResources)
	if !ok {
		p.log.Error("resources store unavailable, skipping category")
		return 0
	}

	updated := snap.UpdatedTime()
	count := 0
	for _, name := range sortedKeys(snap.Data) {
		entry, err := decodeResourceEntry(snap.Data[name])
		if err != nil {
			p.log.Warn("skipping resource row", "name", name, "error", err)
			continue
		}

		r := gamedata.Resource{
			Name:        gamedata.NormalizeName(name),
			TTValue:     entry.TTValue,
			Decay:       entry.Decay,
			DataUpdated: updated,
		}
		if err := rs.UpsertResource(ctx, r); err != nil {
			p.log.Warn("skipping resource row", "name", name, "error", err)
			continue
		}
		count++
	}
	p.log.Info("migrated resources", "count", count)
	return count
}

// Blueprint names follow the convention "<item> Blueprint" or
// "<item> Blueprint (L)"; the result item is derived by stripping those
// suffixes. Names outside the convention keep the full name.
func resultItemFromName(name string) string {
	result := strings.ReplaceAll(name, " Blueprint (L)", "")
	return strings.ReplaceAll(result, " Blueprint", "")
}

func (p *Pipeline) migrateBlueprints(ctx context.Context) int {
	snap := p.loadSnapshot("crafting")
	if snap == nil {
		return 0
	}
	cs, ok := p.manager.Store(store.KindCrafting)
	if !ok {
		p.log.Error("crafting store unavailable, skipping category")
		return 0
	}

	updated := snap.UpdatedTime()
	count := 0
	for _, id := range sortedKeys(snap.Data) {
		b := gamedata.Blueprint{
			ID:             id,
			Name:           id,
			ResultItem:     resultItemFromName(id),
			ResultQuantity: 1,
			DataUpdated:    updated,
		}
		if err := cs.UpsertBlueprint(ctx, b); err != nil {
			p.log.Warn("skipping blueprint row", "id", id, "error", err)
			continue
		}
		count++
	}
	p.log.Info("migrated blueprints", "count", count)
	return count
}

func (p *Pipeline) migrateBlueprintMaterials(ctx context.Context) int {
	snap := p.loadSnapshot("crafting")
	if snap == nil {
		return 0
	}
	cs, ok := p.manager.Store(store.KindCrafting)
	if !ok {
		return 0
	}

	count := 0
	for _, blueprintID := range sortedKeys(snap.Data) {
		pairs, ok := decodeMaterialList(snap.Data[blueprintID])
		if !ok {
			continue
		}
		for _, pair := range pairs {
			m := gamedata.BlueprintMaterial{
				BlueprintID:  blueprintID,
				MaterialName: gamedata.NormalizeName(pair.Name),
				Quantity:     pair.Qty,
			}
			if err := cs.InsertBlueprintMaterial(ctx, m); err != nil {
				p.log.Warn("skipping material row",
					"blueprint", blueprintID, "material", m.MaterialName, "error", err)
				continue
			}
			count++
		}
	}
	p.log.Info("migrated blueprint materials", "count", count)
	return count
}

// VerifyReport summarizes post-migration table contents.
type VerifyReport struct {
	Counts          map[string]int64 `json:"counts"`
	SampleWeapons   []string         `json:"sample_weapons"`
	SampleResources []string         `json:"sample_resources"`
}

// Verify returns row counts and a few sample names so an operator can
// sanity-check a migration run.
func (p *Pipeline) Verify(ctx context.Context) (*VerifyReport, error) {
	report := &VerifyReport{Counts: p.manager.Counts(ctx)}

	if ws, ok := p.manager.Store(store.KindWeapons); ok {
		weapons, err := ws.SearchWeapons(ctx, "", 5)
		if err != nil {
			return nil, fmt.Errorf("verify weapons: %w", err)
		}
		for _, w := range weapons {
			report.SampleWeapons = append(report.SampleWeapons, w.Name)
		}
	}

	if rs, ok := p.manager.Store(store.KindResources); ok {
		resources, err := rs.SearchResources(ctx, "", 5)
		if err != nil {
			return nil, fmt.Errorf("verify resources: %w", err)
		}
		for _, r := range resources {
			report.SampleResources = append(report.SampleResources, r.Name)
		}
	}

	return report, nil
}
