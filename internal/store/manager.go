package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Migrator loads static reference data into the stores. Implemented by the
// migration pipeline; declared here so the manager can trigger a first-run
// load without depending on the pipeline package.
type Migrator interface {
	MigrateAll(ctx context.Context, force bool) (map[string]int, error)
}

// Manager owns one Store per domain and the overall open/close lifecycle.
//
// Cross-store consistency is by construction, not transactional: each store
// commits independently, and a corrupt store disables that domain only.
type Manager struct {
	dir    string
	stores map[Kind]*Store
	log    *slog.Logger
}

// NewManager creates a manager rooted at the given data directory. Nothing
// is opened until InitializeAll or OpenAll is called.
func NewManager(dataDir string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		dir:    dataDir,
		stores: make(map[Kind]*Store, len(Kinds)),
		log:    log,
	}
}

// OpenAll opens or creates every domain store. A store that fails to open
// (corrupt file) is logged and skipped - the others stay usable - and the
// joined error is returned so callers can decide whether to abort.
// Already-open stores are left untouched, so OpenAll is idempotent.
func (m *Manager) OpenAll() error {
	var errs []error
	for _, kind := range Kinds {
		if _, ok := m.stores[kind]; ok {
			continue
		}
		s, err := Open(filepath.Join(m.dir, kind.FileName()), kind)
		if err != nil {
			m.log.Error("store unavailable", "kind", kind, "error", err)
			errs = append(errs, err)
			continue
		}
		m.stores[kind] = s
	}
	return errors.Join(errs...)
}

// InitializeAll opens every store, then runs the migrator only when the
// static reference data is completely empty (weapons + attachments +
// resources + blueprints == 0 rows). This makes first-run initialization
// idempotent without a separate already-migrated flag.
//
// A nil migrator skips the migration step entirely.
func (m *Manager) InitializeAll(ctx context.Context, migrator Migrator) error {
	if err := m.OpenAll(); err != nil {
		return fmt.Errorf("initialize stores: %w", err)
	}

	if migrator == nil {
		return nil
	}

	counts := m.Counts(ctx)
	total := counts["weapons"] + counts["attachments"] + counts["resources"] + counts["blueprints"]
	if total > 0 {
		m.log.Info("static game data already present, skipping migration",
			"weapons", counts["weapons"],
			"attachments", counts["attachments"],
			"resources", counts["resources"],
			"blueprints", counts["blueprints"],
		)
		return nil
	}

	m.log.Info("no static game data found, running migration")
	migrated, err := migrator.MigrateAll(ctx, false)
	if err != nil {
		return fmt.Errorf("first-run migration: %w", err)
	}
	m.log.Info("migration complete", "counts", migrated)
	return nil
}

// Store returns the open store for a kind, or ok=false when the kind is
// unknown, not yet opened, or was disabled by a corrupt file.
func (m *Manager) Store(kind Kind) (*Store, bool) {
	s, ok := m.stores[kind]
	return s, ok
}

// countedTables maps count report keys to their (kind, table) source.
var countedTables = []struct {
	key   string
	kind  Kind
	table string
}{
	{"sessions", KindUserData, "sessions"},
	{"events", KindUserData, "events"},
	{"weapons", KindWeapons, "weapons"},
	{"attachments", KindAttachments, "attachments"},
	{"resources", KindResources, "resources"},
	{"blueprints", KindCrafting, "blueprints"},
	{"blueprint_materials", KindCrafting, "blueprint_materials"},
}

// Counts returns row counts across all domains. It never fails: a domain
// whose store is unavailable or whose query errors contributes 0 and a
// logged warning. Partial information beats total failure here.
func (m *Manager) Counts(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64, len(countedTables))
	for _, ct := range countedTables {
		counts[ct.key] = 0
		s, ok := m.stores[ct.kind]
		if !ok {
			m.log.Warn("count unavailable: store not open", "kind", ct.kind, "table", ct.table)
			continue
		}
		n, err := s.Count(ctx, ct.table)
		if err != nil {
			m.log.Warn("count failed", "kind", ct.kind, "table", ct.table, "error", err)
			continue
		}
		counts[ct.key] = n
	}
	return counts
}

// CloseAll releases every store handle. Safe to call multiple times.
func (m *Manager) CloseAll() error {
	var errs []error
	for kind, s := range m.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", kind, err))
		}
		delete(m.stores, kind)
	}
	return errors.Join(errs...)
}
