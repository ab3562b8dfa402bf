package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// snapshotTimeLayout is the fixed timestamp format of the exporter's
// "updated" field, e.g. "20240315T193205".
const snapshotTimeLayout = "20060102T150405"

// errMissingSource marks an absent category file. Non-fatal: the category
// contributes zero rows and migration continues.
var errMissingSource = errors.New("source file missing")

// snapshot is the common envelope of every category file:
// {"updated": "<YYYYMMDDTHHMMSS>", "data": {<key>: <attributes-or-list>}}.
// Entry shapes are duck-typed per category, so values stay raw here and are
// decoded by the per-category loaders.
type snapshot struct {
	Updated string                     `json:"updated"`
	Data    map[string]json.RawMessage `json:"data"`
}

// readSnapshot loads and decodes one category file. A missing file returns
// errMissingSource; any other failure is a real error.
func readSnapshot(path string) (*snapshot, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errMissingSource
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// UpdatedTime parses the envelope timestamp. An empty or malformed value
// yields the zero time; rows are still loaded, just without a data_updated
// stamp.
func (s *snapshot) UpdatedTime() time.Time {
	if s.Updated == "" {
		return time.Time{}
	}
	t, err := time.Parse(snapshotTimeLayout, s.Updated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// flexInt decodes an integer that the exporter writes either as a JSON
// number or as a quoted string ("ammo": "10").
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("parse int %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// weaponEntry is one weapons.json attribute block. decimal.Decimal accepts
// both quoted and bare numbers, matching the exporter's mixed output.
type weaponEntry struct {
	Type  string          `json:"type"`
	Ammo  flexInt         `json:"ammo"`
	Decay decimal.Decimal `json:"decay"`
}

// attachmentEntry is one attachments/scopes/sights.json attribute block.
type attachmentEntry struct {
	Type  string          `json:"type"`
	Ammo  flexInt         `json:"ammo"`
	Decay decimal.Decimal `json:"decay"`
}

// resourceEntry is the decoded form of a resources.json value, which the
// exporter writes in three shapes: a bare number (tt_value with decay 0), a
// numeric string, or an object with tt_value/decay fields.
type resourceEntry struct {
	TTValue decimal.Decimal
	Decay   decimal.Decimal
}

// decodeResourceEntry dispatches on the raw shape and fails closed on
// anything unrecognized.
func decodeResourceEntry(raw json.RawMessage) (resourceEntry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return resourceEntry{}, fmt.Errorf("empty resource entry")
	}

	if trimmed[0] == '{' {
		var obj struct {
			TTValue decimal.Decimal `json:"tt_value"`
			Decay   decimal.Decimal `json:"decay"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return resourceEntry{}, fmt.Errorf("decode resource object: %w", err)
		}
		return resourceEntry{TTValue: obj.TTValue, Decay: obj.Decay}, nil
	}

	// Bare number or numeric string: tt_value only.
	var tt decimal.Decimal
	if err := json.Unmarshal(trimmed, &tt); err != nil {
		return resourceEntry{}, fmt.Errorf("decode resource value: %w", err)
	}
	return resourceEntry{TTValue: tt, Decay: decimal.Zero}, nil
}

// materialPair is one decoded [material_name, quantity] entry from a
// crafting.json material list.
type materialPair struct {
	Name string
	Qty  int64
}

// decodeMaterialList decodes a crafting.json value: a list of
// [material_name, quantity] pairs. Values that are not lists, and pairs
// with fewer than two elements, decode to nothing - the blueprint itself
// is still valid without materials.
func decodeMaterialList(raw json.RawMessage) ([]materialPair, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var list [][]json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, false
	}

	pairs := make([]materialPair, 0, len(list))
	for _, pair := range list {
		if len(pair) < 2 {
			continue
		}
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			continue
		}
		var qty flexInt
		if err := json.Unmarshal(pair[1], &qty); err != nil {
			continue
		}
		pairs = append(pairs, materialPair{Name: name, Qty: int64(qty)})
	}
	return pairs, true
}
