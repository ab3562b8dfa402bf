package gamedata

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes an item, resource or material name before it
// is used as a store key. Chat lines and snapshot exports disagree on
// unicode composition for accented item names, so everything is NFC
// normalized and trimmed once here.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
