// Package content is the static reference table the recorder validates
// activity against: surah ayah counts and hadith collection sizes.
// Text delivery lives elsewhere.
package content

import (
	"sort"
	"strconv"
	"strings"

	"github.com/noor-reader/noor/internal/domain"
)

// ayahCounts[i] is the number of ayahs in surah i+1.
var ayahCounts = [114]int{
	7, 286, 200, 176, 120, 165, 206, 75, 129, 109, 123, 111, 43, 52, 99, 128,
	111, 110, 98, 135, 112, 78, 118, 64, 77, 227, 93, 88, 69, 60, 34, 30, 73,
	54, 45, 83, 182, 88, 75, 85, 54, 53, 89, 59, 37, 35, 38, 29, 18, 45, 60,
	49, 62, 55, 78, 96, 29, 22, 24, 13, 14, 11, 11, 18, 12, 12, 30, 52, 52,
	44, 28, 28, 20, 56, 40, 31, 50, 40, 46, 42, 29, 19, 36, 25, 22, 17, 19,
	26, 30, 20, 15, 21, 11, 8, 8, 19, 5, 8, 8, 11, 11, 8, 3, 9, 5, 4, 7, 3,
	6, 3, 5, 4, 5, 6,
}

// hadithCollections maps a collection slug to its highest hadith number.
var hadithCollections = map[string]int{
	"bukhari":        7563,
	"muslim":         7470,
	"abudawud":       5274,
	"tirmidhi":       3956,
	"nasai":          5758,
	"ibnmajah":       4341,
	"nawawi40":       42,
	"riyadussalihin": 1896,
}

// MorningDhikrUnit is the only unit accepted for KindDhikr.
const MorningDhikrUnit = "morning"

// Catalog implements domain.ContentCatalog over the static tables.
type Catalog struct{}

// New returns the static catalog.
func New() Catalog { return Catalog{} }

// SurahCount returns the number of surahs.
func SurahCount() int { return len(ayahCounts) }

// AyahCount returns the ayah count of surah n (1-based), or 0 if out of range.
func AyahCount(n int) int {
	if n < 1 || n > len(ayahCounts) {
		return 0
	}
	return ayahCounts[n-1]
}

// Collections returns the known hadith collection slugs, sorted.
func Collections() []string {
	out := make([]string, 0, len(hadithCollections))
	for c := range hadithCollections {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves unitID for the given kind.
//
//	surah:  "1".."114"
//	hadith: "<collection>:<number>"
//	dua:    any non-empty id without whitespace
//	dhikr:  "morning"
func (Catalog) Lookup(kind domain.ActivityKind, unitID string) (domain.ContentUnit, bool) {
	unitID = strings.TrimSpace(unitID)
	switch kind {
	case domain.KindSurah:
		n, err := strconv.Atoi(unitID)
		if err != nil || AyahCount(n) == 0 {
			return domain.ContentUnit{}, false
		}
		return domain.ContentUnit{Kind: kind, ID: strconv.Itoa(n), Markers: AyahCount(n)}, true

	case domain.KindHadith:
		coll, num, ok := strings.Cut(unitID, ":")
		if !ok {
			return domain.ContentUnit{}, false
		}
		coll = strings.ToLower(coll)
		size, known := hadithCollections[coll]
		n, err := strconv.Atoi(num)
		if !known || err != nil || n < 1 || n > size {
			return domain.ContentUnit{}, false
		}
		return domain.ContentUnit{Kind: kind, ID: coll + ":" + strconv.Itoa(n), Collection: coll}, true

	case domain.KindDua:
		if unitID == "" || strings.ContainsAny(unitID, " \t\n") {
			return domain.ContentUnit{}, false
		}
		return domain.ContentUnit{Kind: kind, ID: unitID}, true

	case domain.KindDhikr:
		if unitID != MorningDhikrUnit {
			return domain.ContentUnit{}, false
		}
		return domain.ContentUnit{Kind: kind, ID: unitID}, true
	}
	return domain.ContentUnit{}, false
}
