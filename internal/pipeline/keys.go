package pipeline

import (
	"github.com/mushafdata/qurandb/internal/database"
	"github.com/mushafdata/qurandb/internal/quranapi"
)

// EnumerateKeys produces the canonical ordered list of verse keys from
// chapter metadata: chapter-ascending, verse-number-ascending, every verse
// exactly once. This ordering is the single basis for ID assignment during
// the load, so it must be reproducible from the chapter list alone.
func EnumerateKeys(suras []database.Sura) []quranapi.VerseKey {
	total := 0
	for _, sura := range suras {
		total += sura.AyatCount
	}

	keys := make([]quranapi.VerseKey, 0, total)
	for _, sura := range suras {
		for ayah := 1; ayah <= sura.AyatCount; ayah++ {
			keys = append(keys, quranapi.VerseKey{Sura: sura.ID, Ayah: ayah})
		}
	}
	return keys
}
