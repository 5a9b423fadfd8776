package pipeline

import (
	"log"

	"github.com/mushafdata/qurandb/internal/database"
	"github.com/mushafdata/qurandb/internal/quranapi"
)

// LoadStats summarizes a sequential load.
type LoadStats struct {
	AyatsInserted int
	WordsInserted int
	MissingKeys   []quranapi.VerseKey
}

// Load walks the canonical key sequence once and inserts every payload
// present in the result set, assigning ayat and word ids from sequential
// counters that start at 1 and advance only on insert. Keys still missing
// after recovery are skipped and the counters do not move for them, so ids
// stay contiguous but no longer line up with canonical positions when a key
// is lost. All rows go into a single transaction committed at the end; a
// failure mid-load rolls the whole run back.
func Load(db *database.Database, variant database.Variant, keys []quranapi.VerseKey, payloads map[quranapi.VerseKey]*quranapi.VersePayload) (*LoadStats, error) {
	batch, err := db.BeginVerseBatch(variant)
	if err != nil {
		return nil, err
	}

	stats := &LoadStats{}
	ayatID := 1
	wordID := 1
	for _, key := range keys {
		payload, ok := payloads[key]
		if !ok {
			log.Printf("Skipping missing %s", key)
			stats.MissingKeys = append(stats.MissingKeys, key)
			continue
		}

		if err := batch.InsertAyat(ayatID, payload); err != nil {
			batch.Rollback()
			return nil, err
		}
		for _, word := range payload.Words {
			if err := batch.InsertWord(wordID, ayatID, word); err != nil {
				batch.Rollback()
				return nil, err
			}
			wordID++
			stats.WordsInserted++
		}
		ayatID++
		stats.AyatsInserted++
	}

	if err := batch.Commit(); err != nil {
		return nil, err
	}
	return stats, nil
}
