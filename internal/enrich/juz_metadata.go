// Package enrich holds the downstream passes that backfill division and
// chapter columns once verse rows exist. Each pass probes the current
// schema before mutating, so all of them are safe to re-run.
package enrich

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mushafdata/qurandb/internal/database"
)

// JuzMetadataStats summarizes a juz metadata import.
type JuzMetadataStats struct {
	Updated int
	Skipped int
}

// JuzMetadataImporter backfills Juzs.verses_count and the first/last ayat
// references from a read-only juz metadata database.
type JuzMetadataImporter struct {
	TargetPath string
	SourcePath string
}

func NewJuzMetadataImporter(targetPath, sourcePath string) *JuzMetadataImporter {
	return &JuzMetadataImporter{TargetPath: targetPath, SourcePath: sourcePath}
}

// Run imports verse spans per juz. Rows whose verse keys cannot be mapped
// onto loaded ayats are skipped and counted, never fatal. Only valid once
// the Ayats table is populated.
func (i *JuzMetadataImporter) Run() (*JuzMetadataStats, error) {
	if _, err := os.Stat(i.SourcePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("source database not found: %s", i.SourcePath)
	}
	if _, err := os.Stat(i.TargetPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("target database not found: %s", i.TargetPath)
	}

	target, err := database.Open(i.TargetPath)
	if err != nil {
		return nil, err
	}
	defer target.Close()

	if err := ensureJuzMetadataColumns(target.DB); err != nil {
		return nil, err
	}

	source, err := database.OpenReadOnly(i.SourcePath)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	rows, err := source.Query(
		`SELECT juz_number, verses_count, first_verse_key, last_verse_key FROM juz ORDER BY juz_number`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query juz metadata: %w", err)
	}
	defer rows.Close()

	stats := &JuzMetadataStats{}
	for rows.Next() {
		var (
			juzNumber, versesCount int
			firstKey, lastKey      string
		)
		if err := rows.Scan(&juzNumber, &versesCount, &firstKey, &lastKey); err != nil {
			return nil, fmt.Errorf("failed to scan juz row: %w", err)
		}

		if err := i.updateJuz(target.DB, juzNumber, versesCount, firstKey, lastKey); err != nil {
			log.Printf("Skip juz %d: %v", juzNumber, err)
			stats.Skipped++
			continue
		}
		stats.Updated++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating juz rows: %w", err)
	}

	return stats, nil
}

func (i *JuzMetadataImporter) updateJuz(db *sql.DB, juzNumber, versesCount int, firstKey, lastKey string) error {
	firstSura, firstAyah, err := parseVerseKey(firstKey)
	if err != nil {
		return err
	}
	lastSura, lastAyah, err := parseVerseKey(lastKey)
	if err != nil {
		return err
	}

	firstID, err := mapToAyatID(db, firstSura, firstAyah)
	if err != nil {
		return err
	}
	lastID, err := mapToAyatID(db, lastSura, lastAyah)
	if err != nil {
		return err
	}

	// juz_id equals juz_number in this store.
	_, err = db.Exec(
		`UPDATE Juzs SET verses_count = ?, first_ayat_id = ?, last_ayat_id = ? WHERE juz_id = ?`,
		versesCount, firstID, lastID, juzNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update juz %d: %w", juzNumber, err)
	}
	return nil
}

func ensureJuzMetadataColumns(db *sql.DB) error {
	columns := []string{"verses_count INTEGER", "first_ayat_id INTEGER", "last_ayat_id INTEGER"}
	for _, column := range columns {
		if err := database.AddColumnIfMissing(db, "Juzs", column); err != nil {
			return err
		}
	}
	// Speeds up the (sura_id, ayat_number) -> ayat_id lookups below.
	if _, err := db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_ayats_sura_number ON Ayats(sura_id, ayat_number)`,
	); err != nil {
		return fmt.Errorf("failed to create lookup index: %w", err)
	}
	return nil
}

// parseVerseKey splits a "2:142" style verse key.
func parseVerseKey(key string) (sura, ayah int, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid verse key: %q", key)
	}
	sura, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid verse key: %q", key)
	}
	ayah, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid verse key: %q", key)
	}
	return sura, ayah, nil
}

func mapToAyatID(db *sql.DB, suraID, ayatNumber int) (int, error) {
	var ayatID int
	err := db.QueryRow(
		`SELECT ayat_id FROM Ayats WHERE sura_id = ? AND ayat_number = ? LIMIT 1`,
		suraID, ayatNumber,
	).Scan(&ayatID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("ayat not found for %d:%d", suraID, ayatNumber)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up ayat %d:%d: %w", suraID, ayatNumber, err)
	}
	return ayatID, nil
}
