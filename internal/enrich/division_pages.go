package enrich

import (
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/database"
)

// DivisionPagesStats reports how many division rows carry a page after the
// backfill.
type DivisionPagesStats struct {
	JuzsFilled  int
	HezbsFilled int
}

// UpdateDivisionPages backfills Juzs.page_number and Hezbs.page_number with
// the lowest page touched by any of the division's verses. Only valid once
// the Ayats table is populated.
func UpdateDivisionPages(targetPath string) (*DivisionPagesStats, error) {
	if _, err := os.Stat(targetPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("target database not found: %s", targetPath)
	}

	db, err := database.Open(targetPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	for _, table := range []string{"Juzs", "Hezbs"} {
		if err := database.AddColumnIfMissing(db.DB, table, "page_number INTEGER"); err != nil {
			return nil, err
		}
	}

	stats := &DivisionPagesStats{}

	if _, err := db.DB.Exec(`
		WITH min_pages AS (
			SELECT juz_id, MIN(page_id) AS min_page
			FROM Ayats
			GROUP BY juz_id
		)
		UPDATE Juzs
		   SET page_number = (
				SELECT min_page FROM min_pages WHERE min_pages.juz_id = Juzs.juz_id
		   )`); err != nil {
		return nil, fmt.Errorf("failed to backfill juz pages: %w", err)
	}
	if err := db.DB.QueryRow(
		`SELECT COUNT(*) FROM Juzs WHERE page_number IS NOT NULL`,
	).Scan(&stats.JuzsFilled); err != nil {
		return nil, fmt.Errorf("failed to count juz pages: %w", err)
	}

	if _, err := db.DB.Exec(`
		WITH min_pages AS (
			SELECT hezb_id, MIN(page_id) AS min_page
			FROM Ayats
			GROUP BY hezb_id
		)
		UPDATE Hezbs
		   SET page_number = (
				SELECT min_page FROM min_pages WHERE min_pages.hezb_id = Hezbs.hezb_id
		   )`); err != nil {
		return nil, fmt.Errorf("failed to backfill hezb pages: %w", err)
	}
	if err := db.DB.QueryRow(
		`SELECT COUNT(*) FROM Hezbs WHERE page_number IS NOT NULL`,
	).Scan(&stats.HezbsFilled); err != nil {
		return nil, fmt.Errorf("failed to count hezb pages: %w", err)
	}

	return stats, nil
}
