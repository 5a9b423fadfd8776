package enrich

import (
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/database"
)

// ChapterLayoutStats reports how many chapters carry layout columns after
// the backfill.
type ChapterLayoutStats struct {
	PagesFilled int
	LinesFilled int
	UsedLines   bool
}

// UpdateChapterLayout backfills Suras.page_number and Suras.line_number:
// preferred source is the Lines table (earliest line of each chapter,
// resolved through Pages); when Lines is absent or empty it falls back to
// each chapter's first ayah and its word page/line stats.
func UpdateChapterLayout(targetPath string) (*ChapterLayoutStats, error) {
	if _, err := os.Stat(targetPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("target database not found: %s", targetPath)
	}

	db, err := database.Open(targetPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	for _, column := range []string{"page_number INTEGER", "line_number INTEGER"} {
		if err := database.AddColumnIfMissing(db.DB, "Suras", column); err != nil {
			return nil, err
		}
	}

	useLines, err := hasLineData(db)
	if err != nil {
		return nil, err
	}

	if useLines {
		err = updateFromLines(db)
	} else {
		err = updateFromFirstAyah(db)
	}
	if err != nil {
		return nil, err
	}

	stats := &ChapterLayoutStats{UsedLines: useLines}
	if err := db.DB.QueryRow(
		`SELECT COUNT(*) FROM Suras WHERE page_number IS NOT NULL`,
	).Scan(&stats.PagesFilled); err != nil {
		return nil, fmt.Errorf("failed to count chapter pages: %w", err)
	}
	if err := db.DB.QueryRow(
		`SELECT COUNT(*) FROM Suras WHERE line_number IS NOT NULL`,
	).Scan(&stats.LinesFilled); err != nil {
		return nil, fmt.Errorf("failed to count chapter lines: %w", err)
	}
	return stats, nil
}

func hasLineData(db *database.Database) (bool, error) {
	exists, err := database.TableExists(db.DB, "Lines")
	if err != nil || !exists {
		return false, err
	}
	var count int
	if err := db.DB.QueryRow(`SELECT COUNT(*) FROM Lines`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count lines: %w", err)
	}
	return count > 0, nil
}

// updateFromLines takes, per chapter, the line with the lowest page and the
// lowest line number on that page, and resolves the page through Pages.
func updateFromLines(db *database.Database) error {
	_, err := db.DB.Exec(`
		WITH first_line AS (
			SELECT l.sura_id, l.page_id, l.line_number
			FROM Lines l
			JOIN (
				SELECT sura_id, MIN(page_id) AS min_page
				FROM Lines
				WHERE sura_id IS NOT NULL
				GROUP BY sura_id
			) mp ON mp.sura_id = l.sura_id AND mp.min_page = l.page_id
			JOIN (
				SELECT sura_id, page_id, MIN(line_number) AS min_line
				FROM Lines
				WHERE sura_id IS NOT NULL
				GROUP BY sura_id, page_id
			) ml ON ml.sura_id = l.sura_id AND ml.page_id = l.page_id AND ml.min_line = l.line_number
			GROUP BY l.sura_id
		),
		resolved AS (
			SELECT fl.sura_id,
			       COALESCE(p.page_number, fl.page_id) AS page_number,
			       fl.line_number
			FROM first_line fl
			LEFT JOIN Pages p ON p.page_id = fl.page_id
		)
		UPDATE Suras
		   SET page_number = (
				SELECT r.page_number FROM resolved r WHERE r.sura_id = Suras.sura_id
		       ),
		       line_number = (
				SELECT r.line_number FROM resolved r WHERE r.sura_id = Suras.sura_id
		       )`)
	if err != nil {
		return fmt.Errorf("failed to backfill chapter layout from lines: %w", err)
	}
	return nil
}

func updateFromFirstAyah(db *database.Database) error {
	_, err := db.DB.Exec(`
		WITH first_ayats AS (
			SELECT a.sura_id, a.ayat_id, a.page_id
			FROM Ayats a
			WHERE a.ayat_number = 1
		),
		word_stats AS (
			SELECT w.ayat_id,
			       MIN(w.page_number) AS w_page,
			       MIN(w.line_number) AS w_line
			FROM Words w
			GROUP BY w.ayat_id
		),
		derived AS (
			SELECT fa.sura_id,
			       COALESCE(ws.w_page, p.page_number) AS page_number,
			       ws.w_line AS line_number
			FROM first_ayats fa
			LEFT JOIN word_stats ws ON ws.ayat_id = fa.ayat_id
			LEFT JOIN Pages p ON p.page_id = fa.page_id
		)
		UPDATE Suras
		   SET page_number = (SELECT d.page_number FROM derived d WHERE d.sura_id = Suras.sura_id),
		       line_number = (SELECT d.line_number FROM derived d WHERE d.sura_id = Suras.sura_id)`)
	if err != nil {
		return fmt.Errorf("failed to backfill chapter layout from first ayahs: %w", err)
	}
	return nil
}
