// Package lines loads the print-layout line table from an external
// 15-line mushaf layout database into the target dataset.
package lines

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/database"
)

// SourceRow mirrors one row of the layout database's pages table.
type SourceRow struct {
	PageNumber  int
	LineNumber  int
	LineType    sql.NullString
	IsCentered  sql.NullInt64
	FirstWordID sql.NullInt64
	LastWordID  sql.NullInt64
	SuraNumber  sql.NullInt64
}

// ImportStats summarizes one import.
type ImportStats struct {
	Loaded    int
	Inserted  int
	SkippedFK int
	Total     int
}

// Importer copies line rows from the read-only layout database into the
// target, dropping rows whose page is not present there.
type Importer struct {
	TargetPath string
	SourcePath string
}

func NewImporter(targetPath, sourcePath string) *Importer {
	return &Importer{TargetPath: targetPath, SourcePath: sourcePath}
}

// Run rebuilds the Lines table from the source database. The table is
// dropped and recreated first: line data has no identity of its own worth
// merging, the source is authoritative.
func (i *Importer) Run() (*ImportStats, error) {
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

	if err := recreateLinesTable(target.DB); err != nil {
		return nil, err
	}

	source, err := database.OpenReadOnly(i.SourcePath)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	rows, err := loadSourceRows(source)
	if err != nil {
		return nil, err
	}

	validPages, err := loadIDSet(target.DB, `SELECT page_id FROM Pages`)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{Loaded: len(rows)}

	tx, err := target.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO Lines (page_id, line_number, line_type, is_centered, first_word_id, last_word_id, sura_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		// Source page numbers double as target page ids.
		if !validPages[row.PageNumber] {
			stats.SkippedFK++
			continue
		}
		isCentered := 0
		if row.IsCentered.Valid && row.IsCentered.Int64 != 0 {
			isCentered = 1
		}
		if _, err := stmt.Exec(
			row.PageNumber, row.LineNumber, row.LineType, isCentered,
			row.FirstWordID, row.LastWordID, row.SuraNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to insert line %d of page %d: %w", row.LineNumber, row.PageNumber, err)
		}
		stats.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lines import: %w", err)
	}

	if err := target.DB.QueryRow(`SELECT COUNT(*) FROM Lines`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count lines: %w", err)
	}
	return stats, nil
}

func recreateLinesTable(db *sql.DB) error {
	statements := []string{
		`DROP TABLE IF EXISTS Lines`,
		`CREATE TABLE IF NOT EXISTS Lines (
			line_id INTEGER PRIMARY KEY,
			page_id INTEGER NOT NULL,
			line_number INTEGER NOT NULL,
			line_type TEXT,
			is_centered INTEGER NOT NULL,
			first_word_id INTEGER,
			last_word_id INTEGER,
			sura_id INTEGER,
			FOREIGN KEY (page_id) REFERENCES Pages(page_id),
			FOREIGN KEY (sura_id) REFERENCES Suras(sura_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_page ON Lines(page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_sura ON Lines(sura_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_lines_page_line ON Lines(page_id, line_number)`,
	}
	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("failed to create lines schema: %w", err)
		}
	}
	return nil
}

func loadSourceRows(db *sql.DB) ([]SourceRow, error) {
	rows, err := db.Query(
		`SELECT page_number, line_number, line_type, is_centered, first_word_id, last_word_id, surah_number
		 FROM pages
		 ORDER BY page_number, line_number`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query source pages: %w", err)
	}
	defer rows.Close()

	var result []SourceRow
	for rows.Next() {
		var row SourceRow
		if err := rows.Scan(
			&row.PageNumber, &row.LineNumber, &row.LineType, &row.IsCentered,
			&row.FirstWordID, &row.LastWordID, &row.SuraNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}
	return result, nil
}

func loadIDSet(db *sql.DB, query string) (map[int]bool, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load id set: %w", err)
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		set[id] = true
	}
	return set, rows.Err()
}
