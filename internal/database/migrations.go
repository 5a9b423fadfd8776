package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// There is no migration-version table: every pass probes the current shape
// of the store before mutating it, so each one is independently idempotent.

// ColumnExists reports whether a table already has the named column.
func ColumnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, kind string
			notNull    int
			dflt       sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &kind, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// TableExists reports whether the named table exists.
func TableExists(db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe table %s: %w", table, err)
	}
	return true, nil
}

// AddColumnIfMissing adds a column when the table does not have it yet.
// columnDDL is the column name followed by its type, e.g. "page_number INTEGER".
func AddColumnIfMissing(db *sql.DB, table, columnDDL string) error {
	column := strings.Fields(columnDDL)[0]
	exists, err := ColumnExists(db, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnDDL)); err != nil {
		return fmt.Errorf("failed to add column %s to %s: %w", column, table, err)
	}
	return nil
}

// DropAudioSegments removes the retired audio_segments column from Ayats.
// SQLite before 3.35 cannot drop columns, so on failure the table is rebuilt:
// create new, copy rows, drop old, rename.
func (d *Database) DropAudioSegments() error {
	exists, err := ColumnExists(d.DB, "Ayats", "audio_segments")
	if err != nil {
		return err
	}
	if !exists {
		log.Println("Column audio_segments does not exist; nothing to do.")
		return nil
	}

	if _, err := d.DB.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer func() {
		if _, err := d.DB.Exec("PRAGMA foreign_keys=ON"); err != nil {
			log.Printf("failed to re-enable foreign keys: %v", err)
		}
	}()

	if _, err := d.DB.Exec("ALTER TABLE Ayats DROP COLUMN audio_segments"); err == nil {
		log.Println("Dropped column audio_segments via ALTER TABLE.")
		return nil
	} else {
		log.Printf("ALTER TABLE DROP COLUMN not supported, rebuilding table... (%v)", err)
	}

	return d.rebuildAyatsWithoutAudioSegments()
}

func (d *Database) rebuildAyatsWithoutAudioSegments() error {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		extendedAyatsDDL("Ayats_new"),
		`INSERT INTO Ayats_new (
			ayat_id, sura_id, ayat_number, text_uthmani, juz_id, hezb_id, page_id, sajdah_number, audio_url
		)
		SELECT ayat_id, sura_id, ayat_number, text_uthmani, juz_id, hezb_id, page_id, sajdah_number, audio_url
		FROM Ayats`,
		`DROP TABLE Ayats`,
		`ALTER TABLE Ayats_new RENAME TO Ayats`,
	}
	for _, statement := range statements {
		if _, err := tx.Exec(statement); err != nil {
			return fmt.Errorf("failed to rebuild Ayats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}
	log.Println("Rebuilt Ayats without audio_segments.")
	return nil
}
