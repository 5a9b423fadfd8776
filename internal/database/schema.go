package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mushafdata/qurandb/internal/quranapi"
)

// Fixed cardinalities of the structural division tables
const (
	JuzCount  = 30
	HezbCount = 60
	PageCount = 604
)

// Variant selects which shape of the Ayats/Words tables a build targets.
type Variant string

const (
	// VariantBasic is the original Arabic-only dataset: verse text and
	// structural locators, word text only.
	VariantBasic Variant = "basic"
	// VariantExtended adds prostration markers, recitation audio and
	// word-level type/layout metadata.
	VariantExtended Variant = "extended"
)

// Sura is one row of the Suras table as created from chapter metadata.
type Sura struct {
	ID              int
	NameArabic      string
	RevelationOrder int
	AyatCount       int
}

// EnsureBaseTables creates the chapter, division and bookkeeping tables if
// they do not exist yet. Safe to run on an already-initialized store.
func (d *Database) EnsureBaseTables() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS Suras (
			sura_id INTEGER PRIMARY KEY,
			name_arabic TEXT NOT NULL,
			revelation_order INTEGER NOT NULL,
			ayat_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS Juzs (
			juz_id INTEGER PRIMARY KEY,
			juz_number INTEGER NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS Hezbs (
			hezb_id INTEGER PRIMARY KEY,
			hezb_number INTEGER NOT NULL UNIQUE,
			juz_id INTEGER NOT NULL,
			FOREIGN KEY (juz_id) REFERENCES Juzs(juz_id)
		)`,
		`CREATE TABLE IF NOT EXISTS Pages (
			page_id INTEGER PRIMARY KEY,
			page_number INTEGER NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			run_id TEXT PRIMARY KEY,
			variant TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			total_keys INTEGER NOT NULL,
			fetched INTEGER NOT NULL,
			recovered INTEGER NOT NULL,
			missing INTEGER NOT NULL
		)`,
	}

	for _, schema := range schemas {
		if _, err := d.DB.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// SeedDivisions populates the fixed-cardinality division tables: 30 juzs,
// 60 hezbs (two per juz), 604 pages. Idempotent via INSERT OR IGNORE.
func (d *Database) SeedDivisions() error {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for juz := 1; juz <= JuzCount; juz++ {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO Juzs (juz_id, juz_number) VALUES (?, ?)`, juz, juz,
		); err != nil {
			return fmt.Errorf("failed to seed juz %d: %w", juz, err)
		}
	}

	for hezb := 1; hezb <= HezbCount; hezb++ {
		// Hezbs 1-2 belong to juz 1, 3-4 to juz 2, and so on.
		juzID := ((hezb - 1) / 2) + 1
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO Hezbs (hezb_id, hezb_number, juz_id) VALUES (?, ?, ?)`,
			hezb, hezb, juzID,
		); err != nil {
			return fmt.Errorf("failed to seed hezb %d: %w", hezb, err)
		}
	}

	for page := 1; page <= PageCount; page++ {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO Pages (page_id, page_number) VALUES (?, ?)`, page, page,
		); err != nil {
			return fmt.Errorf("failed to seed page %d: %w", page, err)
		}
	}

	return tx.Commit()
}

// UpsertSuras inserts chapter rows, leaving existing rows untouched.
func (d *Database) UpsertSuras(suras []Sura) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO Suras (sura_id, name_arabic, revelation_order, ayat_count)
		 VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sura := range suras {
		if _, err := stmt.Exec(sura.ID, sura.NameArabic, sura.RevelationOrder, sura.AyatCount); err != nil {
			return fmt.Errorf("failed to upsert sura %d: %w", sura.ID, err)
		}
	}

	return tx.Commit()
}

// EnsureVerseTables creates the Ayats/Words tables for the basic variant if
// absent, without touching existing data.
func (d *Database) EnsureVerseTables() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS Ayats (
			ayat_id INTEGER PRIMARY KEY,
			sura_id INTEGER NOT NULL,
			ayat_number INTEGER NOT NULL,
			text_arabic TEXT NOT NULL,
			juz_id INTEGER NOT NULL,
			hezb_id INTEGER NOT NULL,
			page_id INTEGER NOT NULL,
			FOREIGN KEY (sura_id) REFERENCES Suras(sura_id)
		)`,
		`CREATE TABLE IF NOT EXISTS Words (
			word_id INTEGER PRIMARY KEY,
			ayat_id INTEGER NOT NULL,
			word_number INTEGER NOT NULL,
			text_arabic TEXT NOT NULL,
			FOREIGN KEY (ayat_id) REFERENCES Ayats(ayat_id)
		)`,
	}
	for _, schema := range schemas {
		if _, err := d.DB.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return d.createVerseIndexes()
}

// RecreateVerseTables drops and recreates Ayats/Words with the extended
// schema. Destructive by design: the extended build always reloads verses.
func (d *Database) RecreateVerseTables() error {
	statements := []string{
		`DROP TABLE IF EXISTS Words`,
		`DROP TABLE IF EXISTS Ayats`,
		extendedAyatsDDL("Ayats"),
		`CREATE TABLE Words (
			word_id INTEGER PRIMARY KEY,
			ayat_id INTEGER NOT NULL,
			word_number INTEGER NOT NULL,
			text_uthmani TEXT NOT NULL,
			type TEXT NOT NULL,
			page_number INTEGER,
			line_number INTEGER,
			audio_url TEXT,
			FOREIGN KEY (ayat_id) REFERENCES Ayats(ayat_id)
		)`,
	}
	for _, statement := range statements {
		if _, err := d.DB.Exec(statement); err != nil {
			return fmt.Errorf("failed to recreate verse tables: %w", err)
		}
	}
	return d.createVerseIndexes()
}

func (d *Database) createVerseIndexes() error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_ayat_sura ON Ayats(sura_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ayat_juz ON Ayats(juz_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ayat_hezb ON Ayats(hezb_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ayat_page ON Ayats(page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_word_ayat ON Words(ayat_id)`,
	}
	for _, index := range indexes {
		if _, err := d.DB.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func extendedAyatsDDL(name string) string {
	return `CREATE TABLE ` + name + ` (
		ayat_id INTEGER PRIMARY KEY,
		sura_id INTEGER NOT NULL,
		ayat_number INTEGER NOT NULL,
		text_uthmani TEXT NOT NULL,
		juz_id INTEGER NOT NULL,
		hezb_id INTEGER NOT NULL,
		page_id INTEGER NOT NULL,
		sajdah_number INTEGER,
		audio_url TEXT,
		FOREIGN KEY (sura_id) REFERENCES Suras(sura_id),
		FOREIGN KEY (juz_id) REFERENCES Juzs(juz_id),
		FOREIGN KEY (hezb_id) REFERENCES Hezbs(hezb_id),
		FOREIGN KEY (page_id) REFERENCES Pages(page_id)
	)`
}

// VerseBatch accumulates a whole verse load inside one transaction. IDs are
// assigned by the caller; a crash before Commit leaves the store unchanged.
type VerseBatch struct {
	tx         *sql.Tx
	insertAyat *sql.Stmt
	insertWord *sql.Stmt
	variant    Variant
}

// BeginVerseBatch starts the single load transaction for a pipeline run.
func (d *Database) BeginVerseBatch(variant Variant) (*VerseBatch, error) {
	tx, err := d.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var ayatSQL, wordSQL string
	switch variant {
	case VariantExtended:
		ayatSQL = `INSERT INTO Ayats (
			ayat_id, sura_id, ayat_number, text_uthmani, juz_id, hezb_id, page_id, sajdah_number, audio_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		wordSQL = `INSERT INTO Words (
			word_id, ayat_id, word_number, text_uthmani, type, page_number, line_number, audio_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	default:
		ayatSQL = `INSERT INTO Ayats (ayat_id, sura_id, ayat_number, text_arabic, juz_id, hezb_id, page_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		wordSQL = `INSERT INTO Words (word_id, ayat_id, word_number, text_arabic)
			VALUES (?, ?, ?, ?)`
	}

	insertAyat, err := tx.Prepare(ayatSQL)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare ayat insert: %w", err)
	}
	insertWord, err := tx.Prepare(wordSQL)
	if err != nil {
		insertAyat.Close()
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare word insert: %w", err)
	}

	return &VerseBatch{tx: tx, insertAyat: insertAyat, insertWord: insertWord, variant: variant}, nil
}

// InsertAyat writes one verse row under the given sequential id.
func (b *VerseBatch) InsertAyat(ayatID int, p *quranapi.VersePayload) error {
	var err error
	if b.variant == VariantExtended {
		_, err = b.insertAyat.Exec(
			ayatID, p.SuraID, p.AyatNumber, p.TextUthmani,
			p.JuzID, p.HezbID, p.PageID, p.SajdahNumber, p.AudioURL,
		)
	} else {
		_, err = b.insertAyat.Exec(
			ayatID, p.SuraID, p.AyatNumber, p.TextUthmani, p.JuzID, p.HezbID, p.PageID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to insert ayat %d:%d: %w", p.SuraID, p.AyatNumber, err)
	}
	return nil
}

// InsertWord writes one word row under the given sequential id.
func (b *VerseBatch) InsertWord(wordID, ayatID int, w quranapi.WordPayload) error {
	var err error
	if b.variant == VariantExtended {
		_, err = b.insertWord.Exec(
			wordID, ayatID, w.Position, w.TextUthmani, w.Type, w.PageNumber, w.LineNumber, w.AudioURL,
		)
	} else {
		_, err = b.insertWord.Exec(wordID, ayatID, w.Position, w.TextUthmani)
	}
	if err != nil {
		return fmt.Errorf("failed to insert word %d of ayat %d: %w", w.Position, ayatID, err)
	}
	return nil
}

func (b *VerseBatch) Commit() error {
	b.insertAyat.Close()
	b.insertWord.Close()
	return b.tx.Commit()
}

func (b *VerseBatch) Rollback() error {
	b.insertAyat.Close()
	b.insertWord.Close()
	return b.tx.Rollback()
}

// FetchRun records the outcome of one pipeline run.
type FetchRun struct {
	RunID      string
	Variant    Variant
	StartedAt  time.Time
	FinishedAt time.Time
	TotalKeys  int
	Fetched    int
	Recovered  int
	Missing    int
}

// RecordFetchRun appends a run bookkeeping row.
func (d *Database) RecordFetchRun(run FetchRun) error {
	_, err := d.DB.Exec(
		`INSERT INTO fetch_runs (run_id, variant, started_at, finished_at, total_keys, fetched, recovered, missing)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, string(run.Variant), run.StartedAt, run.FinishedAt,
		run.TotalKeys, run.Fetched, run.Recovered, run.Missing,
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch run: %w", err)
	}
	return nil
}
