package enrich

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mushafdata/qurandb/internal/database"
)

// createPopulatedTarget builds a target store with two chapters and a handful
// of verse rows spread over the first pages.
func createPopulatedTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quran_test.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.EnsureBaseTables())
	require.NoError(t, db.SeedDivisions())
	require.NoError(t, db.UpsertSuras([]database.Sura{
		{ID: 1, NameArabic: "الفاتحة", RevelationOrder: 5, AyatCount: 7},
		{ID: 2, NameArabic: "البقرة", RevelationOrder: 87, AyatCount: 286},
	}))
	require.NoError(t, db.RecreateVerseTables())

	ayats := []struct {
		ayatID, suraID, ayatNumber, juzID, hezbID, pageID int
	}{
		{1, 1, 1, 1, 1, 1},
		{2, 1, 2, 1, 1, 1},
		{3, 1, 3, 1, 1, 1},
		{4, 2, 1, 1, 1, 2},
		{5, 2, 2, 1, 2, 3},
		{6, 2, 3, 2, 3, 22},
	}
	for _, a := range ayats {
		_, err = db.DB.Exec(
			`INSERT INTO Ayats (ayat_id, sura_id, ayat_number, text_uthmani, juz_id, hezb_id, page_id)
			 VALUES (?, ?, ?, 'نص', ?, ?, ?)`,
			a.ayatID, a.suraID, a.ayatNumber, a.juzID, a.hezbID, a.pageID,
		)
		require.NoError(t, err)
	}

	words := []struct {
		wordID, ayatID, number, page, line int
	}{
		{1, 1, 1, 1, 2},
		{2, 1, 2, 1, 2},
		{3, 4, 1, 2, 1},
	}
	for _, w := range words {
		_, err = db.DB.Exec(
			`INSERT INTO Words (word_id, ayat_id, word_number, text_uthmani, type, page_number, line_number)
			 VALUES (?, ?, ?, 'كلمة', 'word', ?, ?)`,
			w.wordID, w.ayatID, w.number, w.page, w.line,
		)
		require.NoError(t, err)
	}

	return path
}

func createJuzMetadataSource(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "juz_metadata_test.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.DB.Exec(`CREATE TABLE juz (
		juz_number INTEGER,
		verses_count INTEGER,
		first_verse_key TEXT,
		last_verse_key TEXT
	)`)
	require.NoError(t, err)

	for _, row := range rows {
		_, err = db.DB.Exec(
			`INSERT INTO juz (juz_number, verses_count, first_verse_key, last_verse_key) VALUES (?, ?, ?, ?)`,
			row...,
		)
		require.NoError(t, err)
	}
	return path
}

func TestJuzMetadataImporter_Run(t *testing.T) {
	target := createPopulatedTarget(t)
	source := createJuzMetadataSource(t, [][]any{
		{1, 148, "1:1", "2:3"},
	})

	stats, err := NewJuzMetadataImporter(target, source).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Skipped)

	db, err := database.Open(target)
	require.NoError(t, err)
	defer db.Close()

	var versesCount, firstID, lastID int
	require.NoError(t, db.DB.QueryRow(
		"SELECT verses_count, first_ayat_id, last_ayat_id FROM Juzs WHERE juz_id = 1",
	).Scan(&versesCount, &firstID, &lastID))
	assert.Equal(t, 148, versesCount)
	assert.Equal(t, 1, firstID)
	assert.Equal(t, 6, lastID)
}

func TestJuzMetadataImporter_SkipsUnmappableRows(t *testing.T) {
	target := createPopulatedTarget(t)
	source := createJuzMetadataSource(t, [][]any{
		{1, 148, "1:1", "2:3"},
		{2, 111, "not-a-key", "2:252"},
		{3, 126, "99:1", "99:8"}, // chapter never loaded
	})

	stats, err := NewJuzMetadataImporter(target, source).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 2, stats.Skipped)

	db, err := database.Open(target)
	require.NoError(t, err)
	defer db.Close()

	var versesCount sql.NullInt64
	require.NoError(t, db.DB.QueryRow(
		"SELECT verses_count FROM Juzs WHERE juz_id = 2",
	).Scan(&versesCount))
	assert.False(t, versesCount.Valid)
}

func TestParseVerseKey(t *testing.T) {
	sura, ayah, err := parseVerseKey("2:142")
	require.NoError(t, err)
	assert.Equal(t, 2, sura)
	assert.Equal(t, 142, ayah)

	for _, key := range []string{"", "2", "2:142:1", "x:1", "2:y"} {
		_, _, err := parseVerseKey(key)
		assert.Errorf(t, err, "key %q should not parse", key)
	}
}

func TestUpdateDivisionPages(t *testing.T) {
	target := createPopulatedTarget(t)

	stats, err := UpdateDivisionPages(target)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.JuzsFilled)
	assert.Equal(t, 3, stats.HezbsFilled)

	db, err := database.Open(target)
	require.NoError(t, err)
	defer db.Close()

	var page int
	require.NoError(t, db.DB.QueryRow("SELECT page_number FROM Juzs WHERE juz_id = 1").Scan(&page))
	assert.Equal(t, 1, page)
	require.NoError(t, db.DB.QueryRow("SELECT page_number FROM Juzs WHERE juz_id = 2").Scan(&page))
	assert.Equal(t, 22, page)
	require.NoError(t, db.DB.QueryRow("SELECT page_number FROM Hezbs WHERE hezb_id = 2").Scan(&page))
	assert.Equal(t, 3, page)

	var nullPage sql.NullInt64
	require.NoError(t, db.DB.QueryRow("SELECT page_number FROM Juzs WHERE juz_id = 3").Scan(&nullPage))
	assert.False(t, nullPage.Valid)
}

func TestUpdateChapterLayout_FromFirstAyah(t *testing.T) {
	target := createPopulatedTarget(t)

	stats, err := UpdateChapterLayout(target)
	require.NoError(t, err)
	assert.False(t, stats.UsedLines)
	assert.Equal(t, 2, stats.PagesFilled)

	db, err := database.Open(target)
	require.NoError(t, err)
	defer db.Close()

	var page, line int
	require.NoError(t, db.DB.QueryRow(
		"SELECT page_number, line_number FROM Suras WHERE sura_id = 1",
	).Scan(&page, &line))
	assert.Equal(t, 1, page)
	assert.Equal(t, 2, line)

	require.NoError(t, db.DB.QueryRow(
		"SELECT page_number, line_number FROM Suras WHERE sura_id = 2",
	).Scan(&page, &line))
	assert.Equal(t, 2, page)
	assert.Equal(t, 1, line)
}

func TestUpdateChapterLayout_FromLines(t *testing.T) {
	target := createPopulatedTarget(t)

	db, err := database.Open(target)
	require.NoError(t, err)
	_, err = db.DB.Exec(`CREATE TABLE Lines (
		line_id INTEGER PRIMARY KEY,
		page_id INTEGER NOT NULL,
		line_number INTEGER NOT NULL,
		line_type TEXT,
		is_centered INTEGER NOT NULL,
		first_word_id INTEGER,
		last_word_id INTEGER,
		sura_id INTEGER
	)`)
	require.NoError(t, err)
	lines := []struct {
		pageID, lineNumber, suraID int
	}{
		{1, 2, 1},
		{1, 3, 1},
		{2, 5, 2},
		{3, 1, 2},
	}
	for _, l := range lines {
		_, err = db.DB.Exec(
			`INSERT INTO Lines (page_id, line_number, line_type, is_centered, sura_id)
			 VALUES (?, ?, 'ayah', 0, ?)`,
			l.pageID, l.lineNumber, l.suraID,
		)
		require.NoError(t, err)
	}
	db.Close()

	stats, err := UpdateChapterLayout(target)
	require.NoError(t, err)
	assert.True(t, stats.UsedLines)
	assert.Equal(t, 2, stats.PagesFilled)
	assert.Equal(t, 2, stats.LinesFilled)

	db, err = database.Open(target)
	require.NoError(t, err)
	defer db.Close()

	var page, line int
	require.NoError(t, db.DB.QueryRow(
		"SELECT page_number, line_number FROM Suras WHERE sura_id = 1",
	).Scan(&page, &line))
	assert.Equal(t, 1, page)
	assert.Equal(t, 2, line)

	// Chapter 2 starts on page 2 even though page 3 holds an earlier line number.
	require.NoError(t, db.DB.QueryRow(
		"SELECT page_number, line_number FROM Suras WHERE sura_id = 2",
	).Scan(&page, &line))
	assert.Equal(t, 2, page)
	assert.Equal(t, 5, line)
}
