package lines

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mushafdata/qurandb/internal/database"
)

func createTargetDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quran_test.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureBaseTables())
	require.NoError(t, db.SeedDivisions())
	return path
}

func createSourceDatabase(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout_test.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.DB.Exec(`CREATE TABLE pages (
		page_number INTEGER,
		line_number INTEGER,
		line_type TEXT,
		is_centered INTEGER,
		first_word_id INTEGER,
		last_word_id INTEGER,
		surah_number INTEGER
	)`)
	require.NoError(t, err)

	for _, row := range rows {
		_, err = db.DB.Exec(
			`INSERT INTO pages (page_number, line_number, line_type, is_centered, first_word_id, last_word_id, surah_number)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			row...,
		)
		require.NoError(t, err)
	}
	return path
}

func TestImporter_Run(t *testing.T) {
	target := createTargetDatabase(t)
	source := createSourceDatabase(t, [][]any{
		{1, 1, "surah_name", 1, nil, nil, 1},
		{1, 2, "ayah", 0, 1, 4, 1},
		{2, 1, "ayah", nil, 5, 12, 1},
	})

	stats, err := NewImporter(target, source).Run()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Loaded)
	assert.Equal(t, 3, stats.Inserted)
	assert.Equal(t, 0, stats.SkippedFK)
	assert.Equal(t, 3, stats.Total)

	db, err := database.Open(target)
	require.NoError(t, err)
	defer db.Close()

	var lineType string
	var isCentered int
	require.NoError(t, db.DB.QueryRow(
		"SELECT line_type, is_centered FROM Lines WHERE page_id = 1 AND line_number = 1",
	).Scan(&lineType, &isCentered))
	assert.Equal(t, "surah_name", lineType)
	assert.Equal(t, 1, isCentered)

	// NULL is_centered normalizes to 0.
	require.NoError(t, db.DB.QueryRow(
		"SELECT is_centered FROM Lines WHERE page_id = 2 AND line_number = 1",
	).Scan(&isCentered))
	assert.Equal(t, 0, isCentered)
}

func TestImporter_Run_SkipsUnknownPages(t *testing.T) {
	target := createTargetDatabase(t)
	source := createSourceDatabase(t, [][]any{
		{1, 1, "ayah", 0, 1, 4, 1},
		{9999, 1, "ayah", 0, 5, 8, 1},
	})

	stats, err := NewImporter(target, source).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.SkippedFK)
	assert.Equal(t, 1, stats.Total)
}

func TestImporter_Run_Rerun(t *testing.T) {
	target := createTargetDatabase(t)
	source := createSourceDatabase(t, [][]any{
		{1, 1, "ayah", 0, 1, 4, 1},
		{1, 2, "ayah", 0, 5, 9, 1},
	})

	importer := NewImporter(target, source)
	_, err := importer.Run()
	require.NoError(t, err)

	// A rerun rebuilds the table from scratch rather than stacking rows.
	stats, err := importer.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 2, stats.Total)
}

func TestImporter_Run_MissingSource(t *testing.T) {
	target := createTargetDatabase(t)

	_, err := NewImporter(target, filepath.Join(t.TempDir(), "absent.db")).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source database not found")
}
