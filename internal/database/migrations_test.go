package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnExists(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.EnsureBaseTables())

	exists, err := ColumnExists(db.DB, "Suras", "name_arabic")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ColumnExists(db.DB, "Suras", "page_number")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableExists(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.EnsureBaseTables())

	exists, err := TableExists(db.DB, "Juzs")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = TableExists(db.DB, "Lines")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddColumnIfMissing(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.EnsureBaseTables())

	require.NoError(t, AddColumnIfMissing(db.DB, "Juzs", "page_number INTEGER"))
	exists, err := ColumnExists(db.DB, "Juzs", "page_number")
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-running must be a no-op, not an ALTER failure.
	require.NoError(t, AddColumnIfMissing(db.DB, "Juzs", "page_number INTEGER"))
}

func TestDropAudioSegments_NoColumn(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.EnsureBaseTables())
	require.NoError(t, db.RecreateVerseTables())

	require.NoError(t, db.DropAudioSegments())
}

func TestDropAudioSegments_RemovesColumn(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.EnsureBaseTables())
	require.NoError(t, db.RecreateVerseTables())
	require.NoError(t, AddColumnIfMissing(db.DB, "Ayats", "audio_segments TEXT"))
	_, err := db.DB.Exec(
		`INSERT INTO Ayats (ayat_id, sura_id, ayat_number, text_uthmani, juz_id, hezb_id, page_id, audio_segments)
		 VALUES (1, 1, 1, 'نص', 1, 1, 1, '[[0,1]]')`,
	)
	require.NoError(t, err)

	require.NoError(t, db.DropAudioSegments())

	exists, err := ColumnExists(db.DB, "Ayats", "audio_segments")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1, countRows(t, db, "Ayats"))
}

func TestRebuildAyatsWithoutAudioSegments(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.EnsureBaseTables())
	require.NoError(t, db.RecreateVerseTables())
	require.NoError(t, AddColumnIfMissing(db.DB, "Ayats", "audio_segments TEXT"))
	audio := "https://verses.quran.foundation/recitations/7/1_1.mp3"
	_, err := db.DB.Exec(
		`INSERT INTO Ayats (ayat_id, sura_id, ayat_number, text_uthmani, juz_id, hezb_id, page_id, audio_url, audio_segments)
		 VALUES (1, 1, 1, 'نص', 1, 1, 1, ?, '[[0,1]]')`, audio,
	)
	require.NoError(t, err)

	require.NoError(t, db.rebuildAyatsWithoutAudioSegments())

	exists, err := ColumnExists(db.DB, "Ayats", "audio_segments")
	require.NoError(t, err)
	assert.False(t, exists)

	var gotAudio string
	require.NoError(t, db.DB.QueryRow("SELECT audio_url FROM Ayats WHERE ayat_id = 1").Scan(&gotAudio))
	assert.Equal(t, audio, gotAudio)
}
