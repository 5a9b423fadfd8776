package config

// Default paths for the target dataset and the read-only source databases
const (
	// DefaultDatabasePath is the default path for the generated Quran dataset
	DefaultDatabasePath = "./quran_arabic.db"

	// DefaultLinesSourcePath is the default path for the 15-line mushaf layout database
	DefaultLinesSourcePath = "./uthmani-15-lines.db"

	// DefaultJuzMetadataPath is the default path for the juz metadata database
	DefaultJuzMetadataPath = "./quran-metadata-juz.sqlite"
)
