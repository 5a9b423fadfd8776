package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		API
		Fetch
		Sources
		Export
	}

	Database struct {
		Path string
	}
	API struct {
		BaseURL        string
		AudioBaseURL   string
		UserAgent      string
		ConnectTimeout time.Duration
		ReadTimeout    time.Duration
	}
	Fetch struct {
		// MaxWorkers caps the fetch pool. Zero means derive from CPU count.
		MaxWorkers    int
		ProgressEvery int
	}
	Sources struct {
		LinesPath       string
		JuzMetadataPath string
	}
	Export struct {
		OptimizedPath string
		ZipPath       string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("api_base_url", "https://api.quran.com/api/v4")
	v.SetDefault("audio_base_url", "https://verses.quran.foundation/")
	v.SetDefault("api_user_agent", "QuranFetcher/2.0 (+https://api.quran.com)")
	v.SetDefault("http_connect_timeout", "10s")
	v.SetDefault("http_read_timeout", "60s")
	v.SetDefault("quran_max_workers", 0)
	v.SetDefault("progress_every", 200)
	v.SetDefault("lines_source_path", DefaultLinesSourcePath)
	v.SetDefault("juz_metadata_path", DefaultJuzMetadataPath)
	v.SetDefault("optimized_db_path", "./quran_arabic.optimized.db")
	v.SetDefault("zip_path", "./quran_arabic.db.zip")

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		API: API{
			BaseURL:        v.GetString("API_BASE_URL"),
			AudioBaseURL:   v.GetString("AUDIO_BASE_URL"),
			UserAgent:      v.GetString("API_USER_AGENT"),
			ConnectTimeout: v.GetDuration("HTTP_CONNECT_TIMEOUT"),
			ReadTimeout:    v.GetDuration("HTTP_READ_TIMEOUT"),
		},
		Fetch: Fetch{
			MaxWorkers:    v.GetInt("QURAN_MAX_WORKERS"),
			ProgressEvery: v.GetInt("PROGRESS_EVERY"),
		},
		Sources: Sources{
			LinesPath:       v.GetString("LINES_SOURCE_PATH"),
			JuzMetadataPath: v.GetString("JUZ_METADATA_PATH"),
		},
		Export: Export{
			OptimizedPath: v.GetString("OPTIMIZED_DB_PATH"),
			ZipPath:       v.GetString("ZIP_PATH"),
		},
	}
}
