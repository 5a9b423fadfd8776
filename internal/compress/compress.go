// Package compress produces the distributable artifact: a vacuumed copy of
// the dataset packed into a zip archive with a timestamped inner name.
package compress

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mushafdata/qurandb/internal/database"
)

// Result reports what the compaction produced.
type Result struct {
	OriginalSize  int64
	CompactedPath string
	CompactedSize int64
	ZipPath       string
	ZipSize       int64
	InPlace       bool
}

// Run checkpoints and compacts the dataset, then zips the smaller of the
// compacted copy and the original. Purely an export-time concern: the data
// itself is never modified, only reorganized.
func Run(dbPath, optimizedPath, zipPath string) (*Result, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("database not found: %s", dbPath)
	}

	result := &Result{OriginalSize: info.Size(), ZipPath: zipPath}

	compacted, inPlace, err := compact(dbPath, optimizedPath)
	if err != nil {
		return nil, err
	}
	result.CompactedPath = compacted
	result.InPlace = inPlace

	compactedInfo, err := os.Stat(compacted)
	if err != nil {
		return nil, fmt.Errorf("failed to stat compacted file: %w", err)
	}
	result.CompactedSize = compactedInfo.Size()

	// Zip whichever file ended up smaller.
	candidate := compacted
	if result.CompactedSize >= result.OriginalSize {
		candidate = dbPath
	}
	if err := makeZip(candidate, zipPath); err != nil {
		return nil, err
	}

	zipInfo, err := os.Stat(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat zip: %w", err)
	}
	result.ZipSize = zipInfo.Size()

	return result, nil
}

// compact checkpoints the WAL and writes an optimized copy via VACUUM INTO.
// Older SQLite builds without VACUUM INTO fall back to an in-place VACUUM,
// in which case the original path is returned.
func compact(dbPath, optimizedPath string) (string, bool, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	if _, err := db.DB.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return "", false, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	if _, err := db.DB.Exec(`PRAGMA optimize`); err != nil {
		return "", false, fmt.Errorf("failed to run optimize: %w", err)
	}

	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(optimizedPath); err != nil && !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to remove stale optimized copy: %w", err)
	}

	if _, err := db.DB.Exec(fmt.Sprintf("VACUUM INTO '%s'", optimizedPath)); err == nil {
		log.Printf("Wrote optimized copy: %s", optimizedPath)
		return optimizedPath, false, nil
	} else {
		log.Printf("VACUUM INTO unsupported (%v); attempting in-place VACUUM...", err)
	}

	if _, err := db.DB.Exec(`VACUUM`); err != nil {
		return "", false, fmt.Errorf("in-place VACUUM failed: %w", err)
	}
	log.Println("In-place VACUUM completed.")
	return dbPath, true, nil
}

// makeZip writes fileToZip into a deflate-compressed archive. The inner
// name carries a timestamp so extracted copies never collide.
func makeZip(fileToZip, zipPath string) error {
	source, err := os.Open(fileToZip)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileToZip, err)
	}
	defer source.Close()

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	entry, err := writer.Create(timestampedName(filepath.Base(fileToZip)))
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}
	if _, err := io.Copy(entry, source); err != nil {
		return fmt.Errorf("failed to write zip entry: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}

func timestampedName(base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%s%s", stem, time.Now().Format("20060102-150405"), ext)
}

// HumanSize renders a byte count for the run summary.
func HumanSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.0f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
