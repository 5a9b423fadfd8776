package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/config"
	"github.com/mushafdata/qurandb/internal/enrich"
)

// ImportJuzMetadataCommand backfills juz verse spans from an external database.
type ImportJuzMetadataCommand struct {
	DBPath     string
	SourcePath string

	cfg *config.Config
}

func NewImportJuzMetadataCommand() *ImportJuzMetadataCommand {
	return &ImportJuzMetadataCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *ImportJuzMetadataCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-juz-metadata", flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")
	fs.StringVar(&cmd.SourcePath, "source", cmd.cfg.Sources.JuzMetadataPath, "Path to the juz metadata database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-juz-metadata [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Backfill Juzs.verses_count and first/last ayat references from a\n")
		fmt.Fprintf(os.Stderr, "read-only juz metadata database. Requires loaded verses.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the import
func (cmd *ImportJuzMetadataCommand) Run() error {
	fmt.Println("🧭 Juz metadata import")
	fmt.Printf("📁 Target: %s\n", cmd.DBPath)
	fmt.Printf("📁 Source: %s\n", cmd.SourcePath)

	stats, err := enrich.NewJuzMetadataImporter(cmd.DBPath, cmd.SourcePath).Run()
	if err != nil {
		return err
	}

	fmt.Printf("\nJuzs updated: %d, skipped: %d\n", stats.Updated, stats.Skipped)
	return nil
}
