package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/config"
	"github.com/mushafdata/qurandb/internal/lines"
)

// ImportLinesCommand loads print-layout lines from an external database.
type ImportLinesCommand struct {
	DBPath     string
	SourcePath string

	cfg *config.Config
}

func NewImportLinesCommand() *ImportLinesCommand {
	return &ImportLinesCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *ImportLinesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-lines", flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")
	fs.StringVar(&cmd.SourcePath, "source", cmd.cfg.Sources.LinesPath, "Path to the 15-line mushaf layout database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-lines [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rebuild the Lines table from a read-only mushaf layout database,\n")
		fmt.Fprintf(os.Stderr, "skipping rows whose page is not present in the target.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the import
func (cmd *ImportLinesCommand) Run() error {
	fmt.Println("📐 Line layout import")
	fmt.Printf("📁 Target: %s\n", cmd.DBPath)
	fmt.Printf("📁 Source: %s\n", cmd.SourcePath)

	stats, err := lines.NewImporter(cmd.DBPath, cmd.SourcePath).Run()
	if err != nil {
		return err
	}

	fmt.Printf("\nLoaded %d lines from source\n", stats.Loaded)
	fmt.Printf("Inserted %d lines, skipped %d due to missing pages\n", stats.Inserted, stats.SkippedFK)
	fmt.Printf("Lines total now: %d\n", stats.Total)
	return nil
}
