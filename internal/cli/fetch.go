package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/config"
	"github.com/mushafdata/qurandb/internal/database"
	"github.com/mushafdata/qurandb/internal/pipeline"
	"github.com/mushafdata/qurandb/internal/quranapi"
)

// FetchCommand runs the verse build pipeline against the target dataset.
type FetchCommand struct {
	DBPath        string
	Workers       int
	ProgressEvery int

	name    string
	variant database.Variant
	cfg     *config.Config
}

// NewFetchCommand builds the original Arabic-only pipeline command.
func NewFetchCommand() *FetchCommand {
	return &FetchCommand{name: "fetch", variant: database.VariantBasic, cfg: config.NewConfig()}
}

// NewFetchV2Command builds the revised pipeline command that also loads
// prostration markers, recitation audio and word-level metadata.
func NewFetchV2Command() *FetchCommand {
	return &FetchCommand{name: "fetch-v2", variant: database.VariantExtended, cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *FetchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.name, flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")
	fs.IntVar(&cmd.Workers, "workers", cmd.cfg.Fetch.MaxWorkers, "Maximum parallel fetch workers (0 derives from CPU count)")
	fs.IntVar(&cmd.ProgressEvery, "progress-every", cmd.cfg.Fetch.ProgressEvery, "Log progress every N completed fetches (0 disables)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], cmd.name)
		fmt.Fprintf(os.Stderr, "Build the Quran dataset from api.quran.com.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Creates the schema and seeds the fixed division tables (30 juzs, 60 hezbs, 604 pages)\n")
		fmt.Fprintf(os.Stderr, "  2. Fetches chapter metadata and every verse with its words, in parallel\n")
		fmt.Fprintf(os.Stderr, "  3. Retries failed verses once, serially\n")
		fmt.Fprintf(os.Stderr, "  4. Loads everything in canonical order with sequential ids\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s %s\n", os.Args[0], cmd.name)
		fmt.Fprintf(os.Stderr, "  %s %s -db ./quran_arabic.db -workers 16\n", os.Args[0], cmd.name)
		fmt.Fprintf(os.Stderr, "  QURAN_MAX_WORKERS=8 %s %s\n", os.Args[0], cmd.name)
	}

	return fs.Parse(args)
}

// Run executes the pipeline
func (cmd *FetchCommand) Run() error {
	fmt.Println("📖 Quran dataset build")
	fmt.Println("======================")
	fmt.Printf("📁 Database: %s\n", cmd.DBPath)

	db, err := database.Open(cmd.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	client := quranapi.NewClient(cmd.cfg.API)
	pipe := pipeline.New(db, client)

	report, err := pipe.Run(context.Background(), pipeline.Options{
		Variant:       cmd.variant,
		Workers:       cmd.Workers,
		ProgressEvery: cmd.ProgressEvery,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s finished in %.1fs\n", report.RunID, report.Duration.Seconds())
	fmt.Printf("   Fetched:   %d/%d verses (%d recovered on retry)\n", report.Fetched+report.Recovered, report.TotalKeys, report.Recovered)
	fmt.Printf("   Inserted:  %d verses, %d words\n", report.AyatsInserted, report.WordsInserted)

	if len(report.Missing) > 0 {
		fmt.Printf("\n⚠️  %d verses permanently missing this run:\n", len(report.Missing))
		for _, miss := range report.Missing {
			fmt.Printf("   %s: %v\n", miss.Key, miss.Err)
		}
	} else {
		fmt.Println("\n✅ All verses loaded.")
	}
	return nil
}
