package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/config"
	"github.com/mushafdata/qurandb/internal/enrich"
)

// UpdateChapterLayoutCommand backfills each chapter's starting page and line.
type UpdateChapterLayoutCommand struct {
	DBPath string

	cfg *config.Config
}

func NewUpdateChapterLayoutCommand() *UpdateChapterLayoutCommand {
	return &UpdateChapterLayoutCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *UpdateChapterLayoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("update-chapter-layout", flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s update-chapter-layout [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Set Suras.page_number and Suras.line_number from the Lines table, or\n")
		fmt.Fprintf(os.Stderr, "from first ayahs and word stats when no line data is loaded.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the backfill
func (cmd *UpdateChapterLayoutCommand) Run() error {
	fmt.Println("📑 Chapter layout backfill")
	fmt.Printf("📁 Target: %s\n", cmd.DBPath)

	stats, err := enrich.UpdateChapterLayout(cmd.DBPath)
	if err != nil {
		return err
	}

	if stats.UsedLines {
		fmt.Println("Source: Lines table")
	} else {
		fmt.Println("Source: first ayahs (no line data loaded)")
	}
	fmt.Printf("Updated Suras page_number for %d rows\n", stats.PagesFilled)
	fmt.Printf("Updated Suras line_number for %d rows\n", stats.LinesFilled)
	return nil
}
