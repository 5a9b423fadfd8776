package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/config"
	"github.com/mushafdata/qurandb/internal/enrich"
)

// UpdateDivisionPagesCommand backfills juz and hezb starting pages.
type UpdateDivisionPagesCommand struct {
	DBPath string

	cfg *config.Config
}

func NewUpdateDivisionPagesCommand() *UpdateDivisionPagesCommand {
	return &UpdateDivisionPagesCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *UpdateDivisionPagesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("update-division-pages", flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s update-division-pages [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Set Juzs.page_number and Hezbs.page_number to the lowest page touched\n")
		fmt.Fprintf(os.Stderr, "by each division's verses. Requires loaded verses.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the backfill
func (cmd *UpdateDivisionPagesCommand) Run() error {
	fmt.Println("📄 Division page backfill")
	fmt.Printf("📁 Target: %s\n", cmd.DBPath)

	stats, err := enrich.UpdateDivisionPages(cmd.DBPath)
	if err != nil {
		return err
	}

	fmt.Printf("\nUpdated Juzs page_number for %d rows\n", stats.JuzsFilled)
	fmt.Printf("Updated Hezbs page_number for %d rows\n", stats.HezbsFilled)
	return nil
}
