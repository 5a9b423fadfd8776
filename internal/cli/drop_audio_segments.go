package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/config"
	"github.com/mushafdata/qurandb/internal/database"
)

// DropAudioSegmentsCommand removes the retired audio_segments column.
type DropAudioSegmentsCommand struct {
	DBPath string

	cfg *config.Config
}

func NewDropAudioSegmentsCommand() *DropAudioSegmentsCommand {
	return &DropAudioSegmentsCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *DropAudioSegmentsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("drop-audio-segments", flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s drop-audio-segments [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove the audio_segments column from Ayats. Falls back to a full\n")
		fmt.Fprintf(os.Stderr, "table rebuild when the SQLite build cannot drop columns.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the migration
func (cmd *DropAudioSegmentsCommand) Run() error {
	fmt.Println("🔧 Drop audio_segments migration")
	fmt.Printf("📁 Target: %s\n", cmd.DBPath)

	if _, err := os.Stat(cmd.DBPath); os.IsNotExist(err) {
		return fmt.Errorf("database not found: %s", cmd.DBPath)
	}

	db, err := database.Open(cmd.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.DropAudioSegments()
}
