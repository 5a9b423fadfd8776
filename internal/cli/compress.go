package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/compress"
	"github.com/mushafdata/qurandb/internal/config"
)

// CompressCommand compacts the dataset and packages it for distribution.
type CompressCommand struct {
	DBPath  string
	ZipPath string

	cfg *config.Config
}

func NewCompressCommand() *CompressCommand {
	return &CompressCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *CompressCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.Database.Path, "Path to the target dataset file")
	fs.StringVar(&cmd.ZipPath, "out", cmd.cfg.Export.ZipPath, "Path of the zip archive to write")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s compress [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Checkpoint and vacuum the dataset, then zip the smaller of the\n")
		fmt.Fprintf(os.Stderr, "compacted copy and the original with a timestamped inner name.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the compaction
func (cmd *CompressCommand) Run() error {
	fmt.Println("📦 Dataset compaction")
	fmt.Printf("📁 Database: %s\n", cmd.DBPath)

	result, err := compress.Run(cmd.DBPath, cmd.cfg.Export.OptimizedPath, cmd.ZipPath)
	if err != nil {
		return err
	}

	fmt.Printf("\nOriginal DB size: %s\n", compress.HumanSize(result.OriginalSize))
	fmt.Printf("Compacted file: %s (%s)\n", result.CompactedPath, compress.HumanSize(result.CompactedSize))
	fmt.Printf("Created zip: %s (%s)\n", result.ZipPath, compress.HumanSize(result.ZipSize))

	wal := cmd.DBPath + "-wal"
	shm := cmd.DBPath + "-shm"
	if fileExists(wal) || fileExists(shm) {
		fmt.Println("Note: WAL/SHM side files exist. They are not needed for distribution; only the .db copy is zipped.")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
