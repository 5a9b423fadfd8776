package main

import (
	"fmt"
	"os"

	"github.com/mushafdata/qurandb/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

var commands = map[string]func() command{
	"fetch":                 func() command { return cli.NewFetchCommand() },
	"fetch-v2":              func() command { return cli.NewFetchV2Command() },
	"import-lines":          func() command { return cli.NewImportLinesCommand() },
	"import-juz-metadata":   func() command { return cli.NewImportJuzMetadataCommand() },
	"update-division-pages": func() command { return cli.NewUpdateDivisionPagesCommand() },
	"update-chapter-layout": func() command { return cli.NewUpdateChapterLayoutCommand() },
	"drop-audio-segments":   func() command { return cli.NewDropAudioSegmentsCommand() },
	"compress":              func() command { return cli.NewCompressCommand() },
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	switch name {
	case "version", "-version", "--version":
		fmt.Printf("qurandb %s (%s)\n", Version, Commit)
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	factory, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		usage()
		os.Exit(1)
	}

	cmd := factory()
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Build and maintain the Quran SQLite dataset.\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  fetch                  Build the Arabic-only dataset from api.quran.com\n")
	fmt.Fprintf(os.Stderr, "  fetch-v2               Build the extended dataset (audio, sajdah, word metadata)\n")
	fmt.Fprintf(os.Stderr, "  import-lines           Load print-layout lines from a mushaf layout database\n")
	fmt.Fprintf(os.Stderr, "  import-juz-metadata    Backfill juz verse spans from a metadata database\n")
	fmt.Fprintf(os.Stderr, "  update-division-pages  Backfill juz/hezb starting pages from loaded verses\n")
	fmt.Fprintf(os.Stderr, "  update-chapter-layout  Backfill chapter starting page and line\n")
	fmt.Fprintf(os.Stderr, "  drop-audio-segments    Remove the retired audio_segments column\n")
	fmt.Fprintf(os.Stderr, "  compress               Vacuum and zip the dataset for distribution\n")
	fmt.Fprintf(os.Stderr, "  version                Print version information\n\n")
	fmt.Fprintf(os.Stderr, "Run '%s <command> -h' for command options.\n", os.Args[0])
}
