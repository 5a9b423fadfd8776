// Package pipeline implements the verse build: enumerate every chapter/verse
// key from chapter metadata, fetch payloads concurrently from the Quran API,
// retry stragglers once, then load everything in canonical order with
// deterministic sequential ids.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mushafdata/qurandb/internal/database"
	"github.com/mushafdata/qurandb/internal/quranapi"
)

// API is the slice of the Quran API client the pipeline needs.
type API interface {
	Chapters(ctx context.Context) ([]quranapi.Chapter, error)
	VerseByKey(ctx context.Context, key quranapi.VerseKey, opts quranapi.FetchOptions) (*quranapi.VersePayload, error)
}

// Options configures one pipeline run.
type Options struct {
	Variant database.Variant
	// Workers caps the fetch pool; zero derives from CPU count.
	Workers       int
	ProgressEvery int
}

// Report is the outcome of one pipeline run.
type Report struct {
	RunID         string
	Variant       database.Variant
	TotalKeys     int
	Fetched       int
	Recovered     int
	Missing       []KeyError
	AyatsInserted int
	WordsInserted int
	Duration      time.Duration
}

// Pipeline wires the API client and the target store together.
type Pipeline struct {
	db     *database.Database
	client API
}

func New(db *database.Database, client API) *Pipeline {
	return &Pipeline{db: db, client: client}
}

// Run executes the full build: schema init, chapter metadata, concurrent
// fetch, serial recovery, sequential load, run bookkeeping. Permanently
// missing keys are reported in the result, never fatal.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	started := time.Now()

	if err := p.db.EnsureBaseTables(); err != nil {
		return nil, err
	}
	if err := p.db.SeedDivisions(); err != nil {
		return nil, err
	}

	chapters, err := p.client.Chapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chapter list: %w", err)
	}

	suras := make([]database.Sura, 0, len(chapters))
	for _, chapter := range chapters {
		suras = append(suras, database.Sura{
			ID:              chapter.ID,
			NameArabic:      chapter.NameArabic,
			RevelationOrder: chapter.RevelationOrder,
			AyatCount:       chapter.VersesCount,
		})
	}
	if err := p.db.UpsertSuras(suras); err != nil {
		return nil, err
	}

	fetchOpts := quranapi.BasicOptions()
	if opts.Variant == database.VariantExtended {
		fetchOpts = quranapi.ExtendedOptions()
		// The extended build always reloads verses from scratch.
		if err := p.db.RecreateVerseTables(); err != nil {
			return nil, err
		}
	} else {
		if err := p.db.EnsureVerseTables(); err != nil {
			return nil, err
		}
	}

	keys := EnumerateKeys(suras)
	workers := DefaultWorkerCount(opts.Workers)
	log.Printf("Fetching %d ayahs with up to %d parallel workers...", len(keys), workers)

	fetch := func(ctx context.Context, key quranapi.VerseKey) (*quranapi.VersePayload, error) {
		return p.client.VerseByKey(ctx, key, fetchOpts)
	}

	results := FetchAll(ctx, fetch, keys, workers, opts.ProgressEvery)
	fetched := len(results.Payloads)

	recovered := 0
	if len(results.Failures) > 0 {
		log.Printf("Encountered %d fetch errors; retrying once serially for failed items...", len(results.Failures))
		recovered, _ = results.Recover(ctx, fetch)
	}

	log.Println("HTTP fetching complete. Inserting into database...")
	stats, err := Load(p.db, opts.Variant, keys, results.Payloads)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:         uuid.NewString(),
		Variant:       opts.Variant,
		TotalKeys:     len(keys),
		Fetched:       fetched,
		Recovered:     recovered,
		Missing:       results.Failures,
		AyatsInserted: stats.AyatsInserted,
		WordsInserted: stats.WordsInserted,
		Duration:      time.Since(started),
	}

	if err := p.db.RecordFetchRun(database.FetchRun{
		RunID:      report.RunID,
		Variant:    opts.Variant,
		StartedAt:  started,
		FinishedAt: time.Now(),
		TotalKeys:  report.TotalKeys,
		Fetched:    report.Fetched,
		Recovered:  report.Recovered,
		Missing:    len(report.Missing),
	}); err != nil {
		return nil, err
	}

	return report, nil
}
