package pipeline

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/mushafdata/qurandb/internal/quranapi"
)

// VerseFetcher retrieves one verse payload by key. The concrete
// implementation is the API client; tests inject their own.
type VerseFetcher func(ctx context.Context, key quranapi.VerseKey) (*quranapi.VersePayload, error)

// KeyError pairs a failed verse key with its cause.
type KeyError struct {
	Key quranapi.VerseKey
	Err error
}

// ResultSet holds the aggregated outcome of a fetch phase: successful
// payloads keyed by verse key, and the failures left over.
type ResultSet struct {
	Payloads map[quranapi.VerseKey]*quranapi.VersePayload
	Failures []KeyError
}

// DefaultWorkerCount derives the fetch pool size. A positive override wins;
// otherwise four workers per CPU, capped at 32.
func DefaultWorkerCount(override int) int {
	if override > 0 {
		return override
	}
	cpu := runtime.NumCPU()
	if cpu < 1 {
		cpu = 4
	}
	workers := cpu * 4
	if workers > 32 {
		workers = 32
	}
	return workers
}

type fetchOutcome struct {
	key     quranapi.VerseKey
	payload *quranapi.VersePayload
	err     error
}

// FetchAll dispatches one fetch per key across a bounded worker pool and
// aggregates outcomes as they complete. Completion order is arbitrary;
// individual failures are recorded, never fatal to sibling fetches. Workers
// perform no database writes. progressEvery controls how often a progress
// line is logged (0 disables it).
func FetchAll(ctx context.Context, fetch VerseFetcher, keys []quranapi.VerseKey, workers, progressEvery int) *ResultSet {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan quranapi.VerseKey)
	outcomes := make(chan fetchOutcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				payload, err := fetch(ctx, key)
				outcomes <- fetchOutcome{key: key, payload: payload, err: err}
			}
		}()
	}

	go func() {
		for _, key := range keys {
			jobs <- key
		}
		close(jobs)
		wg.Wait()
		close(outcomes)
	}()

	// All aggregation happens here, on a single goroutine; workers only
	// return values and never touch shared state.
	result := &ResultSet{
		Payloads: make(map[quranapi.VerseKey]*quranapi.VersePayload, len(keys)),
	}
	completed := 0
	for outcome := range outcomes {
		if outcome.err != nil {
			result.Failures = append(result.Failures, KeyError{Key: outcome.key, Err: outcome.err})
		} else {
			result.Payloads[outcome.key] = outcome.payload
		}
		completed++
		if progressEvery > 0 && completed%progressEvery == 0 {
			log.Printf("Fetched %d/%d ayahs...", completed, len(keys))
		}
	}

	return result
}

// Recover re-issues each failed fetch exactly once, serially, to avoid
// compounding rate-limit pressure. Successes are merged into the result set;
// keys that fail again are returned as permanently missing for this run.
func (r *ResultSet) Recover(ctx context.Context, fetch VerseFetcher) (recovered int, missing []KeyError) {
	for _, failure := range r.Failures {
		payload, err := fetch(ctx, failure.Key)
		if err != nil {
			log.Printf("Final failure fetching %s -> %v", failure.Key, err)
			missing = append(missing, KeyError{
				Key: failure.Key,
				Err: &quranapi.FetchError{Key: failure.Key, Err: err},
			})
			continue
		}
		r.Payloads[failure.Key] = payload
		recovered++
	}
	r.Failures = missing
	return recovered, missing
}
