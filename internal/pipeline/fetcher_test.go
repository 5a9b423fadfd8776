package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mushafdata/qurandb/internal/database"
	"github.com/mushafdata/qurandb/internal/quranapi"
)

func TestEnumerateKeys(t *testing.T) {
	suras := []database.Sura{
		{ID: 1, AyatCount: 7},
		{ID: 2, AyatCount: 3},
	}

	keys := EnumerateKeys(suras)

	require.Len(t, keys, 10)
	assert.Equal(t, quranapi.VerseKey{Sura: 1, Ayah: 1}, keys[0])
	assert.Equal(t, quranapi.VerseKey{Sura: 1, Ayah: 7}, keys[6])
	assert.Equal(t, quranapi.VerseKey{Sura: 2, Ayah: 1}, keys[7])
	assert.Equal(t, quranapi.VerseKey{Sura: 2, Ayah: 3}, keys[9])

	// Enumeration is deterministic: same input, same sequence.
	assert.Equal(t, keys, EnumerateKeys(suras))
}

func TestDefaultWorkerCount(t *testing.T) {
	assert.Equal(t, 8, DefaultWorkerCount(8))
	assert.Equal(t, 1, DefaultWorkerCount(1))

	derived := DefaultWorkerCount(0)
	assert.Greater(t, derived, 0)
	assert.LessOrEqual(t, derived, 32)
}

func TestFetchAll_AllKeysAccountedFor(t *testing.T) {
	keys := EnumerateKeys([]database.Sura{{ID: 1, AyatCount: 20}})
	bad := quranapi.VerseKey{Sura: 1, Ayah: 13}

	var mu sync.Mutex
	calls := make(map[quranapi.VerseKey]int)
	fetch := func(ctx context.Context, key quranapi.VerseKey) (*quranapi.VersePayload, error) {
		mu.Lock()
		calls[key]++
		mu.Unlock()
		if key == bad {
			return nil, errors.New("boom")
		}
		return makePayload(key), nil
	}

	result := FetchAll(context.Background(), fetch, keys, 4, 0)

	assert.Len(t, result.Payloads, 19)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, bad, result.Failures[0].Key)
	assert.NotContains(t, result.Payloads, bad)

	// Every key fetched exactly once.
	assert.Len(t, calls, 20)
	for key, n := range calls {
		assert.Equalf(t, 1, n, "key %s fetched %d times", key, n)
	}
}

func TestFetchAll_ClampsWorkerCount(t *testing.T) {
	keys := EnumerateKeys([]database.Sura{{ID: 1, AyatCount: 3}})
	fetch := func(ctx context.Context, key quranapi.VerseKey) (*quranapi.VersePayload, error) {
		return makePayload(key), nil
	}

	// A non-positive worker count must still drain every key.
	result := FetchAll(context.Background(), fetch, keys, 0, 0)
	assert.Len(t, result.Payloads, 3)
	assert.Empty(t, result.Failures)
}

func TestResultSet_Recover(t *testing.T) {
	recoverable := quranapi.VerseKey{Sura: 1, Ayah: 2}
	permanent := quranapi.VerseKey{Sura: 1, Ayah: 4}

	result := &ResultSet{
		Payloads: map[quranapi.VerseKey]*quranapi.VersePayload{
			{Sura: 1, Ayah: 1}: makePayload(quranapi.VerseKey{Sura: 1, Ayah: 1}),
		},
		Failures: []KeyError{
			{Key: recoverable, Err: errors.New("boom")},
			{Key: permanent, Err: errors.New("boom")},
		},
	}

	calls := make(map[quranapi.VerseKey]int)
	fetch := func(ctx context.Context, key quranapi.VerseKey) (*quranapi.VersePayload, error) {
		calls[key]++
		if key == permanent {
			return nil, errors.New("still down")
		}
		return makePayload(key), nil
	}

	recovered, missing := result.Recover(context.Background(), fetch)

	assert.Equal(t, 1, recovered)
	require.Len(t, missing, 1)
	assert.Equal(t, permanent, missing[0].Key)
	assert.Equal(t, missing, result.Failures)

	var fetchErr *quranapi.FetchError
	require.ErrorAs(t, missing[0].Err, &fetchErr)

	assert.Contains(t, result.Payloads, recoverable)
	assert.NotContains(t, result.Payloads, permanent)

	// One retry per failed key, no more.
	assert.Equal(t, 1, calls[recoverable])
	assert.Equal(t, 1, calls[permanent])
}
