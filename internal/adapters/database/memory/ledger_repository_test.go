package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyfin/tally/internal/adapters/database/memory"
	"github.com/tallyfin/tally/internal/core/domain"
)

func TestAppendEntry_AssignsGlobalIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryLedgerRepository()
	usd := domain.AssetCodeFor("USD")
	eur := domain.AssetCodeFor("EUR")
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	// IDs are global across accounts and assets, not per account.
	first, _, err := repo.AppendEntry(ctx, "alice", domain.NewEntry(usd, 100, "", now))
	require.NoError(t, err)
	second, _, err := repo.AppendEntry(ctx, "bob", domain.NewEntry(eur, 50, "", now))
	require.NoError(t, err)
	third, _, err := repo.AppendEntry(ctx, "alice", domain.NewEntry(eur, -20, "", now))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)
	assert.Equal(t, uint64(3), third.ID)

	count, err := repo.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestAppendEntry_BalancePerAccountPerAsset(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryLedgerRepository()
	usd := domain.AssetCodeFor("USD")
	eur := domain.AssetCodeFor("EUR")
	now := time.Now()

	_, bal, err := repo.AppendEntry(ctx, "alice", domain.NewEntry(usd, 100, "init", now))
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	_, bal, err = repo.AppendEntry(ctx, "alice", domain.NewEntry(usd, -30, "spend", now))
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal)

	// A different asset on the same account is an independent track.
	_, bal, err = repo.AppendEntry(ctx, "alice", domain.NewEntry(eur, -5, "", now))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), bal, "balances may go negative")

	usdBalance, err := repo.Balance(ctx, "alice", usd)
	require.NoError(t, err)
	assert.Equal(t, int64(70), usdBalance)

	eurBalance, err := repo.Balance(ctx, "alice", eur)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), eurBalance)

	// Untouched pairs read zero, not an error.
	bobBalance, err := repo.Balance(ctx, "bob", usd)
	require.NoError(t, err)
	assert.Zero(t, bobBalance)
}

func TestEntriesByAccount_OrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryLedgerRepository()
	usd := domain.AssetCodeFor("USD")
	now := time.Now()

	for i, delta := range []int64{100, -30, 7} {
		_, _, err := repo.AppendEntry(ctx, "alice", domain.NewEntry(usd, delta, "", now.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	entries, err := repo.EntriesByAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(100), entries[0].Delta)
	assert.Equal(t, int64(-30), entries[1].Delta)
	assert.Equal(t, int64(7), entries[2].Delta)

	// The returned slice is a copy; mutating it must not corrupt the log.
	entries[0].Delta = 9999
	again, err := repo.EntriesByAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), again[0].Delta)

	// Unknown accounts read an empty log.
	empty, err := repo.EntriesByAccount(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepeatedReads_AreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryLedgerRepository()
	usd := domain.AssetCodeFor("USD")

	_, _, err := repo.AppendEntry(ctx, "alice", domain.NewEntry(usd, 42, "", time.Now()))
	require.NoError(t, err)

	first, err := repo.EntriesByAccount(ctx, "alice")
	require.NoError(t, err)
	second, err := repo.EntriesByAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	b1, err := repo.Balance(ctx, "alice", usd)
	require.NoError(t, err)
	b2, err := repo.Balance(ctx, "alice", usd)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestAppendEntry_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryLedgerRepository()
	usd := domain.AssetCodeFor("USD")

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, _, err := repo.AppendEntry(ctx, "alice", domain.NewEntry(usd, 1, "", time.Now()))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	balance, err := repo.Balance(ctx, "alice", usd)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), balance)

	entries, err := repo.EntriesByAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, workers*perWorker)

	// IDs must be unique; the set of assigned IDs is exactly 1..N.
	seen := make(map[uint64]bool, len(entries))
	for _, e := range entries {
		assert.False(t, seen[e.ID], "duplicate entry id %d", e.ID)
		seen[e.ID] = true
		assert.True(t, e.ID >= 1 && e.ID <= uint64(workers*perWorker))
	}

	count, err := repo.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers*perWorker), count)
}
