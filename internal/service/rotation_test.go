package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenilani/leadscout/internal/domain"
)

func testSpace(t *testing.T) []domain.QueryCombination {
	t.Helper()
	combos, err := GenerateQuerySpace(testQuerySpaceConfig())
	require.NoError(t, err)
	return combos
}

func fixedNow(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestEligibleQueriesFreshLedger(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps"}))

	queries := ledger.EligibleQueries("google_maps", 3)
	require.Len(t, queries, 3)

	// Never-used queries come back in generation order.
	for i, q := range queries {
		assert.Equal(t, space[i], q, "query %d", i)
	}
}

func TestEligibleQueriesRespectsCooldown(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// First two queries used one hour ago: still cooling down.
	recent := map[string]domain.RotationEntry{}
	for _, q := range space[:2] {
		recent[q.Hash()] = domain.RotationEntry{
			SourceID:   "google_maps",
			QueryHash:  q.Hash(),
			LastUsedAt: now.Add(-time.Hour),
		}
	}
	store.entries["google_maps"] = recent

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps"}))

	queries := ledger.EligibleQueries("google_maps", len(space))
	require.Len(t, queries, len(space)-2)
	for _, q := range queries {
		assert.NotEqual(t, space[0], q)
		assert.NotEqual(t, space[1], q)
	}
}

func TestEligibleQueriesLRUOrdering(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	// space[0] used 3 days ago, space[1] used 2 days ago, rest never used.
	store.entries["google_maps"] = map[string]domain.RotationEntry{
		space[0].Hash(): {SourceID: "google_maps", QueryHash: space[0].Hash(), LastUsedAt: now.Add(-72 * time.Hour)},
		space[1].Hash(): {SourceID: "google_maps", QueryHash: space[1].Hash(), LastUsedAt: now.Add(-48 * time.Hour)},
	}

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps"}))

	queries := ledger.EligibleQueries("google_maps", len(space))
	require.Len(t, queries, len(space))

	// Never-used queries first (generation order), then oldest-used first.
	assert.Equal(t, space[2], queries[0])
	assert.Equal(t, space[len(space)-1], queries[len(space)-3])
	assert.Equal(t, space[0], queries[len(space)-2])
	assert.Equal(t, space[1], queries[len(space)-1])
}

func TestExhaustionMarkedAndBuffered(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Every query used 1 hour ago: nothing eligible under a 24h cooldown.
	all := map[string]domain.RotationEntry{}
	for _, q := range space {
		all[q.Hash()] = domain.RotationEntry{
			SourceID:   "yelp",
			QueryHash:  q.Hash(),
			LastUsedAt: now.Add(-time.Hour),
		}
	}
	store.entries["yelp"] = all

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"yelp"}))

	queries := ledger.EligibleQueries("yelp", 5)
	assert.Empty(t, queries)

	exhausted, err := ledger.IsExhausted(context.Background(), "yelp")
	require.NoError(t, err)
	assert.True(t, exhausted)

	// Nothing persisted until Commit.
	assert.Nil(t, store.exhaustions["yelp"])

	require.NoError(t, ledger.Commit(context.Background()))
	rec := store.exhaustions["yelp"]
	require.NotNil(t, rec)
	// Earliest recovery is the oldest use plus the cooldown.
	assert.Equal(t, now.Add(-time.Hour).Add(24*time.Hour), rec.RecoversAt)
}

func TestExhaustionRecoversWhenQueriesAreEligible(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)

	store.exhaustions["yelp"] = &domain.SourceExhaustion{
		SourceID:    "yelp",
		ExhaustedAt: now.Add(-25 * time.Hour),
		RecoversAt:  now.Add(-time.Hour),
	}

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"yelp"}))

	queries := ledger.EligibleQueries("yelp", 2)
	assert.NotEmpty(t, queries)

	exhausted, err := ledger.IsExhausted(context.Background(), "yelp")
	require.NoError(t, err)
	assert.False(t, exhausted)

	require.NoError(t, ledger.Commit(context.Background()))
	assert.Nil(t, store.exhaustions["yelp"])
}

func TestRecordUseBufferedUntilCommit(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps"}))

	ledger.RecordUse("google_maps", space[0], now)
	ledger.RecordUse("google_maps", space[1], now)
	assert.Equal(t, 0, store.entryCount("google_maps"), "uses must stay buffered before Commit")

	require.NoError(t, ledger.Commit(context.Background()))
	assert.Equal(t, 2, store.entryCount("google_maps"))
}

func TestRecordUseIdempotentWithinRun(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps"}))

	ledger.RecordUse("google_maps", space[0], now)
	ledger.RecordUse("google_maps", space[0], now.Add(time.Minute))
	require.NoError(t, ledger.Commit(context.Background()))

	require.Equal(t, 1, store.entryCount("google_maps"))
	entry := store.entries["google_maps"][space[0].Hash()]
	assert.Equal(t, now.Add(time.Minute), entry.LastUsedAt, "latest timestamp wins")
	assert.Equal(t, 1, entry.UseCount, "double record within one run counts once")
}

func TestLedgersArePerSource(t *testing.T) {
	store := newFakeRotationStore()
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps", "yelp"}))

	ledger.RecordUse("google_maps", space[0], now)
	require.NoError(t, ledger.Commit(context.Background()))

	// A use by one source must not affect another source's eligibility.
	next := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now.Add(time.Hour)))
	require.NoError(t, next.Load(context.Background(), []string{"google_maps", "yelp"}))

	gm := next.EligibleQueries("google_maps", len(space))
	yp := next.EligibleQueries("yelp", len(space))
	assert.Len(t, gm, len(space)-1)
	assert.Len(t, yp, len(space))
}

func TestCommitFailureLeavesBufferIntact(t *testing.T) {
	store := newFakeRotationStore()
	store.upsertErr = assert.AnError
	space := testSpace(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ledger := NewRotationLedger(store, space, 24*time.Hour, fixedNow(now))
	require.NoError(t, ledger.Load(context.Background(), []string{"google_maps"}))

	ledger.RecordUse("google_maps", space[0], now)
	err := ledger.Commit(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, store.entryCount("google_maps"))

	// A retry after the store recovers succeeds with the same buffer.
	store.upsertErr = nil
	require.NoError(t, ledger.Commit(context.Background()))
	assert.Equal(t, 1, store.entryCount("google_maps"))
}
