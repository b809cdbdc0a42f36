package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lenilani/leadscout/internal/domain"
)

// RotationLedger tracks which queries each source has already been asked,
// and hands out the least-recently-used eligible queries for the next run.
// All mutations made during a run are buffered in memory and written in one
// batch by Commit; a run that crashes before Commit loses at most its own
// rotation progress and can never leave the ledger half-written.
type RotationLedger struct {
	store    RotationStore
	space    []domain.QueryCombination
	order    map[string]int // query hash -> generation index
	cooldown time.Duration
	now      func() time.Time

	used      map[string]map[string]domain.RotationEntry // source -> hash -> persisted entry
	pending   map[string]map[string]time.Time            // source -> hash -> use timestamp (buffered)
	exhausted map[string]*domain.SourceExhaustion        // buffered exhaustion marks
	recovered map[string]bool                            // buffered exhaustion clears
}

// NewRotationLedger creates a ledger over the given query space.
// Parameters:
//   - store: rotation persistence.
//   - space: the generated query space, in generation order.
//   - cooldown: how long a used query stays ineligible for a source.
//   - now: clock function; nil uses time.Now.
// Returns:
//   - *RotationLedger: ledger ready for Load.
func NewRotationLedger(store RotationStore, space []domain.QueryCombination, cooldown time.Duration, now func() time.Time) *RotationLedger {
	if now == nil {
		now = time.Now
	}
	order := make(map[string]int, len(space))
	for i, q := range space {
		order[q.Hash()] = i
	}
	return &RotationLedger{
		store:     store,
		space:     space,
		order:     order,
		cooldown:  cooldown,
		now:       now,
		used:      make(map[string]map[string]domain.RotationEntry),
		pending:   make(map[string]map[string]time.Time),
		exhausted: make(map[string]*domain.SourceExhaustion),
		recovered: make(map[string]bool),
	}
}

// Load reads the persisted rotation state for the given sources.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceIDs: sources participating in this run.
// Returns:
//   - error: non-nil if loading fails.
func (l *RotationLedger) Load(ctx context.Context, sourceIDs []string) error {
	for _, sourceID := range sourceIDs {
		entries, err := l.store.ListBySource(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("failed to load rotation entries for %s: %w", sourceID, err)
		}
		byHash := make(map[string]domain.RotationEntry, len(entries))
		for _, e := range entries {
			byHash[e.QueryHash] = e
		}
		l.used[sourceID] = byHash
	}
	return nil
}

// EligibleQueries returns up to n queries the source may issue this run:
// queries never used by the source, or whose last use is older than the
// cool-down window. Ordering is least-recently-used first, with generation
// order as the deterministic tie-break (never-used queries sort before all
// used ones). An empty result marks the source exhausted; a non-empty result
// clears a previous exhaustion. Both marks are buffered until Commit.
// Parameters:
//   - sourceID: source identifier.
//   - n: maximum number of queries to return.
// Returns:
//   - []domain.QueryCombination: eligible queries, possibly empty.
func (l *RotationLedger) EligibleQueries(sourceID string, n int) []domain.QueryCombination {
	now := l.now()
	cutoff := now.Add(-l.cooldown)
	byHash := l.used[sourceID]

	type scored struct {
		query    domain.QueryCombination
		lastUsed time.Time
		genIndex int
	}

	var eligible []scored
	var nextRecovery time.Time
	for i, q := range l.space {
		entry, ok := byHash[q.Hash()]
		if !ok {
			eligible = append(eligible, scored{query: q, genIndex: i})
			continue
		}
		if entry.LastUsedAt.Before(cutoff) || entry.LastUsedAt.Equal(cutoff) {
			eligible = append(eligible, scored{query: q, lastUsed: entry.LastUsedAt, genIndex: i})
			continue
		}
		recovers := entry.LastUsedAt.Add(l.cooldown)
		if nextRecovery.IsZero() || recovers.Before(nextRecovery) {
			nextRecovery = recovers
		}
	}

	if len(eligible) == 0 {
		if nextRecovery.IsZero() {
			nextRecovery = now.Add(l.cooldown)
		}
		l.exhausted[sourceID] = &domain.SourceExhaustion{
			SourceID:    sourceID,
			ExhaustedAt: now,
			RecoversAt:  nextRecovery,
		}
		delete(l.recovered, sourceID)
		return nil
	}

	// Eligible queries exist, so any persisted exhaustion auto-clears.
	l.recovered[sourceID] = true
	delete(l.exhausted, sourceID)

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].lastUsed.Equal(eligible[j].lastUsed) {
			return eligible[i].lastUsed.Before(eligible[j].lastUsed)
		}
		return eligible[i].genIndex < eligible[j].genIndex
	})

	if n > len(eligible) {
		n = len(eligible)
	}
	queries := make([]domain.QueryCombination, 0, n)
	for _, s := range eligible[:n] {
		queries = append(queries, s.query)
	}
	return queries
}

// RecordUse buffers a use of a query by a source. Idempotent within a run:
// recording the same (source, query) twice keeps the latest timestamp and
// still counts as one use at Commit.
// Parameters:
//   - sourceID: source identifier.
//   - query: query that was issued.
//   - ts: when the query was issued.
func (l *RotationLedger) RecordUse(sourceID string, query domain.QueryCombination, ts time.Time) {
	if l.pending[sourceID] == nil {
		l.pending[sourceID] = make(map[string]time.Time)
	}
	hash := query.Hash()
	if prev, ok := l.pending[sourceID][hash]; !ok || ts.After(prev) {
		l.pending[sourceID][hash] = ts
	}
}

// IsExhausted reports whether the source has been marked exhausted, either
// persisted (and not yet recovered) or buffered in this run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceID: source identifier.
// Returns:
//   - bool: true when the source currently has no eligible queries.
//   - error: non-nil if the persisted record cannot be read.
func (l *RotationLedger) IsExhausted(ctx context.Context, sourceID string) (bool, error) {
	if _, ok := l.exhausted[sourceID]; ok {
		return true, nil
	}
	if l.recovered[sourceID] {
		return false, nil
	}
	rec, err := l.store.GetExhaustion(ctx, sourceID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	return l.now().Before(rec.RecoversAt), nil
}

// Commit writes all buffered rotation mutations in one batch: query uses as
// idempotent upserts, then exhaustion marks and clears. Called exactly once,
// at end-of-run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: non-nil if any batch write fails; the run reports a degraded
//     summary and the next run re-fetches, which dedup absorbs.
func (l *RotationLedger) Commit(ctx context.Context) error {
	var entries []domain.RotationEntry
	for sourceID, uses := range l.pending {
		for hash, ts := range uses {
			idx, ok := l.order[hash]
			if !ok {
				continue
			}
			q := l.space[idx]
			entries = append(entries, domain.RotationEntry{
				SourceID:   sourceID,
				QueryHash:  hash,
				Industry:   q.Industry,
				Location:   q.Location,
				Keyword:    q.Keyword,
				LastUsedAt: ts,
				UseCount:   1,
			})
		}
	}
	// Stable write order keeps retries and tests deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SourceID != entries[j].SourceID {
			return entries[i].SourceID < entries[j].SourceID
		}
		return l.order[entries[i].QueryHash] < l.order[entries[j].QueryHash]
	})

	if err := l.store.UpsertEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to commit rotation entries: %w", err)
	}
	for sourceID, rec := range l.exhausted {
		if err := l.store.SetExhaustion(ctx, rec); err != nil {
			return fmt.Errorf("failed to mark %s exhausted: %w", sourceID, err)
		}
	}
	for sourceID := range l.recovered {
		if err := l.store.ClearExhaustion(ctx, sourceID); err != nil {
			return fmt.Errorf("failed to clear exhaustion for %s: %w", sourceID, err)
		}
	}
	return nil
}
