package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/lenilani/leadscout/internal/config"
	"github.com/lenilani/leadscout/internal/domain"
	"github.com/lenilani/leadscout/internal/logger"
	"github.com/lenilani/leadscout/internal/source"
)

// Orchestrator drives one discovery run end to end: capacity check, query
// selection, bounded concurrent fetching, sequential filtering, persistence,
// and the end-of-run rotation commit. A single Orchestrator serves all runs;
// the capacity controller is the only state shared between them, so two
// overlapping runs can never jointly exceed the daily limit.
type Orchestrator struct {
	cfg      *config.Config
	leads    LeadStore
	rotation RotationStore
	capacity *CapacityController
	runs     RunStore
	registry SourceRegistry
	adapters map[string]source.Source
	now      func() time.Time
}

// NewOrchestrator wires the discovery pipeline.
// Parameters:
//   - cfg: full application configuration.
//   - leads: lead persistence.
//   - rotation: rotation ledger persistence.
//   - capacity: the shared daily capacity controller.
//   - runs: run record persistence.
//   - registry: data source registry.
//   - adapters: fetch adapters keyed by source ID.
// Returns:
//   - *Orchestrator: orchestrator ready for RunDiscovery.
func NewOrchestrator(
	cfg *config.Config,
	leads LeadStore,
	rotation RotationStore,
	capacity *CapacityController,
	runs RunStore,
	registry SourceRegistry,
	adapters map[string]source.Source,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		leads:    leads,
		rotation: rotation,
		capacity: capacity,
		runs:     runs,
		registry: registry,
		adapters: adapters,
		now:      time.Now,
	}
}

// fetchTask is one (source, query) fetch scheduled for the fan-out phase.
type fetchTask struct {
	sourceIdx int
	queryIdx  int
	sourceID  string
	adapter   source.Source
	query     domain.QueryCombination
}

// fetchResult carries the outcome of one fetchTask back to the merge step.
type fetchResult struct {
	task       fetchTask
	candidates []source.Candidate
	err        error
	fetchedAt  time.Time
}

// RunDiscovery executes one full discovery run and persists its record.
//
// A run fails outright only on invalid configuration or when its own record
// cannot be created; source failures and per-lead persistence failures are
// absorbed into the summary. The returned run is also persisted, so callers
// may inspect it without re-reading the store.
// Parameters:
//   - ctx: context carrying the run deadline; cancellation stops fetching
//     and the run completes with what it has.
// Returns:
//   - *domain.DiscoveryRun: the final run record with summary counters.
//   - error: non-nil only when the run could not produce a record at all.
func (o *Orchestrator) RunDiscovery(ctx context.Context) (*domain.DiscoveryRun, error) {
	start := o.now()
	run := &domain.DiscoveryRun{
		ID:              uuid.New().String(),
		State:           domain.RunStateIdle,
		SourceErrors:    domain.SourceErrorList{},
		LedgerPersisted: true,
		StartedAt:       start,
	}
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	ctx = logger.SetRunID(ctx, run.ID)
	ctx = logger.SetComponent(ctx, "discovery")
	logger.CtxInfo(ctx, "discovery run started")

	// Capacity gate: a run that starts with zero remaining slots does not
	// touch the rotation ledger at all.
	o.setState(ctx, run, domain.RunStateCapacityCheck)
	remaining, err := o.capacity.Remaining(ctx)
	if err != nil {
		return o.fail(ctx, run, fmt.Errorf("capacity check failed: %w", err))
	}
	if remaining == 0 {
		logger.CtxInfo(ctx, "daily capacity already exhausted, skipping run")
		return o.complete(ctx, run)
	}

	space, err := GenerateQuerySpace(&o.cfg.QuerySpace)
	if err != nil {
		return o.fail(ctx, run, err)
	}
	if o.cfg.ICP.ScoreThreshold < 0 || o.cfg.ICP.ScoreThreshold > 100 {
		return o.fail(ctx, run, NewConfigurationError("icp.score_threshold", "must be in [0,100]"))
	}

	sources, err := o.registry.ListEnabled(ctx)
	if err != nil {
		return o.fail(ctx, run, fmt.Errorf("failed to list enabled sources: %w", err))
	}
	var active []domain.DataSource
	for _, s := range sources {
		if _, ok := o.adapters[s.ID]; ok {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		logger.CtxWarn(ctx, "no enabled sources with adapters, nothing to fetch")
		return o.complete(ctx, run)
	}

	sourceIDs := make([]string, 0, len(active))
	for _, s := range active {
		sourceIDs = append(sourceIDs, s.ID)
	}

	ledger := NewRotationLedger(o.rotation, space, o.cfg.Discovery.Cooldown, o.now)
	if err := ledger.Load(ctx, sourceIDs); err != nil {
		return o.fail(ctx, run, err)
	}

	// Query selection per source, in priority order.
	o.setState(ctx, run, domain.RunStateFetching)
	var tasks []fetchTask
	for si, s := range active {
		queries := ledger.EligibleQueries(s.ID, o.cfg.Discovery.BatchSize)
		if len(queries) == 0 {
			logger.CtxWarn(ctx, "source %s has no eligible queries this run", s.ID)
			continue
		}
		for qi, q := range queries {
			tasks = append(tasks, fetchTask{
				sourceIdx: si,
				queryIdx:  qi,
				sourceID:  s.ID,
				adapter:   o.adapters[s.ID],
				query:     q,
			})
		}
	}

	results := o.fetchAll(ctx, tasks)

	// Merge in deterministic order: source priority, then query selection
	// order. Candidate order inside one fetch is the source's own order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].task.sourceIdx != results[j].task.sourceIdx {
			return results[i].task.sourceIdx < results[j].task.sourceIdx
		}
		return results[i].task.queryIdx < results[j].task.queryIdx
	})

	var candidates []source.Candidate
	for _, r := range results {
		if r.err != nil {
			srcErr := &SourceError{SourceID: r.task.sourceID, Query: r.task.query, Err: r.err}
			logger.CtxWarn(ctx, "fetch failed: %v", srcErr)
			run.SourceErrors = append(run.SourceErrors, srcErr.Record())
			continue
		}
		// Only successful fetches consume the query's rotation slot; a
		// failed query stays eligible for the next run.
		ledger.RecordUse(r.task.sourceID, r.task.query, r.fetchedAt)
		candidates = append(candidates, r.candidates...)
	}
	run.TotalDiscovered = len(candidates)
	logger.CtxInfo(ctx, "fetch phase complete: %d candidates from %d queries", len(candidates), len(tasks))

	if err := o.filterAndPersist(ctx, run, candidates); err != nil {
		return o.fail(ctx, run, err)
	}

	if err := ledger.Commit(ctx); err != nil {
		// The run itself still completes; dedup absorbs the re-fetches the
		// stale ledger will cause next run.
		logger.CtxError(ctx, "rotation ledger commit failed: %v", err)
		run.LedgerPersisted = false
	}

	touchedAt := o.now()
	for _, s := range active {
		if err := o.registry.TouchLastRun(ctx, s.ID, touchedAt); err != nil {
			logger.CtxWarn(ctx, "failed to update last run for %s: %v", s.ID, err)
		}
	}

	return o.complete(ctx, run)
}

// fetchAll runs every fetch task concurrently, bounded by the configured
// fan-out limit, each with its own timeout. Result order is unspecified;
// the caller sorts.
func (o *Orchestrator) fetchAll(ctx context.Context, tasks []fetchTask) []fetchResult {
	sem := semaphore.NewWeighted(int64(o.cfg.Discovery.FanoutLimit))
	results := make([]fetchResult, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Run deadline hit: remaining queries go unissued and stay
			// eligible.
			results[i] = fetchResult{task: task, err: err, fetchedAt: o.now()}
			continue
		}
		wg.Add(1)
		go func(i int, task fetchTask) {
			defer wg.Done()
			defer sem.Release(1)

			fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.Discovery.FetchTimeout)
			defer cancel()
			fetchCtx = logger.SetSource(fetchCtx, task.sourceID)

			fetched := o.now()
			cands, err := task.adapter.Fetch(fetchCtx, task.query)
			results[i] = fetchResult{
				task:       task,
				candidates: cands,
				err:        err,
				fetchedAt:  fetched,
			}
			if err == nil {
				logger.FromContext(fetchCtx).
					WithField(logger.FieldQuery, task.query.String()).
					WithField(logger.FieldCount, len(cands)).
					Debug("fetch complete")
			}
		}(i, task)
	}
	wg.Wait()
	return results
}

// filterAndPersist runs the sequential admission pipeline over the merged
// candidate list: dedup, ICP scoring, capacity admission, then persistence.
// Processing stops at the first capacity refusal; everything after it counts
// as capacity-skipped without being scored.
func (o *Orchestrator) filterAndPersist(ctx context.Context, run *domain.DiscoveryRun, candidates []source.Candidate) error {
	o.setState(ctx, run, domain.RunStateFiltering)

	seed, err := o.leads.ListCanonicalKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to load canonical keys: %w", err)
	}
	dedup := NewDeduplicator(seed)
	scorer := NewProfileScorer(&o.cfg.ICP)

	o.setState(ctx, run, domain.RunStatePersisting)
	for i := range candidates {
		c := &candidates[i]

		keys := dedup.Keys(c.Name, c.Website, c.Phone)
		if dedup.IsDuplicate(keys) {
			run.DuplicateSkipped++
			continue
		}

		score := scorer.Score(c)
		if score < scorer.Threshold() {
			run.ICPFiltered++
			continue
		}

		admitted, err := o.capacity.TryAdmit(ctx)
		if err != nil {
			return fmt.Errorf("capacity admission failed: %w", err)
		}
		if !admitted {
			run.CapacityExhausted += len(candidates) - i
			logger.CtxInfo(ctx, "daily capacity reached, skipping %d remaining candidates", len(candidates)-i)
			break
		}

		lead := o.buildLead(c, keys, score)
		if err := o.leads.Create(ctx, lead); err != nil {
			// Give the slot back so a later candidate can use it.
			logger.CtxError(ctx, "failed to persist lead %q: %v", c.Name, err)
			run.SourceErrors = append(run.SourceErrors, domain.SourceErrorRecord{
				SourceID: c.SourceID,
				Message:  fmt.Sprintf("persist %q: %v", c.Name, err),
			})
			if relErr := o.capacity.Release(ctx); relErr != nil {
				logger.CtxError(ctx, "capacity rollback failed: %v", relErr)
			}
			continue
		}

		dedup.Register(keys)
		run.Admitted++
	}
	return nil
}

// buildLead converts an admitted candidate into its persisted form.
func (o *Orchestrator) buildLead(c *source.Candidate, keys domain.CanonicalKeys, score float64) *domain.Lead {
	var attrs domain.JSONMap
	if len(c.Raw) > 0 {
		attrs = domain.JSONMap(c.Raw)
	}
	return &domain.Lead{
		ID:            uuid.New().String(),
		CompanyName:   c.Name,
		NameKey:       keys.Name,
		DomainKey:     keys.Domain,
		PhoneKey:      keys.Phone,
		Website:       c.Website,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		Industry:      c.Industry,
		Location:      c.Location,
		Description:   c.Description,
		EmployeeCount: c.EmployeeCount,
		ICPScore:      score,
		SourceID:      c.SourceID,
		Attributes:    attrs,
		Status:        domain.LeadStatusNew,
		DiscoveredAt:  o.now(),
	}
}

// setState advances the run state machine and persists the transition.
// State persistence is advisory: a failed update is logged, not fatal.
func (o *Orchestrator) setState(ctx context.Context, run *domain.DiscoveryRun, state domain.RunState) {
	run.State = state
	if err := o.runs.Update(ctx, run); err != nil {
		logger.CtxWarn(ctx, "failed to persist run state %s: %v", state, err)
	}
}

// complete finalizes a run in the completed state and logs its summary.
func (o *Orchestrator) complete(ctx context.Context, run *domain.DiscoveryRun) (*domain.DiscoveryRun, error) {
	now := o.now()
	run.State = domain.RunStateCompleted
	run.CompletedAt = &now
	run.DurationMs = now.Sub(run.StartedAt).Milliseconds()
	if err := o.runs.Update(ctx, run); err != nil {
		return run, fmt.Errorf("failed to persist run summary: %w", err)
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		"total_discovered":   run.TotalDiscovered,
		"admitted":           run.Admitted,
		"duplicate_skipped":  run.DuplicateSkipped,
		"icp_filtered":       run.ICPFiltered,
		"capacity_exhausted": run.CapacityExhausted,
		"source_errors":      len(run.SourceErrors),
		"ledger_persisted":   run.LedgerPersisted,
		logger.FieldDurationMs: run.DurationMs,
	}).Info("discovery run completed")
	return run, nil
}

// fail finalizes a run in the failed state. Only pre-fetch configuration and
// infrastructure errors land here; source-level failures never do.
func (o *Orchestrator) fail(ctx context.Context, run *domain.DiscoveryRun, cause error) (*domain.DiscoveryRun, error) {
	now := o.now()
	run.State = domain.RunStateFailed
	run.CompletedAt = &now
	run.DurationMs = now.Sub(run.StartedAt).Milliseconds()
	if err := o.runs.Update(ctx, run); err != nil {
		logger.CtxError(ctx, "failed to persist failed run: %v", err)
	}
	logger.CtxError(ctx, "discovery run failed: %v", cause)
	return run, cause
}
