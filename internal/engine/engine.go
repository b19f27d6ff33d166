package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tkrause/symsync/internal/ingest"
	"github.com/tkrause/symsync/internal/model"
	"github.com/tkrause/symsync/internal/source"
)

// Config holds reconciliation run settings.
type Config struct {
	// FetchConcurrency bounds parallel source fetches.
	FetchConcurrency int

	// FetchTimeout bounds the whole fetch step. Zero means no limit.
	FetchTimeout time.Duration

	// RunDate is the date stamped on history windows opened by this run.
	// Zero means today (UTC).
	RunDate time.Time
}

// Engine orchestrates a reconciliation run: fetch, clean, partition,
// lifecycle mutation, reporting. Stages are composed here as plain
// functions over plain data so each is independently testable.
type Engine struct {
	cfg       Config
	sources   []source.Source
	repo      Repository
	lifecycle *Lifecycle
	logger    *slog.Logger
}

// New creates an Engine over the given sources and repository.
func New(cfg Config, sources []source.Source, repo Repository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}
	return &Engine{
		cfg:       cfg,
		sources:   sources,
		repo:      repo,
		lifecycle: NewLifecycle(repo, logger),
		logger:    logger,
	}
}

// RunIngestion executes one reconciliation run and reports its counts.
// Record- and source-local failures are absorbed into the result; only
// store-level failures return an error, alongside whatever counts the run
// accumulated before failing.
func (e *Engine) RunIngestion(ctx context.Context) (model.SyncResult, error) {
	return e.run(ctx, false)
}

// RunComprehensiveSync is RunIngestion plus unused-ticker detection over
// the same cleaned batch and snapshot.
func (e *Engine) RunComprehensiveSync(ctx context.Context) (model.SyncResult, error) {
	return e.run(ctx, true)
}

func (e *Engine) run(ctx context.Context, comprehensive bool) (model.SyncResult, error) {
	res := model.SyncResult{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
	}
	lg := e.logger.With("run_id", res.RunID.String())
	lg.Info("reconciliation run starting", "sources", len(e.sources), "comprehensive", comprehensive)

	fetchCtx := ctx
	if e.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
		defer cancel()
	}
	records, failedSources := ingest.Aggregate(fetchCtx, e.sources, e.cfg.FetchConcurrency, lg)
	res.SourcesFailed = failedSources

	cleaned, skipped := ingest.Clean(records)
	res.CompaniesSkipped = skipped

	if len(cleaned) == 0 {
		// Empty working set: the run is a no-op, detectable by the caller
		// through a zero total-processed count. Unused detection is
		// deliberately skipped: with every source down it would report
		// the whole store as delisting candidates.
		res.Duration = time.Since(res.StartedAt)
		lg.Warn("empty working set, nothing to reconcile", "sources_failed", failedSources)
		return res, nil
	}

	snapshot, err := e.repo.ActiveSymbols(ctx)
	if err != nil {
		res.Duration = time.Since(res.StartedAt)
		return res, fmt.Errorf("load active symbol snapshot: %w", err)
	}

	fresh, existing := Partition(cleaned, snapshot)
	lg.Info("partitioned working set",
		"cleaned", len(cleaned), "new", len(fresh), "existing", len(existing), "skipped", skipped)

	onboarded, err := e.lifecycle.OnboardNew(ctx, fresh, e.runDate())
	res.CompaniesInserted += onboarded.Inserted
	res.CompaniesErrored += onboarded.Errored
	res.TickersCreated += onboarded.TickersCreated
	res.HistoryOpened += onboarded.HistoryOpened
	if err != nil {
		res.Duration = time.Since(res.StartedAt)
		return res, fmt.Errorf("onboard new companies: %w", err)
	}

	updated, err := e.lifecycle.UpdateExisting(ctx, existing, snapshot)
	res.CompaniesUpdated += updated.Updated
	res.CompaniesErrored += updated.Errored
	if err != nil {
		res.Duration = time.Since(res.StartedAt)
		return res, fmt.Errorf("update existing companies: %w", err)
	}

	if comprehensive {
		res.UnusedTickers = DetectUnused(snapshot, cleaned)
		res.UnusedTickerCount = len(res.UnusedTickers)
	}

	res.Duration = time.Since(res.StartedAt)
	lg.Info("reconciliation run complete",
		"inserted", res.CompaniesInserted,
		"updated", res.CompaniesUpdated,
		"skipped", res.CompaniesSkipped,
		"errored", res.CompaniesErrored,
		"tickers_created", res.TickersCreated,
		"windows_opened", res.HistoryOpened,
		"unused", res.UnusedTickerCount,
		"duration", res.Duration,
	)
	return res, nil
}

// runDate returns the date stamped on opened history windows.
func (e *Engine) runDate() time.Time {
	if !e.cfg.RunDate.IsZero() {
		return e.cfg.RunDate
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Lifecycle exposes the explicit lifecycle operations (reassignment,
// retirement) that run outside a reconciliation run.
func (e *Engine) Lifecycle() *Lifecycle {
	return e.lifecycle
}

// UnusedReport fetches the current snapshot, aggregates and cleans a fresh
// batch, and reports the delisting candidates without mutating anything.
func (e *Engine) UnusedReport(ctx context.Context) ([]string, error) {
	records, failed := ingest.Aggregate(ctx, e.sources, e.cfg.FetchConcurrency, e.logger)
	cleaned, _ := ingest.Clean(records)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no usable records from any source (%d failed)", failed)
	}

	snapshot, err := e.repo.ActiveSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active symbol snapshot: %w", err)
	}
	return DetectUnused(snapshot, cleaned), nil
}
