package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tkrause/symsync/internal/model"
)

// ErrNoActiveTicker is returned by explicit lifecycle operations invoked on
// a symbol with no active ticker row.
var ErrNoActiveTicker = errors.New("engine: no active ticker for symbol")

// ErrSymbolTaken is returned when a reassignment target symbol already has
// an active ticker.
var ErrSymbolTaken = errors.New("engine: symbol already actively assigned")

// Lifecycle mutates companies, tickers and history windows through the
// repository while preserving the per-symbol invariants: one active ticker
// row, one open history window, non-overlapping windows.
type Lifecycle struct {
	repo   Repository
	logger *slog.Logger
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(repo Repository, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{repo: repo, logger: logger}
}

// OnboardSummary tallies an onboarding batch.
type OnboardSummary struct {
	Inserted       int
	Errored        int
	TickersCreated int
	HistoryOpened  int
}

// UpdateSummary tallies an update batch.
type UpdateSummary struct {
	Updated int
	Errored int
}

// OnboardNew creates a company, an active ticker, and an opening history
// window for every record. The caller guarantees records were partitioned
// as new against a fresh snapshot; the partial unique index on active
// ticker symbols is the backstop that turns a race into a per-record error
// instead of a silent duplicate.
//
// The company batch commits first to obtain assigned ids, then the ticker
// and history batches. A per-record conflict drops that record from the
// later batches without aborting the rest. If a dependent batch fails after
// the company batch committed, the orphaned company rows are tolerated and
// tallied as errored rather than rolled back across entity types.
func (l *Lifecycle) OnboardNew(ctx context.Context, records []model.CompanyRecord, runDate time.Time) (OnboardSummary, error) {
	var sum OnboardSummary
	if len(records) == 0 {
		return sum, nil
	}

	companies := make([]model.Company, len(records))
	for i, rec := range records {
		companies[i] = model.Company{
			Name:        rec.Name,
			Exchange:    rec.Exchange,
			Sector:      rec.Sector,
			Industry:    rec.Industry,
			Country:     rec.Country,
			MarketCap:   rec.MarketCap,
			Description: rec.Description,
			Active:      true,
			Source:      rec.Source,
		}
	}

	companyOutcomes, err := l.repo.InsertCompanies(ctx, companies)
	if err != nil {
		return sum, fmt.Errorf("insert company batch: %w", err)
	}

	// Records whose company row landed move on to ticker creation.
	type pending struct {
		record    model.CompanyRecord
		companyID int64
	}
	survivors := make([]pending, 0, len(records))
	for i, out := range companyOutcomes {
		if out.Conflict {
			sum.Errored++
			l.logger.Warn("company insert conflicted", "symbol", records[i].Ticker, "source", records[i].Source)
			continue
		}
		survivors = append(survivors, pending{record: records[i], companyID: out.ID})
	}

	if len(survivors) == 0 {
		return sum, nil
	}

	tickers := make([]model.Ticker, len(survivors))
	for i, p := range survivors {
		tickers[i] = model.Ticker{Symbol: p.record.Ticker, CompanyID: p.companyID, Active: true}
	}

	tickerOutcomes, err := l.repo.InsertTickers(ctx, tickers)
	if err != nil {
		// Company rows are already committed. Tolerate the orphans: they
		// carry no resolvable ticker and a later run can re-establish the
		// linkage.
		sum.Errored += len(survivors)
		l.logger.Error("ticker batch failed after company batch committed, orphan companies left for repair",
			"orphans", len(survivors), "error", err)
		return sum, nil
	}

	withTicker := survivors[:0]
	for i, out := range tickerOutcomes {
		if out.Conflict {
			sum.Errored++
			l.logger.Warn("active ticker already exists, company row orphaned",
				"symbol", survivors[i].record.Ticker, "company_id", survivors[i].companyID)
			continue
		}
		sum.TickersCreated++
		withTicker = append(withTicker, survivors[i])
	}

	if len(withTicker) == 0 {
		return sum, nil
	}

	windows := make([]model.TickerHistory, len(withTicker))
	for i, p := range withTicker {
		windows[i] = model.TickerHistory{
			Symbol:    p.record.Ticker,
			CompanyID: p.companyID,
			ValidFrom: runDate,
			Active:    true,
		}
	}

	historyOutcomes, err := l.repo.InsertTickerHistory(ctx, windows)
	if err != nil {
		sum.Errored += len(withTicker)
		l.logger.Error("history batch failed after ticker batch committed",
			"records", len(withTicker), "error", err)
		return sum, nil
	}

	for i, out := range historyOutcomes {
		if out.Conflict {
			sum.Errored++
			l.logger.Warn("open history window already exists", "symbol", withTicker[i].record.Ticker)
			continue
		}
		sum.HistoryOpened++
		sum.Inserted++
	}

	return sum, nil
}

// UpdateExisting applies field updates to companies already mapped by an
// active ticker. Company ids come from the run's snapshot so every record
// is resolved against the same point in time. Ticker and history rows are
// never touched: a same-symbol update is a pure company field update.
func (l *Lifecycle) UpdateExisting(ctx context.Context, records []model.CompanyRecord, snapshot map[string]int64) (UpdateSummary, error) {
	var sum UpdateSummary
	if len(records) == 0 {
		return sum, nil
	}

	changes := make([]model.CompanyChange, 0, len(records))
	for _, rec := range records {
		id, ok := snapshot[rec.Ticker]
		if !ok {
			// The caller partitioned against this snapshot, so a miss
			// here is a programming error rather than data drift.
			sum.Errored++
			l.logger.Warn("update requested for symbol outside snapshot", "symbol", rec.Ticker)
			continue
		}
		changes = append(changes, model.CompanyChange{
			ID:          id,
			Name:        rec.Name,
			Sector:      rec.Sector,
			Industry:    rec.Industry,
			Country:     rec.Country,
			MarketCap:   rec.MarketCap,
			Description: rec.Description,
			Source:      rec.Source,
		})
	}

	if len(changes) == 0 {
		return sum, nil
	}

	applied, err := l.repo.UpdateCompanies(ctx, changes)
	if err != nil {
		return sum, fmt.Errorf("update company batch: %w", err)
	}

	for i, ok := range applied {
		if !ok {
			sum.Errored++
			l.logger.Warn("company row missing during update", "company_id", changes[i].ID)
			continue
		}
		sum.Updated++
	}

	return sum, nil
}

// ReassignSymbol moves a company from oldSymbol to newSymbol: the open
// history window for oldSymbol is closed as of asOf, its ticker row
// deactivated, and a new active ticker plus opening window created under
// newSymbol. The caller has already established identity continuity; the
// engine never infers that a new symbol is a rename from name similarity.
func (l *Lifecycle) ReassignSymbol(ctx context.Context, companyID int64, oldSymbol, newSymbol string, asOf time.Time) error {
	closed, err := l.repo.CloseTickerHistory(ctx, oldSymbol, asOf)
	if err != nil {
		return fmt.Errorf("close history window %q: %w", oldSymbol, err)
	}
	if !closed {
		return fmt.Errorf("reassign %q: %w", oldSymbol, ErrNoActiveTicker)
	}

	if _, err := l.repo.DeactivateTicker(ctx, oldSymbol); err != nil {
		return fmt.Errorf("deactivate ticker %q: %w", oldSymbol, err)
	}

	outcomes, err := l.repo.InsertTickers(ctx, []model.Ticker{
		{Symbol: newSymbol, CompanyID: companyID, Active: true},
	})
	if err != nil {
		return fmt.Errorf("insert ticker %q: %w", newSymbol, err)
	}
	if outcomes[0].Conflict {
		return fmt.Errorf("reassign to %q: %w", newSymbol, ErrSymbolTaken)
	}

	windows, err := l.repo.InsertTickerHistory(ctx, []model.TickerHistory{
		{Symbol: newSymbol, CompanyID: companyID, ValidFrom: asOf, Active: true},
	})
	if err != nil {
		return fmt.Errorf("open history window %q: %w", newSymbol, err)
	}
	if windows[0].Conflict {
		return fmt.Errorf("open history window %q: %w", newSymbol, ErrSymbolTaken)
	}

	l.logger.Info("symbol reassigned",
		"company_id", companyID, "from", oldSymbol, "to", newSymbol, "as_of", asOf.Format("2006-01-02"))
	return nil
}

// RetireSymbol delists a symbol: closes its open window and deactivates its
// ticker. The company is deactivated too unless another active ticker still
// resolves to it (multi-listing), preserving the invariant that an inactive
// company has only closed windows.
func (l *Lifecycle) RetireSymbol(ctx context.Context, symbol string, asOf time.Time) error {
	snapshot, err := l.repo.ActiveSymbols(ctx)
	if err != nil {
		return fmt.Errorf("load active symbols: %w", err)
	}
	companyID, ok := snapshot[symbol]
	if !ok {
		return fmt.Errorf("retire %q: %w", symbol, ErrNoActiveTicker)
	}

	if _, err := l.repo.CloseTickerHistory(ctx, symbol, asOf); err != nil {
		return fmt.Errorf("close history window %q: %w", symbol, err)
	}
	if _, err := l.repo.DeactivateTicker(ctx, symbol); err != nil {
		return fmt.Errorf("deactivate ticker %q: %w", symbol, err)
	}

	for other, id := range snapshot {
		if other != symbol && id == companyID {
			l.logger.Info("company keeps other active listing, left active",
				"symbol", symbol, "company_id", companyID, "other", other)
			return nil
		}
	}

	if _, err := l.repo.DeactivateCompany(ctx, companyID); err != nil {
		return fmt.Errorf("deactivate company %d: %w", companyID, err)
	}

	l.logger.Info("symbol retired", "symbol", symbol, "company_id", companyID, "as_of", asOf.Format("2006-01-02"))
	return nil
}
