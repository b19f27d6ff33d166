package engine

import (
	"context"
	"time"

	"github.com/tkrause/symsync/internal/model"
)

// InsertOutcome reports the fate of one row in a batched insert. A conflict
// (unique-constraint collision) is isolated per record: the offending row is
// reported here instead of failing the batch.
type InsertOutcome struct {
	ID       int64
	Conflict bool
}

// Repository is the persistence gateway consumed by the engine. Each batch
// method performs O(1) round trips and is atomic within its entity type;
// atomicity is deliberately not extended across entity types (see
// Lifecycle.OnboardNew for the orphan-tolerance consequences).
//
// Outcome slices are index-aligned with their input slices.
type Repository interface {
	// ActiveSymbols returns a point-in-time snapshot of every symbol with
	// an active ticker row, mapped to its company id.
	ActiveSymbols(ctx context.Context) (map[string]int64, error)

	InsertCompanies(ctx context.Context, companies []model.Company) ([]InsertOutcome, error)
	InsertTickers(ctx context.Context, tickers []model.Ticker) ([]InsertOutcome, error)
	InsertTickerHistory(ctx context.Context, windows []model.TickerHistory) ([]InsertOutcome, error)

	// UpdateCompanies applies field changes; the result reports, per
	// change, whether a row was actually updated.
	UpdateCompanies(ctx context.Context, changes []model.CompanyChange) ([]bool, error)

	// CloseTickerHistory sets valid_to on the symbol's open window.
	// Returns false when no open window exists.
	CloseTickerHistory(ctx context.Context, symbol string, asOf time.Time) (bool, error)

	// DeactivateTicker retires the symbol's active ticker row. Returns
	// false when none exists.
	DeactivateTicker(ctx context.Context, symbol string) (bool, error)

	// DeactivateCompany marks a company inactive.
	DeactivateCompany(ctx context.Context, id int64) (bool, error)
}
