package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tkrause/symsync/internal/model"
)

// fakeRepo is an in-memory Repository that enforces the same uniqueness
// rules as the real store: one active ticker per symbol, one open history
// window per symbol.
type fakeRepo struct {
	nextID    int64
	companies map[int64]*model.Company
	tickers   []*model.Ticker
	history   []*model.TickerHistory

	failActiveSymbols bool
	failTickerBatch   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{companies: make(map[int64]*model.Company)}
}

func (r *fakeRepo) ActiveSymbols(ctx context.Context) (map[string]int64, error) {
	if r.failActiveSymbols {
		return nil, errors.New("fake: connection lost")
	}
	out := make(map[string]int64)
	for _, t := range r.tickers {
		if t.Active {
			out[t.Symbol] = t.CompanyID
		}
	}
	return out, nil
}

func (r *fakeRepo) InsertCompanies(ctx context.Context, companies []model.Company) ([]InsertOutcome, error) {
	outcomes := make([]InsertOutcome, len(companies))
	for i, c := range companies {
		r.nextID++
		row := c
		row.ID = r.nextID
		r.companies[row.ID] = &row
		outcomes[i] = InsertOutcome{ID: row.ID}
	}
	return outcomes, nil
}

func (r *fakeRepo) InsertTickers(ctx context.Context, tickers []model.Ticker) ([]InsertOutcome, error) {
	if r.failTickerBatch {
		return nil, errors.New("fake: ticker batch failed")
	}
	outcomes := make([]InsertOutcome, len(tickers))
	for i, t := range tickers {
		if r.activeTicker(t.Symbol) != nil {
			outcomes[i] = InsertOutcome{Conflict: true}
			continue
		}
		r.nextID++
		row := t
		row.ID = r.nextID
		r.tickers = append(r.tickers, &row)
		outcomes[i] = InsertOutcome{ID: row.ID}
	}
	return outcomes, nil
}

func (r *fakeRepo) InsertTickerHistory(ctx context.Context, windows []model.TickerHistory) ([]InsertOutcome, error) {
	outcomes := make([]InsertOutcome, len(windows))
	for i, w := range windows {
		if r.openWindow(w.Symbol) != nil {
			outcomes[i] = InsertOutcome{Conflict: true}
			continue
		}
		r.nextID++
		row := w
		row.ID = r.nextID
		r.history = append(r.history, &row)
		outcomes[i] = InsertOutcome{ID: row.ID}
	}
	return outcomes, nil
}

func (r *fakeRepo) UpdateCompanies(ctx context.Context, changes []model.CompanyChange) ([]bool, error) {
	applied := make([]bool, len(changes))
	for i, ch := range changes {
		c, ok := r.companies[ch.ID]
		if !ok {
			continue
		}
		c.Name = ch.Name
		c.Sector = ch.Sector
		c.Industry = ch.Industry
		c.Country = ch.Country
		c.MarketCap = ch.MarketCap
		c.Description = ch.Description
		c.Source = ch.Source
		applied[i] = true
	}
	return applied, nil
}

func (r *fakeRepo) CloseTickerHistory(ctx context.Context, symbol string, asOf time.Time) (bool, error) {
	w := r.openWindow(symbol)
	if w == nil {
		return false, nil
	}
	closed := asOf
	w.ValidTo = &closed
	w.Active = false
	return true, nil
}

func (r *fakeRepo) DeactivateTicker(ctx context.Context, symbol string) (bool, error) {
	t := r.activeTicker(symbol)
	if t == nil {
		return false, nil
	}
	t.Active = false
	return true, nil
}

func (r *fakeRepo) DeactivateCompany(ctx context.Context, id int64) (bool, error) {
	c, ok := r.companies[id]
	if !ok || !c.Active {
		return false, nil
	}
	c.Active = false
	return true, nil
}

func (r *fakeRepo) activeTicker(symbol string) *model.Ticker {
	for _, t := range r.tickers {
		if t.Symbol == symbol && t.Active {
			return t
		}
	}
	return nil
}

func (r *fakeRepo) openWindow(symbol string) *model.TickerHistory {
	for _, w := range r.history {
		if w.Symbol == symbol && w.ValidTo == nil {
			return w
		}
	}
	return nil
}

func (r *fakeRepo) windowsFor(symbol string) []*model.TickerHistory {
	var out []*model.TickerHistory
	for _, w := range r.history {
		if w.Symbol == symbol {
			out = append(out, w)
		}
	}
	return out
}

// seed creates a company with an active ticker and open window, as a
// completed onboarding would have.
func (r *fakeRepo) seed(t *testing.T, symbol string, from time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	cOut, err := r.InsertCompanies(ctx, []model.Company{{Name: symbol + " Co", Active: true}})
	if err != nil {
		t.Fatalf("seed company %q: %v", symbol, err)
	}
	id := cOut[0].ID

	tOut, err := r.InsertTickers(ctx, []model.Ticker{{Symbol: symbol, CompanyID: id, Active: true}})
	if err != nil || tOut[0].Conflict {
		t.Fatalf("seed ticker %q: err=%v conflict=%v", symbol, err, tOut[0].Conflict)
	}
	hOut, err := r.InsertTickerHistory(ctx, []model.TickerHistory{{Symbol: symbol, CompanyID: id, ValidFrom: from, Active: true}})
	if err != nil || hOut[0].Conflict {
		t.Fatalf("seed history %q: err=%v conflict=%v", symbol, err, hOut[0].Conflict)
	}
	return id
}

// seedTicker adds another active listing for an existing company.
func (r *fakeRepo) seedTicker(t *testing.T, symbol string, companyID int64, from time.Time) {
	t.Helper()
	ctx := context.Background()

	tOut, err := r.InsertTickers(ctx, []model.Ticker{{Symbol: symbol, CompanyID: companyID, Active: true}})
	if err != nil || tOut[0].Conflict {
		t.Fatalf("seed ticker %q: err=%v conflict=%v", symbol, err, tOut[0].Conflict)
	}
	hOut, err := r.InsertTickerHistory(ctx, []model.TickerHistory{{Symbol: symbol, CompanyID: companyID, ValidFrom: from, Active: true}})
	if err != nil || hOut[0].Conflict {
		t.Fatalf("seed history %q: err=%v conflict=%v", symbol, err, hOut[0].Conflict)
	}
}

// fakeSource is a scriptable listing provider for engine tests.
type fakeSource struct {
	name      string
	available bool
	records   []model.CompanyRecord
	err       error
}

func (f *fakeSource) Name() string                       { return f.name }
func (f *fakeSource) Available(ctx context.Context) bool { return f.available }
func (f *fakeSource) Companies(ctx context.Context) ([]model.CompanyRecord, error) {
	return f.records, f.err
}
