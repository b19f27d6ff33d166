package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tkrause/symsync/internal/model"
)

var day1 = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
var day2 = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func TestOnboardNew_CreatesFullChain(t *testing.T) {
	repo := newFakeRepo()
	lc := NewLifecycle(repo, nil)

	records := []model.CompanyRecord{
		{Ticker: "TEST", Name: "Test Co", Exchange: "NASDAQ", Source: "screener"},
	}

	sum, err := lc.OnboardNew(context.Background(), records, day1)
	if err != nil {
		t.Fatalf("OnboardNew failed: %v", err)
	}

	if sum.Inserted != 1 || sum.Errored != 0 {
		t.Errorf("summary = %+v, want Inserted=1 Errored=0", sum)
	}
	if sum.TickersCreated != 1 || sum.HistoryOpened != 1 {
		t.Errorf("summary = %+v, want TickersCreated=1 HistoryOpened=1", sum)
	}

	ticker := repo.activeTicker("TEST")
	if ticker == nil {
		t.Fatal("no active ticker for TEST")
	}
	company := repo.companies[ticker.CompanyID]
	if company == nil || company.Name != "Test Co" || !company.Active {
		t.Errorf("company = %+v, want active Test Co", company)
	}

	window := repo.openWindow("TEST")
	if window == nil {
		t.Fatal("no open history window for TEST")
	}
	if !window.ValidFrom.Equal(day1) {
		t.Errorf("ValidFrom = %v, want %v", window.ValidFrom, day1)
	}
	if window.CompanyID != ticker.CompanyID {
		t.Errorf("window CompanyID = %d, ticker CompanyID = %d", window.CompanyID, ticker.CompanyID)
	}
}

func TestOnboardNew_ConflictIsolatedPerRecord(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(t, "ABC", day1)
	lc := NewLifecycle(repo, nil)

	// ABC races an already-active ticker; XYZ is genuinely new.
	records := []model.CompanyRecord{
		{Ticker: "ABC", Name: "Abc Duplicate", Source: "finnhub"},
		{Ticker: "XYZ", Name: "Xyz Corp", Source: "finnhub"},
	}

	sum, err := lc.OnboardNew(context.Background(), records, day2)
	if err != nil {
		t.Fatalf("OnboardNew failed: %v", err)
	}

	if sum.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", sum.Inserted)
	}
	if sum.Errored != 1 {
		t.Errorf("Errored = %d, want 1", sum.Errored)
	}
	if repo.activeTicker("XYZ") == nil {
		t.Error("XYZ should have an active ticker")
	}
	// The uniqueness backstop held: still exactly one active ABC ticker.
	active := 0
	for _, tk := range repo.tickers {
		if tk.Symbol == "ABC" && tk.Active {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active ABC tickers = %d, want 1", active)
	}
}

func TestOnboardNew_TickerBatchFailureTolerated(t *testing.T) {
	repo := newFakeRepo()
	repo.failTickerBatch = true
	lc := NewLifecycle(repo, nil)

	records := []model.CompanyRecord{{Ticker: "ORPH", Name: "Orphan Co"}}

	sum, err := lc.OnboardNew(context.Background(), records, day1)
	if err != nil {
		t.Fatalf("OnboardNew returned error, want tolerated partial failure: %v", err)
	}
	if sum.Errored != 1 || sum.Inserted != 0 {
		t.Errorf("summary = %+v, want Errored=1 Inserted=0", sum)
	}
	// The company row stays committed: harmless orphan, repairable later.
	if len(repo.companies) != 1 {
		t.Errorf("companies = %d, want 1 orphan row", len(repo.companies))
	}
}

func TestOnboardNew_Empty(t *testing.T) {
	lc := NewLifecycle(newFakeRepo(), nil)
	sum, err := lc.OnboardNew(context.Background(), nil, day1)
	if err != nil {
		t.Fatalf("OnboardNew(nil) failed: %v", err)
	}
	if sum != (OnboardSummary{}) {
		t.Errorf("summary = %+v, want zero", sum)
	}
}

func TestUpdateExisting_DoesNotTouchHistory(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(t, "TEST", day1)
	lc := NewLifecycle(repo, nil)

	snapshot := map[string]int64{"TEST": id}
	records := []model.CompanyRecord{
		{Ticker: "TEST", Name: "Test Co", Sector: "Technology", Source: "screener"},
	}

	sum, err := lc.UpdateExisting(context.Background(), records, snapshot)
	if err != nil {
		t.Fatalf("UpdateExisting failed: %v", err)
	}
	if sum.Updated != 1 || sum.Errored != 0 {
		t.Errorf("summary = %+v, want Updated=1 Errored=0", sum)
	}

	if repo.companies[id].Sector != "Technology" {
		t.Errorf("Sector = %q, want %q", repo.companies[id].Sector, "Technology")
	}
	if len(repo.windowsFor("TEST")) != 1 {
		t.Errorf("history rows = %d, want 1 (untouched)", len(repo.windowsFor("TEST")))
	}
	if repo.openWindow("TEST") == nil {
		t.Error("open window should remain open after a field update")
	}
	if len(repo.tickers) != 1 {
		t.Errorf("ticker rows = %d, want 1 (untouched)", len(repo.tickers))
	}
}

func TestUpdateExisting_SymbolOutsideSnapshot(t *testing.T) {
	lc := NewLifecycle(newFakeRepo(), nil)

	sum, err := lc.UpdateExisting(context.Background(),
		[]model.CompanyRecord{{Ticker: "GHOST"}}, map[string]int64{})
	if err != nil {
		t.Fatalf("UpdateExisting failed: %v", err)
	}
	if sum.Errored != 1 || sum.Updated != 0 {
		t.Errorf("summary = %+v, want Errored=1 Updated=0", sum)
	}
}

func TestReassignSymbol(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(t, "OLD", day1)
	lc := NewLifecycle(repo, nil)

	if err := lc.ReassignSymbol(context.Background(), id, "OLD", "NEW", day2); err != nil {
		t.Fatalf("ReassignSymbol failed: %v", err)
	}

	// Old window closed exactly at the reassignment date.
	oldWindows := repo.windowsFor("OLD")
	if len(oldWindows) != 1 {
		t.Fatalf("OLD history rows = %d, want 1", len(oldWindows))
	}
	if oldWindows[0].ValidTo == nil || !oldWindows[0].ValidTo.Equal(day2) {
		t.Errorf("OLD ValidTo = %v, want %v", oldWindows[0].ValidTo, day2)
	}
	if oldWindows[0].Active {
		t.Error("closed OLD window still active")
	}
	if repo.activeTicker("OLD") != nil {
		t.Error("OLD ticker still active after reassignment")
	}

	// New window opens where the old one closed: no overlap, no gap.
	newWindow := repo.openWindow("NEW")
	if newWindow == nil {
		t.Fatal("no open window for NEW")
	}
	if !newWindow.ValidFrom.Equal(day2) {
		t.Errorf("NEW ValidFrom = %v, want %v", newWindow.ValidFrom, day2)
	}
	if newWindow.CompanyID != id {
		t.Errorf("NEW CompanyID = %d, want %d", newWindow.CompanyID, id)
	}
	if repo.activeTicker("NEW") == nil {
		t.Error("NEW ticker should be active")
	}
}

func TestReassignSymbol_NoActiveTicker(t *testing.T) {
	lc := NewLifecycle(newFakeRepo(), nil)

	err := lc.ReassignSymbol(context.Background(), 1, "NONE", "NEW", day1)
	if !errors.Is(err, ErrNoActiveTicker) {
		t.Errorf("err = %v, want ErrNoActiveTicker", err)
	}
}

func TestReassignSymbol_TargetTaken(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(t, "OLD", day1)
	repo.seed(t, "TAKEN", day1)
	lc := NewLifecycle(repo, nil)

	err := lc.ReassignSymbol(context.Background(), id, "OLD", "TAKEN", day2)
	if !errors.Is(err, ErrSymbolTaken) {
		t.Errorf("err = %v, want ErrSymbolTaken", err)
	}
}

func TestRetireSymbol(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(t, "GONE", day1)
	lc := NewLifecycle(repo, nil)

	if err := lc.RetireSymbol(context.Background(), "GONE", day2); err != nil {
		t.Fatalf("RetireSymbol failed: %v", err)
	}

	if repo.openWindow("GONE") != nil {
		t.Error("GONE window should be closed")
	}
	if repo.activeTicker("GONE") != nil {
		t.Error("GONE ticker should be inactive")
	}
	if repo.companies[id].Active {
		t.Error("company should be inactive after its only listing retired")
	}
}

func TestRetireSymbol_KeepsMultiListedCompanyActive(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(t, "CLASS.A", day1)
	repo.seedTicker(t, "CLASS.B", id, day1)
	lc := NewLifecycle(repo, nil)

	if err := lc.RetireSymbol(context.Background(), "CLASS.B", day2); err != nil {
		t.Fatalf("RetireSymbol failed: %v", err)
	}

	if !repo.companies[id].Active {
		t.Error("company with remaining active listing should stay active")
	}
	if repo.activeTicker("CLASS.A") == nil {
		t.Error("CLASS.A should remain active")
	}
	if repo.activeTicker("CLASS.B") != nil {
		t.Error("CLASS.B should be retired")
	}
}

func TestRetireSymbol_NoActiveTicker(t *testing.T) {
	lc := NewLifecycle(newFakeRepo(), nil)

	err := lc.RetireSymbol(context.Background(), "NONE", day1)
	if !errors.Is(err, ErrNoActiveTicker) {
		t.Errorf("err = %v, want ErrNoActiveTicker", err)
	}
}
