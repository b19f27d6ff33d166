package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Source-Origin Types
// -----------------------------------------------------------------------------

// CompanyRecord is a single listing as reported by one source. Records are
// transient: they live for the duration of one reconciliation run and are
// discarded after persistence.
type CompanyRecord struct {
	Ticker      string          // Exchange symbol (e.g., "AAPL")
	Name        string          // Company display name
	Exchange    string          // Exchange code (e.g., "NASDAQ")
	Sector      string          // Optional enrichment
	Industry    string          // Optional enrichment
	Country     string          // Optional enrichment
	MarketCap   decimal.Decimal // Optional enrichment; zero when unreported
	Description string          // Optional enrichment
	Source      string          // Provenance tag, stamped by the aggregator
}

// -----------------------------------------------------------------------------
// Persistent Types
// -----------------------------------------------------------------------------

// Company is a persisted company row.
//
// Invariant: Active=false implies every TickerHistory row for the company
// has a closed window.
type Company struct {
	ID          int64
	Name        string
	Exchange    string
	Sector      string
	Industry    string
	Country     string
	MarketCap   decimal.Decimal
	Description string
	Active      bool
	Source      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ticker records that a symbol currently resolves to a company. At most one
// active row may exist per symbol at any time (partial unique index).
type Ticker struct {
	ID        int64
	Symbol    string
	CompanyID int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TickerHistory is one validity window of a symbol-to-company assignment.
//
// Invariants per symbol: [ValidFrom, ValidTo) windows never overlap, and at
// most one row has ValidTo == nil (the currently-open window).
type TickerHistory struct {
	ID        int64
	Symbol    string
	CompanyID int64
	ValidFrom time.Time
	ValidTo   *time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompanyChange carries the mutable fields applied to an existing company
// during a same-symbol update. Ticker and history rows are never touched by
// a CompanyChange.
type CompanyChange struct {
	ID          int64
	Name        string
	Sector      string
	Industry    string
	Country     string
	MarketCap   decimal.Decimal
	Description string
	Source      string
}

// -----------------------------------------------------------------------------
// Run Output
// -----------------------------------------------------------------------------

// SyncResult summarizes one reconciliation run. Counts are always reported,
// including on runs with partial failures: callers inspect CompaniesErrored
// rather than relying on an error to detect per-record trouble.
type SyncResult struct {
	RunID     uuid.UUID     `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	SourcesFailed int `json:"sources_failed"`

	CompaniesInserted int `json:"companies_inserted"`
	CompaniesUpdated  int `json:"companies_updated"`
	CompaniesSkipped  int `json:"companies_skipped"`
	CompaniesErrored  int `json:"companies_errored"`

	TickersCreated int `json:"tickers_created"`
	HistoryOpened  int `json:"history_windows_opened"`
	HistoryClosed  int `json:"history_windows_closed"`

	// Populated by comprehensive runs only.
	UnusedTickerCount int      `json:"unused_ticker_count,omitempty"`
	UnusedTickers     []string `json:"unused_tickers,omitempty"`
}

// TotalProcessed returns the number of records that reached a terminal
// classification. Zero means the run was a no-op (e.g., every source down).
func (r SyncResult) TotalProcessed() int {
	return r.CompaniesInserted + r.CompaniesUpdated + r.CompaniesSkipped + r.CompaniesErrored
}
