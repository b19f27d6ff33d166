package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tkrause/symsync/internal/engine"
	"github.com/tkrause/symsync/internal/model"
)

var _ engine.Repository = (*Store)(nil)

// ActiveSymbols returns a point-in-time snapshot of every active ticker
// symbol mapped to its company id.
func (s *Store) ActiveSymbols(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol, company_id FROM tickers WHERE active`)
	if err != nil {
		return nil, fmt.Errorf("query active symbols: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]int64)
	for rows.Next() {
		var symbol string
		var companyID int64
		if err := rows.Scan(&symbol, &companyID); err != nil {
			return nil, fmt.Errorf("scan active symbol: %w", err)
		}
		snapshot[symbol] = companyID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read active symbols: %w", err)
	}

	return snapshot, nil
}

// InsertCompanies bulk-inserts company rows and returns their assigned ids.
// Companies carry no uniqueness constraint, so outcomes never conflict; the
// method still returns outcomes to keep the gateway contract uniform.
func (s *Store) InsertCompanies(ctx context.Context, companies []model.Company) ([]engine.InsertOutcome, error) {
	batch := &pgx.Batch{}
	for _, c := range companies {
		batch.Queue(`
			INSERT INTO companies (name, exchange, sector, industry, country, market_cap, description, active, source)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
			RETURNING id
		`, c.Name, c.Exchange, c.Sector, c.Industry, c.Country, marketCapParam(c.MarketCap), c.Description, c.Active, c.Source)
	}

	return s.sendInsertBatch(ctx, batch, len(companies), "companies")
}

// InsertTickers bulk-inserts active ticker rows. A symbol that already has
// an active ticker reports a conflict for that row only.
func (s *Store) InsertTickers(ctx context.Context, tickers []model.Ticker) ([]engine.InsertOutcome, error) {
	batch := &pgx.Batch{}
	for _, t := range tickers {
		batch.Queue(`
			INSERT INTO tickers (symbol, company_id, active)
			VALUES ($1, $2, $3)
			ON CONFLICT (symbol) WHERE active DO NOTHING
			RETURNING id
		`, t.Symbol, t.CompanyID, t.Active)
	}

	return s.sendInsertBatch(ctx, batch, len(tickers), "tickers")
}

// InsertTickerHistory bulk-inserts history windows. A symbol that already
// has an open window reports a conflict for that row only.
func (s *Store) InsertTickerHistory(ctx context.Context, windows []model.TickerHistory) ([]engine.InsertOutcome, error) {
	batch := &pgx.Batch{}
	for _, w := range windows {
		batch.Queue(`
			INSERT INTO ticker_history (symbol, company_id, valid_from, valid_to, active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (symbol) WHERE valid_to IS NULL DO NOTHING
			RETURNING id
		`, w.Symbol, w.CompanyID, w.ValidFrom, w.ValidTo, w.Active)
	}

	return s.sendInsertBatch(ctx, batch, len(windows), "ticker_history")
}

// sendInsertBatch runs one entity type's insert batch in its own
// transaction: atomic within the entity type, deliberately not atomic
// across entity types.
func (s *Store) sendInsertBatch(ctx context.Context, batch *pgx.Batch, n int, entity string) ([]engine.InsertOutcome, error) {
	if n == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin %s batch: %w", entity, err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)

	outcomes := make([]engine.InsertOutcome, n)
	conflicts := 0
	for i := 0; i < n; i++ {
		var id int64
		err := results.QueryRow().Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT DO NOTHING swallowed the row.
			outcomes[i] = engine.InsertOutcome{Conflict: true}
			conflicts++
			continue
		}
		if err != nil {
			results.Close()
			return nil, fmt.Errorf("insert %s row %d: %w", entity, i, err)
		}
		outcomes[i] = engine.InsertOutcome{ID: id}
	}

	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close %s batch: %w", entity, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s batch: %w", entity, err)
	}

	s.logger.Debug("insert batch committed", "entity", entity, "rows", n, "conflicts", conflicts)
	return outcomes, nil
}

// UpdateCompanies applies field changes in one batched round trip. The
// result reports, per change, whether a row was updated. A zero market cap
// means the source did not report one and keeps the stored value.
func (s *Store) UpdateCompanies(ctx context.Context, changes []model.CompanyChange) ([]bool, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, ch := range changes {
		batch.Queue(`
			UPDATE companies
			SET name = $2,
			    sector = $3,
			    industry = $4,
			    country = $5,
			    market_cap = COALESCE($6::numeric, market_cap),
			    description = $7,
			    source = $8,
			    updated_at = now()
			WHERE id = $1
		`, ch.ID, ch.Name, ch.Sector, ch.Industry, ch.Country, marketCapParam(ch.MarketCap), ch.Description, ch.Source)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin company update batch: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)

	applied := make([]bool, len(changes))
	for i := range changes {
		ct, err := results.Exec()
		if err != nil {
			results.Close()
			return nil, fmt.Errorf("update company %d: %w", changes[i].ID, err)
		}
		applied[i] = ct.RowsAffected() > 0
	}

	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close company update batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit company update batch: %w", err)
	}

	return applied, nil
}

// CloseTickerHistory closes the symbol's open window as of the given date.
func (s *Store) CloseTickerHistory(ctx context.Context, symbol string, asOf time.Time) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE ticker_history
		SET valid_to = $2, active = false, updated_at = now()
		WHERE symbol = $1 AND valid_to IS NULL
	`, symbol, asOf)
	if err != nil {
		return false, fmt.Errorf("close history window %q: %w", symbol, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeactivateTicker retires the symbol's active ticker row.
func (s *Store) DeactivateTicker(ctx context.Context, symbol string) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE tickers
		SET active = false, updated_at = now()
		WHERE symbol = $1 AND active
	`, symbol)
	if err != nil {
		return false, fmt.Errorf("deactivate ticker %q: %w", symbol, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeactivateCompany marks a company inactive.
func (s *Store) DeactivateCompany(ctx context.Context, id int64) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE companies
		SET active = false, updated_at = now()
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate company %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// marketCapParam maps an unreported (zero) market cap to NULL so inserts
// store NULL and updates keep the existing value.
func marketCapParam(d decimal.Decimal) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
