package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Finnhub-Stock-API/finnhub-go"
	"github.com/antihax/optional"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/tkrause/symsync/internal/config"
	"github.com/tkrause/symsync/internal/model"
)

// Finnhub lists exchange symbols from the Finnhub API, optionally enriched
// with company profiles for the first ProfileLimit symbols.
type Finnhub struct {
	cfg    config.FinnhubConfig
	client *finnhub.DefaultApiService
	logger *slog.Logger
}

// NewFinnhub creates a Finnhub source.
func NewFinnhub(cfg config.FinnhubConfig, logger *slog.Logger) *Finnhub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finnhub{
		cfg:    cfg,
		client: finnhub.NewAPIClient(finnhub.NewConfiguration()).DefaultApi,
		logger: logger,
	}
}

func (f *Finnhub) Name() string { return "finnhub" }

// Available reports whether the source is usable. Finnhub needs an API key;
// reachability problems surface as fetch errors instead.
func (f *Finnhub) Available(ctx context.Context) bool {
	return f.cfg.APIKey != ""
}

// Companies fetches the exchange symbol listing, retrying transient
// failures with exponential backoff.
func (f *Finnhub) Companies(ctx context.Context) ([]model.CompanyRecord, error) {
	authCtx := context.WithValue(ctx, finnhub.ContextAPIKey, finnhub.APIKey{Key: f.cfg.APIKey})

	var stocks []finnhub.Stock
	err := backoff.RetryNotify(func() error {
		ss, resp, err := f.client.StockSymbols(authCtx, f.cfg.Exchange)
		if err != nil {
			return apiError(fmt.Sprintf("list %q symbols", f.cfg.Exchange), resp, err)
		}
		stocks = ss
		return nil
	}, newBackOff(ctx), retryNotifier(f.logger, f.Name()))
	if err != nil {
		return nil, err
	}

	records := make([]model.CompanyRecord, 0, len(stocks))
	for _, s := range stocks {
		records = append(records, model.CompanyRecord{
			Ticker:   s.Symbol,
			Name:     s.Description,
			Exchange: f.cfg.Exchange,
		})
	}

	if f.cfg.ProfileLimit > 0 {
		f.enrich(ctx, authCtx, records)
	}

	return records, nil
}

// enrich fills sector/country/market-cap fields from company profiles for
// the first ProfileLimit records. Enrichment is best effort: a profile
// failure leaves the bare listing record intact.
func (f *Finnhub) enrich(ctx, authCtx context.Context, records []model.CompanyRecord) {
	limit := f.cfg.ProfileLimit
	if limit > len(records) {
		limit = len(records)
	}

	for i := 0; i < limit; i++ {
		symbol := records[i].Ticker

		var profile finnhub.CompanyProfile2
		err := backoff.RetryNotify(func() error {
			p, resp, err := f.client.CompanyProfile2(authCtx, &finnhub.CompanyProfile2Opts{
				Symbol: optional.NewString(symbol),
			})
			if err != nil {
				return apiError(fmt.Sprintf("company profile %q", symbol), resp, err)
			}
			profile = p
			return nil
		}, newBackOff(ctx), retryNotifier(f.logger, f.Name()))
		if err != nil {
			f.logger.Warn("profile enrichment failed", "source", f.Name(), "symbol", symbol, "error", err)
			continue
		}

		if profile.Name != "" {
			records[i].Name = profile.Name
		}
		if profile.Exchange != "" {
			records[i].Exchange = profile.Exchange
		}
		records[i].Country = profile.Country
		records[i].Industry = profile.FinnhubIndustry
		if profile.MarketCapitalization > 0 {
			records[i].MarketCap = decimal.NewFromFloat32(profile.MarketCapitalization)
		}
	}
}

// apiError classifies a Finnhub failure so rate limiting can be retried
// distinctly from hard errors.
func apiError(msg string, resp *http.Response, err error) error {
	if resp == nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", msg, ErrTooManyRequests)
	}
	defer resp.Body.Close()
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w (%s)", msg, err, body)
}
