// Package source defines the listing-provider capability consumed by the
// ingestion pipeline, plus the provider implementations shipped with symsync.
package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tkrause/symsync/internal/model"
)

// Source is one external listing provider. The engine is polymorphic over
// this interface and never depends on a concrete provider.
type Source interface {
	// Name identifies the provider; it is stamped onto every record the
	// aggregator accepts from it.
	Name() string

	// Available reports whether the source is ready to serve a fetch.
	Available(ctx context.Context) bool

	// Companies returns the provider's current listing snapshot.
	Companies(ctx context.Context) ([]model.CompanyRecord, error)
}

// ErrTooManyRequests marks a provider rate-limit response. Retried with
// backoff rather than surfaced as a source failure.
var ErrTooManyRequests = errors.New("source: too many requests")

// ErrUnavailable marks a provider that reported not-ready.
var ErrUnavailable = errors.New("source: unavailable")

// newBackOff returns the retry policy used around provider calls.
func newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = time.Minute
	return backoff.WithContext(b, ctx)
}

// retryNotifier logs retry waits; rate limiting is expected and logged
// quieter than other failures.
func retryNotifier(logger *slog.Logger, name string) backoff.Notify {
	return func(err error, wait time.Duration) {
		if errors.Is(err, ErrTooManyRequests) {
			logger.Info("rate limited, backing off", "source", name, "wait", wait)
			return
		}
		logger.Warn("fetch failed, backing off", "source", name, "wait", wait, "error", err)
	}
}
