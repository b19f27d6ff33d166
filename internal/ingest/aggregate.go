package ingest

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkrause/symsync/internal/model"
	"github.com/tkrause/symsync/internal/source"
)

// Aggregate fetches the current listing snapshot from every source, at most
// concurrency fetches in flight. Each accepted record is stamped with its
// source's name. An unavailable or failing source is logged and skipped; it
// never aborts the run. Returns the combined working set in source order
// (independent of fetch completion order) and the number of failed sources.
func Aggregate(ctx context.Context, sources []source.Source, concurrency int, logger *slog.Logger) ([]model.CompanyRecord, int) {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([][]model.CompanyRecord, len(sources))
	failed := make([]bool, len(sources))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if !src.Available(ctx) {
				logger.Warn("source unavailable, skipping", "source", src.Name())
				failed[i] = true
				return nil
			}

			start := time.Now()
			records, err := src.Companies(ctx)
			if err != nil {
				logger.Warn("source fetch failed, skipping", "source", src.Name(), "error", err)
				failed[i] = true
				return nil
			}

			for j := range records {
				records[j].Source = src.Name()
			}
			results[i] = records

			logger.Info("fetched source snapshot",
				"source", src.Name(),
				"records", len(records),
				"duration", time.Since(start),
			)
			return nil
		})
	}

	// Collection barrier: nothing downstream starts until every fetch has
	// finished or been skipped.
	g.Wait()

	var combined []model.CompanyRecord
	var failures int
	for i := range sources {
		if failed[i] {
			failures++
			continue
		}
		combined = append(combined, results[i]...)
	}

	return combined, failures
}
