// Package ingest implements the front half of a reconciliation run: pulling
// listing snapshots from every configured source in parallel (Aggregate) and
// reducing them to one validated, deduplicated working set (Clean).
//
// Aggregation tolerates individual source failures; the fetch step is the
// only parallel part of a run, with a full collection barrier before
// cleaning begins.
package ingest
