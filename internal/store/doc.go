// Package store implements the engine's Repository against Postgres.
//
// Every batch operation queues its rows on one pgx.Batch and sends them in
// a single round trip inside a transaction, so a run costs O(1) round trips
// per entity type. Unique-constraint collisions are absorbed per row with
// ON CONFLICT DO NOTHING and surfaced as conflicts instead of failing the
// batch.
package store
