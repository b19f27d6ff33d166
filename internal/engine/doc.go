// Package engine implements the reconciliation core of symsync: partitioning
// a cleaned working set against the store's active-symbol snapshot, the
// ticker lifecycle (onboarding, field updates, reassignment, retirement),
// unused-ticker detection, and the orchestration of a full run.
//
// The engine owns the write path to companies, tickers and ticker history
// for the duration of a run. Runs are single-writer: the active-symbol
// snapshot is taken once at partition time and treated as valid until the
// run ends, so two concurrent runs against one store are out of contract.
package engine
