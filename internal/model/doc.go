// Package model defines shared data types used across the symsync pipeline.
//
// Conventions:
//   - Store-assigned IDs: int64 (bigserial)
//   - Dates on history windows: time.Time truncated to day, UTC; a nil
//     *time.Time on ValidTo means the window is still open
//   - Market capitalization: decimal.Decimal, stored as NUMERIC
package model
