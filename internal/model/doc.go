// Package model defines shared data types used across the arzlive market core.
//
// Conventions:
//   - Prices: float64 in the canonical base unit (Toman)
//   - Timestamps: time.Time, serialized as RFC 3339
//   - IDs: stable lower-case catalog ids ("usd", "gold_18", "btc")
package model
