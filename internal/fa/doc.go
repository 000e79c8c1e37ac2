// Package fa provides Persian text helpers shared by the normalizer, the
// instrument matcher and the CLI: digit folding, name folding for
// substring matching, and locale-aware number formatting.
package fa
