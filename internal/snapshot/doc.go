// Package snapshot implements the market snapshot builder.
//
// One poll cycle:
//   - Fetches every configured feed concurrently
//   - Resolves fiat and gold sections before crypto sections
//   - Normalizes prices to Toman and updates the catalog
//   - Appends significant samples to the history store and persists it
//   - Returns a deep-copied catalog and a cycle-level error string
//
// A failed feed never wipes the catalog; its instruments keep the values of
// the last successful cycle.
package snapshot
