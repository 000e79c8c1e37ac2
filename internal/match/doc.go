// Package match maps upstream records onto catalog instrument ids.
//
// Identification runs two strategies in priority order: an exact,
// case-insensitive lookup of the record's symbol, slug or English name in
// the static alias table, then a substring search of known localized name
// fragments in the folded record name. Within one feed section the first
// match per id is kept and symbol matches take precedence over fragment
// matches for the same id.
package match
