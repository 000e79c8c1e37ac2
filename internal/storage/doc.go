// Package storage provides the durable key/value backends the history
// snapshot is written to.
//
// Every backend stores opaque byte values under string keys and returns
// nil data with a nil error for an absent key:
//   - file: one JSON file per key in a directory, replaced atomically
//   - sqlite: metadata table in a local SQLite database (pure Go driver)
//   - postgres: kv_store table via a pgx pool
//   - redis: plain string keys
//   - memory: process-local map, for tests and ephemeral runs
package storage
