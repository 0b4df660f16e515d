// Package history defines where task records go once the dispatcher has
// built them.
//
// The [Store] contract is a single Append call. Backends live in
// subpackages:
//
//   - inmemory: a mutex-guarded slice, useful for tests and the CLI
//   - sqlitehistory: a local SQLite file with embedded migrations
//   - pghistory: PostgreSQL through pgx, with JSONB payload columns
//
// Backends that can list their contents also implement [Reader].
package history
