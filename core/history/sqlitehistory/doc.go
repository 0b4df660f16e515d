// Package sqlitehistory persists task records in a local SQLite file using
// the pure-Go modernc.org/sqlite driver. Open applies the embedded
// migrations once per file.
package sqlitehistory
