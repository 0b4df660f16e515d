// Package inmemory provides a concurrency-safe, process-local history store.
// Records are kept in append order and returned as deep copies.
package inmemory
