// Package pghistory persists task records in PostgreSQL through pgx.
//
// Scalar record fields map to columns; options, usage, inputs and outputs
// are stored as JSONB. The store works against any [Querier], so a
// *pgxpool.Pool, a single connection or a transaction can back it:
//
//	pool, err := pgxpool.New(ctx, dsn)
//	store := pghistory.New(pool)
//	if err := store.EnsureSchema(ctx); err != nil { ... }
package pghistory
