package pghistory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leofalp/aitask/core/history"
	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// defaultTableName is used when no WithTableName option is given.
const defaultTableName = "aitask_records"

// Querier abstracts the pgx methods the store needs. *pgxpool.Pool, *pgx.Conn
// and pgx.Tx all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements history.Store and history.Reader on PostgreSQL. Thread
// safety comes from the underlying pool.
type Store struct {
	db        Querier
	tableName string
	rawName   string
}

var (
	_ history.Store  = (*Store)(nil)
	_ history.Reader = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithTableName overrides the default table name. The name is sanitized with
// pgx.Identifier because it is interpolated into every statement.
func WithTableName(name string) Option {
	return func(s *Store) {
		if name == "" {
			return
		}
		s.rawName = name
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New returns a Store backed by db.
func New(db Querier, opts ...Option) *Store {
	s := &Store{db: db, tableName: defaultTableName, rawName: defaultTableName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a pgxpool for dsn, ensures the schema and returns the store
// with a close function for the pool.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Store, func(), error) {
	if dsn == "" {
		return nil, nil, errors.New("pghistory: dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pghistory: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pghistory: ping: %w", err)
	}
	s := New(pool, opts...)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool.Close, nil
}

func (s *Store) indexName(suffix string) string {
	return pgx.Identifier{"idx_" + s.rawName + "_" + suffix}.Sanitize()
}

// Append inserts rec as one row.
func (s *Store) Append(ctx context.Context, rec record.Record) error {
	options, err := marshalNullableJSON(rec.Options)
	if err != nil {
		return fmt.Errorf("pghistory: marshal options: %w", err)
	}
	usage, err := marshalNullableJSON(rec.Usage)
	if err != nil {
		return fmt.Errorf("pghistory: marshal usage: %w", err)
	}
	input, err := marshalItems(rec.Input)
	if err != nil {
		return fmt.Errorf("pghistory: marshal input: %w", err)
	}
	output, err := marshalItems(rec.Output)
	if err != nil {
		return fmt.Errorf("pghistory: marshal output: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, kind, sender, created_at, provider, model_id, model_name, options, usage, cost_usd, input, output)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, s.tableName)

	_, err = s.db.Exec(ctx, query,
		rec.ID,
		rec.Kind.String(),
		rec.Sender,
		rec.CreatedAt,
		string(rec.Provider),
		rec.ModelID,
		rec.ModelName,
		options,
		usage,
		rec.Cost,
		input,
		output,
	)
	if err != nil {
		return fmt.Errorf("pghistory: insert record %s: %w", rec.ID, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.tableName)

	var count int64
	if err := s.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("pghistory: count: %w", err)
	}
	return int(count), nil
}

// Recent returns up to n of the newest records, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]record.Record, error) {
	if n <= 0 {
		return []record.Record{}, nil
	}
	query := fmt.Sprintf(`SELECT id, kind, sender, created_at, provider, model_id, model_name, options, usage, cost_usd, input, output
		FROM %s ORDER BY seq DESC LIMIT $1`, s.tableName)

	rows, err := s.db.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("pghistory: recent: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(records)
	return records, nil
}

func scanRecords(rows pgx.Rows) ([]record.Record, error) {
	records := []record.Record{}
	for rows.Next() {
		var (
			id, kind, sender, provider, modelID, modelName string
			createdAt                                      time.Time
			optionsJSON, usageJSON, inputJSON, outputJSON  []byte
			cost                                           float64
		)
		if err := rows.Scan(&id, &kind, &sender, &createdAt, &provider, &modelID, &modelName,
			&optionsJSON, &usageJSON, &cost, &inputJSON, &outputJSON); err != nil {
			return nil, fmt.Errorf("pghistory: scan row: %w", err)
		}

		rec, err := buildRecord(id, kind, sender, createdAt, provider, modelID, modelName, cost)
		if err != nil {
			return nil, err
		}
		if err := unmarshalColumns(&rec, optionsJSON, usageJSON, inputJSON, outputJSON); err != nil {
			return nil, fmt.Errorf("pghistory: decode record %s: %w", id, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pghistory: iterate rows: %w", err)
	}
	return records, nil
}

func buildRecord(id, kind, sender string, createdAt time.Time, provider, modelID, modelName string, cost float64) (record.Record, error) {
	parsedKind, err := task.ParseKind(kind)
	if err != nil {
		return record.Record{}, fmt.Errorf("pghistory: record %s: %w", id, err)
	}
	parsedProvider, err := ai.ParseProvider(provider)
	if err != nil {
		return record.Record{}, fmt.Errorf("pghistory: record %s: %w", id, err)
	}
	return record.Record{
		ID:        id,
		Kind:      parsedKind,
		Sender:    sender,
		CreatedAt: createdAt.UTC(),
		Provider:  parsedProvider,
		ModelID:   modelID,
		ModelName: modelName,
		Cost:      cost,
	}, nil
}

func unmarshalColumns(rec *record.Record, options, usage, input, output []byte) error {
	if len(options) > 0 {
		if err := json.Unmarshal(options, &rec.Options); err != nil {
			return err
		}
	}
	if len(usage) > 0 {
		rec.Usage = &ai.Usage{}
		if err := json.Unmarshal(usage, rec.Usage); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(input, &rec.Input); err != nil {
		return err
	}
	return json.Unmarshal(output, &rec.Output)
}

// marshalNullableJSON maps empty option maps and nil usage to SQL NULL.
func marshalNullableJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case map[string]string:
		if len(v) == 0 {
			return nil, nil
		}
	case *ai.Usage:
		if v == nil {
			return nil, nil
		}
	}
	return json.Marshal(value)
}

// marshalItems always yields a JSON array so the NOT NULL columns hold "[]"
// for records without items.
func marshalItems(items []record.Item) ([]byte, error) {
	if items == nil {
		items = []record.Item{}
	}
	return json.Marshal(items)
}
