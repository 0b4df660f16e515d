package sqlitehistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leofalp/aitask/core/history"
	"github.com/leofalp/aitask/core/history/sqlitehistory/migrations"
	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Store persists records in SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ history.Store  = (*Store)(nil)
	_ history.Reader = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (or creates) the database at path and applies the embedded
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlitehistory: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitehistory: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitehistory: ping db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitehistory: run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts rec. A record id that is already stored is an error.
func (s *Store) Append(ctx context.Context, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("sqlitehistory: store is not configured")
	}

	options, err := nullableJSON(len(rec.Options) > 0, rec.Options)
	if err != nil {
		return fmt.Errorf("sqlitehistory: marshal options: %w", err)
	}
	usage, err := nullableJSON(rec.Usage != nil, rec.Usage)
	if err != nil {
		return fmt.Errorf("sqlitehistory: marshal usage: %w", err)
	}
	input, err := itemsJSON(rec.Input)
	if err != nil {
		return fmt.Errorf("sqlitehistory: marshal input: %w", err)
	}
	output, err := itemsJSON(rec.Output)
	if err != nil {
		return fmt.Errorf("sqlitehistory: marshal output: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO records
		(id, kind, sender, created_at, provider, model_id, model_name, options, usage, cost_usd, input, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Kind.String(),
		rec.Sender,
		toMillis(rec.CreatedAt),
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
		return fmt.Errorf("sqlitehistory: insert record %s: %w", rec.ID, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitehistory: count: %w", err)
	}
	return n, nil
}

// Recent returns up to n of the newest records, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]record.Record, error) {
	if n <= 0 {
		return []record.Record{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, sender, created_at, provider, model_id, model_name, options, usage, cost_usd, input, output
		FROM records ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlitehistory: recent: %w", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitehistory: iterate rows: %w", err)
	}
	slices.Reverse(records)
	return records, nil
}

func scanRecord(rows *sql.Rows) (record.Record, error) {
	var (
		id, kind, sender, provider, modelID, modelName string
		createdAt                                      int64
		options, usage                                 sql.NullString
		cost                                           float64
		input, output                                  string
	)
	if err := rows.Scan(&id, &kind, &sender, &createdAt, &provider, &modelID, &modelName,
		&options, &usage, &cost, &input, &output); err != nil {
		return record.Record{}, fmt.Errorf("sqlitehistory: scan row: %w", err)
	}

	parsedKind, err := task.ParseKind(kind)
	if err != nil {
		return record.Record{}, fmt.Errorf("sqlitehistory: record %s: %w", id, err)
	}
	parsedProvider, err := ai.ParseProvider(provider)
	if err != nil {
		return record.Record{}, fmt.Errorf("sqlitehistory: record %s: %w", id, err)
	}

	rec := record.Record{
		ID:        id,
		Kind:      parsedKind,
		Sender:    sender,
		CreatedAt: fromMillis(createdAt),
		Provider:  parsedProvider,
		ModelID:   modelID,
		ModelName: modelName,
		Cost:      cost,
	}
	if options.Valid {
		if err := json.Unmarshal([]byte(options.String), &rec.Options); err != nil {
			return record.Record{}, fmt.Errorf("sqlitehistory: decode options of %s: %w", id, err)
		}
	}
	if usage.Valid {
		rec.Usage = &ai.Usage{}
		if err := json.Unmarshal([]byte(usage.String), rec.Usage); err != nil {
			return record.Record{}, fmt.Errorf("sqlitehistory: decode usage of %s: %w", id, err)
		}
	}
	if err := json.Unmarshal([]byte(input), &rec.Input); err != nil {
		return record.Record{}, fmt.Errorf("sqlitehistory: decode input of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(output), &rec.Output); err != nil {
		return record.Record{}, fmt.Errorf("sqlitehistory: decode output of %s: %w", id, err)
	}
	return rec, nil
}

func nullableJSON(present bool, value any) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func itemsJSON(items []record.Item) (string, error) {
	if items == nil {
		items = []record.Item{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}
