package history

import (
	"context"

	"github.com/leofalp/aitask/core/record"
)

// Store is the sink the dispatcher appends finished task records to.
// Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, rec record.Record) error
}

// Reader is implemented by stores that can list what they hold.
type Reader interface {
	Count(ctx context.Context) (int, error)
	// Recent returns up to n of the newest records, oldest first.
	Recent(ctx context.Context, n int) ([]record.Record, error)
}

// Discard is a Store that drops every record.
var Discard Store = discard{}

type discard struct{}

func (discard) Append(context.Context, record.Record) error { return nil }
