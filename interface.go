package tablesink

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// ServiceAPI is the subset of the table service the sink depends on.
type ServiceAPI interface {
	// EnsureTable creates the named table if it does not exist yet and
	// returns a handle to it. Creation is idempotent; concurrent calls for
	// the same name must not fail each other.
	EnsureTable(ctx context.Context, name string) (TableAPI, error)
}

// TableAPI is one resolved table in the backing store.
type TableAPI interface {
	// SubmitBatch atomically inserts all rows of a single-partition batch.
	SubmitBatch(ctx context.Context, batch Batch) error

	// ListRows returns the stored rows matching an OData filter expression,
	// or all rows when the filter is empty.
	ListRows(ctx context.Context, filter string) ([]*aztables.EDMEntity, error)
}

// Option allows setting various options on the resulting sink.
type Option func(*Sink)
