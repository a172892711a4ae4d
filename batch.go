package tablesink

import (
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/pkg/errors"
)

// The table service accepts at most 100 operations per transactional batch,
// and every operation in one batch must share a partition key.
const maxBatchOperations = 100

// ErrNoRows is returned when batch construction is invoked with no rows.
// Callers are expected to skip flushes whose buffer drained empty rather than
// submit a batch that never existed.
var ErrNoRows = errors.New("no rows to batch")

// Batch is one transactional group of inserts targeting a single partition.
type Batch struct {
	PartitionKey string
	Rows         []*aztables.EDMEntity
}

// buildBatches splits rows, in input order, into submittable batches. A
// partition key change always starts a new batch, even a short one; the size
// cap only splits a run of rows within the same partition.
func buildBatches(rows []*aztables.EDMEntity) ([]Batch, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	var batches []Batch
	current := Batch{PartitionKey: rows[0].PartitionKey}
	for _, row := range rows {
		if row.PartitionKey != current.PartitionKey || len(current.Rows) == maxBatchOperations {
			batches = append(batches, current)
			current = Batch{PartitionKey: row.PartitionKey}
		}
		current.Rows = append(current.Rows, row)
	}
	return append(batches, current), nil
}
