package tablesink

import (
	"context"
	"fmt"
)

// Rows reads back the stored rows of one partition from the currently routed
// table. Rows come back in row key order, which for the default key generator
// is event time order.
func (s *Sink) Rows(ctx context.Context, partitionKey string) ([]*LogRow, error) {
	table, err := s.router.resolve(ctx, s.now())
	if err != nil {
		return nil, err
	}
	rows, err := table.ListRows(ctx, fmt.Sprintf("PartitionKey eq '%s'", partitionKey))
	if err != nil {
		return nil, err
	}
	ret := make([]*LogRow, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &LogRow{
			PartitionKey: row.PartitionKey,
			RowKey:       row.RowKey,
			Columns:      row.Properties,
		})
	}
	return ret, nil
}

// LogRow is a stored row read back from the table, with the implicit key
// columns lifted out of the column map.
type LogRow struct {
	PartitionKey string
	RowKey       string
	Columns      map[string]any
}
