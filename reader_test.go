package tablesink

import (
	"context"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	ctx := context.Background()
	service := new(mockService)
	table := new(mockTable)

	service.On("EnsureTable", ctx, "Logs20200201").Return(table, nil).Once()
	table.On("ListRows", ctx, "PartitionKey eq 'A'").Return([]*aztables.EDMEntity{
		{
			Entity:     aztables.Entity{PartitionKey: "A", RowKey: "1"},
			Properties: map[string]any{"Level": "Information"},
		},
	}, nil).Once()

	sut := NewSink(
		ctx,
		service,
		WithTableName("Logs"),
		freezeTime(time.Date(2020, 2, 1, 12, 0, 0, 0, time.UTC)),
	)
	defer sut.Close()

	got, err := sut.Rows(ctx, "A")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "A", got[0].PartitionKey)
	assert.Equal(t, "1", got[0].RowKey)
	assert.Equal(t, "Information", got[0].Columns["Level"])

	service.AssertExpectations(t)
	table.AssertExpectations(t)
}
