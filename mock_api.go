package tablesink

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) EnsureTable(ctx context.Context, name string) (TableAPI, error) {
	args := m.Called(ctx, name)
	table, _ := args.Get(0).(TableAPI)
	return table, args.Error(1)
}

type mockTable struct {
	mock.Mock
}

func (m *mockTable) SubmitBatch(ctx context.Context, batch Batch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *mockTable) ListRows(ctx context.Context, filter string) ([]*aztables.EDMEntity, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]*aztables.EDMEntity)
	return rows, args.Error(1)
}
