package tablesink

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/enfipy/locker"
	"github.com/pkg/errors"
)

type serviceImpl struct {
	client *aztables.ServiceClient
	locks  *locker.Locker
}

// NewService wraps an Azure table service client in the narrow interface the
// sink consumes.
func NewService(client *aztables.ServiceClient) ServiceAPI {
	return &serviceImpl{client: client, locks: locker.Initialize()}
}

func (s *serviceImpl) EnsureTable(ctx context.Context, name string) (TableAPI, error) {
	// Per-name critical section: concurrent resolutions of the same dated
	// table serialize here instead of racing the create call.
	s.locks.Lock(name)
	defer s.locks.Unlock(name)

	if _, err := s.client.CreateTable(ctx, name, nil); err != nil && !tableExists(err) {
		return nil, errors.Wrap(err, "could not create table")
	}
	return &tableImpl{client: s.client.NewClient(name)}, nil
}

func tableExists(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)
}

type tableImpl struct {
	client *aztables.Client
}

func (t *tableImpl) SubmitBatch(ctx context.Context, batch Batch) error {
	actions := make([]aztables.TransactionAction, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return errors.Wrapf(err, "could not marshal row %q", row.RowKey)
		}
		actions = append(actions, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeAdd,
			Entity:     payload,
		})
	}
	if _, err := t.client.SubmitTransaction(ctx, actions, nil); err != nil {
		return errors.Wrapf(err, "could not submit batch for partition %q", batch.PartitionKey)
	}
	return nil
}

func (t *tableImpl) ListRows(ctx context.Context, filter string) ([]*aztables.EDMEntity, error) {
	options := new(aztables.ListEntitiesOptions)
	if filter != "" {
		options.Filter = &filter
	}

	var rows []*aztables.EDMEntity
	pager := t.client.NewListEntitiesPager(options)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "could not list rows")
		}
		for _, raw := range page.Entities {
			row := new(aztables.EDMEntity)
			if err := json.Unmarshal(raw, row); err != nil {
				return nil, errors.Wrap(err, "could not unmarshal row")
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
