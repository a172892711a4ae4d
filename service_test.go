package tablesink

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTableExists(t *testing.T) {
	assert.False(t, tableExists(errors.New("bacon")))
	assert.False(t, tableExists(&azcore.ResponseError{ErrorCode: "ResourceNotFound"}))
	assert.True(t, tableExists(&azcore.ResponseError{ErrorCode: "TableAlreadyExists"}))

	wrapped := errors.Wrap(
		&azcore.ResponseError{ErrorCode: "TableAlreadyExists"},
		"could not create table",
	)
	assert.True(t, tableExists(wrapped))
}
