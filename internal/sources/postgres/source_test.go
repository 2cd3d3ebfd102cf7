package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/propverify/internal/sources/postgres"
	"github.com/agentstation/propverify/pkg/types"
)

func TestNewRequiresPool(t *testing.T) {
	_, err := postgres.New(nil, types.DORIS)
	assert.Error(t, err)

	_, err = postgres.NewAll(nil)
	assert.Error(t, err)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, `"doris_records"`, postgres.TableName(types.DORIS))
	assert.Equal(t, `"mca21_records"`, postgres.TableName(types.MCA21))
}
