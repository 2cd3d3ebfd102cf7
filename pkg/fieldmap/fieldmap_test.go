package fieldmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propverify/pkg/fieldmap"
	"github.com/agentstation/propverify/pkg/types"
)

func TestDefaultCoversEverySource(t *testing.T) {
	m := fieldmap.Default()
	for _, id := range types.SourceIDs() {
		assert.True(t, m.Has(id), "missing table for %s", id)
	}
	assert.False(t, m.Has("epfo"))
	assert.Len(t, m.Sources(), 4)
}

func TestCanonical(t *testing.T) {
	m := fieldmap.Default()

	tests := []struct {
		source types.SourceID
		field  string
		want   string
	}{
		{types.DORIS, "regDate", "registrationDate"},
		{types.DORIS, "ownerBirthDate", "dateOfBirth"},
		{types.DLR, "khasraNo", "khasraNumber"},
		{types.DORIS, "tehsilName", "tehsil"},
		{types.DLR, "sroName", "sro"},
		{types.DLR, "recordUpdateDate", "lastUpdatedDate"},
		{types.CERSAI, "lenderName", "bankName"},
		{types.MCA21, "CIN", "cin"},
		// unmapped fields keep their name
		{types.DORIS, "stampDutyPaid", "stampDutyPaid"},
		{types.DLR, "propertyId", "propertyId"},
		// unknown source is identity too
		{"epfo", "uan", "uan"},
	}
	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Canonical(tt.source, tt.field))
		})
	}
}

func TestNewCopiesTables(t *testing.T) {
	tables := map[types.SourceID]fieldmap.Table{types.DORIS: {"a": "b"}}
	m := fieldmap.New(tables)
	tables[types.DORIS]["a"] = "changed"

	assert.Equal(t, "b", m.Canonical(types.DORIS, "a"))

	tbl, ok := m.Table(types.DORIS)
	require.True(t, ok)
	tbl["a"] = "mutated"
	assert.Equal(t, "b", m.Canonical(types.DORIS, "a"))

	_, ok = m.Table(types.MCA21)
	assert.False(t, ok)
}
