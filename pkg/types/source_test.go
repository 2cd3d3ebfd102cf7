package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/propverify/pkg/types"
)

func TestSourceIDsOrder(t *testing.T) {
	assert.Equal(t, []types.SourceID{types.DORIS, types.DLR, types.CERSAI, types.MCA21}, types.SourceIDs())
}

func TestParseSourceID(t *testing.T) {
	tests := []struct {
		in    string
		want  types.SourceID
		valid bool
	}{
		{"DORIS", types.DORIS, true},
		{" dlr ", types.DLR, true},
		{"Cersai", types.CERSAI, true},
		{"mca21", types.MCA21, true},
		{"epfo", types.SourceID("epfo"), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := types.ParseSourceID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}
