//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/agentstation/propverify/internal/sources/postgres"
	"github.com/agentstation/propverify/internal/testutil/containers"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/types"
)

type SourceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
}

func TestSourceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SourceSuite))
}

func (s *SourceSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(postgres.EnsureSchema(context.Background(), s.postgres.Pool))
}

func (s *SourceSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"doris_records", "dlr_records", "cersai_records", "mca21_records"))
}

func (s *SourceSuite) TestPutAndLookup() {
	ctx := context.Background()
	src, err := postgres.New(s.postgres.Pool, types.DORIS)
	s.Require().NoError(err)

	s.Require().NoError(src.Put(ctx, record.Record{
		"propertyId":     "PROP-1A2B3C4D",
		"registrationNo": "MH/PUN/2021/00042",
		"emailId":        nil,
		"owners":         []any{"A", "B"},
	}))

	rec, err := src.Lookup(ctx, "PROP-1A2B3C4D")
	s.Require().NoError(err)
	s.Equal("MH/PUN/2021/00042", rec["registrationNo"])
	s.Contains(rec, "emailId")
	s.Nil(rec["emailId"])
	s.Equal([]any{"A", "B"}, rec["owners"])
}

func (s *SourceSuite) TestPutReplacesDocument() {
	ctx := context.Background()
	src, err := postgres.New(s.postgres.Pool, types.DLR)
	s.Require().NoError(err)

	s.Require().NoError(src.Put(ctx, record.Record{"propertyId": "PROP-1", "khasraNo": "1"}))
	s.Require().NoError(src.Put(ctx, record.Record{"propertyId": "PROP-1", "khataNo": "2"}))

	rec, err := src.Lookup(ctx, "PROP-1")
	s.Require().NoError(err)
	s.NotContains(rec, "khasraNo")
	s.Equal("2", rec["khataNo"])
}

func (s *SourceSuite) TestLookupNotFound() {
	src, err := postgres.New(s.postgres.Pool, types.CERSAI)
	s.Require().NoError(err)

	_, err = src.Lookup(context.Background(), "PROP-404")
	s.True(errors.IsNotFound(err))
	s.NoError(src.Ping(context.Background()))
}

func (s *SourceSuite) TestPutRequiresPropertyID() {
	src, err := postgres.New(s.postgres.Pool, types.MCA21)
	s.Require().NoError(err)

	err = src.Put(context.Background(), record.Record{"CIN": "U1"})
	s.True(errors.IsValidationError(err))
}
