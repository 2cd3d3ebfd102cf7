//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/agentstation/propverify/internal/metrics"
	"github.com/agentstation/propverify/internal/store/memory"
	pvredis "github.com/agentstation/propverify/internal/store/redis"
	"github.com/agentstation/propverify/internal/testutil/containers"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/property"
)

type CacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *memory.Store
	metrics *metrics.Metrics
	cache   *pvredis.Cache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backing = memory.New()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.cache = pvredis.New(s.backing, s.redis.Client,
		pvredis.WithTTL(time.Minute),
		pvredis.WithMetrics(s.metrics),
		pvredis.WithLogger(logging.NewNopLogger()),
	)
}

func (s *CacheSuite) TestUpsertPopulatesCache() {
	ctx := context.Background()

	stored, err := s.cache.Upsert(ctx, &property.Property{PropertyID: "PROP-1", Owner: &property.Owner{Name: "Asha"}})
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Revision)

	ttl, err := s.redis.Client.TTL(ctx, pvredis.Key("PROP-1")).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	got, err := s.cache.Get(ctx, "PROP-1")
	s.Require().NoError(err)
	s.Equal("Asha", got.Owner.Name)
	s.InDelta(1, testutil.ToFloat64(s.metrics.CacheRequests.WithLabelValues("hit")), 0)
}

func (s *CacheSuite) TestMissReadsThrough() {
	ctx := context.Background()
	_, err := s.backing.Upsert(ctx, &property.Property{PropertyID: "PROP-2"})
	s.Require().NoError(err)

	got, err := s.cache.Get(ctx, "PROP-2")
	s.Require().NoError(err)
	s.Equal("PROP-2", got.PropertyID)
	s.InDelta(1, testutil.ToFloat64(s.metrics.CacheRequests.WithLabelValues("miss")), 0)

	exists, err := s.redis.Client.Exists(ctx, pvredis.Key("PROP-2")).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}

func (s *CacheSuite) TestNotFoundIsNotCached() {
	ctx := context.Background()

	_, err := s.cache.Get(ctx, "PROP-404")
	s.True(errors.IsNotFound(err))

	exists, err := s.redis.Client.Exists(ctx, pvredis.Key("PROP-404")).Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *CacheSuite) TestCorruptEntryFallsBack() {
	ctx := context.Background()
	_, err := s.backing.Upsert(ctx, &property.Property{PropertyID: "PROP-3"})
	s.Require().NoError(err)
	s.Require().NoError(s.redis.Client.Set(ctx, pvredis.Key("PROP-3"), "{not json", time.Minute).Err())

	got, err := s.cache.Get(ctx, "PROP-3")
	s.Require().NoError(err)
	s.Equal("PROP-3", got.PropertyID)
	s.NoError(s.cache.Ping(ctx))
}
