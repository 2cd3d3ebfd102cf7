package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/propverify/internal/store"
	pvredis "github.com/agentstation/propverify/internal/store/redis"
)

var _ store.Store = (*pvredis.Cache)(nil)

func TestKey(t *testing.T) {
	assert.Equal(t, "propverify:unified:PROP-1A2B3C4D", pvredis.Key("PROP-1A2B3C4D"))
}
