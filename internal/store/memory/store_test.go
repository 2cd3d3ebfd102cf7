package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propverify/internal/store"
	"github.com/agentstation/propverify/internal/store/memory"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/property"
)

var _ store.Store = (*memory.Store)(nil)

func TestUpsertOverwritesAndBumpsRevision(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	first, err := s.Upsert(ctx, &property.Property{PropertyID: "PROP-1", Owner: &property.Owner{Name: "Asha"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Revision)

	second, err := s.Upsert(ctx, &property.Property{PropertyID: "PROP-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Revision)

	got, err := s.Get(ctx, "PROP-1")
	require.NoError(t, err)
	assert.Nil(t, got.Owner, "full overwrite drops sections missing from the new record")
	assert.Equal(t, int64(2), got.Revision)
	assert.Equal(t, 1, s.Len())
}

func TestGetNotFound(t *testing.T) {
	_, err := memory.New().Get(context.Background(), "PROP-404")
	assert.True(t, errors.IsNotFound(err))
}

func TestUpsertRequiresID(t *testing.T) {
	s := memory.New()
	_, err := s.Upsert(context.Background(), &property.Property{})
	assert.True(t, errors.IsValidationError(err))
	_, err = s.Upsert(context.Background(), nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestStoredCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	in := &property.Property{PropertyID: "PROP-1", Owner: &property.Owner{Name: "Asha"}}

	_, err := s.Upsert(ctx, in)
	require.NoError(t, err)
	in.Owner.Name = "changed"

	got, err := s.Get(ctx, "PROP-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Owner.Name)
	assert.Zero(t, in.Revision, "input is not modified")
}

func TestConcurrentUpsertsSameID(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	const writers = 32
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Upsert(ctx, &property.Property{PropertyID: "PROP-1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "PROP-1")
	require.NoError(t, err)
	assert.Equal(t, int64(writers), got.Revision)
	assert.NoError(t, s.Close())
}
