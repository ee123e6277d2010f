package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	att := attachment.New("TC-1", "notes.txt", "text/plain", []byte("hello"))
	require.NoError(t, s.Put(ctx, "TC-1", att))

	got, found, err := s.Get(ctx, "TC-1", att.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, att, got)

	// Attachments are scoped by owner.
	_, found, err = s.Get(ctx, "TC-2", att.ID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Delete(ctx, "TC-1", att.ID))
	_, found, err = s.Get(ctx, "TC-1", att.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing attachment is not an error.
	assert.NoError(t, s.Delete(ctx, "TC-1", "never-existed"))
}

func TestMemoryStoreConcurrentDistinctIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			att := attachment.New("TC-1", fmt.Sprintf("f-%d.txt", n), "text/plain", []byte("x"))
			_ = s.Put(ctx, "TC-1", att)
			_, _, _ = s.Get(ctx, "TC-1", att.ID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, s.Len("TC-1"))
}
