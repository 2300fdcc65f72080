package counter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_IncrDecr(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	ctx := context.Background()

	n, err := s.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Decr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemory_GetAbsent(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	_, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	ctx := context.Background()

	_, err := s.Incr(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Expire(t *testing.T) {
	now := time.Now()
	s := NewMemory().WithNow(func() time.Time { return now })
	defer s.Close()
	ctx := context.Background()

	_, err := s.Incr(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, s.Expire(ctx, "k", time.Hour))

	// Still present before the deadline.
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// Advance past the deadline; the key reads as absent and a fresh
	// increment starts from zero again.
	now = now.Add(2 * time.Hour)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemory_ConcurrentIncr(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Incr(ctx, "shared")
		}()
	}
	wg.Wait()

	n, ok, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(50), n)
}
