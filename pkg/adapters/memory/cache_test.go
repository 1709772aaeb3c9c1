package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/demark/pkg/adapters/memory"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/demark/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Contract(t *testing.T) {
	cache := memory.NewCache()
	ports.RunCacheContract(t, cache)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := memory.NewCache(memory.WithTTL(time.Minute), memory.WithClock(clock.Now))

	require.NoError(t, cache.Set(ctx, "k", "v"))

	clock.Advance(59 * time.Second)
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	clock.Advance(time.Second)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, cache.Len(), "expired entry should be dropped on read")
}

func TestMemoryCache_Limit(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := memory.NewCache(memory.WithLimit(2), memory.WithClock(clock.Now))

	require.NoError(t, cache.Set(ctx, "a", "1"))
	clock.Advance(time.Second)
	require.NoError(t, cache.Set(ctx, "b", "2"))
	clock.Advance(time.Second)

	// Overwriting an existing key never evicts.
	require.NoError(t, cache.Set(ctx, "b", "2b"))
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Set(ctx, "c", "3"))
	assert.Equal(t, 2, cache.Len())

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "oldest entry should be evicted")

	got, err := cache.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCache(memory.WithLimit(16))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%20)
			_ = cache.Set(ctx, key, key)
			if v, err := cache.Get(ctx, key); err == nil {
				assert.Equal(t, key, v)
			}
			_ = cache.Delete(ctx, fmt.Sprintf("k%d", (i+1)%20))
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Len(), 16)
}
