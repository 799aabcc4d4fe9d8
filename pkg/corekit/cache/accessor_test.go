package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abalassy/corekit/pkg/corekit/store"
)

func lengthLoader(ctx context.Context, key string) (int, error) {
	return len(key), nil
}

func TestNewThreadSafe_NilLoader(t *testing.T) {
	_, err := NewThreadSafe[string, int](nil)
	require.ErrorIs(t, err, ErrNilLoader)
}

func TestAccessor_GetLoadsOnMiss(t *testing.T) {
	var calls atomic.Int64
	a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		return len(key), nil
	})
	require.NoError(t, err)

	v, err := a.Get(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, int64(1), calls.Load())

	// Hit path must not touch the loader again.
	v, err = a.Get(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, int64(1), calls.Load())

	s := a.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Loads)
}

func TestAccessor_LoaderError(t *testing.T) {
	boom := errors.New("backend down")
	a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
		return 0, boom
	})
	require.NoError(t, err)

	_, err = a.Get(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var le *LoadError
	require.ErrorAs(t, err, &le)

	assert.Equal(t, 0, a.Len(), "failed loads must not be cached")
	assert.Equal(t, int64(1), a.Stats().LoadErrors)
}

func TestAccessor_SetAndPeek(t *testing.T) {
	a, err := NewThreadSafe[string, int](lengthLoader)
	require.NoError(t, err)

	a.Set(context.Background(), "k", 42)
	v, ok := a.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = a.Peek("missing")
	assert.False(t, ok)

	// Peek must not invoke the loader; Get serves the cached value.
	v, err = a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAccessor_Remove(t *testing.T) {
	a, err := NewThreadSafe[string, int](lengthLoader)
	require.NoError(t, err)

	a.Set(context.Background(), "k", 1)
	a.Remove(context.Background(), "k")

	_, ok := a.Peek("k")
	assert.False(t, ok)
}

func TestAccessor_ConcurrentAccess(t *testing.T) {
	a, err := NewThreadSafe(func(ctx context.Context, key int) (int, error) {
		return key * 2, nil
	})
	require.NoError(t, err)

	const goroutines = 16
	const perG = 500

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				key := (g*perG + i) % 100
				v, err := a.Get(context.Background(), key)
				if assert.NoError(t, err) {
					assert.Equal(t, key*2, v)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 100, a.Len())
}

func TestAccessor_ProtectedLoaderDedup(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		<-release
		return len(key), nil
	}, WithProtectedLoader[string, int]())
	require.NoError(t, err)

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]int, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := a.Get(context.Background(), "shared")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent misses must share one loader call")
	for _, v := range results {
		assert.Equal(t, 6, v)
	}
}

func TestAccessor_ProtectedLoaderSharesError(t *testing.T) {
	boom := errors.New("flaky")
	var calls atomic.Int64
	release := make(chan struct{})
	a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		<-release
		return 0, boom
	}, WithProtectedLoader[string, int]())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.Get(context.Background(), "k")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestAccessor_Expiration(t *testing.T) {
	var calls atomic.Int64
	a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
		return int(calls.Add(1)), nil
	}, WithExpiration[string, int](30*time.Millisecond))
	require.NoError(t, err)

	v, err := a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Still fresh.
	v, err = a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	time.Sleep(50 * time.Millisecond)

	// Expired entries are misses and trigger a reload.
	v, err = a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, ok := a.Peek("k")
	assert.True(t, ok, "freshly reloaded entry must be visible")
}

func TestAccessor_CapacityTrim(t *testing.T) {
	a, err := NewThreadSafe(func(ctx context.Context, key int) (int, error) {
		return key, nil
	},
		WithCapacity[int, int](10),
		WithMergeInterval[int, int](time.Millisecond),
	)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := a.Get(context.Background(), i)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	a.Merge(context.Background())
	// One more insert past the cadence runs the trim.
	time.Sleep(2 * time.Millisecond)
	a.Set(context.Background(), 50, 50)

	assert.LessOrEqual(t, a.Len(), 11, "trim keeps the newest entries plus at most the triggering insert")
	_, ok := a.Peek(50)
	assert.True(t, ok, "newest entry survives the trim")
	_, ok = a.Peek(0)
	assert.False(t, ok, "oldest entry is dropped")
}

func TestAccessor_BackingStoreWriteThrough(t *testing.T) {
	backing := store.NewMemoryStore()
	a, err := NewThreadSafe(lengthLoader,
		WithBackingStore[string, int](backing, JSONCodec[int]()),
		WithNamespace[string, int]("t"),
	)
	require.NoError(t, err)

	_, err = a.Get(context.Background(), "four")
	require.NoError(t, err)

	data, err := backing.Load("t", "four")
	require.NoError(t, err)
	assert.JSONEq(t, "4", string(data))
}

func TestAccessor_BackingStoreReadThrough(t *testing.T) {
	backing := store.NewMemoryStore()
	require.NoError(t, backing.Save("t", "42", []byte("99")))

	var calls atomic.Int64
	a, err := NewThreadSafe(func(ctx context.Context, key int) (int, error) {
		calls.Add(1)
		return key, nil
	},
		WithBackingStore[int, int](backing, JSONCodec[int]()),
		WithNamespace[int, int]("t"),
	)
	require.NoError(t, err)

	v, err := a.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 99, v, "store hit must skip the loader")
	assert.Equal(t, int64(0), calls.Load())

	// A cold key goes through the loader and is persisted.
	v, err = a.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, int64(1), calls.Load())

	data, err := backing.Load("t", "7")
	require.NoError(t, err)
	assert.JSONEq(t, "7", string(data))
}

func TestAccessor_BackingStoreFailuresAreNonFatal(t *testing.T) {
	backing := store.NewMemoryStore()
	require.NoError(t, backing.Close())

	a, err := NewThreadSafe(lengthLoader,
		WithBackingStore[string, int](backing, JSONCodec[int]()),
	)
	require.NoError(t, err)

	// Store is closed; the loader still serves the value.
	v, err := a.Get(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestAccessor_ClearPurgesNamespace(t *testing.T) {
	backing := store.NewMemoryStore()
	a, err := NewThreadSafe(lengthLoader,
		WithBackingStore[string, int](backing, JSONCodec[int]()),
		WithNamespace[string, int]("t"),
	)
	require.NoError(t, err)

	_, err = a.Get(context.Background(), "abc")
	require.NoError(t, err)
	a.Clear(context.Background())

	assert.Equal(t, 0, a.Len())
	_, err = backing.Load("t", "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccessor_RemoveDeletesFromStore(t *testing.T) {
	backing := store.NewMemoryStore()
	a, err := NewThreadSafe(lengthLoader,
		WithBackingStore[string, int](backing, JSONCodec[int]()),
		WithNamespace[string, int]("t"),
	)
	require.NoError(t, err)

	_, err = a.Get(context.Background(), "abc")
	require.NoError(t, err)
	a.Remove(context.Background(), "abc")

	_, err = backing.Load("t", "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccessor_KeyString(t *testing.T) {
	backing := store.NewMemoryStore()
	a, err := NewThreadSafe(func(ctx context.Context, key int) (string, error) {
		return strconv.Itoa(key), nil
	},
		WithBackingStore[int, string](backing, JSONCodec[string]()),
		WithNamespace[int, string]("t"),
		WithKeyString[int, string](func(k int) string { return "id-" + strconv.Itoa(k) }),
	)
	require.NoError(t, err)

	_, err = a.Get(context.Background(), 5)
	require.NoError(t, err)

	_, err = backing.Load("t", "id-5")
	assert.NoError(t, err)
}

func TestAccessor_ID(t *testing.T) {
	a, err := NewThreadSafe[string, int](lengthLoader)
	require.NoError(t, err)
	b, err := NewThreadSafe[string, int](lengthLoader)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestAccessor_NilCodecDefaultsToJSON(t *testing.T) {
	backing := store.NewMemoryStore()
	a, err := NewThreadSafe(lengthLoader,
		WithBackingStore[string, int](backing, nil),
		WithNamespace[string, int]("t"),
	)
	require.NoError(t, err)

	v, err := a.Get(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	data, err := backing.Load("t", "four")
	require.NoError(t, err)
	assert.JSONEq(t, "4", string(data), "values persist as JSON by default")
}

func TestAccessor_ExpirationAgesOutStoreEntries(t *testing.T) {
	backing := store.NewMemoryStore()
	var calls atomic.Int64
	newAccessor := func() *ThreadSafeAccessor[string, int] {
		a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
			return int(calls.Add(1)), nil
		},
			WithExpiration[string, int](30*time.Millisecond),
			WithBackingStore[string, int](backing, JSONCodec[int]()),
			WithNamespace[string, int]("t"),
		)
		require.NoError(t, err)
		return a
	}

	a := newAccessor()
	v, err := a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	time.Sleep(50 * time.Millisecond)

	// The resident entry and the persisted one are both past their
	// lifetime, so the loader must run again instead of the store
	// resurrecting the stale value.
	v, err = a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, int64(2), calls.Load())

	// A fresh accessor over the same namespace sees the same rule: the
	// persisted entry ages from its save time, not from the read.
	time.Sleep(50 * time.Millisecond)
	b := newAccessor()
	v, err = b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestAccessor_FreshStoreEntryKeepsSaveTime(t *testing.T) {
	backing := store.NewMemoryStore()
	var calls atomic.Int64
	a, err := NewThreadSafe(func(ctx context.Context, key string) (int, error) {
		return int(calls.Add(1)), nil
	},
		WithExpiration[string, int](time.Minute),
		WithBackingStore[string, int](backing, JSONCodec[int]()),
		WithNamespace[string, int]("t"),
	)
	require.NoError(t, err)

	require.NoError(t, backing.Save("t", "k", []byte("99")))

	v, err := a.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 99, v, "a fresh persisted entry skips the loader")
	assert.Equal(t, int64(0), calls.Load())
}
