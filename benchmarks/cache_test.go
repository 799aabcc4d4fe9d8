package benchmarks

import (
	"context"
	"strconv"
	"testing"

	"github.com/abalassy/corekit/pkg/corekit/cache"
)

// BenchmarkCacheGet_Hit measures the hit path of the unsynchronized cache.
func BenchmarkCacheGet_Hit(b *testing.B) {
	c := cache.MustNew[int, int](1024)
	for i := 0; i < 1024; i++ {
		c.Set(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(i % 1024)
	}
}

// BenchmarkCacheSet_Evicting measures steady-state inserts with eviction.
func BenchmarkCacheSet_Evicting(b *testing.B) {
	c := cache.MustNew[int, int](256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i, i)
	}
}

// BenchmarkCacheSet_FIFO compares FIFO against the default LRU insert path.
func BenchmarkCacheSet_FIFO(b *testing.B) {
	c := cache.MustNew(256, cache.WithPolicy[int, int](cache.FIFO))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i, i)
	}
}

// BenchmarkAccessorGet_Hit measures the lock-free hit path.
func BenchmarkAccessorGet_Hit(b *testing.B) {
	a, err := cache.NewThreadSafe(func(ctx context.Context, key int) (string, error) {
		return strconv.Itoa(key), nil
	})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	for i := 0; i < 1024; i++ {
		if _, err := a.Get(ctx, i); err != nil {
			b.Fatal(err)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Get(ctx, i%1024)
	}
}

// BenchmarkAccessorGet_Parallel measures contended concurrent reads.
func BenchmarkAccessorGet_Parallel(b *testing.B) {
	a, err := cache.NewThreadSafe(func(ctx context.Context, key int) (string, error) {
		return strconv.Itoa(key), nil
	})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	for i := 0; i < 1024; i++ {
		if _, err := a.Get(ctx, i); err != nil {
			b.Fatal(err)
		}
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			a.Get(ctx, i%1024)
			i++
		}
	})
}
