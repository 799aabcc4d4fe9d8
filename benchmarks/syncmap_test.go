package benchmarks

import (
	"sync"
	"testing"

	"github.com/abalassy/corekit/pkg/corekit/syncmap"
)

// BenchmarkMapLoad measures the lock-free read path.
func BenchmarkMapLoad(b *testing.B) {
	var m syncmap.Map[int, int]
	for i := 0; i < 1024; i++ {
		m.Store(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load(i % 1024)
	}
}

// BenchmarkMapStore measures writes into a growing table.
func BenchmarkMapStore(b *testing.B) {
	var m syncmap.Map[int, int]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Store(i, i)
	}
}

// BenchmarkMapLoad_Parallel measures contended reads against sync.Map.
func BenchmarkMapLoad_Parallel(b *testing.B) {
	var m syncmap.Map[int, int]
	for i := 0; i < 1024; i++ {
		m.Store(i, i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Load(i % 1024)
			i++
		}
	})
}

// BenchmarkSyncMapLoad_Parallel is the stdlib baseline for the above.
func BenchmarkSyncMapLoad_Parallel(b *testing.B) {
	var m sync.Map
	for i := 0; i < 1024; i++ {
		m.Store(i, i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Load(i % 1024)
			i++
		}
	})
}

// BenchmarkDictionaryLoad measures the merged read layer.
func BenchmarkDictionaryLoad(b *testing.B) {
	d := syncmap.NewDictionary[int, int]()
	for i := 0; i < 1024; i++ {
		d.Store(i, i)
	}
	d.Merge()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Load(i % 1024)
	}
}

// BenchmarkDictionaryStore measures writes through the spill layer.
func BenchmarkDictionaryStore(b *testing.B) {
	d := syncmap.NewDictionary[int, int]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Store(i, i)
	}
}
