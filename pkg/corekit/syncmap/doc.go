/*
Package syncmap provides concurrent map implementations optimized for
read-mostly workloads.

Two types are provided:

  - [Map]: a lock-free growable hash map. Reads are wait-free, writes are
    lock-free on the current table, and only table growth takes a mutex.
  - [Dictionary]: a two-layer dictionary that keeps an immutable lock-free
    read layer for established keys and a small locked spill map for keys
    written since the last merge. Spilled keys are folded into a fresh
    lock-free layer on a configurable merge cadence.

# Choosing between Map and Dictionary

Map behaves like sync.Map with type safety: every key is reachable through
the lock-free table as soon as it is stored, at the cost of an occasional
stop-and-copy growth under a mutex.

Dictionary trades freshness for a flatter latency profile: new keys pay a
short lock until the next merge, after which all reads and updates for them
are lock-free. It suits caches and registries where the key population
stabilizes quickly.

# Basic Usage

	var m syncmap.Map[string, int]
	m.Store("a", 1)
	v, ok := m.Load("a")

	d := syncmap.NewDictionary[string, int]()
	d.Store("a", 1)
	v, ok = d.Load("a")

Both types are safe for concurrent use by multiple goroutines. The zero
value of Map is ready to use; Dictionary must be created with
[NewDictionary].
*/
package syncmap
