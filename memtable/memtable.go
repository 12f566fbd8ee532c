// Package memtable provides the LSM tree's in-memory write buffer: an
// unsorted, insertion-ordered sequence of entries with a companion bloom
// filter, flushed to a sorted SSTable once it reaches capacity.
package memtable

import (
	"github.com/pashandor789/search/bloomfilter"
	"github.com/pashandor789/search/kv"
	"github.com/pashandor789/search/sst"
)

// MaxSize is the entry count at which a memtable is considered full and
// must be flushed.
const MaxSize = 10240

// bloomBitsPerEntry sizes the memtable's bloom filter proportionally to
// its capacity (4 bits per entry).
const bloomBitsPerEntry = 4

// Record is a single (key, value) pair, kept in insertion order;
// duplicates are permitted.
type Record[K kv.Key[K], V any] struct {
	Key   K
	Value V
}

// Meta is the {entry count, bloom filter} pair returned by Flush and
// stored as the resulting SSTable's meta.
type Meta struct {
	Size  int
	Bloom *bloomfilter.Filter
}

// Memtable is the LSM write buffer. It is not safe for concurrent use —
// the LSM tree as a whole is single-threaded and synchronous.
type Memtable[K kv.Key[K], V any] struct {
	entries   []Record[K, V]
	bloom     *bloomfilter.Filter
	keyCodec  kv.Codec[K]
	valCodec  kv.Codec[V]
	hashCount uint
}

// New returns an empty Memtable for the given key/value codecs.
func New[K kv.Key[K], V any](keyCodec kv.Codec[K], valCodec kv.Codec[V]) *Memtable[K, V] {
	return &Memtable[K, V]{
		bloom:     bloomfilter.New(MaxSize*bloomBitsPerEntry, bloomfilter.DefaultHashCount),
		keyCodec:  keyCodec,
		valCodec:  valCodec,
		hashCount: bloomfilter.DefaultHashCount,
	}
}

func equalKeys[K kv.Key[K]](a, b K) bool {
	return !a.Less(b) && !b.Less(a)
}

// Insert appends (key, value); it never replaces an existing entry
// in-place, so later reads must scan newest-to-oldest for last-writer-wins
// semantics.
func (m *Memtable[K, V]) Insert(key K, value V) {
	m.entries = append(m.entries, Record[K, V]{Key: key, Value: value})
	m.bloom.Count(m.keyCodec.Encode(key))
}

// ReadPoint probes the bloom filter, then scans newest-to-oldest for the
// first matching key.
func (m *Memtable[K, V]) ReadPoint(key K) (V, bool) {
	var zero V
	if !m.bloom.Probe(m.keyCodec.Encode(key)) {
		return zero, false
	}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if equalKeys(m.entries[i].Key, key) {
			return m.entries[i].Value, true
		}
	}
	return zero, false
}

// Size returns the current entry count, including duplicates.
func (m *Memtable[K, V]) Size() int {
	return len(m.entries)
}

// Flush deduplicates by last occurrence, sorts ascending by key, writes
// the result to path as a flat SSTable, and resets the memtable.
func (m *Memtable[K, V]) Flush(path string) (Meta, error) {
	unique := dedupAndSort(m.entries)

	sstEntries := make([]sst.Entry, len(unique))
	for i, rec := range unique {
		sstEntries[i] = sst.Entry{
			Key:   m.keyCodec.Encode(rec.Key),
			Value: m.valCodec.Encode(rec.Value),
		}
	}

	if err := sst.WriteAll(path, sstEntries); err != nil {
		return Meta{}, err
	}

	meta := Meta{Size: len(unique), Bloom: m.bloom}

	m.entries = nil
	m.bloom = bloomfilter.New(MaxSize*bloomBitsPerEntry, m.hashCount)

	return meta, nil
}
