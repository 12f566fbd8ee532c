// Package lsm is the storage core: a log-structured merge tree
// parametrised over a key and value type, combining an insertion-ordered
// memtable, a size-tiered stack of sorted SSTable files, bloom-filter
// accelerated point lookups, and external-memory binary search.
//
// The memtable-plus-segment-stack-plus-compaction shape is inherited
// from this repository's underlying memtable package, generalised from
// its original scalar `ordered` constraint to the kv.Key[K]/kv.Codec[T]
// pair this tree needs for a fixed-width struct key.
package lsm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pashandor789/search/bloomfilter"
	"github.com/pashandor789/search/kv"
	"github.com/pashandor789/search/memtable"
	"github.com/pashandor789/search/sst"
	"github.com/sirupsen/logrus"
)

// defaultCompactionRatio is the size-tiered merge threshold.
const defaultCompactionRatio = 3

// mergedBloomFactor sizes a freshly merged SSTable's bloom filter
// proportionally to the combined entry count of the two inputs:
// merged SSTables use 5·(|L|+|R|) bits.
const mergedBloomFactor = 5

const metaFileName = "meta"
const tmpFileName = "tmp"

// Entry is a materialised (key, value) pair returned from a read.
type Entry[K kv.Key[K], V any] struct {
	Key   K
	Value V
}

// Statistics is a readable snapshot of lookup/compaction counters,
// replacing a destructor-time summary print with a queryable value.
type Statistics struct {
	Lookups             int
	MemtableHits        int
	BloomProbes         int
	BloomFalsePositives int
	Inserts             int
	Compactions         int
}

// Option configures a Tree at construction time, in this codebase's
// usual functional-options idiom.
type Option[K kv.Key[K], V any] func(*Tree[K, V])

// WithCompactionRatio overrides the default size-tiered ratio of 3.
func WithCompactionRatio[K kv.Key[K], V any](ratio int) Option[K, V] {
	return func(t *Tree[K, V]) { t.ratio = ratio }
}

// Tree is the LSM tree. It is single-threaded and synchronous: Insert
// and reads must not be called concurrently.
type Tree[K kv.Key[K], V any] struct {
	root     string
	ratio    int
	keyCodec kv.Codec[K]
	valCodec kv.Codec[V]

	mt   *memtable.Memtable[K, V]
	ssts []sstMeta

	stats Statistics

	log *logrus.Entry
}

// Open loads <root>/meta if present; otherwise the tree starts empty.
// root is created (with any missing parents) if it does not exist.
func Open[K kv.Key[K], V any](root string, keyCodec kv.Codec[K], valCodec kv.Codec[V], opts ...Option[K, V]) (*Tree[K, V], error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("lsm: mkdir %s: %w", root, err)
	}

	t := &Tree[K, V]{
		root:     root,
		ratio:    defaultCompactionRatio,
		keyCodec: keyCodec,
		valCodec: valCodec,
		mt:       memtable.New[K, V](keyCodec, valCodec),
		log:      logrus.WithField("component", "lsm").WithField("root", root),
	}
	for _, opt := range opts {
		opt(t)
	}

	metaPath := filepath.Join(root, metaFileName)
	if _, err := os.Stat(metaPath); err == nil {
		ratio, ssts, err := readMeta(metaPath)
		if err != nil {
			return nil, fmt.Errorf("lsm: load meta: %w", err)
		}
		t.ratio = ratio
		t.ssts = ssts
		t.log.WithField("sst_count", len(ssts)).Info("lsm: recovered from meta")
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("lsm: stat meta: %w", err)
	} else {
		t.log.Info("lsm: opened fresh tree")
	}

	return t, nil
}

func (t *Tree[K, V]) sstPath(i int) string {
	return filepath.Join(t.root, fmt.Sprintf("C%d", i))
}

func (t *Tree[K, V]) entrySize() int {
	return t.keyCodec.Size + t.valCodec.Size
}

func (t *Tree[K, V]) saveMeta() error {
	return writeMeta(filepath.Join(t.root, metaFileName), t.ratio, t.ssts)
}

// Insert appends (key, value) to the memtable, flushing and compacting
// if the memtable has reached capacity.
func (t *Tree[K, V]) Insert(key K, value V) error {
	t.mt.Insert(key, value)
	t.stats.Inserts++

	if t.mt.Size() < memtable.MaxSize {
		return nil
	}
	return t.flushAndCompact()
}

func (t *Tree[K, V]) flushAndCompact() error {
	idx := len(t.ssts)
	path := t.sstPath(idx)

	meta, err := t.mt.Flush(path)
	if err != nil {
		return fmt.Errorf("lsm: flush memtable: %w", err)
	}
	t.ssts = append(t.ssts, sstMeta{size: meta.Size, bloom: meta.Bloom})
	t.log.WithFields(logrus.Fields{"sst": idx, "size": meta.Size}).Info("lsm: flushed memtable")

	if err := t.compact(); err != nil {
		return err
	}
	return t.saveMeta()
}

// compact performs a single right-to-left size-tiered pass: one pass
// per flush, no recursion across the gap a merge opens.
func (t *Tree[K, V]) compact() error {
	for i := len(t.ssts) - 1; i >= 1; i-- {
		if t.ratio*t.ssts[i].size <= t.ssts[i-1].size {
			continue
		}
		if err := t.merge(i, i-1); err != nil {
			return fmt.Errorf("lsm: merge C%d into C%d: %w", i, i-1, err)
		}
		t.stats.Compactions++
		t.log.WithFields(logrus.Fields{"from": i, "into": i - 1, "size": t.ssts[i-1].size}).Info("lsm: merged tables")
	}
	return nil
}

// merge stream-merges ssts[hiIdx] (newer) into ssts[loIdx] (older),
// writing the result to root/tmp and renaming it over C<loIdx>; C<hiIdx>
// is then deleted and its meta entry dropped. On equal keys the newer
// (higher-index) side wins and the older is discarded — a naive merge
// that kept both would violate key-uniqueness.
func (t *Tree[K, V]) merge(hiIdx, loIdx int) error {
	hi, err := sst.Open(t.sstPath(hiIdx), t.keyCodec.Size, t.valCodec.Size)
	if err != nil {
		return err
	}
	defer hi.Close()

	lo, err := sst.Open(t.sstPath(loIdx), t.keyCodec.Size, t.valCodec.Size)
	if err != nil {
		return err
	}
	defer lo.Close()

	tmpPath := filepath.Join(t.root, tmpFileName)
	out := make([]sst.Entry, 0, hi.NumEntries()+lo.NumEntries())

	var hiPos, loPos int64
	hiN, loN := hi.NumEntries(), lo.NumEntries()

	for hiPos < hiN && loPos < loN {
		hiEntry, err := hi.ReadAt(hiPos)
		if err != nil {
			return err
		}
		loEntry, err := lo.ReadAt(loPos)
		if err != nil {
			return err
		}

		switch {
		case string(hiEntry.Key) == string(loEntry.Key):
			out = append(out, hiEntry) // newer (hi) side wins
			hiPos++
			loPos++
		case string(hiEntry.Key) < string(loEntry.Key):
			out = append(out, hiEntry)
			hiPos++
		default:
			out = append(out, loEntry)
			loPos++
		}
	}
	for ; hiPos < hiN; hiPos++ {
		e, err := hi.ReadAt(hiPos)
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	for ; loPos < loN; loPos++ {
		e, err := lo.ReadAt(loPos)
		if err != nil {
			return err
		}
		out = append(out, e)
	}

	if err := sst.WriteAll(tmpPath, out); err != nil {
		return err
	}

	bloom := bloomfilter.New(uint(mergedBloomFactor*(hiN+loN)), bloomfilter.DefaultHashCount)
	for _, e := range out {
		bloom.Count(e.Key)
	}

	hi.Close()
	lo.Close()

	if err := os.Rename(tmpPath, t.sstPath(loIdx)); err != nil {
		return fmt.Errorf("lsm: rename merged table: %w", err)
	}
	if err := os.Remove(t.sstPath(hiIdx)); err != nil {
		return fmt.Errorf("lsm: remove old table C%d: %w", hiIdx, err)
	}

	t.ssts[loIdx] = sstMeta{size: len(out), bloom: bloom}
	t.ssts = append(t.ssts[:hiIdx], t.ssts[hiIdx+1:]...)
	return nil
}

// ReadPoint looks the key up in the memtable, then newest-to-oldest
// across SSTables via bloom filter + external-memory binary search.
func (t *Tree[K, V]) ReadPoint(key K) (V, bool) {
	var zero V
	t.stats.Lookups++

	if v, ok := t.mt.ReadPoint(key); ok {
		t.stats.MemtableHits++
		return v, true
	}

	keyBytes := t.keyCodec.Encode(key)
	for i := len(t.ssts) - 1; i >= 0; i-- {
		t.stats.BloomProbes++
		if !t.ssts[i].bloom.Probe(keyBytes) {
			continue
		}

		r, err := sst.Open(t.sstPath(i), t.keyCodec.Size, t.valCodec.Size)
		if err != nil {
			continue
		}
		v, ok, err := t.readPointFromTable(r, keyBytes)
		r.Close()
		if err != nil {
			continue
		}
		if ok {
			return v, true
		}
		t.stats.BloomFalsePositives++
	}

	return zero, false
}

func (t *Tree[K, V]) readPointFromTable(r *sst.Reader, keyBytes []byte) (V, bool, error) {
	var zero V
	n := r.NumEntries()
	if n == 0 {
		return zero, false, nil
	}

	good := func(i int64) (bool, error) {
		e, err := r.ReadAt(i)
		if err != nil {
			return false, err
		}
		return string(e.Key) <= string(keyBytes), nil
	}

	l, err := leftSearch(n, good)
	if err != nil {
		return zero, false, err
	}
	if l < 0 {
		return zero, false, nil
	}

	e, err := r.ReadAt(l)
	if err != nil {
		return zero, false, err
	}
	if string(e.Key) != string(keyBytes) {
		return zero, false, nil
	}
	return t.valCodec.Decode(e.Value), true, nil
}

// ReadPoints is a convenience batch lookup that filters misses.
func (t *Tree[K, V]) ReadPoints(keys []K) []Entry[K, V] {
	out := make([]Entry[K, V], 0, len(keys))
	for _, k := range keys {
		if v, ok := t.ReadPoint(k); ok {
			out = append(out, Entry[K, V]{Key: k, Value: v})
		}
	}
	return out
}

// ReadRange returns every entry with key in [lo, hi], scanning every
// SSTable (duplicates across tables are permitted and returned). Range
// reads do not consult the memtable: entries not yet flushed are not
// returned.
func (t *Tree[K, V]) ReadRange(lo, hi K) []Entry[K, V] {
	loBytes := t.keyCodec.Encode(lo)
	hiBytes := t.keyCodec.Encode(hi)

	var out []Entry[K, V]
	for i := range t.ssts {
		r, err := sst.Open(t.sstPath(i), t.keyCodec.Size, t.valCodec.Size)
		if err != nil {
			continue
		}
		entries := readRangeFromTable(r, loBytes, hiBytes)
		r.Close()

		for _, e := range entries {
			out = append(out, Entry[K, V]{
				Key:   t.keyCodec.Decode(e.Key),
				Value: t.valCodec.Decode(e.Value),
			})
		}
	}
	return out
}

func readRangeFromTable(r *sst.Reader, loBytes, hiBytes []byte) []sst.Entry {
	n := r.NumEntries()
	if n == 0 {
		return nil
	}

	geLo := func(i int64) (bool, error) {
		e, err := r.ReadAt(i)
		if err != nil {
			return false, err
		}
		return string(loBytes) <= string(e.Key), nil
	}
	leHi := func(i int64) (bool, error) {
		e, err := r.ReadAt(i)
		if err != nil {
			return false, err
		}
		return string(e.Key) <= string(hiBytes), nil
	}

	start, err := rightSearch(n, geLo)
	if err != nil || start < 0 {
		return nil
	}
	end, err := leftSearch(n, leHi)
	if err != nil || end < 0 || end < start {
		return nil
	}

	entries, err := r.ScanRange(start, end)
	if err != nil {
		return nil
	}
	return entries
}

// Stats returns a snapshot of the tree's lookup and compaction counters.
func (t *Tree[K, V]) Stats() Statistics { return t.stats }
