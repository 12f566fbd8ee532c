package memtable

import (
	"math/rand"

	"github.com/pashandor789/search/kv"
	"github.com/sirupsen/logrus"
)

const maxLevel = 32

// sortedSet is a skip list used only as Flush's dedupe-and-sort
// structure: inserting every memtable record through Put in insertion
// order gives "last occurrence wins" for free (Put overwrites the value
// of an existing key), and its ordered forward-pointer chain gives the
// ascending sort for free too. It is not the live memtable — the
// memtable itself is the plain insertion-ordered sequence in
// memtable.go, which permits duplicates.
//
// Adapted from the generic skip list this package used as its live
// memtable before this rewrite: the forward-pointer structure and
// randomised leveling are unchanged, only the key constraint is
// generalised from Go's built-in ordered scalar kinds to kv.Key[K], since
// this system's concrete key is a 128-byte struct.
type sortedSet[K kv.Key[K], V any] struct {
	head   *skipListNode[K, V]
	levels int
	size   int
}

type skipListNode[K kv.Key[K], V any] struct {
	record  Record[K, V]
	forward []*skipListNode[K, V]
}

func newSkipListNode[K kv.Key[K], V any](key K, value V, levels int) *skipListNode[K, V] {
	return &skipListNode[K, V]{
		record:  Record[K, V]{Key: key, Value: value},
		forward: make([]*skipListNode[K, V], levels+1),
	}
}

func newSortedSet[K kv.Key[K], V any]() *sortedSet[K, V] {
	var zeroK K
	var zeroV V
	return &sortedSet[K, V]{
		head:   newSkipListNode(zeroK, zeroV, 0),
		levels: -1,
	}
}

func getRandomLevel() int {
	level := 0
	for rand.Int31()&1 == 0 && level < maxLevel {
		level++
	}
	return level
}

func (sl *sortedSet[K, V]) adjustLevels(level int) {
	temp := sl.head.forward
	var zeroK K
	var zeroV V
	sl.head = newSkipListNode(zeroK, zeroV, level)
	sl.levels = level
	copy(sl.head.forward, temp)
}

// Put inserts key/value, overwriting the value of an existing equal key
// rather than adding a duplicate node — this is what gives Flush its
// "last occurrence wins" dedup semantics.
func (sl *sortedSet[K, V]) Put(key K, value V) {
	newLevel := getRandomLevel()
	if newLevel > sl.levels {
		sl.adjustLevels(newLevel)
	}

	updates := make([]*skipListNode[K, V], sl.levels+1)
	x := sl.head

	for level := sl.levels; level >= 0; level-- {
		for x.forward[level] != nil && x.forward[level].record.Key.Less(key) {
			x = x.forward[level]
		}
		updates[level] = x
	}

	if next := x.forward[0]; next != nil && equalKeys(next.record.Key, key) {
		next.record.Value = value
		return
	}

	newNode := newSkipListNode(key, value, newLevel)
	for level := 0; level <= newLevel; level++ {
		newNode.forward[level] = updates[level].forward[level]
		updates[level].forward[level] = newNode
	}
	sl.size++
}

// Ascending returns every record in ascending key order.
func (sl *sortedSet[K, V]) Ascending() []Record[K, V] {
	out := make([]Record[K, V], 0, sl.size)
	for x := sl.head.forward[0]; x != nil; x = x.forward[0] {
		out = append(out, x.record)
	}
	return out
}

func (sl *sortedSet[K, V]) debugLog() {
	logrus.WithFields(logrus.Fields{
		"size":   sl.size,
		"levels": sl.levels,
	}).Debug("memtable: flush sort structure built")
}

// dedupAndSort reduces a raw insertion-ordered sequence to its
// last-occurrence-wins, ascending-by-key form: later insertions of the
// same key supersede earlier ones, and the result comes out sorted.
func dedupAndSort[K kv.Key[K], V any](entries []Record[K, V]) []Record[K, V] {
	set := newSortedSet[K, V]()
	for _, e := range entries {
		set.Put(e.Key, e.Value)
	}
	set.debugLog()
	return set.Ascending()
}
