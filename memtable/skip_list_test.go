package memtable

import (
	"math/rand"
	"testing"
)

// intKey is a minimal kv.Key[intKey] used only to exercise sortedSet in
// isolation from the fixed-width Word key the rest of the package uses.
type intKey int

func (a intKey) Less(b intKey) bool { return a < b }

func TestEmptySortedSet(t *testing.T) {
	set := newSortedSet[intKey, string]()
	if set.size != 0 {
		t.Fatalf("expected size 0, got %d", set.size)
	}
	if len(set.Ascending()) != 0 {
		t.Fatalf("expected empty ascending list")
	}
}

func TestSortedSetPutAndAscending(t *testing.T) {
	set := newSortedSet[intKey, string]()
	set.Put(10, "ten")
	set.Put(5, "five")
	set.Put(20, "twenty")

	got := set.Ascending()
	want := []intKey{5, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, k := range want {
		if got[i].Key != k {
			t.Fatalf("position %d: expected key %d, got %d", i, k, got[i].Key)
		}
	}
}

func TestSortedSetUpdateExistingKey(t *testing.T) {
	set := newSortedSet[intKey, string]()
	set.Put(1, "one")
	set.Put(1, "uno")

	got := set.Ascending()
	if len(got) != 1 || got[0].Value != "uno" {
		t.Fatalf("expected single updated record, got %v", got)
	}
}

func TestSortedSetSequential(t *testing.T) {
	set := newSortedSet[intKey, int]()
	for i := 1; i <= 1000; i++ {
		set.Put(intKey(i), i*i)
	}

	got := set.Ascending()
	if len(got) != 1000 {
		t.Fatalf("expected 1000 records, got %d", len(got))
	}
	for i, rec := range got {
		want := i + 1
		if int(rec.Key) != want || rec.Value != want*want {
			t.Fatalf("position %d: got (%d,%d), want (%d,%d)", i, rec.Key, rec.Value, want, want*want)
		}
	}
}

func TestDedupAndSortLastOccurrenceWins(t *testing.T) {
	entries := []Record[intKey, string]{
		{Key: 3, Value: "first"},
		{Key: 1, Value: "a"},
		{Key: 3, Value: "second"},
		{Key: 2, Value: "b"},
		{Key: 3, Value: "third"},
	}

	got := dedupAndSort(entries)
	want := []Record[intKey, string]{
		{Key: 1, Value: "a"},
		{Key: 2, Value: "b"},
		{Key: 3, Value: "third"},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d unique records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSortedSetRandomInsertOrdering(t *testing.T) {
	set := newSortedSet[intKey, int]()
	seen := map[intKey]int{}

	for i := 0; i < 2000; i++ {
		k := intKey(rand.Intn(10000))
		set.Put(k, i)
		seen[k] = i
	}

	got := set.Ascending()
	if len(got) != len(seen) {
		t.Fatalf("expected %d unique keys, got %d", len(seen), len(got))
	}

	prev := intKey(-1 << 31)
	for _, rec := range got {
		if rec.Key < prev {
			t.Fatalf("ascending order violated at key %d", rec.Key)
		}
		if seen[rec.Key] != rec.Value {
			t.Fatalf("key %d: got value %d, want last-written %d", rec.Key, rec.Value, seen[rec.Key])
		}
		prev = rec.Key
	}
}
