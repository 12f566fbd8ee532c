package intervalindex

import (
	"reflect"
	"testing"

	"github.com/pashandor789/search/docset"
)

func buildTestIndex() *Index {
	idx := New()
	idx.AddDocument(0, 10, 20)
	idx.AddDocument(1, 15, 25)
	idx.AddDocument(2, 100, 200)
	return idx
}

func TestFindDocsByIntervalOverlap(t *testing.T) {
	idx := buildTestIndex()

	got := idx.FindDocsByInterval(18, 22).GetIDs()
	want := []uint{0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByInterval(18, 22) = %v, want %v", got, want)
	}
}

func TestFindDocsByTimePoint(t *testing.T) {
	idx := buildTestIndex()

	got := idx.FindDocsByTimePoint(150).GetIDs()
	want := []uint{2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByTimePoint(150) = %v, want %v", got, want)
	}
}

func TestFindDocsByIntervalNoMatch(t *testing.T) {
	idx := buildTestIndex()

	got := idx.FindDocsByInterval(0, 9).GetIDs()
	want := []uint{}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByInterval(0, 9) = %v, want %v", got, want)
	}
}

func TestFindDocsByIntervalSinglePointWithinRange(t *testing.T) {
	idx := buildTestIndex()

	got := idx.FindDocsByTimePoint(20).GetIDs()
	want := []uint{0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByTimePoint(20) = %v, want %v", got, want)
	}
}

// TestGetPredicatesMatchBruteForceRange checks that unioning evaluate()
// over the segment-tree decomposition for a column array agrees with a
// direct per-document range check.
func TestGetPredicatesMatchBruteForceRange(t *testing.T) {
	idx := buildTestIndex()
	begins := map[uint]uint32{0: 10, 1: 15, 2: 100}

	lo, hi := uint32(12), uint32(120)

	preds := GetPredicates(lo, hi)
	if len(preds) == 0 {
		t.Fatal("expected at least one predicate for a non-empty range")
	}

	union := docset.New()
	for _, p := range preds {
		union = union.Or(evaluate(idx.begin[:], idx.addedDocs, p))
	}

	for doc, begin := range begins {
		want := begin >= lo && begin <= hi
		if got := union.HasDoc(doc); got != want {
			t.Errorf("doc %d (begin=%d) in [%d,%d]: union.HasDoc = %v, want %v", doc, begin, lo, hi, got, want)
		}
	}
}
