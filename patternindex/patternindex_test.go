package patternindex

import (
	"reflect"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return idx
}

func mustAdd(t *testing.T, idx *Index, id uint, text string) {
	t.Helper()
	if err := idx.AddDocument(Document{ID: id, Text: text}); err != nil {
		t.Fatalf("AddDocument(%d, %q): %v", id, text, err)
	}
}

func TestHelloWorldCorpus(t *testing.T) {
	idx := openTestIndex(t)
	mustAdd(t, idx, 0, "hello world")
	mustAdd(t, idx, 1, "hell world")

	cases := []struct {
		name string
		got  []uint
		want []uint
	}{
		{"pattern *hell*worl*", idx.FindDocsByPattern("*hell*worl*").GetIDs(), []uint{0, 1}},
		{"pattern hell*worl*", idx.FindDocsByPattern("hell*worl*").GetIDs(), []uint{0, 1}},
		{"prefix hell", idx.FindDocsByPrefix("hell").GetIDs(), []uint{0, 1}},
		{"prefix hello", idx.FindDocsByPrefix("hello").GetIDs(), []uint{0}},
		{"pattern ell*worl*", idx.FindDocsByPattern("ell*worl*").GetIDs(), []uint{}},
		{"prefix ell", idx.FindDocsByPrefix("ell").GetIDs(), []uint{}},
	}
	for _, c := range cases {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestVerifySegmentOrderingMustNotOverlap(t *testing.T) {
	idx := openTestIndex(t)
	mustAdd(t, idx, 0, "ab ab")

	// "*ab*ab*" requires two non-overlapping occurrences of "ab" in order.
	got := idx.FindDocsByPattern("*ab*ab*").GetIDs()
	if want := []uint{0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByPattern(*ab*ab*) = %v, want %v", got, want)
	}
}

func TestAnchorRequiresWordBoundary(t *testing.T) {
	idx := openTestIndex(t)
	mustAdd(t, idx, 0, "worldwide only")
	mustAdd(t, idx, 1, "xworld worldwide")

	// doc 0: "worl" occurs at position 0, satisfying the start anchor.
	got := idx.FindDocsByPattern("worl*").GetIDs()
	want := []uint{0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByPattern(worl*) = %v, want %v", got, want)
	}
}
