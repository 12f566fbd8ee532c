package wordindex

import (
	"reflect"
	"testing"

	"github.com/pashandor789/search/boolexpr"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return idx
}

// TestFiveDocumentCorpus exercises the documented word-index scenario:
// five short documents about Russia, Europe, and a Chinese idiom, word
// lookups (case-insensitive) and a couple of AND/OR expressions.
func TestFiveDocumentCorpus(t *testing.T) {
	idx := openTestIndex(t)

	docs := []Document{
		{ID: 0, Text: "Podnebesny russia culture"},
		{ID: 1, Text: "Putin russia europe politics"},
		{ID: 2, Text: "russia economy"},
		{ID: 3, Text: "europe russia trade"},
		{ID: 4, Text: "europe travel"},
	}
	for _, d := range docs {
		if err := idx.AddDocument(d); err != nil {
			t.Fatalf("AddDocument(%d): %v", d.ID, err)
		}
	}

	cases := []struct {
		query string
		want  []uint
	}{
		{"Putin", []uint{1}},
		{"eUroPe", []uint{1, 3, 4}},
		{"Podnebesny", []uint{0}},
		{"russia", []uint{0, 1, 2, 3}},
	}
	for _, c := range cases {
		got := idx.FindDocsByWord(c.query).GetIDs()
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("FindDocsByWord(%q) = %v, want %v", c.query, got, c.want)
		}
	}

	orExpr := boolexpr.NewOr("Podnebesny", "eUroPe")
	if got, want := idx.FindDocsByExpr(orExpr).GetIDs(), []uint{0, 1, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("FindDocsByExpr(Or) = %v, want %v", got, want)
	}

	andExpr := boolexpr.NewAnd("russia", boolexpr.NewOr("Putin", "Podnebesny"))
	if got, want := idx.FindDocsByExpr(andExpr).GetIDs(), []uint{0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("FindDocsByExpr(And) = %v, want %v", got, want)
	}
}

func TestFindDocsByWordMissing(t *testing.T) {
	idx := openTestIndex(t)
	if got := idx.FindDocsByWord("nonexistent").GetIDs(); len(got) != 0 {
		t.Fatalf("expected empty result for a never-indexed word, got %v", got)
	}
}

func TestAddDocumentIsReadModifyWritePerToken(t *testing.T) {
	idx := openTestIndex(t)
	if err := idx.AddDocument(Document{ID: 0, Text: "same same"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddDocument(Document{ID: 1, Text: "same"}); err != nil {
		t.Fatal(err)
	}

	got := idx.FindDocsByWord("same").GetIDs()
	want := []uint{0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindDocsByWord(same) = %v, want %v", got, want)
	}
}
