package boolexpr

import (
	"reflect"
	"testing"

	"github.com/pashandor789/search/docset"
)

func setOf(ids ...uint) docset.Set {
	s := docset.New()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func testContext() Context {
	postings := map[string]docset.Set{
		"russia": setOf(0, 1, 2, 3),
		"europe": setOf(1, 3, 4),
		"putin":  setOf(1),
	}
	return ContextFunc(func(word string) docset.Set {
		return postings[word]
	})
}

func TestLiteralResolves(t *testing.T) {
	got := Lit("russia").Evaluate(testContext()).GetIDs()
	want := []uint{0, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Literal(russia) = %v, want %v", got, want)
	}
}

func TestAndDistributesOverAllChildren(t *testing.T) {
	expr := NewAnd("russia", NewOr("putin", "europe"))
	got := expr.Evaluate(testContext()).GetIDs()
	want := []uint{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("And(russia, Or(putin, europe)) = %v, want %v", got, want)
	}
}

func TestEmptyAndIsUniverse(t *testing.T) {
	universe := docset.New()
	universe.SetAll()

	expr := NewAnd()
	got := expr.Evaluate(testContext())
	if !got.Equal(universe) {
		t.Fatal("empty And should evaluate to the universe")
	}
}

func TestEmptyOrIsEmpty(t *testing.T) {
	expr := NewOr()
	got := expr.Evaluate(testContext())
	if len(got.GetIDs()) != 0 {
		t.Fatalf("empty Or should evaluate to the empty set, got %v", got.GetIDs())
	}
}

func TestNilChildrenAreSkipped(t *testing.T) {
	expr := NewAnd("russia", nil)
	got := expr.Evaluate(testContext()).GetIDs()
	want := []uint{0, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("And(russia, nil) = %v, want %v", got, want)
	}
}
