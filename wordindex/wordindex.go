// Package wordindex maps processed word tokens to document-id sets via
// an LSM tree, and evaluates Boolean queries against those postings.
package wordindex

import (
	"github.com/pashandor789/search/boolexpr"
	"github.com/pashandor789/search/docset"
	"github.com/pashandor789/search/key"
	"github.com/pashandor789/search/kv"
	"github.com/pashandor789/search/lsm"
	"github.com/pashandor789/search/textproc"
)

// KeyCodec and ValCodec are the fixed-width codecs every word-keyed LSM
// instance in this repo shares, since the key is always a 128-byte Word
// and the value is always a docset.Set.
var KeyCodec = kv.Codec[key.Word]{
	Size:   key.Size,
	Encode: func(w key.Word) []byte { return w.Bytes() },
	Decode: func(b []byte) key.Word { var w key.Word; copy(w[:], b); return w },
}

var ValCodec = kv.Codec[docset.Set]{
	Size: docset.EncodedSize,
	Encode: func(s docset.Set) []byte {
		b, err := s.MarshalBinary()
		if err != nil {
			panic(err)
		}
		if len(b) < docset.EncodedSize {
			padded := make([]byte, docset.EncodedSize)
			copy(padded, b)
			b = padded
		}
		return b[:docset.EncodedSize]
	},
	Decode: func(b []byte) docset.Set {
		var s docset.Set
		if err := s.UnmarshalBinary(b); err != nil {
			panic(err)
		}
		return s
	},
}

// Document is the ingestion unit: an id and its raw text.
type Document struct {
	ID   uint
	Text string
}

// Index is the word-level inverted index: tokens resolve to doc-id sets
// through a dedicated LSM tree.
type Index struct {
	tree *lsm.Tree[key.Word, docset.Set]
}

// Open opens (or creates) the word index's LSM tree at root.
func Open(root string) (*Index, error) {
	tree, err := lsm.Open[key.Word, docset.Set](root, KeyCodec, ValCodec)
	if err != nil {
		return nil, err
	}
	return &Index{tree: tree}, nil
}

// AddDocument indexes doc's tokens, produced by the default text
// processing pipeline (stop words removed, stemming on, no k-grams).
// Each token is a read-modify-write against the LSM: N inserts per
// document, not an in-place update — last-writer-wins in the LSM makes
// this correct since every insert for a token carries the full
// accumulated doc-set so far.
func (idx *Index) AddDocument(doc Document) error {
	for _, token := range textproc.Process(doc.Text, textproc.Default) {
		if err := idx.addToken(token, doc.ID); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) addToken(token string, docID uint) error {
	k := key.New(token)
	set, ok := idx.tree.ReadPoint(k)
	if !ok {
		set = docset.New()
	}
	set.Add(docID)
	return idx.tree.Insert(k, set)
}

// FindDocsByWord normalises query the same way ingestion does, takes the
// first resulting token, and returns its posting set (empty if absent).
func (idx *Index) FindDocsByWord(query string) docset.Set {
	tokens := textproc.Process(query, textproc.Default)
	if len(tokens) == 0 {
		return docset.New()
	}
	set, ok := idx.tree.ReadPoint(key.New(tokens[0]))
	if !ok {
		return docset.New()
	}
	return set
}

// FindDocsByExpr evaluates ast against this index's FindDocsByWord.
func (idx *Index) FindDocsByExpr(ast boolexpr.Node) docset.Set {
	ctx := boolexpr.ContextFunc(idx.FindDocsByWord)
	return ast.Evaluate(ctx)
}
