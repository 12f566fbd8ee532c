// Package engine is the composition root: it wires the word, pattern,
// and interval inverted indices (the word and pattern indices each on
// its own LSM tree, the interval index in memory) behind a single
// ingestion and query surface, in place of a generic byte-oriented KV
// façade.
package engine

import (
	"fmt"
	"path/filepath"

	"github.com/pashandor789/search/boolexpr"
	"github.com/pashandor789/search/docset"
	"github.com/pashandor789/search/intervalindex"
	"github.com/pashandor789/search/patternindex"
	"github.com/pashandor789/search/wordindex"
)

// Document is the ingestion unit across all three index layers.
type Document struct {
	ID    uint
	Text  string
	Begin uint32
	End   uint32
}

// Engine owns the three index layers: the word and pattern indices are
// LSM-backed, rooted under separate subdirectories of a single data
// directory; the interval index is held in memory only.
type Engine struct {
	words     *wordindex.Index
	patterns  *patternindex.Index
	intervals *intervalindex.Index
}

// Open opens (or creates) the word and pattern indices under root and
// starts an empty in-memory interval index.
func Open(root string) (*Engine, error) {
	words, err := wordindex.Open(filepath.Join(root, "words"))
	if err != nil {
		return nil, fmt.Errorf("engine: open word index: %w", err)
	}
	patterns, err := patternindex.Open(filepath.Join(root, "patterns"))
	if err != nil {
		return nil, fmt.Errorf("engine: open pattern index: %w", err)
	}
	return &Engine{
		words:     words,
		patterns:  patterns,
		intervals: intervalindex.New(),
	}, nil
}

// AddDocument ingests doc into every index layer.
func (e *Engine) AddDocument(doc Document) error {
	if err := e.words.AddDocument(wordindex.Document{ID: doc.ID, Text: doc.Text}); err != nil {
		return fmt.Errorf("engine: word index: %w", err)
	}
	if err := e.patterns.AddDocument(patternindex.Document{ID: doc.ID, Text: doc.Text}); err != nil {
		return fmt.Errorf("engine: pattern index: %w", err)
	}
	e.intervals.AddDocument(doc.ID, doc.Begin, doc.End)
	return nil
}

// FindDocsByWord delegates to the word index.
func (e *Engine) FindDocsByWord(word string) docset.Set { return e.words.FindDocsByWord(word) }

// FindDocsByExpr delegates to the word index.
func (e *Engine) FindDocsByExpr(ast boolexpr.Node) docset.Set { return e.words.FindDocsByExpr(ast) }

// FindDocsByPattern delegates to the pattern index.
func (e *Engine) FindDocsByPattern(pattern string) docset.Set {
	return e.patterns.FindDocsByPattern(pattern)
}

// FindDocsByPrefix delegates to the pattern index.
func (e *Engine) FindDocsByPrefix(prefix string) docset.Set {
	return e.patterns.FindDocsByPrefix(prefix)
}

// FindDocsByInterval delegates to the interval index.
func (e *Engine) FindDocsByInterval(lo, hi uint32) docset.Set {
	return e.intervals.FindDocsByInterval(lo, hi)
}

// FindDocsByTimePoint delegates to the interval index.
func (e *Engine) FindDocsByTimePoint(t uint32) docset.Set {
	return e.intervals.FindDocsByTimePoint(t)
}
