// Package patternindex is the k-gram (prefix) accelerated glob/prefix
// matcher: candidates are found through the same LSM-backed posting
// structure the word index uses, then verified against stored document
// text.
package patternindex

import (
	"strings"

	"github.com/pashandor789/search/docset"
	"github.com/pashandor789/search/key"
	"github.com/pashandor789/search/lsm"
	"github.com/pashandor789/search/textproc"
	"github.com/pashandor789/search/wordindex"
)

// Document is the ingestion unit, identical in shape to wordindex.Document.
type Document struct {
	ID   uint
	Text string
}

// Index is the pattern/prefix inverted index. docsStorage is the
// in-memory document-text store this design requires to exist, without
// requiring its serialisation.
type Index struct {
	tree        *lsm.Tree[key.Word, docset.Set]
	docsStorage []string
}

// Open opens (or creates) the pattern index's LSM tree at root.
func Open(root string) (*Index, error) {
	tree, err := lsm.Open[key.Word, docset.Set](root, wordindex.KeyCodec, wordindex.ValCodec)
	if err != nil {
		return nil, err
	}
	return &Index{tree: tree}, nil
}

// AddDocument indexes every k-gram (here: prefix) of every token, and
// stores the raw text in docsStorage at index doc.ID, growing the slice
// as needed.
func (idx *Index) AddDocument(doc Document) error {
	for len(idx.docsStorage) <= int(doc.ID) {
		idx.docsStorage = append(idx.docsStorage, "")
	}
	idx.docsStorage[doc.ID] = doc.Text

	for _, gram := range textproc.Process(doc.Text, textproc.KGrams) {
		if err := idx.addToken(gram, doc.ID); err != nil {
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

// findDocsBySegment looks a single literal segment up against the
// k-gram index — the query-time literal lookup path. The segment is
// lowercased and stripped of punctuation, with no stemming or stop-word
// removal; only its first whitespace-separated token is looked up.
func (idx *Index) findDocsBySegment(segment string) docset.Set {
	tokens := textproc.Process(segment, textproc.Exact)
	if len(tokens) == 0 {
		return docset.New()
	}
	set, ok := idx.tree.ReadPoint(key.New(tokens[0]))
	if !ok {
		return docset.New()
	}
	return set
}

// segments splits pattern on '*' into its ordered literal pieces,
// discarding the empty pieces a leading/trailing/doubled '*' produces.
func segments(pattern string) []string {
	parts := strings.Split(pattern, "*")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FindDocsByPattern splits pattern on '*' into ordered literal segments,
// finds candidates whose k-gram posting sets witness every segment, then
// verifies each candidate's stored text against an ordered,
// non-overlapping, anchor-respecting match.
func (idx *Index) FindDocsByPattern(pattern string) docset.Set {
	segs := segments(pattern)
	if len(segs) == 0 {
		return docset.New()
	}

	candidates := docset.New()
	candidates.SetAll()
	for _, s := range segs {
		candidates = candidates.And(idx.findDocsBySegment(s))
	}

	anchoredStart := !strings.HasPrefix(pattern, "*")
	anchoredEnd := !strings.HasSuffix(pattern, "*")

	result := docset.New()
	for _, id := range candidates.GetIDs() {
		if int(id) >= len(idx.docsStorage) {
			continue
		}
		if verify(idx.docsStorage[id], segs, anchoredStart, anchoredEnd) {
			result.Add(id)
		}
	}
	return result
}

// verify walks segs through text in order, remembering each match's
// start position directly rather than re-searching with a bare find,
// which can otherwise misidentify which occurrence matched when a
// segment repeats.
func verify(text string, segs []string, anchoredStart, anchoredEnd bool) bool {
	cursor := 0
	var lastEnd int
	found := false

	for i, seg := range segs {
		searchFrom := cursor
		if i > 0 && segs[i-1] == seg {
			searchFrom++
		}
		if searchFrom > len(text) {
			return false
		}

		pos := strings.Index(text[searchFrom:], seg)
		if pos < 0 {
			return false
		}
		pos += searchFrom

		if i == 0 && anchoredStart && pos != 0 && text[pos-1] != ' ' {
			return false
		}

		cursor = pos + len(seg)
		lastEnd = cursor
		found = true
	}

	if found && anchoredEnd {
		if lastEnd < len(text) && text[lastEnd] != ' ' {
			return false
		}
	}
	return true
}

// FindDocsByPrefix is FindDocsByPattern(prefix + "*").
func (idx *Index) FindDocsByPrefix(prefix string) docset.Set {
	return idx.FindDocsByPattern(prefix + "*")
}
