// Package intervalindex is the bit-sliced index for interval
// containment queries over 32-bit integer ranges (timestamps). Each bit
// of a document's begin/end value gets its own doc-id column; a range
// query decomposes into a small number of disjoint column-combination
// predicates via a segment-tree walk over [0, 2^32).
package intervalindex

import "github.com/pashandor789/search/docset"

const bitWidth = 32

// maxUint32 is the closed upper bound of the index's domain, 2^32 - 1.
const maxUint32 = 1<<32 - 1

// Index stores per-document (begin, end) pairs via two bit-sliced
// column arrays.
type Index struct {
	begin     [bitWidth]docset.Set
	end       [bitWidth]docset.Set
	addedDocs docset.Set
}

// New returns an empty Index.
func New() *Index {
	idx := &Index{}
	for i := range idx.begin {
		idx.begin[i] = docset.New()
		idx.end[i] = docset.New()
	}
	idx.addedDocs = docset.New()
	return idx
}

// AddDocument records that doc's interval is [begin, end].
func (idx *Index) AddDocument(doc uint, begin, end uint32) {
	idx.addedDocs.Add(doc)
	setColumns(idx.begin[:], begin, doc)
	setColumns(idx.end[:], end, doc)
}

// setColumns marks doc in slice[i] for every bit i of value that is set,
// matching the source's bit (31-i) at slot i (MSB-first), which must
// agree with the recursion's path orientation below.
func setColumns(slice []docset.Set, value uint32, doc uint) {
	for i := 0; i < bitWidth; i++ {
		if value&(1<<uint(bitWidth-1-i)) != 0 {
			slice[i].Add(doc)
		}
	}
}

// predicate is a path through the segment tree: one boolean per bit,
// msb-first, where true means "bit set" (path went right).
type predicate []bool

// getPredicates decomposes [reql, reqr] (intersected with [cl, cr])
// into the mutually disjoint bit-paths that exactly cover it, walking a
// perfect binary segment tree over [0, 2^32).
func getPredicates(cl, cr, reql, reqr uint64, path predicate) []predicate {
	if reql > reqr || reql > cr || reqr < cl {
		return nil
	}
	if cl == reql && cr == reqr {
		out := make(predicate, len(path))
		copy(out, path)
		return []predicate{out}
	}

	mid := cl + (cr-cl)/2

	var preds []predicate
	leftR := reqr
	if leftR > mid {
		leftR = mid
	}
	if reql <= leftR {
		preds = append(preds, getPredicates(cl, mid, reql, leftR, append(path, false))...)
	}

	rightL := reql
	if rightL < mid+1 {
		rightL = mid + 1
	}
	if rightL <= reqr {
		preds = append(preds, getPredicates(mid+1, cr, rightL, reqr, append(path, true))...)
	}

	return preds
}

// GetPredicates decomposes [lo, hi] over the index's full [0, 2^32 - 1]
// domain.
func GetPredicates(lo, hi uint32) []predicate {
	return getPredicates(0, maxUint32, uint64(lo), uint64(hi), nil)
}

// evaluate applies a single predicate against a bit-sliced column array:
// starting from addedDocs, AND in columns[i] where p[i] is true, else
// AND in its complement.
func evaluate(columns []docset.Set, addedDocs docset.Set, p predicate) docset.Set {
	result := addedDocs
	for i, bit := range p {
		if bit {
			result = result.And(columns[i])
		} else {
			result = result.And(columns[i].Not())
		}
	}
	return result
}

// rangeMatch returns the documents whose value in columns falls in [lo, hi].
func (idx *Index) rangeMatch(columns []docset.Set, lo, hi uint32) docset.Set {
	result := docset.New()
	for _, p := range GetPredicates(lo, hi) {
		result = result.Or(evaluate(columns, idx.addedDocs, p))
	}
	return result
}

// FindDocsByInterval returns documents whose stored interval [b, e]
// satisfies b <= hi AND e >= lo.
func (idx *Index) FindDocsByInterval(lo, hi uint32) docset.Set {
	beginMatch := idx.rangeMatch(idx.begin[:], 0, hi)
	endMatch := idx.rangeMatch(idx.end[:], lo, maxUint32)
	return beginMatch.And(endMatch)
}

// FindDocsByTimePoint is the degenerate single-point interval query.
func (idx *Index) FindDocsByTimePoint(t uint32) docset.Set {
	return idx.FindDocsByInterval(t, t)
}
