// Package docset implements a fixed-capacity document-id set with the
// boolean algebra the word, pattern, and interval indices all evaluate
// queries over.
package docset

import "github.com/bits-and-blooms/bitset"

// MaxDocCount is the compile-time capacity of a Set: document ids must
// satisfy 0 <= id < MaxDocCount.
const MaxDocCount = 128

// EncodedSize is the fixed byte width of MarshalBinary's output for a
// Set of MaxDocCount bits — the LSM treats doc-id sets as a plain-old-data
// value of this constant size.
const EncodedSize = 8 + 8*((MaxDocCount+63)/64)

// Set is an MaxDocCount-bit document-id bitset.
type Set struct {
	bits *bitset.BitSet
}

// New returns an empty Set.
func New() Set {
	return Set{bits: bitset.New(MaxDocCount)}
}

func (s Set) ensure() *bitset.BitSet {
	if s.bits == nil {
		return bitset.New(MaxDocCount)
	}
	return s.bits
}

// Add marks id as present. It panics if id >= MaxDocCount: a precondition
// violation, not a recoverable error.
func (s *Set) Add(id uint) {
	if id >= MaxDocCount {
		panic("docset: id exceeds MaxDocCount")
	}
	if s.bits == nil {
		s.bits = bitset.New(MaxDocCount)
	}
	s.bits.Set(id)
}

// HasDoc reports whether id is present.
func (s Set) HasDoc(id uint) bool {
	if id >= MaxDocCount || s.bits == nil {
		return false
	}
	return s.bits.Test(id)
}

// GetIDs returns the present ids in ascending order.
func (s Set) GetIDs() []uint {
	if s.bits == nil {
		return nil
	}
	ids := make([]uint, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		ids = append(ids, i)
	}
	return ids
}

// And returns s ∩ other, leaving both operands unmodified.
func (s Set) And(other Set) Set {
	return Set{bits: s.ensure().Intersection(other.ensure())}
}

// Or returns s ∪ other, leaving both operands unmodified.
func (s Set) Or(other Set) Set {
	return Set{bits: s.ensure().Union(other.ensure())}
}

// Not returns the complement of s over [0, MaxDocCount).
func (s Set) Not() Set {
	return Set{bits: s.ensure().Complement()}
}

// SetAll marks every id in [0, MaxDocCount) present — the identity for
// boolean AND (an empty AND is this full universe of ids).
func (s *Set) SetAll() {
	s.bits = bitset.New(MaxDocCount)
	s.bits.FlipRange(0, MaxDocCount)
}

// Equal reports whether s and other contain exactly the same ids.
func (s Set) Equal(other Set) bool {
	return s.ensure().Equal(other.ensure())
}

// MarshalBinary encodes the set's underlying bit array verbatim — used
// when a Set is persisted as a fixed-width LSM value.
func (s Set) MarshalBinary() ([]byte, error) {
	return s.ensure().MarshalBinary()
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (s *Set) UnmarshalBinary(data []byte) error {
	s.bits = &bitset.BitSet{}
	return s.bits.UnmarshalBinary(data)
}
