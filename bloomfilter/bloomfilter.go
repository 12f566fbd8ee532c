// Package bloomfilter implements a probabilistic set-membership filter
// with no false negatives, for accelerating SSTable point lookups.
package bloomfilter

import (
	"hash/fnv"

	"github.com/bits-and-blooms/bitset"
)

// goldenRatio32 is the odd constant used to spread successive probes
// across the bit array: hash(x) + i·goldenRatio32 (mod m).
const goldenRatio32 = 0x9E3779B9

// DefaultHashCount is used by callers that don't size h themselves.
const DefaultHashCount = 3

// Filter is an m-bit array probed at h independent indices per key.
type Filter struct {
	bits *bitset.BitSet
	m    uint
	h    uint
}

// New returns a Filter with bit-array size m and h hash probes.
func New(m, h uint) *Filter {
	if m == 0 {
		m = 1
	}
	if h == 0 {
		h = DefaultHashCount
	}
	return &Filter{bits: bitset.New(m), m: m, h: h}
}

// M reports the bit-array size.
func (f *Filter) M() uint { return f.m }

// H reports the hash probe count.
func (f *Filter) H() uint { return f.h }

func (f *Filter) index(base uint64, i uint) uint {
	return uint((base + uint64(i)*goldenRatio32) % uint64(f.m))
}

func baseHash(x []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(x)
	return h.Sum64()
}

// Count sets the h probe bits for x.
func (f *Filter) Count(x []byte) {
	base := baseHash(x)
	for i := uint(0); i < f.h; i++ {
		f.bits.Set(f.index(base, i))
	}
}

// Probe reports whether x might be in the set. A false result is always
// correct (no false negatives); a true result may be a false positive.
func (f *Filter) Probe(x []byte) bool {
	base := baseHash(x)
	for i := uint(0); i < f.h; i++ {
		if !f.bits.Test(f.index(base, i)) {
			return false
		}
	}
	return true
}

// Reset clears every bit, as if newly constructed.
func (f *Filter) Reset() {
	f.bits.ClearAll()
}

// MarshalBinary renders the filter as a contiguous byte region: a fixed
// header of {m, h} followed by the bit array's own binary encoding. This
// is written verbatim into the LSM meta blob (see lsm/meta.go).
func (f *Filter) MarshalBinary() ([]byte, error) {
	bits, err := f.bits.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 16+len(bits))
	out = appendUint64(out, uint64(f.m))
	out = appendUint64(out, uint64(f.h))
	out = append(out, bits...)
	return out, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (f *Filter) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return errShortFilter
	}
	f.m = uint(readUint64(data[0:8]))
	f.h = uint(readUint64(data[8:16]))
	f.bits = &bitset.BitSet{}
	return f.bits.UnmarshalBinary(data[16:])
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	for i := 0; i < 8; i++ {
		tmp[i] = byte(v >> (8 * uint(i)))
	}
	return append(b, tmp[:]...)
}

func readUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}
