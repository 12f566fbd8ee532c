package lsm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/pashandor789/search/bloomfilter"
)

// metaMagic and metaVersion identify the meta file format. A prior
// write-ahead log in this codebase framed each record with a CRC
// computed over a length-prefixed payload; there is exactly one record
// here, so the whole file is one CRC-checked frame instead:
//
//	| MAGIC (4) | VERSION (4) | RATIO (8) | SST_COUNT (8) | [ssmeta...] | CRC32 (4) |
//
// This replaces a raw in-memory dump of a bloom filter and an inline
// vector header with a self-describing format: checksum the payload,
// store it as a trailer, verify on read.
const (
	metaMagic   = uint32(0x4C534D31) // "LSM1"
	metaVersion = uint32(1)
)

var errCorruptMeta = fmt.Errorf("lsm: corrupt meta file")

// sstMeta is the persisted {size, bloom} pair for one SSTable, plus the
// bloom filter's own header (m, h) folded into MarshalBinary's output.
type sstMeta struct {
	size  int
	bloom *bloomfilter.Filter
}

func writeMeta(path string, ratio int, ssts []sstMeta) error {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, metaMagic)
	_ = binary.Write(&buf, binary.LittleEndian, metaVersion)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(ratio))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(ssts)))

	for _, m := range ssts {
		_ = binary.Write(&buf, binary.LittleEndian, uint64(m.size))
		bloomBytes, err := m.bloom.MarshalBinary()
		if err != nil {
			return fmt.Errorf("lsm: marshal bloom filter: %w", err)
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint64(len(bloomBytes)))
		buf.Write(bloomBytes)
	}

	payload := buf.Bytes()
	checksum := crc32.ChecksumIEEE(payload)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lsm: create meta %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(payload); err != nil {
		return fmt.Errorf("lsm: write meta: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("lsm: write meta checksum: %w", err)
	}
	return f.Sync()
}

func readMeta(path string) (int, []sstMeta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	if len(raw) < 4+4+8+8+4 {
		return 0, nil, errCorruptMeta
	}

	payload, trailer := raw[:len(raw)-4], raw[len(raw)-4:]
	if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(trailer) {
		return 0, nil, errCorruptMeta
	}

	r := bytes.NewReader(payload)
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil || magic != metaMagic {
		return 0, nil, errCorruptMeta
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil || version != metaVersion {
		return 0, nil, errCorruptMeta
	}

	var ratio64, count64 uint64
	if err := binary.Read(r, binary.LittleEndian, &ratio64); err != nil {
		return 0, nil, errCorruptMeta
	}
	if err := binary.Read(r, binary.LittleEndian, &count64); err != nil {
		return 0, nil, errCorruptMeta
	}

	ssts := make([]sstMeta, count64)
	for i := range ssts {
		var size64, bloomLen64 uint64
		if err := binary.Read(r, binary.LittleEndian, &size64); err != nil {
			return 0, nil, errCorruptMeta
		}
		if err := binary.Read(r, binary.LittleEndian, &bloomLen64); err != nil {
			return 0, nil, errCorruptMeta
		}
		bloomBytes := make([]byte, bloomLen64)
		if _, err := io.ReadFull(r, bloomBytes); err != nil {
			return 0, nil, errCorruptMeta
		}
		filter := &bloomfilter.Filter{}
		if err := filter.UnmarshalBinary(bloomBytes); err != nil {
			return 0, nil, fmt.Errorf("lsm: unmarshal bloom filter %d: %w", i, err)
		}
		ssts[i] = sstMeta{size: int(size64), bloom: filter}
	}

	return int(ratio64), ssts, nil
}
