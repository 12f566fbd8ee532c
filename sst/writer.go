// Package sst:  Overview
//
//	An SSTable persists a memtable flush (or a compaction merge) as an
//	immutable, sorted run of fixed-width records. Unlike a block-indexed
//	SST, there is no data-block/index-block/footer layering here: every
//	record is the same byte width, so external-memory binary search over
//	the raw file replaces a sparse index (see leftSearch and rightSearch
//	in lsm/search.go).
//	---
//
//	File Format
//
//	   1 │+------------------------------------------------------------------+
//	   2 │|                      SST FILE LAYOUT (flat)                      |
//	   3 │+------------------------------------------------------------------+
//	   4 │|  Record 0 : | Key (KeySize bytes) | Value (ValueSize bytes) |    |
//	   5 │|  Record 1 : ...                                                  |
//	   6 │|  ...                                                             |
//	   7 │|  Record N-1                                                      |
//	   8 │+------------------------------------------------------------------+
//
//	Records are strictly key-sorted and key-unique. There
//	is no length prefix, no per-record type tag, and no checksum: the
//	entry width is fixed at construction time and the file size alone
//	determines the record count (size / entry_size).
package sst

import (
	"fmt"
	"io"
	"os"
)

// Entry is a raw (key, value) byte pair of fixed total width.
type Entry struct {
	Key   []byte
	Value []byte
}

// Size returns the raw byte width of a single record.
func (e Entry) Size() int { return len(e.Key) + len(e.Value) }

// WriteAll writes entries, which must already be sorted and deduplicated
// by key, to path as a contiguous run of fixed-width records.
func WriteAll(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sst: create %s: %w", path, err)
	}
	defer f.Close()

	for _, e := range entries {
		if _, err := f.Write(e.Key); err != nil {
			return fmt.Errorf("sst: write key: %w", err)
		}
		if _, err := f.Write(e.Value); err != nil {
			return fmt.Errorf("sst: write value: %w", err)
		}
	}
	return f.Sync()
}

// Reader is a random-access view over a flat SSTable file, used for
// external-memory binary search and sequential range scans.
type Reader struct {
	f          *os.File
	keySize    int
	valueSize  int
	entrySize  int
	numEntries int64
}

// Open opens the SSTable at path for reading, given the fixed key and
// value widths the LSM tree was instantiated with.
func Open(path string, keySize, valueSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sst: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sst: stat %s: %w", path, err)
	}

	entrySize := keySize + valueSize
	return &Reader{
		f:          f,
		keySize:    keySize,
		valueSize:  valueSize,
		entrySize:  entrySize,
		numEntries: info.Size() / int64(entrySize),
	}, nil
}

// NumEntries reports the number of fixed-width records in the file.
func (r *Reader) NumEntries() int64 { return r.numEntries }

// ReadAt reads the record at the given index.
func (r *Reader) ReadAt(i int64) (Entry, error) {
	buf := make([]byte, r.entrySize)
	if _, err := r.f.ReadAt(buf, i*int64(r.entrySize)); err != nil {
		return Entry{}, fmt.Errorf("sst: read record %d: %w", i, err)
	}
	return Entry{Key: buf[:r.keySize], Value: buf[r.keySize:]}, nil
}

// ScanRange sequentially reads every record in [lo, hi] inclusive.
func (r *Reader) ScanRange(lo, hi int64) ([]Entry, error) {
	if lo > hi {
		return nil, nil
	}
	n := hi - lo + 1
	buf := make([]byte, n*int64(r.entrySize))
	if _, err := r.f.ReadAt(buf, lo*int64(r.entrySize)); err != nil && err != io.EOF {
		return nil, fmt.Errorf("sst: scan range [%d,%d]: %w", lo, hi, err)
	}
	out := make([]Entry, n)
	for i := int64(0); i < n; i++ {
		rec := buf[i*int64(r.entrySize):]
		out[i] = Entry{Key: rec[:r.keySize], Value: rec[r.keySize : r.keySize+r.valueSize]}
	}
	return out, nil
}

// Close closes the underlying file handle.
func (r *Reader) Close() error { return r.f.Close() }
