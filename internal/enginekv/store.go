// Copyright 2024 The Wcstore Authors
// This file is part of Wcstore.
//
// Wcstore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Wcstore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Wcstore. If not, see <http://www.gnu.org/licenses/>.

// Package enginekv declares the narrow capability set a wide-column
// store needs from an embedded ordered key-value engine, and ships two
// implementations of it (mdbx and bbolt). No code outside this package
// and its two backends knows which engine is actually in use.
package enginekv

import "errors"

// ErrDatasetNotFound is returned by Store.Iterator and Store.Stats (and by
// the bbolt backend's Batch.Commit) when asked about a column family that
// does not exist in the store.
var ErrDatasetNotFound = errors.New("enginekv: dataset not found")

// Store is an open handle to the embedded engine with its declared set of
// column families ("datasets" at the wide-column layer). Implementations
// must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Datasets returns the names of every column family that was
	// created or found at Open time, including the implicit default.
	Datasets() []string

	// Iterator opens a forward, ordered iterator over dataset, starting
	// at the first key >= seek (or the first key in the family if seek
	// is nil). Callers must Close the iterator.
	Iterator(dataset string, seek []byte) (Iterator, error)

	// NewBatch returns an empty atomic write batch. Puts and deletes
	// queued on it are not visible to readers until Commit succeeds.
	NewBatch() Batch

	// Stats reports approximate size information about dataset.
	Stats(dataset string) (Stats, error)

	// DropDataset deletes every key in dataset. Both backends leave
	// the dataset itself in place, empty, so later Iterator and Stats
	// calls for the same name still succeed.
	DropDataset(dataset string) error

	// Close flushes and releases the engine handle. It is idempotent;
	// calling it twice returns nil the second time.
	Close() error
}

// Stats is the engine-reported size/shape of a single dataset.
type Stats struct {
	// ApproximateKeys is a best-effort, possibly stale, key count.
	ApproximateKeys uint64
	// SizeBytes is the approximate on-disk footprint of the dataset.
	SizeBytes uint64
}

// Iterator walks a dataset in ascending lexicographic key order,
// starting from the seek key supplied to Store.Iterator.
type Iterator interface {
	// Next advances the iterator and reports whether a key is
	// available. It must be called once before the first Key/Value.
	Next() bool
	// Key returns the current key. The returned slice is only valid
	// until the next call to Next or Close.
	Key() []byte
	// Value returns the current value, subject to the same lifetime
	// rules as Key.
	Value() []byte
	// Err returns the first error encountered during iteration, if any.
	Err() error
	// Close releases the iterator's resources. Safe to call multiple
	// times.
	Close() error
}

// Batch accumulates mutations against one or more datasets for atomic
// commit. A Batch is single-use: create a new one per logical write.
type Batch interface {
	Put(dataset string, key, value []byte)
	Delete(dataset string, key []byte)
	// DeleteRange deletes every key in [start, end) of dataset. end is
	// exclusive; callers obtain it via PrefixSuccessor when they mean
	// "every key sharing this prefix".
	DeleteRange(dataset string, start, end []byte)
	// Commit applies every queued mutation atomically. On error, no
	// mutation in the batch is visible to subsequent reads.
	Commit() error
}

// PrefixSuccessor returns the lexicographically smallest byte string
// that is strictly greater than every string sharing prefix, or nil if
// prefix is empty or consists entirely of 0xFF bytes (no finite
// successor exists; callers should fall back to a "no upper bound"
// range in that case).
func PrefixSuccessor(prefix []byte) []byte {
	succ := make([]byte, len(prefix))
	copy(succ, prefix)
	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] != 0xFF {
			succ[i]++
			return succ[:i+1]
		}
	}
	return nil
}
