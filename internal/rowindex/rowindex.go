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

// Package rowindex keeps a cheap, approximate per-dataset count of
// distinct rows touched since open, using a Roaring bitmap of hashed
// row keys. It never gates correctness: it is consulted only by
// Database.Stats for an operational estimate, the way Erigon keeps
// Roaring-encoded shard indices purely to cheapen later lookups
// without changing what a read returns.
package rowindex

import (
	"hash/fnv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Tracker records which rows of which datasets have been written to.
type Tracker struct {
	mu      sync.Mutex
	bitmaps map[string]*roaring.Bitmap
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{bitmaps: make(map[string]*roaring.Bitmap)}
}

// Touch records that row was written to (or deleted from) dataset.
func (t *Tracker) Touch(dataset, row string) {
	h := hashRow(row)
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bitmaps[dataset]
	if !ok {
		b = roaring.New()
		t.bitmaps[dataset] = b
	}
	b.Add(h)
}

// ApproximateRowCount returns the number of distinct rows Touch has
// recorded for dataset since the tracker was created. It is a lower
// bound only where two distinct row keys collide under the 32-bit
// hash; in practice this module's workloads keep the collision rate
// negligible.
func (t *Tracker) ApproximateRowCount(dataset string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bitmaps[dataset]
	if !ok {
		return 0
	}
	return uint64(b.GetCardinality())
}

func hashRow(row string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(row))
	return h.Sum32()
}
