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

package enginekv

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// boltStore is the pure-Go Store backend: one bbolt file, one top-level
// bucket per dataset. bbolt's B+tree buckets give us exactly the ordered
// iteration and atomic-batch-commit contract of §6 without cgo.
type boltStore struct {
	db       *bolt.DB
	datasets []string
}

// OpenBolt opens (creating if necessary) a bbolt-backed store at path
// with one bucket per name in datasets.
func OpenBolt(path string, datasets []string, timeout time.Duration) (Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "enginekv: open bbolt store")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range datasets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enginekv: create declared datasets")
	}
	return &boltStore{db: db, datasets: append([]string(nil), datasets...)}, nil
}

func (s *boltStore) Datasets() []string { return append([]string(nil), s.datasets...) }

func (s *boltStore) Iterator(dataset string, seek []byte) (Iterator, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, errors.Wrap(err, "enginekv: begin read tx")
	}
	b := tx.Bucket([]byte(dataset))
	if b == nil {
		_ = tx.Rollback()
		return nil, ErrDatasetNotFound
	}
	it := &boltIterator{tx: tx, cursor: b.Cursor(), seek: seek, first: true}
	return it, nil
}

func (s *boltStore) NewBatch() Batch {
	return &boltBatch{db: s.db}
}

func (s *boltStore) Stats(dataset string) (Stats, error) {
	var st Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(dataset))
		if b == nil {
			return ErrDatasetNotFound
		}
		bstats := b.Stats()
		st.ApproximateKeys = uint64(bstats.KeyN)
		st.SizeBytes = uint64(bstats.LeafAlloc + bstats.BranchAlloc)
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *boltStore) DropDataset(dataset string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(dataset)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(dataset))
		return err
	})
	if err != nil {
		return errors.Wrap(err, "enginekv: drop dataset")
	}
	out := s.datasets[:0]
	for _, name := range s.datasets {
		if name != dataset {
			out = append(out, name)
		}
	}
	s.datasets = append(out, dataset)
	return nil
}

func (s *boltStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type boltIterator struct {
	tx     *bolt.Tx
	cursor *bolt.Cursor
	seek   []byte
	first  bool
	key    []byte
	value  []byte
}

func (it *boltIterator) Next() bool {
	var k, v []byte
	if it.first {
		it.first = false
		if len(it.seek) == 0 {
			k, v = it.cursor.First()
		} else {
			k, v = it.cursor.Seek(it.seek)
		}
	} else {
		k, v = it.cursor.Next()
	}
	if k == nil {
		it.key, it.value = nil, nil
		return false
	}
	it.key = append(it.key[:0], k...)
	it.value = append(it.value[:0], v...)
	return true
}

func (it *boltIterator) Key() []byte   { return it.key }
func (it *boltIterator) Value() []byte { return it.value }
func (it *boltIterator) Err() error    { return nil }

func (it *boltIterator) Close() error {
	if it.tx == nil {
		return nil
	}
	err := it.tx.Rollback()
	it.tx = nil
	return err
}

type boltOp struct {
	dataset     string
	key         []byte
	value       []byte
	del         bool
	deleteRange bool
	rangeStart  []byte
	rangeEnd    []byte
}

type boltBatch struct {
	db  *bolt.DB
	ops []boltOp
}

func (b *boltBatch) Put(dataset string, key, value []byte) {
	b.ops = append(b.ops, boltOp{dataset: dataset, key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *boltBatch) Delete(dataset string, key []byte) {
	b.ops = append(b.ops, boltOp{dataset: dataset, key: append([]byte(nil), key...), del: true})
}

func (b *boltBatch) DeleteRange(dataset string, start, end []byte) {
	b.ops = append(b.ops, boltOp{
		dataset:     dataset,
		deleteRange: true,
		rangeStart:  append([]byte(nil), start...),
		rangeEnd:    append([]byte(nil), end...),
	})
}

func (b *boltBatch) Commit() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, op := range b.ops {
			bucket := tx.Bucket([]byte(op.dataset))
			if bucket == nil {
				return ErrDatasetNotFound
			}
			switch {
			case op.deleteRange:
				c := bucket.Cursor()
				var k []byte
				for k, _ = c.Seek(op.rangeStart); k != nil && belowRangeEnd(k, op.rangeEnd); k, _ = c.Next() {
					if err := c.Delete(); err != nil {
						return err
					}
				}
			case op.del:
				if err := bucket.Delete(op.key); err != nil {
					return err
				}
			default:
				if err := bucket.Put(op.key, op.value); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "enginekv: commit batch")
	}
	return nil
}

// belowRangeEnd reports whether k < end, treating a nil end as +infinity.
func belowRangeEnd(k, end []byte) bool {
	if end == nil {
		return true
	}
	return compareBytes(k, end) < 0
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
