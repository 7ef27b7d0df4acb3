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

//go:build cgo_mdbx

// mdbx.go wires the cgo libmdbx bindings as an alternative Store. It is
// behind a build tag because the default build of this module must stay
// cgo-free; opt in with `-tags cgo_mdbx` to get the same engine Erigon
// itself runs in production.
package enginekv

import (
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/pkg/errors"
)

// mdbxStore realizes Store on top of libmdbx. Each dataset maps to a
// named sub-database (DBI); cursors give the ordered forward iteration
// §6 requires, and Update transactions give the atomic batch commit.
type mdbxStore struct {
	env      *mdbx.Env
	dbis     map[string]mdbx.DBI
	datasets []string
}

// MDBXGeometry are the size knobs passed to Env.SetGeometry, expressed
// with datasize so callers write e.g. 1*datasize.GB instead of a raw
// int64 of bytes. ShrinkDelta is not passed on: OpenMDBX always leaves
// the shrink threshold at the libmdbx default.
type MDBXGeometry struct {
	SizeLower   datasize.ByteSize
	SizeNow     datasize.ByteSize
	SizeUpper   datasize.ByteSize
	GrowthStep  datasize.ByteSize
	ShrinkDelta datasize.ByteSize
}

// OpenMDBX opens (creating if necessary) an mdbx-backed store at path
// with one named sub-database per entry in datasets.
func OpenMDBX(path string, datasets []string, geometry MDBXGeometry) (Store, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, errors.Wrap(err, "enginekv: new mdbx env")
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(datasets)+8)); err != nil {
		return nil, errors.Wrap(err, "enginekv: set max dbs")
	}
	if err := env.SetGeometry(
		int(geometry.SizeLower.Bytes()),
		int(geometry.SizeNow.Bytes()),
		int(geometry.SizeUpper.Bytes()),
		int(geometry.GrowthStep.Bytes()),
		-1,
		-1,
	); err != nil {
		return nil, errors.Wrap(err, "enginekv: set geometry")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrap(err, "enginekv: mkdir store path")
	}
	if err := env.Open(path, mdbx.NoReadahead|mdbx.Coalesce|mdbx.LifoReclaim, 0o644); err != nil {
		return nil, errors.Wrap(err, "enginekv: open mdbx env")
	}

	dbis := make(map[string]mdbx.DBI, len(datasets))
	err = env.Update(func(txn *mdbx.Txn) error {
		for _, name := range datasets {
			dbi, err := txn.OpenDBI(name, mdbx.Create, nil, nil)
			if err != nil {
				return errors.Wrapf(err, "enginekv: open dbi %q", name)
			}
			dbis[name] = dbi
		}
		return nil
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	return &mdbxStore{env: env, dbis: dbis, datasets: append([]string(nil), datasets...)}, nil
}

func (s *mdbxStore) Datasets() []string { return append([]string(nil), s.datasets...) }

func (s *mdbxStore) Iterator(dataset string, seek []byte) (Iterator, error) {
	dbi, ok := s.dbis[dataset]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	txn, err := s.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, errors.Wrap(err, "enginekv: begin read txn")
	}
	cur, err := txn.OpenCursor(dbi)
	if err != nil {
		txn.Abort()
		return nil, errors.Wrap(err, "enginekv: open cursor")
	}
	return &mdbxIterator{txn: txn, cur: cur, seek: seek, first: true}, nil
}

func (s *mdbxStore) NewBatch() Batch {
	return &mdbxBatch{env: s.env, dbis: s.dbis}
}

func (s *mdbxStore) Stats(dataset string) (Stats, error) {
	dbi, ok := s.dbis[dataset]
	if !ok {
		return Stats{}, ErrDatasetNotFound
	}
	var st Stats
	err := s.env.View(func(txn *mdbx.Txn) error {
		stat, err := txn.StatDBI(dbi)
		if err != nil {
			return err
		}
		st.ApproximateKeys = stat.Entries
		st.SizeBytes = stat.Entries * uint64(stat.PSize)
		return nil
	})
	if err != nil {
		return Stats{}, errors.Wrap(err, "enginekv: stat dbi")
	}
	return st, nil
}

func (s *mdbxStore) DropDataset(dataset string) error {
	dbi, ok := s.dbis[dataset]
	if !ok {
		return ErrDatasetNotFound
	}
	err := s.env.Update(func(txn *mdbx.Txn) error {
		return txn.Drop(dbi, false)
	})
	if err != nil {
		return errors.Wrap(err, "enginekv: drop dataset")
	}
	return nil
}

func (s *mdbxStore) Close() error {
	if s.env == nil {
		return nil
	}
	s.env.Close()
	s.env = nil
	return nil
}

type mdbxIterator struct {
	txn   *mdbx.Txn
	cur   *mdbx.Cursor
	seek  []byte
	first bool
	key   []byte
	value []byte
	err   error
}

func (it *mdbxIterator) Next() bool {
	var k, v []byte
	var err error
	if it.first {
		it.first = false
		if len(it.seek) == 0 {
			k, v, err = it.cur.Get(nil, nil, mdbx.First)
		} else {
			k, v, err = it.cur.Get(it.seek, nil, mdbx.SetRange)
		}
	} else {
		k, v, err = it.cur.Get(nil, nil, mdbx.Next)
	}
	if err != nil {
		if !mdbx.IsNotFound(err) {
			it.err = err
		}
		it.key, it.value = nil, nil
		return false
	}
	it.key, it.value = k, v
	return true
}

func (it *mdbxIterator) Key() []byte   { return it.key }
func (it *mdbxIterator) Value() []byte { return it.value }
func (it *mdbxIterator) Err() error    { return it.err }

func (it *mdbxIterator) Close() error {
	if it.txn == nil {
		return nil
	}
	it.cur.Close()
	it.txn.Abort()
	it.txn = nil
	return nil
}

type mdbxOp struct {
	dbi         mdbx.DBI
	key         []byte
	value       []byte
	del         bool
	deleteRange bool
	rangeStart  []byte
	rangeEnd    []byte
}

type mdbxBatch struct {
	env  *mdbx.Env
	dbis map[string]mdbx.DBI
	ops  []mdbxOp
}

func (b *mdbxBatch) Put(dataset string, key, value []byte) {
	b.ops = append(b.ops, mdbxOp{dbi: b.dbis[dataset], key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *mdbxBatch) Delete(dataset string, key []byte) {
	b.ops = append(b.ops, mdbxOp{dbi: b.dbis[dataset], key: append([]byte(nil), key...), del: true})
}

func (b *mdbxBatch) DeleteRange(dataset string, start, end []byte) {
	b.ops = append(b.ops, mdbxOp{
		dbi:         b.dbis[dataset],
		deleteRange: true,
		rangeStart:  append([]byte(nil), start...),
		rangeEnd:    append([]byte(nil), end...),
	})
}

func (b *mdbxBatch) Commit() error {
	err := b.env.Update(func(txn *mdbx.Txn) error {
		for _, op := range b.ops {
			switch {
			case op.deleteRange:
				cur, err := txn.OpenCursor(op.dbi)
				if err != nil {
					return err
				}
				k, _, err := cur.Get(op.rangeStart, nil, mdbx.SetRange)
				for err == nil && belowRangeEnd(k, op.rangeEnd) {
					if err := cur.Del(0); err != nil {
						cur.Close()
						return err
					}
					k, _, err = cur.Get(nil, nil, mdbx.Next)
				}
				cur.Close()
				if err != nil && !mdbx.IsNotFound(err) {
					return err
				}
			case op.del:
				if err := txn.Del(op.dbi, op.key, nil); err != nil && !mdbx.IsNotFound(err) {
					return err
				}
			default:
				if err := txn.Put(op.dbi, op.key, op.value, 0); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "enginekv: commit mdbx batch")
	}
	return nil
}
