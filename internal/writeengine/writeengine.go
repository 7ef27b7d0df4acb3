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

// Package writeengine turns put_row/delete_row requests into atomic
// write batches against the underlying engine (§4.3).
package writeengine

import (
	"go.uber.org/zap"

	"github.com/erigontech/wcstore/internal/clock"
	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/keycodec"
	"github.com/erigontech/wcstore/internal/serializer"
	"github.com/erigontech/wcstore/internal/wcerr"
)

// Item is one (column, value, timestamp?) triple from a put_row call.
// TsMs is nil when the caller omitted an explicit timestamp; the Engine
// assigns the clock's current time at batch-assembly time in that case.
type Item struct {
	Column string
	Value  any
	TsMs   *uint64
}

// Engine implements put_row and delete_row against one resolved dataset
// handle at a time; the dataset name is supplied per call so a single
// Engine serves every dataset of a Database.
type Engine struct {
	store      enginekv.Store
	codec      keycodec.Codec
	serializer serializer.Serializer
	clock      clock.Clock
	log        *zap.Logger
}

// New builds a write engine over store using codec for keys and ser for
// values; now is the clock put_row consults for omitted timestamps.
func New(store enginekv.Store, codec keycodec.Codec, ser serializer.Serializer, now clock.Clock, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, codec: codec, serializer: ser, clock: now, log: log}
}

// PutRow builds and commits one atomic batch containing one put per
// item. All items share a single commit: on failure none are visible.
func (e *Engine) PutRow(dataset, row string, items []Item) error {
	batch := e.store.NewBatch()
	nowMs := e.clock.NowMs()
	for _, item := range items {
		ts := nowMs
		if item.TsMs != nil {
			ts = *item.TsMs
		}
		encoded, err := e.serializer.Serialize(item.Value)
		if err != nil {
			return wcerr.Wrap(wcerr.SerializationError, "serialize value for column "+item.Column, err)
		}
		key, err := e.codec.Encode(row, item.Column, ts)
		if err != nil {
			return wcerr.Wrap(wcerr.InvalidRequest, "encode key for column "+item.Column, err)
		}
		batch.Put(dataset, key, encoded)
	}
	if err := batch.Commit(); err != nil {
		return wcerr.Wrap(wcerr.StorageError, "commit put_row batch", err)
	}
	e.log.Debug("put_row committed", zap.String("dataset", dataset), zap.String("row", row), zap.Int("items", len(items)))
	return nil
}

// DeleteRow implements the four-way semantics of §4.3's table:
//   - no columns, no timestamps: delete every key under row's prefix.
//   - columns, no timestamps: delete every key under each column's
//     cell prefix.
//   - columns and timestamps: delete exactly the named (column, ts)
//     keys; a timestamp with nothing stored there is a benign no-op.
//   - timestamps without columns is rejected by the caller before this
//     is ever invoked (ambiguous, per §4.3).
func (e *Engine) DeleteRow(dataset, row string, columns []string, timestamps []uint64) error {
	batch := e.store.NewBatch()

	switch {
	case len(columns) == 0:
		prefix := e.codec.RowPrefix(row)
		batch.DeleteRange(dataset, prefix, enginekv.PrefixSuccessor(prefix))

	case len(timestamps) == 0:
		for _, column := range columns {
			prefix := e.codec.CellPrefix(row, column)
			batch.DeleteRange(dataset, prefix, enginekv.PrefixSuccessor(prefix))
		}

	default:
		for _, column := range columns {
			for _, ts := range timestamps {
				key, err := e.codec.Encode(row, column, ts)
				if err != nil {
					return wcerr.Wrap(wcerr.InvalidRequest, "encode key for column "+column, err)
				}
				batch.Delete(dataset, key)
			}
		}
	}

	if err := batch.Commit(); err != nil {
		return wcerr.Wrap(wcerr.StorageError, "commit delete_row batch", err)
	}
	e.log.Debug("delete_row committed", zap.String("dataset", dataset), zap.String("row", row))
	return nil
}
