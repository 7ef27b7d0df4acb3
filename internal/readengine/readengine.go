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

// Package readengine turns get_row requests into one or more bounded
// forward iterations over the underlying engine (§4.4).
package readengine

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/keycodec"
	"github.com/erigontech/wcstore/internal/serializer"
	"github.com/erigontech/wcstore/internal/wcerr"
)

// Version is one decoded (timestamp, value) entry of a cell.
type Version struct {
	TsMs  uint64
	Value any
}

// Query is a fully-normalized get_row request: the facade has already
// turned a scalar-or-absent column_names argument into Columns (nil
// means "all columns").
type Query struct {
	Dataset     string
	Row         string
	Columns     []string
	NumVersions int
	StartTsMs   *uint64
	EndTsMs     *uint64
}

// Engine answers get_row queries. Its row cache is optional; a cacheSize
// of 0 passed to New disables it.
type Engine struct {
	store      enginekv.Store
	codec      keycodec.Codec
	serializer serializer.Serializer
	cache      *lru.Cache[cacheKey, map[string][]Version]
	log        *zap.Logger
}

type cacheKey struct {
	dataset string
	row     string
}

// New builds a read engine over store. cacheSize of 0 disables the
// row-level LRU cache (§ domain stack: hashicorp/golang-lru).
func New(store enginekv.Store, codec keycodec.Codec, ser serializer.Serializer, cacheSize int, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{store: store, codec: codec, serializer: ser, log: log}
	if cacheSize > 0 {
		c, err := lru.New[cacheKey, map[string][]Version](cacheSize)
		if err != nil {
			return nil, wcerr.Wrap(wcerr.InvalidRequest, "construct row cache", err)
		}
		e.cache = c
	}
	return e, nil
}

// InvalidateRow drops any cached result for (dataset, row); the Database
// facade calls this after every put_row/delete_row so the cache never serves a
// value staler than the writer's own view.
func (e *Engine) InvalidateRow(dataset, row string) {
	if e.cache == nil {
		return
	}
	e.cache.Remove(cacheKey{dataset: dataset, row: row})
}

// GetRow answers one get_row request. The returned map omits any column
// for which no version survived the filters; it is empty, never nil,
// when nothing survived at all.
func (e *Engine) GetRow(q Query) (map[string][]Version, error) {
	if q.StartTsMs != nil && q.EndTsMs != nil && *q.StartTsMs > *q.EndTsMs {
		return map[string][]Version{}, nil
	}

	if q.Columns == nil {
		if e.cache != nil && q.StartTsMs == nil && q.EndTsMs == nil {
			if cached, ok := e.cache.Get(cacheKey{dataset: q.Dataset, row: q.Row}); ok {
				return truncateAll(cached, q.NumVersions), nil
			}
		}
		result, err := e.scanAllColumns(q)
		if err != nil {
			return nil, err
		}
		if e.cache != nil && q.StartTsMs == nil && q.EndTsMs == nil {
			e.cache.Add(cacheKey{dataset: q.Dataset, row: q.Row}, result)
		}
		return truncateAll(result, q.NumVersions), nil
	}

	out := make(map[string][]Version, len(q.Columns))
	for _, column := range q.Columns {
		versions, err := e.scanCell(q, column)
		if err != nil {
			return nil, err
		}
		if len(versions) > 0 {
			out[column] = versions
		}
	}
	return out, nil
}

// scanAllColumns performs the single bounded forward iteration §4.4
// prescribes for an all-columns read: start at row_prefix(row), stop at
// the first key outside it, group by column, and apply the time
// filter per column (num_versions truncation happens in the caller so
// the cached, untruncated map can serve any num_versions).
func (e *Engine) scanAllColumns(q Query) (map[string][]Version, error) {
	prefix := e.codec.RowPrefix(q.Row)
	it, err := e.store.Iterator(q.Dataset, prefix)
	if err != nil {
		return nil, wcerr.Wrap(wcerr.StorageError, "open row iterator", err)
	}
	defer it.Close()

	out := make(map[string][]Version)
	for it.Next() {
		key := it.Key()
		if !hasPrefix(key, prefix) {
			break
		}
		decoded, err := e.codec.Decode(key)
		if err != nil {
			return nil, wcerr.Wrap(wcerr.StorageError, "decode key", err)
		}
		if !withinRange(decoded.TsMs, q.StartTsMs, q.EndTsMs) {
			continue
		}
		val, err := e.serializer.Deserialize(it.Value())
		if err != nil {
			e.log.Warn("dropping undeserializable version",
				zap.String("row", q.Row), zap.String("column", decoded.Column), zap.Uint64("ts", decoded.TsMs), zap.Error(err))
			continue
		}
		out[decoded.Column] = append(out[decoded.Column], Version{TsMs: decoded.TsMs, Value: val})
	}
	if err := it.Err(); err != nil {
		return nil, wcerr.Wrap(wcerr.StorageError, "iterate row", err)
	}
	return out, nil
}

// scanCell performs the per-column bounded iteration §4.4 prescribes
// for a named-columns read, applying every optimization the spec
// allows: seek past end_ts_ms, stop at start_ts_ms, and stop once
// num_versions entries are collected when there is no lower time
// bound to worry about.
func (e *Engine) scanCell(q Query, column string) ([]Version, error) {
	prefix := e.codec.CellPrefix(q.Row, column)
	seek := prefix
	if q.EndTsMs != nil {
		key, err := e.codec.Encode(q.Row, column, *q.EndTsMs)
		if err != nil {
			return nil, wcerr.Wrap(wcerr.InvalidRequest, "encode seek key", err)
		}
		seek = key
	}

	it, err := e.store.Iterator(q.Dataset, seek)
	if err != nil {
		return nil, wcerr.Wrap(wcerr.StorageError, "open cell iterator", err)
	}
	defer it.Close()

	var versions []Version
	for it.Next() {
		key := it.Key()
		if !hasPrefix(key, prefix) {
			break
		}
		decoded, err := e.codec.Decode(key)
		if err != nil {
			return nil, wcerr.Wrap(wcerr.StorageError, "decode key", err)
		}
		if q.StartTsMs != nil && decoded.TsMs < *q.StartTsMs {
			break
		}
		if q.EndTsMs != nil && decoded.TsMs > *q.EndTsMs {
			continue
		}
		val, err := e.serializer.Deserialize(it.Value())
		if err != nil {
			e.log.Warn("dropping undeserializable version",
				zap.String("row", q.Row), zap.String("column", column), zap.Uint64("ts", decoded.TsMs), zap.Error(err))
			continue
		}
		versions = append(versions, Version{TsMs: decoded.TsMs, Value: val})
		if q.StartTsMs == nil && len(versions) >= q.NumVersions {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, wcerr.Wrap(wcerr.StorageError, "iterate cell", err)
	}
	if len(versions) > q.NumVersions {
		versions = versions[:q.NumVersions]
	}
	return versions, nil
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

func withinRange(ts uint64, start, end *uint64) bool {
	if start != nil && ts < *start {
		return false
	}
	if end != nil && ts > *end {
		return false
	}
	return true
}

func truncateAll(in map[string][]Version, numVersions int) map[string][]Version {
	out := make(map[string][]Version, len(in))
	for column, versions := range in {
		if len(versions) > numVersions {
			versions = versions[:numVersions]
		}
		if len(versions) > 0 {
			out[column] = versions
		}
	}
	return out
}
