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

// Package wcstore is the programmatic surface of the wide-column
// storage layer: a Bigtable-style (dataset, row, column, timestamp)
// data model persisted on an embedded ordered key-value engine. See
// SPEC_FULL.md for the full component design.
package wcstore

import (
	"sync"

	"go.uber.org/zap"

	"github.com/erigontech/wcstore/internal/datasetmgr"
	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/keycodec"
	"github.com/erigontech/wcstore/internal/readengine"
	"github.com/erigontech/wcstore/internal/rowindex"
	"github.com/erigontech/wcstore/internal/wcerr"
	"github.com/erigontech/wcstore/internal/writeengine"
)

// Database is the library entry point: open, close, put_row, get_row,
// delete_row, plus the small set of supplemented operations SPEC_FULL.md
// adds (Datasets, Stats, DropDataset).
type Database struct {
	mu sync.RWMutex

	open     bool
	datasets *datasetmgr.Manager
	write    *writeengine.Engine
	read     *readengine.Engine
	rows     *rowindex.Tracker
	codec    keycodec.Codec
	log      *zap.Logger
}

// Open opens (creating if necessary) a database at path declaring the
// given dataset names, plus the always-present implicit "default". See
// Options for engine, codec, and serializer selection.
func Open(path string, declaredDatasets []string, opts Options) (*Database, error) {
	codec := opts.resolveCodec()
	ser := opts.resolveSerializer()
	now := opts.resolveClock()
	log := opts.resolveLogger()

	var newStore func(path string, names []string) (enginekv.Store, error)
	switch opts.Engine {
	case EngineMDBX:
		newStore = func(path string, names []string) (enginekv.Store, error) {
			return openMDBXStore(path, names, opts.MDBXGeometry)
		}
	default:
		timeout := opts.resolveBoltTimeout()
		newStore = func(path string, names []string) (enginekv.Store, error) {
			return enginekv.OpenBolt(path, names, timeout)
		}
	}

	mgr, err := datasetmgr.Open(path, declaredDatasets, newStore)
	if err != nil {
		return nil, err
	}

	readEng, err := readengine.New(mgr.Store(), codec, ser, opts.CacheSize, log)
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}

	db := &Database{
		open:     true,
		datasets: mgr,
		write:    writeengine.New(mgr.Store(), codec, ser, now, log),
		read:     readEng,
		rows:     rowindex.New(),
		codec:    codec,
		log:      log,
	}
	return db, nil
}

// Close flushes and releases every dataset handle and the underlying
// store. Subsequent operations fail with KindNotOpen.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.open {
		return nil
	}
	db.open = false
	return db.datasets.Close()
}

// Datasets returns every declared dataset name, including "default".
func (db *Database) Datasets() ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !db.open {
		return nil, wcerr.New(wcerr.NotOpen, "database is closed")
	}
	return db.datasets.Names(), nil
}

// Stats reports approximate size information for dataset ("" means
// "default").
func (db *Database) Stats(dataset string) (Stats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !db.open {
		return Stats{}, wcerr.New(wcerr.NotOpen, "database is closed")
	}
	resolved, err := db.datasets.Resolve(dataset)
	if err != nil {
		return Stats{}, err
	}
	engineStats, err := db.datasets.Store().Stats(resolved)
	if err != nil {
		return Stats{}, wcerr.Wrap(wcerr.StorageError, "read engine stats", err)
	}
	return Stats{
		ApproximateKeys:     engineStats.ApproximateKeys,
		SizeBytes:           engineStats.SizeBytes,
		ApproximateRowCount: db.rows.ApproximateRowCount(resolved),
	}, nil
}

// DropDataset deletes every key in dataset and forgets its declaration.
// The default dataset cannot be dropped.
func (db *Database) DropDataset(dataset string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.open {
		return wcerr.New(wcerr.NotOpen, "database is closed")
	}
	return db.datasets.Drop(dataset)
}

// PutRow implements §4.3's put_row: items are written as one atomic
// batch against dataset ("" means "default").
func (db *Database) PutRow(dataset, row string, items []PutItem) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !db.open {
		return wcerr.New(wcerr.NotOpen, "database is closed")
	}
	if row == "" {
		return wcerr.New(wcerr.InvalidRequest, "row must be non-empty")
	}
	if len(items) == 0 {
		return wcerr.New(wcerr.InvalidRequest, "put_row requires at least one item")
	}
	resolved, err := db.datasets.Resolve(dataset)
	if err != nil {
		return err
	}

	engineItems := make([]writeengine.Item, 0, len(items))
	for _, item := range items {
		if item.Column == "" {
			return wcerr.New(wcerr.InvalidRequest, "column must be non-empty")
		}
		if isEmptyValue(item.Value) {
			return wcerr.New(wcerr.InvalidRequest, "value for column "+item.Column+" must be non-empty")
		}
		engineItems = append(engineItems, writeengine.Item{Column: item.Column, Value: item.Value, TsMs: item.TsMs})
	}

	if err := db.write.PutRow(resolved, row, engineItems); err != nil {
		return err
	}
	db.rows.Touch(resolved, row)
	db.read.InvalidateRow(resolved, row)
	return nil
}

// DeleteRow implements §4.3's delete_row four-way semantics.
// columnNames and specificTimestampsMs are both optional (nil/empty
// means "absent" in the spec's table).
func (db *Database) DeleteRow(dataset, row string, columnNames []string, specificTimestampsMs []uint64) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !db.open {
		return wcerr.New(wcerr.NotOpen, "database is closed")
	}
	if row == "" {
		return wcerr.New(wcerr.InvalidRequest, "row must be non-empty")
	}
	if len(columnNames) == 0 && len(specificTimestampsMs) > 0 {
		return wcerr.New(wcerr.InvalidRequest, "specific_timestamps_ms without column_names is ambiguous")
	}
	for _, c := range columnNames {
		if c == "" {
			return wcerr.New(wcerr.InvalidRequest, "column must be non-empty")
		}
	}
	resolved, err := db.datasets.Resolve(dataset)
	if err != nil {
		return err
	}

	if err := db.write.DeleteRow(resolved, row, columnNames, specificTimestampsMs); err != nil {
		return err
	}
	db.rows.Touch(resolved, row)
	db.read.InvalidateRow(resolved, row)
	return nil
}

// GetRowOptions carries get_row's optional parameters; the zero value
// means "all columns, num_versions=1, no time bound".
type GetRowOptions struct {
	// ColumnNames lists the exact columns to read; meaningful only
	// when ColumnNamesSet is true. Set both to read named columns,
	// including an empty ColumnNames to mean "no columns" (returns an
	// empty mapping, per the Open Question §9 resolves). Leave
	// ColumnNamesSet false to read every column of the row.
	ColumnNames    []string
	ColumnNamesSet bool
	NumVersions    int
	StartTsMs      *uint64
	EndTsMs        *uint64
	Dataset        string
}

// GetRow implements §4.4's get_row. Columns with no surviving version
// are omitted from the result; the result is an empty, non-nil map
// when nothing survives.
func (db *Database) GetRow(row string, opts GetRowOptions) (map[string][]Version, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !db.open {
		return nil, wcerr.New(wcerr.NotOpen, "database is closed")
	}
	if row == "" {
		return nil, wcerr.New(wcerr.InvalidRequest, "row must be non-empty")
	}
	numVersions := opts.NumVersions
	if numVersions == 0 {
		numVersions = 1
	}
	if numVersions < 0 {
		return nil, wcerr.New(wcerr.InvalidRequest, "num_versions must be positive")
	}
	resolved, err := db.datasets.Resolve(opts.Dataset)
	if err != nil {
		return nil, err
	}

	if opts.ColumnNamesSet && len(opts.ColumnNames) == 0 {
		return map[string][]Version{}, nil
	}
	for _, c := range opts.ColumnNames {
		if c == "" {
			return nil, wcerr.New(wcerr.InvalidRequest, "column must be non-empty")
		}
	}

	query := readengine.Query{
		Dataset:     resolved,
		Row:         row,
		NumVersions: numVersions,
		StartTsMs:   opts.StartTsMs,
		EndTsMs:     opts.EndTsMs,
	}
	if opts.ColumnNamesSet {
		query.Columns = opts.ColumnNames
	}

	result, err := db.read.GetRow(query)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Version, len(result))
	for column, versions := range result {
		converted := make([]Version, len(versions))
		for i, v := range versions {
			converted[i] = Version{TsMs: v.TsMs, Value: v.Value}
		}
		out[column] = converted
	}
	return out, nil
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []byte:
		return len(t) == 0
	default:
		return false
	}
}
