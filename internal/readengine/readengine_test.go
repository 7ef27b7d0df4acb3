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

package readengine_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/wcstore/internal/clock"
	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/keycodec"
	"github.com/erigontech/wcstore/internal/readengine"
	"github.com/erigontech/wcstore/internal/serializer"
	"github.com/erigontech/wcstore/internal/writeengine"
)

func newEngines(t *testing.T, cacheSize int) (*writeengine.Engine, *readengine.Engine) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := enginekv.OpenBolt(path, []string{"default"}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	codec := keycodec.Separator{}
	ser := serializer.UTF8String{}
	write := writeengine.New(store, codec, ser, clock.Fixed(0), nil)
	read, err := readengine.New(store, codec, ser, cacheSize, nil)
	require.NoError(t, err)
	return write, read
}

func ts(v uint64) *uint64 { return &v }

func TestGetRowNewestFirstWithinNumVersions(t *testing.T) {
	write, read := newEngines(t, 0)
	for _, ms := range []uint64{100, 300, 200} {
		m := ms
		require.NoError(t, write.PutRow("default", "row-1", []writeengine.Item{
			{Column: "status", Value: "v", TsMs: &m},
		}))
	}

	got, err := read.GetRow(readengine.Query{Dataset: "default", Row: "row-1", NumVersions: 2})
	require.NoError(t, err)
	require.Len(t, got["status"], 2)
	require.Equal(t, uint64(300), got["status"][0].TsMs)
	require.Equal(t, uint64(200), got["status"][1].TsMs)
}

func TestGetRowNamedColumnsOmitEmptyResults(t *testing.T) {
	write, read := newEngines(t, 0)
	require.NoError(t, write.PutRow("default", "row-1", []writeengine.Item{
		{Column: "name", Value: "alice", TsMs: ts(10)},
	}))

	got, err := read.GetRow(readengine.Query{
		Dataset: "default", Row: "row-1", Columns: []string{"name", "missing"}, NumVersions: 1,
	})
	require.NoError(t, err)
	require.Contains(t, got, "name")
	require.NotContains(t, got, "missing")
}

func TestGetRowTimeRangeFilter(t *testing.T) {
	write, read := newEngines(t, 0)
	for _, ms := range []uint64{100, 200, 300, 400} {
		m := ms
		require.NoError(t, write.PutRow("default", "row-1", []writeengine.Item{
			{Column: "x", Value: "v", TsMs: &m},
		}))
	}

	got, err := read.GetRow(readengine.Query{
		Dataset: "default", Row: "row-1", NumVersions: 10,
		StartTsMs: ts(200), EndTsMs: ts(300),
	})
	require.NoError(t, err)
	require.Len(t, got["x"], 2)
	require.Equal(t, uint64(300), got["x"][0].TsMs)
	require.Equal(t, uint64(200), got["x"][1].TsMs)
}

func TestGetRowStartAfterEndReturnsEmpty(t *testing.T) {
	_, read := newEngines(t, 0)
	got, err := read.GetRow(readengine.Query{
		Dataset: "default", Row: "row-1", NumVersions: 1,
		StartTsMs: ts(300), EndTsMs: ts(100),
	})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGetRowDatasetIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := enginekv.OpenBolt(path, []string{"default", "audit"}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	codec := keycodec.Separator{}
	ser := serializer.UTF8String{}
	write := writeengine.New(store, codec, ser, clock.Fixed(1), nil)
	read, err := readengine.New(store, codec, ser, 0, nil)
	require.NoError(t, err)

	require.NoError(t, write.PutRow("default", "row-1", []writeengine.Item{{Column: "c", Value: "default-value"}}))
	require.NoError(t, write.PutRow("audit", "row-1", []writeengine.Item{{Column: "c", Value: "audit-value"}}))

	got, err := read.GetRow(readengine.Query{Dataset: "default", Row: "row-1", NumVersions: 1})
	require.NoError(t, err)
	require.Equal(t, "default-value", got["c"][0].Value)

	got, err = read.GetRow(readengine.Query{Dataset: "audit", Row: "row-1", NumVersions: 1})
	require.NoError(t, err)
	require.Equal(t, "audit-value", got["c"][0].Value)
}

func TestInvalidateRowEvictsCache(t *testing.T) {
	write, read := newEngines(t, 16)
	require.NoError(t, write.PutRow("default", "row-1", []writeengine.Item{{Column: "c", Value: "v1", TsMs: ts(1)}}))

	got, err := read.GetRow(readengine.Query{Dataset: "default", Row: "row-1", NumVersions: 1})
	require.NoError(t, err)
	require.Equal(t, "v1", got["c"][0].Value)

	require.NoError(t, write.PutRow("default", "row-1", []writeengine.Item{{Column: "c", Value: "v2", TsMs: ts(2)}}))
	read.InvalidateRow("default", "row-1")

	got, err = read.GetRow(readengine.Query{Dataset: "default", Row: "row-1", NumVersions: 1})
	require.NoError(t, err)
	require.Equal(t, "v2", got["c"][0].Value)
}
