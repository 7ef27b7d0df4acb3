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

package writeengine_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/wcstore/internal/clock"
	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/keycodec"
	"github.com/erigontech/wcstore/internal/serializer"
	"github.com/erigontech/wcstore/internal/writeengine"
)

func newStore(t *testing.T) enginekv.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := enginekv.OpenBolt(path, []string{"default"}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutRowAssignsSharedClockTimestamp(t *testing.T) {
	store := newStore(t)
	codec := keycodec.Separator{}
	eng := writeengine.New(store, codec, serializer.UTF8String{}, clock.Fixed(1000), nil)

	err := eng.PutRow("default", "row-1", []writeengine.Item{
		{Column: "name", Value: "alice"},
		{Column: "email", Value: "alice@example.com"},
	})
	require.NoError(t, err)

	for _, column := range []string{"name", "email"} {
		key, err := codec.Encode("row-1", column, 1000)
		require.NoError(t, err)
		it, err := store.Iterator("default", key)
		require.NoError(t, err)
		require.True(t, it.Next())
		require.Equal(t, key, it.Key())
		require.NoError(t, it.Close())
	}
}

func TestPutRowHonorsExplicitTimestamp(t *testing.T) {
	store := newStore(t)
	codec := keycodec.Separator{}
	eng := writeengine.New(store, codec, serializer.UTF8String{}, clock.Fixed(1000), nil)
	explicit := uint64(500)

	err := eng.PutRow("default", "row-1", []writeengine.Item{
		{Column: "name", Value: "alice", TsMs: &explicit},
	})
	require.NoError(t, err)

	key, err := codec.Encode("row-1", "name", 500)
	require.NoError(t, err)
	it, err := store.Iterator("default", key)
	require.NoError(t, err)
	defer it.Close()
	require.True(t, it.Next())
	require.Equal(t, key, it.Key())
}

func TestDeleteRowWithoutColumnsDeletesEverything(t *testing.T) {
	store := newStore(t)
	codec := keycodec.Separator{}
	eng := writeengine.New(store, codec, serializer.UTF8String{}, clock.NewStepping(1, 1), nil)

	require.NoError(t, eng.PutRow("default", "row-1", []writeengine.Item{
		{Column: "a", Value: "1"}, {Column: "b", Value: "2"},
	}))
	require.NoError(t, eng.PutRow("default", "row-2", []writeengine.Item{
		{Column: "a", Value: "x"},
	}))

	require.NoError(t, eng.DeleteRow("default", "row-1", nil, nil))

	prefix := codec.RowPrefix("row-1")
	it, err := store.Iterator("default", prefix)
	require.NoError(t, err)
	defer it.Close()
	if it.Next() {
		require.False(t, hasPrefix(it.Key(), prefix), "row-1 must have no surviving keys")
	}
}

func TestDeleteRowWithColumnsAndTimestampsIsExact(t *testing.T) {
	store := newStore(t)
	codec := keycodec.Separator{}
	eng := writeengine.New(store, codec, serializer.UTF8String{}, clock.Fixed(0), nil)

	t1, t2 := uint64(100), uint64(200)
	require.NoError(t, eng.PutRow("default", "row-1", []writeengine.Item{
		{Column: "a", Value: "v1", TsMs: &t1},
		{Column: "a", Value: "v2", TsMs: &t2},
	}))

	require.NoError(t, eng.DeleteRow("default", "row-1", []string{"a"}, []uint64{t1}))

	prefix := codec.CellPrefix("row-1", "a")
	it, err := store.Iterator("default", prefix)
	require.NoError(t, err)
	defer it.Close()
	var survivors []uint64
	for it.Next() && hasPrefix(it.Key(), prefix) {
		decoded, err := codec.Decode(it.Key())
		require.NoError(t, err)
		survivors = append(survivors, decoded.TsMs)
	}
	require.Equal(t, []uint64{t2}, survivors)
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
