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

package enginekv_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/wcstore/internal/enginekv"
)

func openTestStore(t *testing.T, datasets ...string) enginekv.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := enginekv.OpenBolt(path, datasets, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltPutAndIterate(t *testing.T) {
	store := openTestStore(t, "default")

	batch := store.NewBatch()
	batch.Put("default", []byte("a"), []byte("1"))
	batch.Put("default", []byte("b"), []byte("2"))
	batch.Put("default", []byte("c"), []byte("3"))
	require.NoError(t, batch.Commit())

	it, err := store.Iterator("default", nil)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Err())
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestBoltSeekStartsAtOrAfterKey(t *testing.T) {
	store := openTestStore(t, "default")
	batch := store.NewBatch()
	for _, k := range []string{"a", "b", "c", "d"} {
		batch.Put("default", []byte(k), []byte("v"))
	}
	require.NoError(t, batch.Commit())

	it, err := store.Iterator("default", []byte("b"))
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next())
	require.Equal(t, []byte("b"), it.Key())
}

func TestBoltDeleteRangeIsExclusiveOfEnd(t *testing.T) {
	store := openTestStore(t, "default")
	batch := store.NewBatch()
	for _, k := range []string{"a", "b", "c", "d"} {
		batch.Put("default", []byte(k), []byte("v"))
	}
	require.NoError(t, batch.Commit())

	del := store.NewBatch()
	del.DeleteRange("default", []byte("b"), []byte("d"))
	require.NoError(t, del.Commit())

	it, err := store.Iterator("default", nil)
	require.NoError(t, err)
	defer it.Close()
	var remaining []string
	for it.Next() {
		remaining = append(remaining, string(it.Key()))
	}
	require.Equal(t, []string{"a", "d"}, remaining)
}

func TestBoltBatchIsAtomicOnFailure(t *testing.T) {
	store := openTestStore(t, "default")
	batch := store.NewBatch()
	batch.Put("default", []byte("a"), []byte("1"))
	batch.Put("unknown-dataset", []byte("b"), []byte("2"))
	require.Error(t, batch.Commit())

	it, err := store.Iterator("default", nil)
	require.NoError(t, err)
	defer it.Close()
	require.False(t, it.Next(), "the put to the known dataset must not survive a failed batch")
}

func TestBoltDatasetsAreIsolated(t *testing.T) {
	store := openTestStore(t, "default", "audit")
	batch := store.NewBatch()
	batch.Put("default", []byte("row"), []byte("default-value"))
	batch.Put("audit", []byte("row"), []byte("audit-value"))
	require.NoError(t, batch.Commit())

	it, err := store.Iterator("default", nil)
	require.NoError(t, err)
	require.True(t, it.Next())
	require.Equal(t, []byte("default-value"), it.Value())
	require.False(t, it.Next())
	require.NoError(t, it.Close())
}

func TestPrefixSuccessor(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x01}, enginekv.PrefixSuccessor([]byte{0x01, 0x00}))
	require.Equal(t, []byte{0x02}, enginekv.PrefixSuccessor([]byte{0x01, 0xFF}))
	require.Nil(t, enginekv.PrefixSuccessor([]byte{0xFF, 0xFF}))
	require.Nil(t, enginekv.PrefixSuccessor(nil))
}
