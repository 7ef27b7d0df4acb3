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

// Package datasetmgr resolves dataset names to engine handles. It is
// the only place in the module that knows the implicit "default"
// dataset exists.
package datasetmgr

import (
	"errors"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/wcerr"
)

// DefaultDataset is the name resolved when a request supplies no
// dataset.
const DefaultDataset = "default"

// Manager owns the lifetime of an engine Store and the advisory lock
// guarding the store's path against a second concurrent open.
type Manager struct {
	store    enginekv.Store
	declared map[string]struct{}
	lock     *flock.Flock
}

// Open declares datasets (plus the implicit "default") against the
// store at path, taking an advisory file lock for the lifetime of the
// returned Manager. newStore is called with the full list of names to
// create-on-open (including "default"); it is the caller's chosen
// engine constructor (enginekv.OpenBolt, enginekv.OpenMDBX, ...).
func Open(path string, declared []string, newStore func(path string, names []string) (enginekv.Store, error)) (*Manager, error) {
	names := append([]string{DefaultDataset}, declared...)
	set := make(map[string]struct{}, len(names))
	dedup := names[:0]
	for _, n := range names {
		if _, ok := set[n]; ok {
			continue
		}
		set[n] = struct{}{}
		dedup = append(dedup, n)
	}

	lk := flock.New(filepath.Join(path, "..", filepath.Base(path)+".lock"))
	locked, err := lk.TryLock()
	if err != nil {
		return nil, wcerr.Wrap(wcerr.StorageError, "acquire store lock", err)
	}
	if !locked {
		return nil, wcerr.New(wcerr.StorageError, "store path is already open by another instance")
	}

	store, err := newStore(path, dedup)
	if err != nil {
		_ = lk.Unlock()
		var kindErr *wcerr.Error
		if errors.As(err, &kindErr) {
			return nil, err
		}
		return nil, wcerr.Wrap(wcerr.StorageError, "open underlying engine", err)
	}
	return &Manager{store: store, declared: set, lock: lk}, nil
}

// Resolve maps a request-supplied dataset name to the dataset name the
// engine should be addressed with: "" becomes "default"; any other
// name must have been declared at Open.
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" {
		return DefaultDataset, nil
	}
	if _, ok := m.declared[name]; !ok {
		return "", wcerr.New(wcerr.UnknownDataset, "dataset "+name+" was not declared at open")
	}
	return name, nil
}

// Names returns every declared dataset name, including "default".
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.declared))
	for n := range m.declared {
		out = append(out, n)
	}
	return out
}

// Store returns the underlying engine handle.
func (m *Manager) Store() enginekv.Store { return m.store }

// Drop removes dataset's data and forgets its declaration. A later
// Resolve of the same name fails with UnknownDataset until Open
// declares it again.
func (m *Manager) Drop(name string) error {
	if name == DefaultDataset {
		return wcerr.New(wcerr.InvalidRequest, "the default dataset cannot be dropped")
	}
	resolved, err := m.Resolve(name)
	if err != nil {
		return err
	}
	if err := m.store.DropDataset(resolved); err != nil {
		return wcerr.Wrap(wcerr.StorageError, "drop dataset", err)
	}
	delete(m.declared, name)
	return nil
}

// Close releases the engine handle and the advisory lock exactly once.
func (m *Manager) Close() error {
	storeErr := m.store.Close()
	_ = m.lock.Unlock()
	if storeErr != nil {
		return wcerr.Wrap(wcerr.StorageError, "close underlying engine", storeErr)
	}
	return nil
}
