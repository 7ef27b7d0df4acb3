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

//go:build !cgo_mdbx

package wcstore

import (
	"github.com/erigontech/wcstore/internal/enginekv"
	"github.com/erigontech/wcstore/internal/wcerr"
)

// openMDBXStore is a build-time stub: the cgo libmdbx backend is only
// compiled in with `-tags cgo_mdbx`. Selecting EngineMDBX without that
// tag is an InvalidRequest rather than a link error.
func openMDBXStore(string, []string, MDBXGeometry) (enginekv.Store, error) {
	return nil, wcerr.New(wcerr.InvalidRequest, "EngineMDBX requires building with -tags cgo_mdbx")
}
