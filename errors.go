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

package wcstore

import "github.com/erigontech/wcstore/internal/wcerr"

// Error is returned by every Database operation that fails. Use
// errors.As to recover it and inspect Kind.
type Error = wcerr.Error

// The error kinds §7 defines. Callers switch on Error.Kind to decide
// whether a failure is retryable, a caller bug, or a storage fault.
const (
	KindInvalidRequest   = wcerr.InvalidRequest
	KindUnknownDataset   = wcerr.UnknownDataset
	KindNotOpen          = wcerr.NotOpen
	KindSerializationErr = wcerr.SerializationError
	KindStorageError     = wcerr.StorageError
)
