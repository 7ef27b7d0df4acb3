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

import (
	"time"

	"github.com/c2h5oh/datasize"
	"go.uber.org/zap"

	"github.com/erigontech/wcstore/internal/clock"
	"github.com/erigontech/wcstore/internal/keycodec"
	"github.com/erigontech/wcstore/internal/serializer"
)

// Engine selects which embedded ordered key-value engine backs a
// Database. EngineBolt is the default: pure Go, no cgo.
type Engine int

const (
	// EngineBolt backs the store with go.etcd.io/bbolt.
	EngineBolt Engine = iota
	// EngineMDBX backs the store with libmdbx via github.com/erigontech/mdbx-go.
	// Building with it requires cgo and the `cgo_mdbx` build tag.
	EngineMDBX
)

// Codec selects which KeyCodec variant encodes (row, column, timestamp)
// triples. The choice is fixed for the lifetime of an open database;
// switching codecs on a populated store silently produces garbage.
type Codec int

const (
	// CodecSeparator uses the 0x00-delimited layout; row and column
	// must not contain 0x00.
	CodecSeparator Codec = iota
	// CodecLengthPrefixed uses the length-prefixed layout, with no
	// restriction on row/column byte content.
	CodecLengthPrefixed
)

// Options configures Open. The zero value is valid and selects the
// Separator codec, the UTF8String serializer, the bbolt engine, the
// system clock, and a silent logger.
type Options struct {
	// Codec picks the active KeyCodec.
	Codec Codec
	// Serializer overrides the default UTF8String value serializer.
	Serializer serializer.Serializer
	// Engine picks the backing embedded store.
	Engine Engine
	// Clock overrides put_row's default-timestamp source; nil means
	// the system wall clock.
	Clock clock.Clock
	// Logger receives structured diagnostics; nil means silent.
	Logger *zap.Logger
	// CacheSize is the number of rows the read-path LRU cache holds;
	// 0 disables the cache.
	CacheSize int
	// BoltOpenTimeout bounds how long EngineBolt waits to acquire the
	// bbolt file lock before failing Open.
	BoltOpenTimeout time.Duration
	// MDBXGeometry sizes the libmdbx memory map when Engine is
	// EngineMDBX; ignored otherwise.
	MDBXGeometry MDBXGeometry
}

// MDBXGeometry mirrors enginekv.MDBXGeometry so callers configuring an
// mdbx-backed Database don't need to import the internal package.
type MDBXGeometry struct {
	SizeLower   datasize.ByteSize
	SizeNow     datasize.ByteSize
	SizeUpper   datasize.ByteSize
	GrowthStep  datasize.ByteSize
	ShrinkDelta datasize.ByteSize
}

func (o Options) resolveCodec() keycodec.Codec {
	switch o.Codec {
	case CodecLengthPrefixed:
		return keycodec.LengthPrefixed{}
	default:
		return keycodec.Separator{}
	}
}

func (o Options) resolveSerializer() serializer.Serializer {
	if o.Serializer != nil {
		return o.Serializer
	}
	return serializer.UTF8String{}
}

func (o Options) resolveClock() clock.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return clock.System{}
}

func (o Options) resolveLogger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o Options) resolveBoltTimeout() time.Duration {
	if o.BoltOpenTimeout > 0 {
		return o.BoltOpenTimeout
	}
	return 5 * time.Second
}
