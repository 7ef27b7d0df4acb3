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

// Package serializer provides the pluggable application-value <-> byte
// mapping used for cell values. Round-tripping through a Serializer
// recovers the value's content, not necessarily its Go type: UTF8String
// returns a string for []byte input, and CompressedJSON returns the
// generic encoding/json form (map[string]any, []any, float64, ...).
package serializer

// Serializer is a bidirectional map between an application value and its
// byte-string storage form.
type Serializer interface {
	Name() string
	Serialize(v any) ([]byte, error)
	Deserialize(b []byte) (any, error)
}

// ErrUnsupportedType is returned by Serialize when v is not a type the
// serializer knows how to encode.
type ErrUnsupportedType struct {
	Serializer string
	Type       string
}

func (e *ErrUnsupportedType) Error() string {
	return "serializer: " + e.Serializer + ": unsupported value type " + e.Type
}
