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

package keycodec

import (
	"encoding/binary"
	"math"
)

// LengthPrefixed lays out keys as be32(len(row)) || row || be32(len(column))
// || column || inv_be64. Unlike Separator, row and column may contain any
// byte since their extents are length-prefixed rather than delimited.
type LengthPrefixed struct{}

func (LengthPrefixed) Name() string { return "length-prefixed" }

func (LengthPrefixed) Encode(row, column string, tsMs uint64) ([]byte, error) {
	if len(row) > math.MaxInt32 {
		return nil, &ErrForbiddenByte{Codec: "length-prefixed", Field: "row (too long)"}
	}
	if len(column) > math.MaxInt32 {
		return nil, &ErrForbiddenByte{Codec: "length-prefixed", Field: "column (too long)"}
	}
	key := make([]byte, 0, 4+len(row)+4+len(column)+8)
	key = binary.BigEndian.AppendUint32(key, uint32(len(row)))
	key = append(key, row...)
	key = binary.BigEndian.AppendUint32(key, uint32(len(column)))
	key = append(key, column...)
	key = binary.BigEndian.AppendUint64(key, invert(tsMs))
	return key, nil
}

func (LengthPrefixed) Decode(key []byte) (Decoded, error) {
	const codec = "length-prefixed"
	if len(key) < 4 {
		return Decoded{}, &ErrTruncatedKey{Codec: codec, Len: len(key)}
	}
	rowLen := int(binary.BigEndian.Uint32(key[:4]))
	pos := 4
	if pos+rowLen+4 > len(key) {
		return Decoded{}, &ErrTruncatedKey{Codec: codec, Len: len(key)}
	}
	row := string(key[pos : pos+rowLen])
	pos += rowLen
	colLen := int(binary.BigEndian.Uint32(key[pos : pos+4]))
	pos += 4
	if pos+colLen+8 != len(key) {
		return Decoded{}, &ErrTruncatedKey{Codec: codec, Len: len(key)}
	}
	column := string(key[pos : pos+colLen])
	pos += colLen
	inv := binary.BigEndian.Uint64(key[pos : pos+8])
	return Decoded{Row: row, Column: column, TsMs: revert(inv)}, nil
}

func (LengthPrefixed) RowPrefix(row string) []byte {
	out := make([]byte, 0, 4+len(row))
	out = binary.BigEndian.AppendUint32(out, uint32(len(row)))
	out = append(out, row...)
	return out
}

func (LengthPrefixed) CellPrefix(row, column string) []byte {
	out := make([]byte, 0, 4+len(row)+4+len(column))
	out = binary.BigEndian.AppendUint32(out, uint32(len(row)))
	out = append(out, row...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(column)))
	out = append(out, column...)
	return out
}
