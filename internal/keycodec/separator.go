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
	"bytes"
	"encoding/binary"
	"strings"
)

const separatorByte = 0x00

// Separator lays out keys as row || 0x00 || column || 0x00 || inv_be64.
// Row and column must not themselves contain the separator byte.
type Separator struct{}

func (Separator) Name() string { return "separator" }

func (Separator) Encode(row, column string, tsMs uint64) ([]byte, error) {
	if i := strings.IndexByte(row, separatorByte); i >= 0 {
		return nil, &ErrForbiddenByte{Codec: "separator", Byte: separatorByte, Field: "row"}
	}
	if i := strings.IndexByte(column, separatorByte); i >= 0 {
		return nil, &ErrForbiddenByte{Codec: "separator", Byte: separatorByte, Field: "column"}
	}
	key := make([]byte, 0, len(row)+1+len(column)+1+8)
	key = append(key, row...)
	key = append(key, separatorByte)
	key = append(key, column...)
	key = append(key, separatorByte)
	key = binary.BigEndian.AppendUint64(key, invert(tsMs))
	return key, nil
}

func (Separator) Decode(key []byte) (Decoded, error) {
	if len(key) < 8+2 {
		return Decoded{}, &ErrTruncatedKey{Codec: "separator", Len: len(key)}
	}
	body := key[:len(key)-8]
	if len(body) == 0 || body[len(body)-1] != separatorByte {
		return Decoded{}, &ErrTruncatedKey{Codec: "separator", Len: len(key)}
	}
	firstSep := bytes.IndexByte(body, separatorByte)
	if firstSep < 0 {
		return Decoded{}, &ErrTruncatedKey{Codec: "separator", Len: len(key)}
	}
	lastSep := len(body) - 1
	row := string(body[:firstSep])
	column := string(body[firstSep+1 : lastSep])
	inv := binary.BigEndian.Uint64(key[len(key)-8:])
	return Decoded{Row: row, Column: column, TsMs: revert(inv)}, nil
}

func (Separator) RowPrefix(row string) []byte {
	out := make([]byte, 0, len(row)+1)
	out = append(out, row...)
	out = append(out, separatorByte)
	return out
}

func (Separator) CellPrefix(row, column string) []byte {
	out := make([]byte, 0, len(row)+1+len(column)+1)
	out = append(out, row...)
	out = append(out, separatorByte)
	out = append(out, column...)
	out = append(out, separatorByte)
	return out
}
