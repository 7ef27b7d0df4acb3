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

package serializer

import "fmt"

// UTF8String is the default Serializer: it accepts string or []byte and
// stores the raw UTF-8 bytes verbatim.
type UTF8String struct{}

func (UTF8String) Name() string { return "utf8-string" }

func (UTF8String) Serialize(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	default:
		return nil, &ErrUnsupportedType{Serializer: "utf8-string", Type: fmt.Sprintf("%T", v)}
	}
}

func (UTF8String) Deserialize(b []byte) (any, error) {
	return string(b), nil
}
