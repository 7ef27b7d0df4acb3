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

import (
	"encoding/json"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// CompressedJSON is the general binary Serializer required by §6: it
// JSON-marshals any value and zstd-compresses the result. Deserialize
// returns the generic encoding/json form, so a struct comes back as a
// map[string]any holding its JSON fields.
type CompressedJSON struct {
	encOnce sync.Once
	decOnce sync.Once
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	encErr  error
	decErr  error
}

func (c *CompressedJSON) Name() string { return "compressed-json" }

func (c *CompressedJSON) encoder() (*zstd.Encoder, error) {
	c.encOnce.Do(func() {
		c.enc, c.encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return c.enc, c.encErr
}

func (c *CompressedJSON) decoder() (*zstd.Decoder, error) {
	c.decOnce.Do(func() {
		c.dec, c.decErr = zstd.NewReader(nil)
	})
	return c.dec, c.decErr
}

func (c *CompressedJSON) Serialize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "serializer: compressed-json: marshal")
	}
	enc, err := c.encoder()
	if err != nil {
		return nil, errors.Wrap(err, "serializer: compressed-json: new encoder")
	}
	return enc.EncodeAll(raw, nil), nil
}

func (c *CompressedJSON) Deserialize(b []byte) (any, error) {
	dec, err := c.decoder()
	if err != nil {
		return nil, errors.Wrap(err, "serializer: compressed-json: new decoder")
	}
	raw, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, errors.Wrap(err, "serializer: compressed-json: decompress")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(err, "serializer: compressed-json: unmarshal")
	}
	return v, nil
}
