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

package clock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/wcstore/internal/clock"
)

func TestFixed(t *testing.T) {
	require.Equal(t, uint64(42), clock.Fixed(42).NowMs())
	require.Equal(t, uint64(42), clock.Fixed(42).NowMs())
}

func TestSteppingAdvances(t *testing.T) {
	c := clock.NewStepping(100, 10)
	require.Equal(t, uint64(100), c.NowMs())
	require.Equal(t, uint64(110), c.NowMs())
	require.Equal(t, uint64(120), c.NowMs())
}

func TestSteppingSaturatesOnOverflow(t *testing.T) {
	c := clock.NewStepping(^uint64(0)-1, 10)
	require.Equal(t, ^uint64(0)-1, c.NowMs())
	require.Equal(t, ^uint64(0), c.NowMs())
	require.Equal(t, ^uint64(0), c.NowMs())
}
