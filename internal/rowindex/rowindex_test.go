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

package rowindex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/wcstore/internal/rowindex"
)

func TestApproximateRowCountCountsDistinctRows(t *testing.T) {
	tr := rowindex.New()
	tr.Touch("default", "row-1")
	tr.Touch("default", "row-2")
	tr.Touch("default", "row-1")

	require.Equal(t, uint64(2), tr.ApproximateRowCount("default"))
}

func TestApproximateRowCountIsPerDataset(t *testing.T) {
	tr := rowindex.New()
	tr.Touch("A", "row-1")
	tr.Touch("B", "row-1")
	tr.Touch("B", "row-2")

	require.Equal(t, uint64(1), tr.ApproximateRowCount("A"))
	require.Equal(t, uint64(2), tr.ApproximateRowCount("B"))
}

func TestApproximateRowCountUnknownDatasetIsZero(t *testing.T) {
	tr := rowindex.New()
	require.Equal(t, uint64(0), tr.ApproximateRowCount("never-touched"))
}
