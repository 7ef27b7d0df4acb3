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

// PutItem is one (column, value, timestamp?) triple of a put_row call.
// TsMs left nil assigns the database's clock at batch-assembly time;
// multiple items with a nil TsMs in the same call may receive the same
// timestamp.
type PutItem struct {
	Column string
	Value  any
	TsMs   *uint64
}

// Version is one (timestamp, value) entry of a cell, as returned by
// GetRow. Lists of Version are always strictly newest-first.
type Version struct {
	TsMs  uint64
	Value any
}

// Stats is the engine-reported shape of one dataset, plus this layer's
// own approximate row count (§ SPEC_FULL supplemented features).
type Stats struct {
	ApproximateKeys     uint64
	SizeBytes           uint64
	ApproximateRowCount uint64
}
