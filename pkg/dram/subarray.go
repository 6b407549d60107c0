// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package dram

import "fmt"

// Subarray describes a physically contiguous block of rows sharing internal
// DRAM circuitry, as an inclusive row range.  Hammering patterns must not
// cross a subarray boundary to remain electrically meaningful.
type Subarray struct {
	StartRow int
	EndRow   int
}

// NewSubarray constructs a subarray, checking the range is well formed.
func NewSubarray(startRow int, endRow int) (Subarray, error) {
	if startRow > endRow {
		return Subarray{}, fmt.Errorf("invalid subarray range [%d, %d]", startRow, endRow)
	}
	//
	return Subarray{StartRow: startRow, EndRow: endRow}, nil
}

// Contains checks whether a given row lies within this subarray.
func (p Subarray) Contains(row int) bool {
	return p.StartRow <= row && row <= p.EndRow
}

// IsBoundaryRow checks whether a given row is the first or last row of this
// subarray.
func (p Subarray) IsBoundaryRow(row int) bool {
	return row == p.StartRow || row == p.EndRow
}

// Size returns the number of rows in this subarray (inclusive).
func (p Subarray) Size() int {
	return p.EndRow - p.StartRow + 1
}

func (p Subarray) String() string {
	return fmt.Sprintf("Subarray(%d to %d)", p.StartRow, p.EndRow)
}
