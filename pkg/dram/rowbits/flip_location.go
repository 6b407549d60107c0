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
package rowbits

import (
	"cmp"
	"fmt"
)

// FlipLocation pins a single corrupted bit to its position within the DRAM
// module: the bank and (physical) row holding it, plus the bit index within
// that row.
type FlipLocation struct {
	Bank     int
	Row      int
	BitIndex int
}

// ByteIndex returns the index of the byte containing this bit.
func (p FlipLocation) ByteIndex() int {
	return p.BitIndex / 8
}

// SurroundingByteBits returns the absolute indices of all bits belonging to
// the byte containing this bit.
func (p FlipLocation) SurroundingByteBits() []int {
	start := p.ByteIndex() * 8
	bits := make([]int, 8)
	//
	for i := range bits {
		bits[i] = start + i
	}
	//
	return bits
}

// Cmp implements the total ordering on flip locations, comparing by
// (bank, row, bit index).
func (p FlipLocation) Cmp(other FlipLocation) int {
	if c := cmp.Compare(p.Bank, other.Bank); c != 0 {
		return c
	}
	//
	if c := cmp.Compare(p.Row, other.Row); c != 0 {
		return c
	}
	//
	return cmp.Compare(p.BitIndex, other.BitIndex)
}

func (p FlipLocation) String() string {
	return fmt.Sprintf("(bank=%d, row=%d, bit_index=%d, byte_index=%d)",
		p.Bank, p.Row, p.BitIndex, p.ByteIndex())
}
