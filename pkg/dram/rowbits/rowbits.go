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

// Package rowbits manipulates the contents of a single DRAM row as a bit
// vector.  Rows travel over the DMA port as 32-bit words; bit i of word w
// maps to vector index w*32+i (LSB first), matching how the memtest gateware
// numbers bits.
package rowbits

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// DefaultBytesPerRow is the row size used when none is configured.
const DefaultBytesPerRow = 4096

// WordBits is the width of one DMA transfer word.
const WordBits = 32

// FromWords converts a sequence of 32-bit words into a row bit vector.
func FromWords(words []uint32) *bitset.BitSet {
	bits := bitset.New(uint(len(words) * WordBits))
	//
	for w, word := range words {
		for i := 0; i < WordBits; i++ {
			if word&(1<<i) != 0 {
				bits.Set(uint(w*WordBits + i))
			}
		}
	}
	//
	return bits
}

// ToWords converts a row bit vector back into 32-bit words.  The vector is
// padded with zeros up to a whole number of words.
func ToWords(bits *bitset.BitSet) []uint32 {
	count := (bits.Len() + WordBits - 1) / WordBits
	words := make([]uint32, count)
	//
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		words[i/WordBits] |= 1 << (i % WordBits)
	}
	//
	return words
}

// Repeat32 fills a whole row with a repeating 32-bit pattern.
func Repeat32(pattern uint32, bytesPerRow int) *bitset.BitSet {
	words := make([]uint32, bytesPerRow/4)
	//
	for i := range words {
		words[i] = pattern
	}
	//
	return FromWords(words)
}

// AllZero returns a row bit vector with every bit cleared.
func AllZero(bytesPerRow int) *bitset.BitSet {
	return bitset.New(uint(bytesPerRow * 8))
}

// AllOnes returns a row bit vector with every bit set.
func AllOnes(bytesPerRow int) *bitset.BitSet {
	return Repeat32(0xFFFFFFFF, bytesPerRow)
}

// Invert returns a new row bit vector with every bit of the input flipped.
// The input remains unchanged.
func Invert(bits *bitset.BitSet) *bitset.BitSet {
	inverted := bits.Clone()
	inverted.FlipRange(0, bits.Len())
	//
	return inverted
}

// DiffPositions returns the indices of all bits which differ between two row
// bit vectors of equal length.
func DiffPositions(bits1 *bitset.BitSet, bits2 *bitset.BitSet) ([]uint, error) {
	if bits1.Len() != bits2.Len() {
		return nil, fmt.Errorf("row bit vectors differ in length (%d vs %d)", bits1.Len(), bits2.Len())
	}
	//
	difference := bits1.SymmetricDifference(bits2)
	//
	var positions []uint
	//
	for i, ok := difference.NextSet(0); ok; i, ok = difference.NextSet(i + 1) {
		positions = append(positions, i)
	}
	//
	return positions, nil
}
