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

import (
	"fmt"
	"math/rand"
	"slices"
)

// MaxRowCount bounds the row space considered when selecting random rows.
const MaxRowCount = 1 << 16

// RandomSelection configures random decoy-row selection.  Selected rows stay
// at least MinDistance rows away from every excluded row, remain within the
// given subarrays (the whole row space when none are given), and are spread
// evenly across subarrays.
type RandomSelection struct {
	// Number of rows to select.
	Count int
	// Minimum distance from any excluded row.
	MinDistance int
	// Seed for the generator; runs with equal seeds select equal rows.
	Seed int64
	// Upper row bound (exclusive); MaxRowCount when zero.
	MaxRowLimit int
	// Subarrays to select from.
	Subarrays []Subarray
}

// SelectRandomExcluding selects random addresses in the bank of the given
// excluded addresses, avoiding their rows.
func SelectRandomExcluding(exclude []Address, selection RandomSelection) ([]Address, error) {
	bank, err := SameBankOrError(exclude)
	if err != nil {
		return nil, err
	}
	//
	return SelectRandomAddresses(bank, Rows(exclude), selection)
}

// SelectRandomAddresses selects random rows in a given bank, avoiding the
// excluded rows by the configured minimum distance.
func SelectRandomAddresses(bank int, excludeRows []int, selection RandomSelection) ([]Address, error) {
	var (
		rng     = rand.New(rand.NewSource(selection.Seed))
		maxRow  = MaxRowCount
		regions = selection.Subarrays
	)
	//
	if selection.MaxRowLimit != 0 {
		maxRow = min(maxRow, selection.MaxRowLimit)
	}
	//
	if len(regions) == 0 {
		regions = []Subarray{{StartRow: 0, EndRow: maxRow - 1}}
	}
	// Determine candidate rows per region
	candidates := make([][]int, len(regions))
	total := 0
	//
	for i, region := range regions {
		start := max(0, region.StartRow)
		end := min(maxRow, region.EndRow+1)
		//
		for row := start; row < end; row++ {
			if !excludedBy(row, excludeRows, selection.MinDistance) {
				candidates[i] = append(candidates[i], row)
			}
		}
		//
		total += len(candidates[i])
	}
	//
	if total < selection.Count {
		return nil, fmt.Errorf("only %d rows available for %d random rows", total, selection.Count)
	}
	// Draw rows, spreading evenly across regions
	var rows []int
	//
	for len(rows) < selection.Count {
		for i := range candidates {
			if len(candidates[i]) == 0 || len(rows) >= selection.Count {
				continue
			}
			//
			j := rng.Intn(len(candidates[i]))
			rows = append(rows, candidates[i][j])
			candidates[i] = slices.Delete(candidates[i], j, j+1)
		}
	}
	//
	addresses := make([]Address, len(rows))
	for i, row := range rows {
		addresses[i] = Address{Bank: bank, Row: row}
	}
	//
	return addresses, nil
}

// GroupIndicesByAddress maps each address to the positions at which it
// occurs in the given sequence.
func GroupIndicesByAddress(addresses []Address) map[Address][]int {
	grouped := make(map[Address][]int)
	//
	for index, addr := range addresses {
		grouped[addr] = append(grouped[addr], index)
	}
	//
	return grouped
}

func excludedBy(row int, excludeRows []int, minDistance int) bool {
	for _, excluded := range excludeRows {
		if abs(row-excluded) <= minDistance {
			return true
		}
	}
	//
	return false
}
