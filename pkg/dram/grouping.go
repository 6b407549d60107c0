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

import "slices"

// FindRowGroups generates candidate multi-row patterns from a set of
// addresses in one bank, then filters and de-overlaps them.  Candidates are
// runs of groupSize consecutive rows fully present in the input (minus the
// middle row when skipMiddle is set, as used for asymmetric
// aggressor/victim patterns).  A candidate survives only if its
// [StartRow, EndRow] extent lies entirely inside one of the given subarrays,
// and if its start row is at least minDistance past the end row of the
// previously kept candidate.
func FindRowGroups(addresses []Address, groupSize int, subarrays []Subarray,
	skipMiddle bool, minDistance int) ([]RowGroup, error) {
	//
	groups, err := GenerateAllOverlappingRowGroups(addresses, groupSize, skipMiddle)
	if err != nil {
		return nil, err
	}
	// Keep only subarray-confined candidates
	groups = FilterWithinSubarrays(groups, subarrays)
	// De-overlap in ascending start order
	var (
		kept    []RowGroup
		lastEnd = -1
	)
	//
	for _, group := range groups {
		if group.StartRow() >= lastEnd+minDistance {
			kept = append(kept, group)
			lastEnd = group.EndRow()
		}
	}
	//
	return kept, nil
}

// GenerateAllOverlappingRowGroups produces every candidate group of
// groupSize consecutive rows (minus the middle row when skipMiddle is set)
// which is fully present in the given address set.  All addresses must share
// one bank.  Candidates are returned in ascending start-row order and may
// overlap.
func GenerateAllOverlappingRowGroups(addresses []Address, groupSize int,
	skipMiddle bool) ([]RowGroup, error) {
	//
	if len(addresses) == 0 {
		return nil, nil
	}
	//
	bank, err := SameBankOrError(addresses)
	if err != nil {
		return nil, err
	}
	// Dedup and sort
	sorted := SortAscending(addresses)
	sorted = slices.Compact(sorted)
	//
	present := make(map[int]bool, len(sorted))
	for _, addr := range sorted {
		present[addr.Row] = true
	}
	//
	var groups []RowGroup
	//
	for _, addr := range sorted {
		expected := expectedRows(addr.Row, groupSize, skipMiddle)
		//
		complete := true
		//
		for _, row := range expected {
			if !present[row] {
				complete = false
				break
			}
		}
		//
		if complete {
			members := make([]Address, len(expected))
			for i, row := range expected {
				members[i] = Address{Bank: bank, Row: row}
			}
			//
			groups = append(groups, RowGroup{Bank: bank, Rows: members})
		}
	}
	//
	return groups, nil
}

// FilterWithinSubarrays keeps only those groups whose extent lies entirely
// inside at least one of the given subarrays.
func FilterWithinSubarrays(groups []RowGroup, subarrays []Subarray) []RowGroup {
	var filtered []RowGroup
	//
	for _, group := range groups {
		for _, subarray := range subarrays {
			if group.StartRow() >= subarray.StartRow && group.EndRow() <= subarray.EndRow {
				filtered = append(filtered, group)
				break
			}
		}
	}
	//
	return filtered
}

// expectedRows determines which rows a candidate group starting at a given
// row must contain.
func expectedRows(startRow int, groupSize int, skipMiddle bool) []int {
	var rows []int
	//
	middle := startRow + (groupSize / 2)
	//
	for offset := 0; offset < groupSize; offset++ {
		row := startRow + offset
		// Middle row only skipped for groups big enough to have one.
		if skipMiddle && groupSize > 2 && row == middle {
			continue
		}
		//
		rows = append(rows, row)
	}
	//
	return rows
}
