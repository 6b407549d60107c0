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
	"slices"
	"testing"
)

func TestGrouping_01(t *testing.T) {
	// Overlapping candidates are generated wherever all rows are present.
	addresses := rowsOf(1, 10, 11, 12, 14, 15, 16, 17)
	//
	groups, err := GenerateAllOverlappingRowGroups(addresses, 3, false)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	checkGroups(t, groups, [][]int{{10, 11, 12}, {14, 15, 16}, {15, 16, 17}})
}

func TestGrouping_02(t *testing.T) {
	// Skipping the middle row means it need not be present.
	addresses := rowsOf(0, 5, 7)
	//
	groups, err := GenerateAllOverlappingRowGroups(addresses, 3, true)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	checkGroups(t, groups, [][]int{{5, 7}})
	//
	absent := groups[0].AbsentAddresses()
	if len(absent) != 1 || absent[0].Row != 6 {
		t.Errorf("absent rows were %v", absent)
	}
}

func TestGrouping_03(t *testing.T) {
	// Groups crossing a subarray boundary are dropped.
	groups := []RowGroup{
		{Bank: 0, Rows: rowsOf(0, 10, 11, 12)},
		{Bank: 0, Rows: rowsOf(0, 510, 511, 512)},
	}
	//
	subarrays := []Subarray{{StartRow: 0, EndRow: 511}, {StartRow: 512, EndRow: 1023}}
	filtered := FilterWithinSubarrays(groups, subarrays)
	//
	checkGroups(t, filtered, [][]int{{10, 11, 12}})
}

func TestGrouping_04(t *testing.T) {
	// Kept groups respect the minimum distance.
	addresses := rowsOf(1, 10, 11, 12, 14, 15, 16, 17, 30, 31, 32)
	subarrays := []Subarray{{StartRow: 0, EndRow: 100}}
	//
	groups, err := FindRowGroups(addresses, 3, subarrays, false, 2)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	checkGroups(t, groups, [][]int{{10, 11, 12}, {14, 15, 16}, {30, 31, 32}})
}

func TestGrouping_05(t *testing.T) {
	// Candidates cannot span banks.
	addresses := []Address{{Bank: 0, Row: 1}, {Bank: 1, Row: 2}}
	//
	if _, err := GenerateAllOverlappingRowGroups(addresses, 2, false); err == nil {
		t.Errorf("expected an error")
	}
}

func TestGrouping_06(t *testing.T) {
	groups := []RowGroup{
		{Bank: 2, Rows: rowsOf(2, 4, 6)},
		{Bank: 2, Rows: rowsOf(2, 9, 10)},
	}
	//
	present := CollectPresentAddresses(groups)
	if !slices.Equal(Rows(present), []int{4, 6, 9, 10}) {
		t.Errorf("present rows were %v", Rows(present))
	}
	//
	absent := CollectAbsentAddresses(groups)
	if !slices.Equal(Rows(absent), []int{5}) {
		t.Errorf("absent rows were %v", Rows(absent))
	}
}

// rowsOf builds the addresses for the given rows in one bank.
func rowsOf(bank int, rows ...int) []Address {
	addresses := make([]Address, len(rows))
	//
	for i, row := range rows {
		addresses[i] = Address{Bank: bank, Row: row}
	}
	//
	return addresses
}

func checkGroups(t *testing.T, groups []RowGroup, expected [][]int) {
	t.Helper()
	//
	if len(groups) != len(expected) {
		t.Fatalf("got %d groups, expected %d", len(groups), len(expected))
	}
	//
	for i, group := range groups {
		if !slices.Equal(Rows(group.Rows), expected[i]) {
			t.Errorf("group %d had rows %v, expected %v", i, Rows(group.Rows), expected[i])
		}
	}
}
