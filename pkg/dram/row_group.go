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
	"slices"
)

// RowGroup represents a group of DRAM addresses within the same bank, sorted
// in ascending row order.  Groups typically describe a multi-row hammering
// pattern, such as the rows surrounding a victim.
type RowGroup struct {
	// Bank shared by all addresses in this group.
	Bank int
	// Member addresses, ascending by row.
	Rows []Address
}

// StartRow returns the smallest row number in this group.  This panics on an
// empty group, since such a group has no meaningful extent.
func (p RowGroup) StartRow() int {
	if len(p.Rows) == 0 {
		panic("row group has no addresses")
	}
	//
	return p.Rows[0].Row
}

// EndRow returns the largest row number in this group.  This panics on an
// empty group, since such a group has no meaningful extent.
func (p RowGroup) EndRow() int {
	if len(p.Rows) == 0 {
		panic("row group has no addresses")
	}
	//
	return p.Rows[len(p.Rows)-1].Row
}

// PresentAddresses returns a copy of the member addresses of this group.
func (p RowGroup) PresentAddresses() []Address {
	return slices.Clone(p.Rows)
}

// AbsentAddresses returns the addresses for all rows within
// [StartRow, EndRow] which are not members of this group.  For example, a
// group built with the middle row skipped reports that row as absent.
func (p RowGroup) AbsentAddresses() []Address {
	present := make(map[int]bool, len(p.Rows))
	//
	for _, addr := range p.Rows {
		present[addr.Row] = true
	}
	//
	var absent []Address
	//
	for row := p.StartRow(); row <= p.EndRow(); row++ {
		if !present[row] {
			absent = append(absent, Address{Bank: p.Bank, Row: row})
		}
	}
	//
	return absent
}

func (p RowGroup) String() string {
	return fmt.Sprintf("RowGroup(bank=%d, rows=%v)", p.Bank, Rows(p.Rows))
}

// CollectPresentAddresses concatenates the member addresses of the given
// groups, in order.
func CollectPresentAddresses(groups []RowGroup) []Address {
	var result []Address
	//
	for _, group := range groups {
		result = append(result, group.PresentAddresses()...)
	}
	//
	return result
}

// CollectAbsentAddresses concatenates the absent addresses of the given
// groups, in order.
func CollectAbsentAddresses(groups []RowGroup) []Address {
	var result []Address
	//
	for _, group := range groups {
		result = append(result, group.AbsentAddresses()...)
	}
	//
	return result
}
