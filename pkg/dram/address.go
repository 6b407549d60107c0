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
	"cmp"
	"fmt"
	"slices"
)

// Address identifies a single DRAM row within a given bank.  Addresses are
// immutable values, totally ordered by (bank, row).  Rows here are physical
// row numbers; translation to the logical numbering expected by the command
// bus happens at encode time via a RowMapping.
type Address struct {
	Bank int
	Row  int
}

// Neighbor returns the address with the same bank whose row is offset by a
// given distance.  For example, Neighbor(1) is one row after this one, whilst
// Neighbor(-1) is one row before.
func (p Address) Neighbor(distance int) Address {
	return Address{Bank: p.Bank, Row: p.Row + distance}
}

// Cmp implements the total ordering on addresses, comparing first by bank and
// then by row.
func (p Address) Cmp(other Address) int {
	if c := cmp.Compare(p.Bank, other.Bank); c != 0 {
		return c
	}
	//
	return cmp.Compare(p.Row, other.Row)
}

func (p Address) String() string {
	return fmt.Sprintf("Address(bank=%d, row=%d (0x%x))", p.Bank, p.Row, p.Row)
}

// SortAscending returns a fresh slice holding the given addresses sorted into
// ascending (bank, row) order.
func SortAscending(addresses []Address) []Address {
	sorted := slices.Clone(addresses)
	slices.SortFunc(sorted, Address.Cmp)
	//
	return sorted
}

// FilterMinDistance filters a set of addresses such that no two remaining
// addresses have rows closer together than a given minimum distance.
// Addresses are considered in ascending order, keeping the earliest member of
// any cluster.
func FilterMinDistance(addresses []Address, minRowDistance int) []Address {
	if len(addresses) == 0 {
		return nil
	}
	//
	sorted := SortAscending(addresses)
	filtered := []Address{sorted[0]}
	//
	for _, addr := range sorted[1:] {
		ok := true
		//
		for _, kept := range filtered {
			if abs(addr.Row-kept.Row) < minRowDistance {
				ok = false
				break
			}
		}
		//
		if ok {
			filtered = append(filtered, addr)
		}
	}
	//
	return filtered
}

// SameBankOrError checks that all given addresses share a single bank,
// returning that bank.
func SameBankOrError(addresses []Address) (int, error) {
	if len(addresses) == 0 {
		return 0, fmt.Errorf("no addresses given")
	}
	//
	bank := addresses[0].Bank
	//
	for _, addr := range addresses {
		if addr.Bank != bank {
			return 0, fmt.Errorf("addresses span multiple banks (%d and %d)", bank, addr.Bank)
		}
	}
	//
	return bank, nil
}

// GenerateAddresses produces the addresses for all rows in the half-open
// range [start, end) of a given bank.
func GenerateAddresses(bank int, start int, end int) []Address {
	var addresses []Address
	//
	for row := start; row < end; row++ {
		addresses = append(addresses, Address{Bank: bank, Row: row})
	}
	//
	return addresses
}

// Rows projects a sequence of addresses onto their row numbers.
func Rows(addresses []Address) []int {
	rows := make([]int, len(addresses))
	//
	for i, addr := range addresses {
		rows[i] = addr.Row
	}
	//
	return rows
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
