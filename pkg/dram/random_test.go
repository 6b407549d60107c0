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

func TestRandom_01(t *testing.T) {
	// Selected rows avoid the excluded rows by the minimum distance.
	selection := RandomSelection{Count: 10, MinDistance: 2, Seed: 7, MaxRowLimit: 100}
	//
	addresses, err := SelectRandomAddresses(3, []int{50}, selection)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	if len(addresses) != 10 {
		t.Fatalf("selected %d addresses", len(addresses))
	}
	//
	for _, addr := range addresses {
		if addr.Bank != 3 || addr.Row < 0 || addr.Row >= 100 {
			t.Errorf("selected %v", addr)
		}
		//
		if addr.Row >= 48 && addr.Row <= 52 {
			t.Errorf("selected %v, too close to excluded row 50", addr)
		}
	}
}

func TestRandom_02(t *testing.T) {
	// Runs with equal seeds select equal rows.
	selection := RandomSelection{Count: 8, MinDistance: 1, Seed: 42, MaxRowLimit: 1000}
	//
	first, err1 := SelectRandomAddresses(0, []int{100, 200}, selection)
	second, err2 := SelectRandomAddresses(0, []int{100, 200}, selection)
	//
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors %v / %v", err1, err2)
	}
	//
	if !slices.Equal(first, second) {
		t.Errorf("selections differ: %v vs %v", first, second)
	}
}

func TestRandom_03(t *testing.T) {
	// Not enough candidate rows to satisfy the request.
	selection := RandomSelection{Count: 10, Seed: 1, MaxRowLimit: 5}
	//
	if _, err := SelectRandomAddresses(0, nil, selection); err == nil {
		t.Errorf("expected an error")
	}
}

func TestRandom_04(t *testing.T) {
	// Selection stays within the given subarrays.
	selection := RandomSelection{
		Count:     6,
		Seed:      9,
		Subarrays: []Subarray{{StartRow: 10, EndRow: 19}, {StartRow: 40, EndRow: 49}},
	}
	//
	addresses, err := SelectRandomAddresses(1, nil, selection)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	for _, addr := range addresses {
		inFirst := addr.Row >= 10 && addr.Row <= 19
		inSecond := addr.Row >= 40 && addr.Row <= 49
		//
		if !inFirst && !inSecond {
			t.Errorf("selected %v outside all subarrays", addr)
		}
	}
}

func TestRandom_05(t *testing.T) {
	// Exclusion derives its bank from the excluded addresses.
	exclude := []Address{{Bank: 2, Row: 30}, {Bank: 2, Row: 60}}
	selection := RandomSelection{Count: 4, MinDistance: 3, Seed: 5, MaxRowLimit: 100}
	//
	addresses, err := SelectRandomExcluding(exclude, selection)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	for _, addr := range addresses {
		if addr.Bank != 2 {
			t.Errorf("selected %v in wrong bank", addr)
		}
	}
}

func TestRandom_06(t *testing.T) {
	addresses := []Address{
		{Bank: 0, Row: 5},
		{Bank: 0, Row: 9},
		{Bank: 0, Row: 5},
	}
	//
	grouped := GroupIndicesByAddress(addresses)
	//
	if !slices.Equal(grouped[Address{Bank: 0, Row: 5}], []int{0, 2}) {
		t.Errorf("grouped to %v", grouped)
	}
	//
	if !slices.Equal(grouped[Address{Bank: 0, Row: 9}], []int{1}) {
		t.Errorf("grouped to %v", grouped)
	}
}
