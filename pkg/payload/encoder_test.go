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
package payload

import "testing"

func TestEncoder_01(t *testing.T) {
	encoder := NewEncoder(testSettings)
	//
	address, err := encoder.RowAddress(0, 2, 101)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	} else if address != uint32(2|101<<3) {
		t.Errorf("encoded 0x%x, expected 0x%x", address, 2|101<<3)
	}
}

func TestEncoder_02(t *testing.T) {
	// Single-rank configurations have a zero-width rank field.
	encoder := NewEncoder(testSettings)
	//
	rank, bank, row := encoder.DecodeRow(uint32(5 | 1234<<3))
	if rank != 0 || bank != 5 || row != 1234 {
		t.Errorf("decoded (%d, %d, %d), expected (0, 5, 1234)", rank, bank, row)
	}
}

func TestEncoder_03(t *testing.T) {
	// Dual-rank configurations carry the rank in the lowest bit.
	settings := *testSettings
	settings.Phy.Nranks = 2
	encoder := NewEncoder(&settings)
	//
	address, err := encoder.RowAddress(1, 2, 101)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	} else if address != uint32(1|2<<1|101<<4) {
		t.Errorf("encoded 0x%x, expected 0x%x", address, 1|2<<1|101<<4)
	}
	//
	rank, bank, row := encoder.DecodeRow(address)
	if rank != 1 || bank != 2 || row != 101 {
		t.Errorf("decoded (%d, %d, %d), expected (1, 2, 101)", rank, bank, row)
	}
}

func TestEncoder_04(t *testing.T) {
	encoder := NewEncoder(testSettings)
	//
	address, err := encoder.ColumnAddress(0, 0, PrechargeAllColumn)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	} else if address != 1<<13 {
		t.Errorf("encoded 0x%x, expected 0x%x", address, 1<<13)
	}
}

func TestEncoder_05(t *testing.T) {
	// Out-of-range fields are rejected.
	encoder := NewEncoder(testSettings)
	//
	if _, err := encoder.RowAddress(0, 8, 0); err == nil {
		t.Errorf("bank 8 should not fit in 3 bits")
	}
	//
	if _, err := encoder.RowAddress(0, 0, 1<<14); err == nil {
		t.Errorf("row 2^14 should not fit in 14 bits")
	}
	//
	if _, err := encoder.RowAddress(1, 0, 0); err == nil {
		t.Errorf("rank 1 should be rejected on a single-rank setup")
	}
	//
	if _, err := encoder.ColumnAddress(0, 0, 1<<11); err == nil {
		t.Errorf("column 2^11 should not fit in 10 bits")
	}
}
