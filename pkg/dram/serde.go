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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// AddressRecord is the on-disk form of an Address.  The row is recorded both
// in decimal and hex, since the hex form is what shows up in die photographs
// and vendor errata.
type AddressRecord struct {
	Bank   int    `json:"bank"`
	Row    int    `json:"row"`
	RowHex string `json:"row_hex"`
}

// Record converts an address into its on-disk form.
func (p Address) Record() AddressRecord {
	return AddressRecord{Bank: p.Bank, Row: p.Row, RowHex: fmt.Sprintf("0x%x", p.Row)}
}

// Records converts a sequence of addresses into their on-disk form.
func Records(addresses []Address) []AddressRecord {
	records := make([]AddressRecord, len(addresses))
	//
	for i, addr := range addresses {
		records[i] = addr.Record()
	}
	//
	return records
}

// WriteAddresses serializes a sequence of addresses to a JSON file.
func WriteAddresses(addresses []Address, filename string) error {
	bytes, err := json.MarshalIndent(Records(addresses), "", "    ")
	if err != nil {
		return err
	}
	//
	return os.WriteFile(filename, bytes, 0644)
}

// ReadAddresses deserializes a sequence of addresses from a JSON file.
func ReadAddresses(filename string) ([]Address, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	var records []AddressRecord
	//
	if err := json.Unmarshal(bytes, &records); err != nil {
		return nil, err
	}
	//
	addresses := make([]Address, len(records))
	for i, record := range records {
		addresses[i] = Address{Bank: record.Bank, Row: record.Row}
	}
	//
	return addresses, nil
}

// ReadSubarrays deserializes subarrays from a CSV file with a
// "start_row,end_row" header, as produced by subarray-boundary discovery.
func ReadSubarrays(filename string) ([]Subarray, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	//
	defer file.Close()
	//
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	//
	var subarrays []Subarray
	//
	for i, record := range records {
		// Skip header row
		if i == 0 {
			continue
		}
		//
		if len(record) < 2 {
			return nil, fmt.Errorf("%s: malformed subarray record %v", filename, record)
		}
		//
		start, err1 := strconv.Atoi(record[0])
		end, err2 := strconv.Atoi(record[1])
		//
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%s: malformed subarray record %v", filename, record)
		}
		//
		subarray, err := NewSubarray(start, end)
		if err != nil {
			return nil, err
		}
		//
		subarrays = append(subarrays, subarray)
	}
	//
	return subarrays, nil
}
