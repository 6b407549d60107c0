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

import "fmt"

// RowMapping translates between logical row numbers (as addressed over the
// command bus) and physical row numbers (as laid out on the die).  Some
// vendors remap rows internally, so the two numberings differ.  For any valid
// row, LogicalToPhysical and PhysicalToLogical must be mutual inverses.
type RowMapping interface {
	// LogicalToPhysical translates a logical row to its physical equivalent.
	LogicalToPhysical(logicalRow int) int
	// PhysicalToLogical translates a physical row to its logical equivalent.
	PhysicalToLogical(physicalRow int) int
}

// DirectMapping is the identity mapping, for modules without internal
// remapping.
type DirectMapping struct{}

// LogicalToPhysical directly returns the logical row as the physical row.
func (p DirectMapping) LogicalToPhysical(logicalRow int) int {
	return logicalRow
}

// PhysicalToLogical directly returns the physical row as the logical row.
func (p DirectMapping) PhysicalToLogical(physicalRow int) int {
	return physicalRow
}

// MicronSamsungMapping implements the on-die remapping observed on Micron and
// Samsung modules: bit 3 of the row number is XORed into bits 1 and 2.  The
// transform is its own inverse.
type MicronSamsungMapping struct{}

// LogicalToPhysical applies the bit swizzle to a logical row.
func (p MicronSamsungMapping) LogicalToPhysical(logicalRow int) int {
	return swizzle(logicalRow)
}

// PhysicalToLogical reverses the bit swizzle applied to a physical row.
func (p MicronSamsungMapping) PhysicalToLogical(physicalRow int) int {
	return swizzle(physicalRow)
}

func swizzle(row int) int {
	bit3 := (row & 8) >> 3
	return row ^ (bit3 << 1) ^ (bit3 << 2)
}

// MappingByName looks up a row mapping by its vendor name.
func MappingByName(name string) (RowMapping, error) {
	switch name {
	case "direct":
		return DirectMapping{}, nil
	case "micron", "samsung":
		return MicronSamsungMapping{}, nil
	default:
		return nil, fmt.Errorf("unsupported DRAM row mapping: %q", name)
	}
}
