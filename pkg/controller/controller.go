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

// Package controller abstracts the memory controller an experiment runs
// against: payload execution, auto-refresh control and DMA access to row
// contents.  The simulator in this package interprets payloads against an
// in-memory DRAM model, which is what the test suites run against.
package controller

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/dram/rowbits"
	"github.com/hwsec-lab/go-utrr/pkg/payload"
)

// Controller is the surface pipeline stages run against.
type Controller interface {
	// ExecutePayload uploads a payload and runs it to completion.
	ExecutePayload(instructions []payload.Instruction) error
	// ReadRefreshCount reads the controller's refresh counter.
	ReadRefreshCount() (int, error)
	// EnableRefresh re-enables auto refresh.
	EnableRefresh() error
	// DisableRefresh suspends auto refresh, leaving refreshes to payloads.
	DisableRefresh() error
	// AlignRefresh disables auto refresh and issues refreshes until the
	// counter reaches the given target.  The target must not already have
	// been passed.
	AlignRefresh(target int) error
	// AlignModRefresh aligns the refresh counter to the next value congruent
	// to mod modulo modulus.
	AlignModRefresh(modulus int, mod int) error
	// MemSetRows fills whole rows with a repeating 32-bit pattern over DMA.
	MemSetRows(addresses []dram.Address, pattern uint32) error
	// FlippedAddresses checks rows against a fill pattern, returning those
	// which no longer match.
	FlippedAddresses(addresses []dram.Address, pattern uint32) ([]dram.Address, error)
	// FlippedRows is FlippedAddresses over row numbers within one bank.
	FlippedRows(bank int, rows []int, pattern uint32) ([]int, error)
	// FlipLocations checks one row against a fill pattern, returning the
	// exact positions of any flipped bits.
	FlipLocations(address dram.Address, pattern uint32) ([]rowbits.FlipLocation, error)
	// ReadRowBits reads a whole row over DMA.
	ReadRowBits(address dram.Address) (*bitset.BitSet, error)
	// WriteRowBits writes a whole row over DMA.
	WriteRowBits(address dram.Address, bits *bitset.BitSet) error
}
