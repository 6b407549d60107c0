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

import "math/bits"

// PrechargeAllColumn is the column address bit which turns a PRE into a
// precharge-all.
const PrechargeAllColumn = 1 << 10

// Encoder packs DRAM addresses into the executor's address word.  The layout
// is rank in the low bits, then bank, then row (or column); widths come from
// the controller geometry.
type Encoder struct {
	rankBits int
	bankBits int
	rowBits  int
	colBits  int
}

// NewEncoder constructs an encoder for a given controller configuration.
func NewEncoder(settings *Settings) *Encoder {
	return &Encoder{
		rankBits: bits.Len(uint(settings.Phy.Nranks - 1)),
		bankBits: settings.Geom.Bankbits,
		rowBits:  settings.Geom.Rowbits,
		colBits:  settings.Geom.Colbits,
	}
}

// RowAddress encodes a (rank, bank, row) triple.
func (p *Encoder) RowAddress(rank int, bank int, row int) (uint32, error) {
	if err := p.checkField("row", row, p.rowBits); err != nil {
		return 0, err
	}
	//
	return p.pack(rank, bank, row)
}

// ColumnAddress encodes a (rank, bank, column) triple, e.g. for the
// precharge-all column.
func (p *Encoder) ColumnAddress(rank int, bank int, col int) (uint32, error) {
	// The precharge-all bit sits above the column bits proper, so it is
	// permitted beyond colbits.
	if col != PrechargeAllColumn {
		if err := p.checkField("column", col, p.colBits); err != nil {
			return 0, err
		}
	}
	//
	return p.pack(rank, bank, col)
}

// DecodeRow splits an encoded address back into its (rank, bank, row) parts.
func (p *Encoder) DecodeRow(address uint32) (rank int, bank int, row int) {
	rank = int(address) & mask(p.rankBits)
	bank = int(address>>p.rankBits) & mask(p.bankBits)
	row = int(address >> (p.rankBits + p.bankBits))
	//
	return rank, bank, row
}

func (p *Encoder) pack(rank int, bank int, rowcol int) (uint32, error) {
	if err := p.checkField("rank", rank, p.rankBits); err != nil {
		return 0, err
	}
	//
	if err := p.checkField("bank", bank, p.bankBits); err != nil {
		return 0, err
	}
	//
	address := rank
	address |= bank << p.rankBits
	address |= rowcol << (p.rankBits + p.bankBits)
	//
	return uint32(address), nil
}

func (p *Encoder) checkField(name string, value int, width int) error {
	if value < 0 || value > mask(width) {
		return constraintErrorf("%s %d does not fit in %d bits", name, value, width)
	}
	//
	return nil
}

func mask(width int) int {
	return (1 << width) - 1
}
