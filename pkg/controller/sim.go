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
package controller

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	log "github.com/sirupsen/logrus"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/dram/rowbits"
	"github.com/hwsec-lab/go-utrr/pkg/payload"
)

// alignChunk is the largest refresh increment issued per payload during
// refresh alignment.
const alignChunk = 1000

// FlipRule tells the simulator to corrupt a victim bit once its aggressor
// row has been activated sufficiently often within a single payload.
type FlipRule struct {
	Aggressor dram.Address
	Victim    dram.Address
	Bit       uint
	// Activations of the aggressor needed before the victim bit flips.
	Threshold int
}

// SimController interprets payloads against an in-memory DRAM model.  Rows
// read as all zeroes until written.  Activate addresses carry logical row
// numbers, so the row mapping is applied on the way back to physical rows
// when matching flip rules.
type SimController struct {
	compiler    *payload.Compiler
	mapping     dram.RowMapping
	bytesPerRow int
	memory      map[dram.Address]*bitset.BitSet
	rules       []FlipRule
	//
	refreshEnabled bool
	refreshCount   int
}

var _ Controller = (*SimController)(nil)

// NewSimController constructs a simulator for the given controller
// configuration and row mapping.
func NewSimController(settings *payload.Settings, mapping dram.RowMapping) *SimController {
	return &SimController{
		compiler:       payload.NewCompiler(settings, mapping),
		mapping:        mapping,
		bytesPerRow:    rowbits.DefaultBytesPerRow,
		memory:         make(map[dram.Address]*bitset.BitSet),
		refreshEnabled: true,
	}
}

// Compiler returns a payload compiler matching this simulator's
// configuration.
func (p *SimController) Compiler() *payload.Compiler {
	return p.compiler
}

// AddFlipRule arms a fault the simulator will inject during payload
// execution.
func (p *SimController) AddFlipRule(rule FlipRule) {
	p.rules = append(p.rules, rule)
}

// ExecutePayload interprets a payload, counting refreshes and row
// activations, then applies any armed flip rules whose aggressor was
// hammered past its threshold.
func (p *SimController) ExecutePayload(instructions []payload.Instruction) error {
	activations := make(map[dram.Address]int)
	// Remaining iterations of each LOOP, by instruction index.
	loops := make(map[int]int)
	//
	for pc := 0; pc < len(instructions); pc++ {
		insn := instructions[pc]
		//
		switch insn.Op {
		case payload.NOOP, payload.PRE:
			// No architectural effect on the model.
		case payload.REF:
			p.refreshCount++
		case payload.ACT:
			_, bank, logicalRow := p.compiler.Encoder().DecodeRow(insn.Address)
			row := p.mapping.LogicalToPhysical(logicalRow)
			activations[dram.Address{Bank: bank, Row: row}]++
		case payload.LOOP:
			remaining, ok := loops[pc]
			if !ok {
				remaining = insn.Count
			}
			//
			if remaining > 0 {
				loops[pc] = remaining - 1
				pc -= insn.Jump + 1
			} else {
				delete(loops, pc)
			}
		default:
			return fmt.Errorf("cannot execute instruction %s", insn)
		}
	}
	//
	p.applyRules(activations)
	//
	return nil
}

func (p *SimController) applyRules(activations map[dram.Address]int) {
	for _, rule := range p.rules {
		if activations[rule.Aggressor] >= rule.Threshold {
			log.Debugf("injecting bitflip at %s bit %d", rule.Victim, rule.Bit)
			p.row(rule.Victim).Flip(rule.Bit)
		}
	}
}

// ReadRefreshCount reads the simulated refresh counter.
func (p *SimController) ReadRefreshCount() (int, error) {
	return p.refreshCount, nil
}

// EnableRefresh re-enables (simulated) auto refresh.
func (p *SimController) EnableRefresh() error {
	p.refreshEnabled = true
	return nil
}

// DisableRefresh suspends (simulated) auto refresh.
func (p *SimController) DisableRefresh() error {
	p.refreshEnabled = false
	return nil
}

// RefreshEnabled reports whether auto refresh is currently on.
func (p *SimController) RefreshEnabled() bool {
	return p.refreshEnabled
}

// AlignRefresh issues refresh payloads until the counter reaches the target,
// in bounded increments so each payload stays within executor limits.
func (p *SimController) AlignRefresh(target int) error {
	if err := p.DisableRefresh(); err != nil {
		return err
	}
	//
	current, err := p.ReadRefreshCount()
	if err != nil {
		return err
	}
	//
	log.Debugf("refresh count before alignment: %d", current)
	//
	if current > target {
		return fmt.Errorf("refresh count %d already beyond target %d", current, target)
	}
	//
	for current < target {
		increment := min(alignChunk, target-current)
		//
		burst, err := p.compiler.RefreshBurst(increment)
		if err != nil {
			return err
		}
		//
		if err := p.ExecutePayload(burst); err != nil {
			return err
		}
		//
		current += increment
		//
		actual, err := p.ReadRefreshCount()
		if err != nil {
			return err
		} else if actual != current {
			return fmt.Errorf("refresh count %d after alignment step, expected %d", actual, current)
		}
	}
	//
	return nil
}

// AlignModRefresh aligns the refresh counter to the next value congruent to
// mod modulo modulus.
func (p *SimController) AlignModRefresh(modulus int, mod int) error {
	current, err := p.ReadRefreshCount()
	if err != nil {
		return err
	}
	//
	return p.AlignRefresh(current + modulus - (current % modulus) + mod)
}

// MemSetRows fills whole rows with a repeating 32-bit pattern.
func (p *SimController) MemSetRows(addresses []dram.Address, pattern uint32) error {
	for _, address := range addresses {
		p.memory[address] = rowbits.Repeat32(pattern, p.bytesPerRow)
	}
	//
	return nil
}

// FlippedAddresses checks rows against a fill pattern, returning those which
// no longer match.
func (p *SimController) FlippedAddresses(addresses []dram.Address, pattern uint32) ([]dram.Address, error) {
	var flipped []dram.Address
	//
	expected := rowbits.Repeat32(pattern, p.bytesPerRow)
	//
	for _, address := range addresses {
		if !p.row(address).Equal(expected) {
			flipped = append(flipped, address)
		}
	}
	//
	return flipped, nil
}

// FlippedRows is FlippedAddresses over row numbers within one bank.
func (p *SimController) FlippedRows(bank int, rows []int, pattern uint32) ([]int, error) {
	addresses := make([]dram.Address, len(rows))
	//
	for i, row := range rows {
		addresses[i] = dram.Address{Bank: bank, Row: row}
	}
	//
	flipped, err := p.FlippedAddresses(addresses, pattern)
	if err != nil {
		return nil, err
	}
	//
	flippedRows := make([]int, len(flipped))
	//
	for i, address := range flipped {
		flippedRows[i] = address.Row
	}
	//
	return flippedRows, nil
}

// FlipLocations checks one row against a fill pattern, returning the exact
// positions of any flipped bits.
func (p *SimController) FlipLocations(address dram.Address, pattern uint32) ([]rowbits.FlipLocation, error) {
	expected := rowbits.Repeat32(pattern, p.bytesPerRow)
	//
	positions, err := rowbits.DiffPositions(p.row(address), expected)
	if err != nil {
		return nil, err
	}
	//
	locations := make([]rowbits.FlipLocation, len(positions))
	//
	for i, position := range positions {
		locations[i] = rowbits.FlipLocation{
			Bank:     address.Bank,
			Row:      address.Row,
			BitIndex: int(position),
		}
	}
	//
	return locations, nil
}

// ReadRowBits reads a whole row.
func (p *SimController) ReadRowBits(address dram.Address) (*bitset.BitSet, error) {
	return p.row(address).Clone(), nil
}

// WriteRowBits writes a whole row.
func (p *SimController) WriteRowBits(address dram.Address, bits *bitset.BitSet) error {
	if int(bits.Len()) != p.bytesPerRow*8 {
		return fmt.Errorf("row bit vector has %d bits, expected %d", bits.Len(), p.bytesPerRow*8)
	}
	//
	p.memory[address] = bits.Clone()
	//
	return nil
}

// row returns the live bit vector of a row, materialising it on first use.
func (p *SimController) row(address dram.Address) *bitset.BitSet {
	bits, ok := p.memory[address]
	//
	if !ok {
		bits = rowbits.AllZero(p.bytesPerRow)
		p.memory[address] = bits
	}
	//
	return bits
}
