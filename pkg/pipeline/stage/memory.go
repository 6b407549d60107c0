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
package stage

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
)

// WriteRowsDMA fills the given rows with a repeating 32-bit pattern over
// DMA.
type WriteRowsDMA struct {
	Addresses []dram.Address
	Pattern   uint32
}

// Setup implementation for the Stage interface.
func (p *WriteRowsDMA) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *WriteRowsDMA) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	return ctx, ctrl.MemSetRows(p.Addresses, p.Pattern)
}

func (p *WriteRowsDMA) String() string {
	return fmt.Sprintf("WriteRowsDMA(rows=%d, pattern=0x%x)", len(p.Addresses), p.Pattern)
}

// BitflipCheckAddresses checks rows against their fill pattern, flagging
// those which flipped (minus any ignored addresses) and recording them under
// "addresses_dict_bitflipped".
type BitflipCheckAddresses struct {
	Addresses []dram.Address
	Pattern   uint32
	Ignore    []dram.Address
}

// Setup implementation for the Stage interface.
func (p *BitflipCheckAddresses) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *BitflipCheckAddresses) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	flipped, err := ctrl.FlippedAddresses(p.Addresses, p.Pattern)
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	flipped = subtract(flipped, p.Ignore)
	//
	ctx, err = ctx.ReplaceBitflipped(flipped).AddData("addresses_dict_bitflipped", dram.Records(flipped))
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	return ctx, nil
}

func (p *BitflipCheckAddresses) String() string {
	return fmt.Sprintf("BitflipCheckAddresses(rows=%d, pattern=0x%x)", len(p.Addresses), p.Pattern)
}

// NoBitflipCheckAddresses is the dual check: it flags the addresses which
// did NOT flip, recording them under "addresses_not_bitflipped".  Used when
// the absence of a flip is the signal, e.g. when a refresh landed in time.
type NoBitflipCheckAddresses struct {
	Addresses []dram.Address
	Pattern   uint32
	Ignore    []dram.Address
}

// Setup implementation for the Stage interface.
func (p *NoBitflipCheckAddresses) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *NoBitflipCheckAddresses) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	flipped, err := ctrl.FlippedAddresses(p.Addresses, p.Pattern)
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	notFlipped := subtract(subtract(p.Addresses, flipped), p.Ignore)
	notFlipped = dram.SortAscending(notFlipped)
	//
	ctx, err = ctx.ReplaceBitflipped(notFlipped).AddData("addresses_not_bitflipped", dram.Records(notFlipped))
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	return ctx, nil
}

func (p *NoBitflipCheckAddresses) String() string {
	return fmt.Sprintf("NoBitflipCheckAddresses(rows=%d, pattern=0x%x)", len(p.Addresses), p.Pattern)
}

// BitflipCheckRows checks row numbers within one bank, recording those which
// flipped under "rows_bitflipped".  Optionally the check order is shuffled
// between runs, to average out any order-dependent effects of the check
// reads themselves.
type BitflipCheckRows struct {
	Bank    int
	Rows    []int
	Pattern uint32
	Shuffle bool
}

// Setup implementation for the Stage interface.
func (p *BitflipCheckRows) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *BitflipCheckRows) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	if p.Shuffle {
		rand.Shuffle(len(p.Rows), func(i, j int) {
			p.Rows[i], p.Rows[j] = p.Rows[j], p.Rows[i]
		})
	}
	//
	flipped, err := ctrl.FlippedRows(p.Bank, p.Rows, p.Pattern)
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	return ctx.AddData("rows_bitflipped", flipped)
}

func (p *BitflipCheckRows) String() string {
	return fmt.Sprintf("BitflipCheckRows(bank=%d, rows=%d, pattern=0x%x)", p.Bank, len(p.Rows), p.Pattern)
}

// AnnotateIndexNotBitflipped maps the currently flagged addresses back to
// caller-defined indices (e.g. positions within a row group series) and
// records the sorted result under "indices_not_bitflipped".
type AnnotateIndexNotBitflipped struct {
	Indices map[dram.Address][]int
}

// Setup implementation for the Stage interface.
func (p *AnnotateIndexNotBitflipped) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *AnnotateIndexNotBitflipped) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	var indices []int
	//
	for _, address := range ctx.Bitflipped() {
		indices = append(indices, p.Indices[address]...)
	}
	//
	slices.Sort(indices)
	//
	return ctx.AddData("indices_not_bitflipped", indices)
}

func (p *AnnotateIndexNotBitflipped) String() string {
	return fmt.Sprintf("AnnotateIndexNotBitflipped(addresses=%d)", len(p.Indices))
}

// subtract removes all elements of exclusions from addresses, preserving
// order.
func subtract(addresses []dram.Address, exclusions []dram.Address) []dram.Address {
	if len(exclusions) == 0 {
		return addresses
	}
	//
	excluded := make(map[dram.Address]bool, len(exclusions))
	for _, address := range exclusions {
		excluded[address] = true
	}
	//
	var kept []dram.Address
	//
	for _, address := range addresses {
		if !excluded[address] {
			kept = append(kept, address)
		}
	}
	//
	return kept
}
