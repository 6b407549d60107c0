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

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble writes a human-readable listing of a payload, decoding ACT and
// PRE addresses back into their parts.
func (p *Encoder) Disassemble(w io.Writer, payload []Instruction) error {
	for i, insn := range payload {
		if _, err := fmt.Fprintf(w, "%4d: %s\n", i, p.disassemble(insn)); err != nil {
			return err
		}
	}
	//
	return nil
}

// Format renders a payload listing as a string.
func (p *Encoder) Format(payload []Instruction) string {
	var builder strings.Builder
	// Writes to a builder cannot fail.
	_ = p.Disassemble(&builder, payload)
	//
	return builder.String()
}

func (p *Encoder) disassemble(insn Instruction) string {
	switch insn.Op {
	case ACT:
		rank, bank, row := p.DecodeRow(insn.Address)
		return fmt.Sprintf("ACT  timeslice=%d rank=%d bank=%d row=%d (0x%x)",
			insn.Timeslice, rank, bank, row, row)
	case PRE:
		rank, bank, col := p.DecodeRow(insn.Address)
		if col == PrechargeAllColumn {
			return fmt.Sprintf("PRE  timeslice=%d rank=%d all banks", insn.Timeslice, rank)
		}
		//
		return fmt.Sprintf("PRE  timeslice=%d rank=%d bank=%d", insn.Timeslice, rank, bank)
	case REF:
		return fmt.Sprintf("REF  timeslice=%d", insn.Timeslice)
	case NOOP:
		return fmt.Sprintf("NOOP timeslice=%d", insn.Timeslice)
	case LOOP:
		return fmt.Sprintf("LOOP jump=%d count=%d", insn.Jump, insn.Count)
	default:
		return insn.String()
	}
}
