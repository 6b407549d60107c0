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

import "fmt"

// Instruction is a single payload executor instruction.  Timing instructions
// use Timeslice and Address; LOOP instead uses Jump and Count, jumping back
// over the preceding Jump instructions Count additional times.
type Instruction struct {
	Op OpCode
	// Bus cycles this instruction occupies.
	Timeslice int
	// Encoded DRAM address (ACT and PRE only).
	Address uint32
	// Loop body length in instructions (LOOP only).
	Jump int
	// Additional loop iterations (LOOP only).
	Count int
}

// NewInstruction constructs a timing instruction.
func NewInstruction(op OpCode, timeslice int, address uint32) Instruction {
	return Instruction{Op: op, Timeslice: timeslice, Address: address}
}

// NewLoop constructs a LOOP instruction repeating the previous jump
// instructions count additional times.
func NewLoop(jump int, count int) Instruction {
	return Instruction{Op: LOOP, Jump: jump, Count: count}
}

func (p Instruction) String() string {
	if p.Op == LOOP {
		return fmt.Sprintf("LOOP(jump=%d, count=%d)", p.Jump, p.Count)
	}
	//
	return fmt.Sprintf("%s(timeslice=%d, address=0x%x)", p.Op, p.Timeslice, p.Address)
}
