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

// Package payload compiles resolved experiment programs into the instruction
// stream executed by the memory controller's payload executor.  A payload is
// a flat instruction sequence bracketed by a fixed prologue (which settles
// the command bus and precharges all banks) and a terminating epilogue.
package payload

import "fmt"

// OpCode identifies a payload executor instruction.  The values match the
// executor gateware and must not be renumbered.
type OpCode uint8

const (
	// NOOP idles the command bus for its timeslice.
	NOOP OpCode = 0
	// ACT opens the addressed row.
	ACT OpCode = 4
	// PRE precharges; with the precharge-all column bit set it closes every
	// bank.
	PRE OpCode = 5
	// REF issues a refresh command.
	REF OpCode = 6
	// LOOP jumps backwards over the preceding instructions count times.
	LOOP OpCode = 7
)

func (op OpCode) String() string {
	switch op {
	case NOOP:
		return "NOOP"
	case ACT:
		return "ACT"
	case PRE:
		return "PRE"
	case REF:
		return "REF"
	case LOOP:
		return "LOOP"
	default:
		return fmt.Sprintf("OpCode(%d)", uint8(op))
	}
}
