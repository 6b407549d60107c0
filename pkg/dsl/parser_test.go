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
package dsl

import "testing"

func TestParser_01(t *testing.T) {
	checkProgram(t, "pre()", "pre()")
}

func TestParser_02(t *testing.T) {
	checkProgram(t, "ref()", "ref()")
}

func TestParser_03(t *testing.T) {
	checkProgram(t, "nop(cycles=100)", "nop(cycles=100)")
}

func TestParser_04(t *testing.T) {
	// Cycle count defaults to zero (and is rejected downstream).
	checkProgram(t, "nop()", "nop(cycles=0)")
}

func TestParser_05(t *testing.T) {
	checkProgram(t, "act(bank=2, row=101)", "act(bank=2, row=101)")
}

func TestParser_06(t *testing.T) {
	checkProgram(t, "act(bank=A[0].bank, row=A[i+1].row - 1)",
		"act(bank=A[0].bank, row=A[i+1].row - 1)")
}

func TestParser_07(t *testing.T) {
	checkProgram(t, "for _ in range(5):\n    act(bank=0, row=1)",
		"loop(count=5, body=[act(bank=0, row=1)])")
}

func TestParser_08(t *testing.T) {
	checkProgram(t, "for _ in range(1, 5):\n    pre()",
		"loop(count=4, body=[pre()])")
}

func TestParser_09(t *testing.T) {
	checkProgram(t, "for i in range(2):\n    act(bank=0, row=i)",
		"for(i in range(0, 2), body=[act(bank=0, row=i)])")
}

func TestParser_10(t *testing.T) {
	checkProgram(t, "for i in range(n, n + 2):\n    ref()",
		"for(i in range(n, n + 2), body=[ref()])")
}

func TestParser_11(t *testing.T) {
	// Nested loops with dedent back to the enclosing block.
	input := `for i in range(2):
    for _ in range(3):
        act(bank=0, row=i)
    pre()
ref()`
	checkProgram(t, input,
		"for(i in range(0, 2), body=[loop(count=3, body=[act(bank=0, row=i)]) pre()])",
		"ref()")
}

func TestParser_12(t *testing.T) {
	// Comments and blank lines are ignored.
	input := `# open a row
act(bank=0, row=1)   # aggressor

pre()`
	checkProgram(t, input, "act(bank=0, row=1)", "pre()")
}

func TestParser_13(t *testing.T) {
	checkParseFails(t, "jmp(5)")
}

func TestParser_14(t *testing.T) {
	checkParseFails(t, "x = 1")
}

func TestParser_15(t *testing.T) {
	// Hardware loops require concrete bounds.
	checkParseFails(t, "for _ in range(n):\n    pre()")
}

func TestParser_16(t *testing.T) {
	checkParseFails(t, "for i in range(1, 2, 3):\n    pre()")
}

func TestParser_17(t *testing.T) {
	// Loop without a body.
	checkParseFails(t, "for i in range(2):")
}

func TestParser_18(t *testing.T) {
	// Indentation without an enclosing loop.
	checkParseFails(t, "pre()\n    ref()")
}

func TestParser_19(t *testing.T) {
	// Cycle counts must be literal.
	checkParseFails(t, "nop(cycles=n)")
}

func TestParser_20(t *testing.T) {
	checkParseFails(t, "act(bank=0)")
}

func TestParser_21(t *testing.T) {
	checkParseFails(t, "pre() ref()")
}

func TestParser_22(t *testing.T) {
	// Every statement form in one program.
	input := `act(bank=addresses[0].bank, row=addresses[0].row + 1)
pre()
ref()
nop(cycles=7)
for _ in range(2):
    act(bank=0, row=1)`
	checkProgram(t, input,
		"act(bank=addresses[0].bank, row=addresses[0].row + 1)",
		"pre()",
		"ref()",
		"nop(cycles=7)",
		"loop(count=2, body=[act(bank=0, row=1)])")
}

func checkProgram(t *testing.T, input string, expected ...string) {
	commands, err := ParseString(input)
	//
	if err != nil {
		t.Errorf("unexpected error %q parsing %q", err, input)
	} else if len(commands) != len(expected) {
		t.Errorf("parsing %q produced %d commands, expected %d", input, len(commands), len(expected))
	} else {
		for i, command := range commands {
			if command.String() != expected[i] {
				t.Errorf("parsing %q produced %q, expected %q", input, command, expected[i])
			}
		}
	}
}

func checkParseFails(t *testing.T, input string) {
	if _, err := ParseString(input); err == nil {
		t.Errorf("parsing %q should have failed", input)
	}
}
