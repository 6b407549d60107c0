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

func TestUnroller_01(t *testing.T) {
	// Flat programs are untouched.
	input := []Command{Precharge{}, Refresh{}, Nop{Cycles: 10}}
	checkUnrolled(t, input, "pre()", "ref()", "nop(cycles=10)")
}

func TestUnroller_02(t *testing.T) {
	// Outermost loops stay rolled.
	input := []Command{HardwareLoop{Count: 5, Body: []Command{Precharge{}}}}
	checkUnrolled(t, input, "loop(count=5, body=[pre()])")
}

func TestUnroller_03(t *testing.T) {
	// Nested loops are expanded by repetition.
	inner := HardwareLoop{Count: 2, Body: []Command{Refresh{}}}
	input := []Command{HardwareLoop{Count: 3, Body: []Command{Precharge{}, inner}}}
	//
	checkUnrolled(t, input, "loop(count=3, body=[pre() ref() ref()])")
}

func TestUnroller_04(t *testing.T) {
	// Doubly nested loops.
	innermost := HardwareLoop{Count: 2, Body: []Command{Nop{Cycles: 1}}}
	inner := HardwareLoop{Count: 2, Body: []Command{innermost}}
	input := []Command{HardwareLoop{Count: 4, Body: []Command{inner}}}
	//
	checkUnrolled(t, input,
		"loop(count=4, body=[nop(cycles=1) nop(cycles=1) nop(cycles=1) nop(cycles=1)])")
}

func TestUnroller_05(t *testing.T) {
	// Zero-count nested loop contributes nothing.
	inner := HardwareLoop{Count: 0, Body: []Command{Refresh{}}}
	input := []Command{HardwareLoop{Count: 2, Body: []Command{Precharge{}, inner}}}
	//
	checkUnrolled(t, input, "loop(count=2, body=[pre()])")
}

func TestUnroller_06(t *testing.T) {
	// Unrolling is idempotent.
	inner := HardwareLoop{Count: 2, Body: []Command{Refresh{}}}
	input := []Command{HardwareLoop{Count: 3, Body: []Command{inner}}}
	//
	once := Unroll(input)
	twice := Unroll(once)
	//
	if len(once) != len(twice) {
		t.Errorf("unrolling not idempotent: %v vs %v", once, twice)
	}
	//
	for i := range once {
		if once[i].String() != twice[i].String() {
			t.Errorf("unrolling not idempotent: %v vs %v", once[i], twice[i])
		}
	}
}

func checkUnrolled(t *testing.T, input []Command, expected ...string) {
	unrolled := Unroll(input)
	//
	if len(unrolled) != len(expected) {
		t.Errorf("unrolling %v produced %d commands, expected %d", input, len(unrolled), len(expected))
	} else {
		for i, command := range unrolled {
			if command.String() != expected[i] {
				t.Errorf("unrolling %v produced %q, expected %q", input, command, expected[i])
			}
		}
	}
}
