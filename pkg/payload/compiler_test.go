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
	"errors"
	"testing"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/dsl"
)

var testSettings = &Settings{
	Phy:  PhySettings{Memtype: "DDR4", Nranks: 1},
	Geom: GeometrySettings{Bankbits: 3, Rowbits: 14, Colbits: 10},
	Timing: TimingSettings{
		TRP: 3, TREFI: 782, TRFC: 52, TRAS: 7, TRCD: 3,
	},
}

func testCompiler() *Compiler {
	return NewCompiler(testSettings, dram.DirectMapping{})
}

func TestCompiler_01(t *testing.T) {
	// Prologue settles refreshes, precharges all, then idles briefly.
	body, err := testCompiler().CompileBody(nil)
	if err != nil || len(body) != 0 {
		t.Errorf("empty body compiled to %v (%v)", body, err)
	}
	//
	payload, err := testCompiler().Compile(nil)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	expected := []Instruction{
		NewInstruction(NOOP, 782, 0),
		NewInstruction(NOOP, 782, 0),
		NewInstruction(NOOP, 782, 0),
		NewInstruction(PRE, 3, 1<<13),
		NewInstruction(NOOP, 1, 0),
		NewInstruction(NOOP, 1, 0),
		NewInstruction(NOOP, 1, 0),
		NewInstruction(NOOP, 0, 0),
	}
	//
	checkInstructions(t, payload, expected)
}

func TestCompiler_02(t *testing.T) {
	// Refresh lowers to REF plus an idle covering the refresh cycle.
	body, err := testCompiler().CompileBody([]dsl.Command{dsl.Refresh{}})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, body, []Instruction{
		NewInstruction(REF, 1, 0),
		NewInstruction(NOOP, 51, 0),
	})
}

func TestCompiler_03(t *testing.T) {
	// Activates carry tRAS and the packed (bank, row) address.
	body, err := testCompiler().CompileBody([]dsl.Command{
		dsl.Activate{Bank: dsl.IntOperand(2), Row: dsl.IntOperand(101)},
	})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, body, []Instruction{
		NewInstruction(ACT, 7, uint32(2|101<<3)),
	})
}

func TestCompiler_04(t *testing.T) {
	// Row remapping is applied on the way to the encoder.
	compiler := NewCompiler(testSettings, dram.MicronSamsungMapping{})
	//
	body, err := compiler.CompileBody([]dsl.Command{
		dsl.Activate{Bank: dsl.IntOperand(0), Row: dsl.IntOperand(10)},
	})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	// Physical row 10 sits in a swizzled group; its logical number is 12.
	checkInstructions(t, body, []Instruction{
		NewInstruction(ACT, 7, uint32(12<<3)),
	})
}

func TestCompiler_05(t *testing.T) {
	// Small loops lower to body plus a single LOOP.
	loop := dsl.HardwareLoop{Count: 3, Body: []dsl.Command{dsl.Refresh{}}}
	//
	body, err := testCompiler().CompileBody([]dsl.Command{loop})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, body, []Instruction{
		NewInstruction(REF, 1, 0),
		NewInstruction(NOOP, 51, 0),
		NewLoop(2, 2),
	})
}

func TestCompiler_06(t *testing.T) {
	// A single-iteration loop needs no LOOP instruction.
	loop := dsl.HardwareLoop{Count: 1, Body: []dsl.Command{dsl.Precharge{}}}
	//
	body, err := testCompiler().CompileBody([]dsl.Command{loop})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, body, []Instruction{
		NewInstruction(PRE, 3, 1<<13),
	})
}

func TestCompiler_07(t *testing.T) {
	// Counts beyond MaxLoopCount are chunked.
	loop := dsl.HardwareLoop{Count: 5000, Body: []dsl.Command{dsl.Precharge{}}}
	//
	body, err := testCompiler().CompileBody([]dsl.Command{loop})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, body, []Instruction{
		NewInstruction(PRE, 3, 1<<13),
		NewLoop(1, 3999),
		NewInstruction(PRE, 3, 1<<13),
		NewLoop(1, 999),
	})
}

func TestCompiler_08(t *testing.T) {
	// Zero-cycle NOOPs are reserved for the epilogue.
	var constraint *HardwareConstraintError
	//
	_, err := testCompiler().CompileBody([]dsl.Command{dsl.Nop{Cycles: 0}})
	if err == nil {
		t.Errorf("expected an error")
	} else if !errors.As(err, &constraint) {
		t.Errorf("expected a hardware constraint error, got %q", err)
	}
}

func TestCompiler_09(t *testing.T) {
	// Symbolic operands must not reach the compiler.
	var invariant *CompileInvariantError
	//
	_, err := testCompiler().CompileBody([]dsl.Command{
		dsl.Activate{Bank: dsl.IntOperand(0), Row: dsl.ExprOperand("A[0].row")},
	})
	if err == nil {
		t.Errorf("expected an error")
	} else if !errors.As(err, &invariant) {
		t.Errorf("expected a compile invariant error, got %q", err)
	}
}

func TestCompiler_10(t *testing.T) {
	// Unresolved for loops must not reach the compiler.
	var invariant *CompileInvariantError
	//
	loop := dsl.ForLoop{
		Var:   "i",
		Start: dsl.IntOperand(0),
		End:   dsl.IntOperand(2),
	}
	//
	if _, err := testCompiler().CompileBody([]dsl.Command{loop}); err == nil {
		t.Errorf("expected an error")
	} else if !errors.As(err, &invariant) {
		t.Errorf("expected a compile invariant error, got %q", err)
	}
}

func TestCompiler_11(t *testing.T) {
	// Rows beyond the configured geometry are rejected.
	var constraint *HardwareConstraintError
	//
	_, err := testCompiler().CompileBody([]dsl.Command{
		dsl.Activate{Bank: dsl.IntOperand(0), Row: dsl.IntOperand(1 << 14)},
	})
	if err == nil {
		t.Errorf("expected an error")
	} else if !errors.As(err, &constraint) {
		t.Errorf("expected a hardware constraint error, got %q", err)
	}
}

func TestCompiler_12(t *testing.T) {
	// End-to-end: source through parse, resolve, unroll and compile.
	tables := map[string][]dram.Address{
		"aggressors": {{Bank: 2, Row: 100}, {Bank: 2, Row: 150}},
	}
	//
	code := `for _ in range(2):
    act(bank=aggressors[0].bank, row=aggressors[0].row)
    pre()`
	//
	instructions, err := testCompiler().CompileSource(code, tables)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	// 7 prologue + (ACT, PRE, LOOP) + 1 epilogue
	expected := []Instruction{
		NewInstruction(ACT, 7, uint32(2|100<<3)),
		NewInstruction(PRE, 3, 1<<13),
		NewLoop(2, 1),
	}
	//
	if len(instructions) != 11 {
		t.Errorf("expected 11 instructions, got %d", len(instructions))
	} else {
		checkInstructions(t, instructions[7:10], expected)
	}
}

func TestCompiler_13(t *testing.T) {
	// A refresh burst is a rolled loop padding each refresh to tREFI.
	instructions, err := testCompiler().RefreshBurst(8)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, instructions, []Instruction{
		NewInstruction(NOOP, 780, 0),
		NewInstruction(PRE, 3, 1<<13),
		NewInstruction(REF, 1, 0),
		NewInstruction(NOOP, 779, 0),
		NewLoop(3, 7),
		NewInstruction(NOOP, 0, 0),
	})
}

func TestCompiler_14(t *testing.T) {
	instructions, err := testCompiler().PrechargeAllPayload()
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	checkInstructions(t, instructions, []Instruction{
		NewInstruction(NOOP, 780, 0),
		NewInstruction(PRE, 3, 1<<13),
		NewInstruction(NOOP, 0, 0),
	})
}

func TestCompiler_15(t *testing.T) {
	// Oversized refresh bursts are rejected.
	if _, err := testCompiler().RefreshBurst(MaxRefreshBurst + 1); err == nil {
		t.Errorf("expected an error")
	}
}

func checkInstructions(t *testing.T, actual []Instruction, expected []Instruction) {
	if len(actual) != len(expected) {
		t.Errorf("compiled %d instructions, expected %d: %v", len(actual), len(expected), actual)
		return
	}
	//
	for i := range actual {
		if actual[i] != expected[i] {
			t.Errorf("instruction %d was %s, expected %s", i, actual[i], expected[i])
		}
	}
}
