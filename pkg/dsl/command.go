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

// Package dsl implements the experiment description language: a minimal
// statement grammar over the primitive DRAM operations (act, pre, ref, nop)
// with counted hardware loops and compile-time-unrolled for loops.  Programs
// pass through three phases: parsing into a command tree, resolution of
// every address expression against named address tables, and unrolling of
// nested hardware loops.  Each phase builds a new tree; commands are never
// mutated in place.
package dsl

import "fmt"

// Command represents a single statement of an experiment program.  The
// variant set is closed: the four primitives plus the two control-flow forms.
type Command interface {
	isCommand()
	fmt.Stringer
}

// Precharge closes the currently open row in all banks.
type Precharge struct{}

// Refresh issues one refresh command.
type Refresh struct{}

// Nop idles the command bus for a given number of cycles.
type Nop struct {
	Cycles int
}

// Activate opens a row.  Bank and row are operands, which may be symbolic
// until resolution.
type Activate struct {
	Bank Operand
	Row  Operand
}

// HardwareLoop repeats its body a fixed number of times using the
// controller's loop-with-repeat primitive.  Written "for _ in range(n):".
type HardwareLoop struct {
	Count int
	Body  []Command
}

// ForLoop is a compile-time loop, eagerly unrolled during resolution with
// its variable bound to each value of [Start, End).  Bounds may be symbolic
// expressions over enclosing loop variables.
type ForLoop struct {
	Var   string
	Start Operand
	End   Operand
	Body  []Command
}

func (p Precharge) isCommand()    {}
func (p Refresh) isCommand()      {}
func (p Nop) isCommand()          {}
func (p Activate) isCommand()     {}
func (p HardwareLoop) isCommand() {}
func (p ForLoop) isCommand()      {}

func (p Precharge) String() string {
	return "pre()"
}

func (p Refresh) String() string {
	return "ref()"
}

func (p Nop) String() string {
	return fmt.Sprintf("nop(cycles=%d)", p.Cycles)
}

func (p Activate) String() string {
	return fmt.Sprintf("act(bank=%s, row=%s)", p.Bank, p.Row)
}

func (p HardwareLoop) String() string {
	return fmt.Sprintf("loop(count=%d, body=%v)", p.Count, p.Body)
}

func (p ForLoop) String() string {
	return fmt.Sprintf("for(%s in range(%s, %s), body=%v)", p.Var, p.Start, p.End, p.Body)
}

// Operand holds either a concrete integer or the text of an unevaluated
// expression.  The parser never evaluates expressions; symbolic operands
// survive until the resolver binds them.
type Operand struct {
	expr     string
	value    int
	symbolic bool
}

// IntOperand constructs a concrete operand.
func IntOperand(value int) Operand {
	return Operand{value: value}
}

// ExprOperand constructs a symbolic operand from unparsed expression text.
func ExprOperand(expr string) Operand {
	return Operand{expr: expr, symbolic: true}
}

// IsInt checks whether this operand holds a concrete integer.
func (p Operand) IsInt() bool {
	return !p.symbolic
}

// Int returns the concrete value of this operand.  This panics on a symbolic
// operand; callers must check IsInt first.
func (p Operand) Int() int {
	if p.symbolic {
		panic(fmt.Sprintf("operand %q is symbolic", p.expr))
	}
	//
	return p.value
}

// Expr returns the expression text of a symbolic operand.
func (p Operand) Expr() string {
	return p.expr
}

func (p Operand) String() string {
	if p.symbolic {
		return p.expr
	}
	//
	return fmt.Sprintf("%d", p.value)
}
