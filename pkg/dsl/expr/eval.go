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
package expr

import (
	"fmt"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
)

// Value is the result of evaluating a term: an integer, a single address, or
// a whole address table.
type Value interface {
	isValue()
}

// IntValue is an integer result.
type IntValue int

// AddressValue is a single resolved DRAM address.
type AddressValue dram.Address

// TableValue is a whole address table, as produced by referencing its name.
type TableValue []dram.Address

func (IntValue) isValue()     {}
func (AddressValue) isValue() {}
func (TableValue) isValue()   {}

// EvalError reports a failed evaluation, retaining the offending expression
// text so callers can surface it.
type EvalError struct {
	// Expression being evaluated.
	Expr string
	// What went wrong.
	Msg string
}

func (p *EvalError) Error() string {
	return fmt.Sprintf("evaluating %q: %s", p.Expr, p.Msg)
}

// Scope supplies the two namespaces an expression may reference: loop
// variables and address tables.  Loop variables shadow tables of the same
// name.
type Scope struct {
	// Current loop-variable bindings.
	Vars map[string]int
	// Named address tables supplied by the caller.
	Tables map[string][]dram.Address
}

// Eval parses and evaluates an expression against a given scope.  Evaluation
// is deterministic and has no side effects; any failure (malformed
// expression, unknown name, out-of-range index, wrong operand type) is
// reported as an EvalError.
func Eval(input string, scope Scope) (Value, error) {
	term, errs := Parse(input)
	if len(errs) != 0 {
		return nil, &EvalError{Expr: input, Msg: errs[0].Message()}
	}
	//
	evaluator := &evaluator{input, scope}
	//
	return evaluator.eval(term)
}

// EvalInt evaluates an expression which must produce an integer.
func EvalInt(input string, scope Scope) (int, error) {
	value, err := Eval(input, scope)
	if err != nil {
		return 0, err
	}
	//
	intval, ok := value.(IntValue)
	if !ok {
		return 0, &EvalError{Expr: input, Msg: "expected an integer result"}
	}
	//
	return int(intval), nil
}

type evaluator struct {
	input string
	scope Scope
}

func (p *evaluator) eval(term Term) (Value, error) {
	switch t := term.(type) {
	case *Number:
		return IntValue(t.Value), nil
	case *Name:
		return p.evalName(t)
	case *BinOp:
		return p.evalBinOp(t)
	case *Negate:
		arg, err := p.evalInt(t.Arg)
		if err != nil {
			return nil, err
		}
		//
		return IntValue(-arg), nil
	case *Index:
		return p.evalIndex(t)
	case *Field:
		return p.evalField(t)
	default:
		panic("unreachable")
	}
}

// evalName resolves a bare name, with loop variables taking precedence over
// address tables.
func (p *evaluator) evalName(term *Name) (Value, error) {
	if value, ok := p.scope.Vars[term.Ident]; ok {
		return IntValue(value), nil
	}
	//
	if table, ok := p.scope.Tables[term.Ident]; ok {
		return TableValue(table), nil
	}
	//
	return nil, p.errorf("unknown name: %s", term.Ident)
}

func (p *evaluator) evalBinOp(term *BinOp) (Value, error) {
	lhs, err := p.evalInt(term.Lhs)
	if err != nil {
		return nil, err
	}
	//
	rhs, err := p.evalInt(term.Rhs)
	if err != nil {
		return nil, err
	}
	//
	switch term.Op {
	case ADD:
		return IntValue(lhs + rhs), nil
	case SUB:
		return IntValue(lhs - rhs), nil
	case MUL:
		return IntValue(lhs * rhs), nil
	case FLOORDIV:
		if rhs == 0 {
			return nil, p.errorf("division by zero")
		}
		//
		return IntValue(floorDiv(lhs, rhs)), nil
	case MOD:
		if rhs == 0 {
			return nil, p.errorf("modulo by zero")
		}
		//
		return IntValue(floorMod(lhs, rhs)), nil
	case POW:
		if rhs < 0 {
			return nil, p.errorf("negative exponent")
		}
		//
		return IntValue(ipow(lhs, rhs)), nil
	case BITAND:
		return IntValue(lhs & rhs), nil
	case BITOR:
		return IntValue(lhs | rhs), nil
	case BITXOR:
		return IntValue(lhs ^ rhs), nil
	case SHL:
		return IntValue(lhs << rhs), nil
	case SHR:
		return IntValue(lhs >> rhs), nil
	default:
		panic("unknown operator")
	}
}

func (p *evaluator) evalIndex(term *Index) (Value, error) {
	base, err := p.eval(term.Base)
	if err != nil {
		return nil, err
	}
	//
	table, ok := base.(TableValue)
	if !ok {
		return nil, p.errorf("subscript is only supported on address tables")
	}
	//
	index, err := p.evalInt(term.Index)
	if err != nil {
		return nil, err
	}
	//
	if index < 0 || index >= len(table) {
		return nil, p.errorf("index %d out of range", index)
	}
	//
	return AddressValue(table[index]), nil
}

func (p *evaluator) evalField(term *Field) (Value, error) {
	base, err := p.eval(term.Base)
	if err != nil {
		return nil, err
	}
	//
	address, ok := base.(AddressValue)
	if !ok {
		return nil, p.errorf("cannot access %q on a non-address value", term.Name)
	}
	//
	switch term.Name {
	case "bank":
		return IntValue(address.Bank), nil
	case "row":
		return IntValue(address.Row), nil
	default:
		return nil, p.errorf("address has no field %q", term.Name)
	}
}

// evalInt evaluates a subterm which must produce an integer.
func (p *evaluator) evalInt(term Term) (int, error) {
	value, err := p.eval(term)
	if err != nil {
		return 0, err
	}
	//
	intval, ok := value.(IntValue)
	if !ok {
		return 0, p.errorf("expected an integer operand")
	}
	//
	return int(intval), nil
}

func (p *evaluator) errorf(format string, args ...any) *EvalError {
	return &EvalError{Expr: p.input, Msg: fmt.Sprintf(format, args...)}
}

// floorDiv implements floored integer division, so that "//" rounds towards
// negative infinity rather than towards zero.
func floorDiv(lhs int, rhs int) int {
	quotient := lhs / rhs
	//
	if (lhs%rhs != 0) && ((lhs < 0) != (rhs < 0)) {
		quotient--
	}
	//
	return quotient
}

// floorMod implements floored modulo, so the result takes the sign of the
// divisor.
func floorMod(lhs int, rhs int) int {
	return lhs - floorDiv(lhs, rhs)*rhs
}

func ipow(base int, exponent int) int {
	result := 1
	//
	for i := 0; i < exponent; i++ {
		result *= base
	}
	//
	return result
}
