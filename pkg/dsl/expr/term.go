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

// Package expr implements the restricted expression language used inside
// experiment programs, e.g. "aggressors[i+1].row - 1".  Expressions are
// parsed into a small tagged-variant AST and evaluated by a tree walker over
// two explicit scopes: loop variables and named address tables.  There is no
// dynamic code execution and evaluation has no side effects.
package expr

import "fmt"

// Term represents a node of the expression AST.  The variant set is closed.
type Term interface {
	isTerm()
	fmt.Stringer
}

// Number is an integer literal.
type Number struct {
	Value int
}

// Name is a reference to a loop variable or an address table.
type Name struct {
	Ident string
}

// BinOp is a binary arithmetic or bitwise operation.
type BinOp struct {
	Op  BinKind
	Lhs Term
	Rhs Term
}

// Negate is unary arithmetic negation.
type Negate struct {
	Arg Term
}

// Index subscripts an address table, e.g. "aggressors[i]".
type Index struct {
	Base  Term
	Index Term
}

// Field accesses a field of a resolved address, e.g. ".row" or ".bank".
type Field struct {
	Base Term
	Name string
}

func (p *Number) isTerm() {}
func (p *Name) isTerm()   {}
func (p *BinOp) isTerm()  {}
func (p *Negate) isTerm() {}
func (p *Index) isTerm()  {}
func (p *Field) isTerm()  {}

func (p *Number) String() string {
	return fmt.Sprintf("%d", p.Value)
}

func (p *Name) String() string {
	return p.Ident
}

func (p *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Lhs, p.Op, p.Rhs)
}

func (p *Negate) String() string {
	return fmt.Sprintf("(-%s)", p.Arg)
}

func (p *Index) String() string {
	return fmt.Sprintf("%s[%s]", p.Base, p.Index)
}

func (p *Field) String() string {
	return fmt.Sprintf("%s.%s", p.Base, p.Name)
}

// BinKind identifies a permitted binary operator.  Any operator outside this
// set is rejected at parse time.
type BinKind uint

// The whitelisted binary operators.
const (
	ADD BinKind = iota
	SUB
	MUL
	FLOORDIV
	MOD
	POW
	BITAND
	BITOR
	BITXOR
	SHL
	SHR
)

func (k BinKind) String() string {
	switch k {
	case ADD:
		return "+"
	case SUB:
		return "-"
	case MUL:
		return "*"
	case FLOORDIV:
		return "//"
	case MOD:
		return "%"
	case POW:
		return "**"
	case BITAND:
		return "&"
	case BITOR:
		return "|"
	case BITXOR:
		return "^"
	case SHL:
		return "<<"
	case SHR:
		return ">>"
	default:
		panic("unknown operator")
	}
}
