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

import (
	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/dsl/expr"
)

// Resolve binds every symbolic operand of a parsed program against the given
// address tables, eagerly unrolling for loops in the process.  The result
// contains only primitives and hardware loops, with every activate holding
// concrete bank and row values.  The input is not modified.
func Resolve(commands []Command, tables map[string][]dram.Address) ([]Command, error) {
	resolver := &resolver{expr.Scope{
		Vars:   make(map[string]int),
		Tables: tables,
	}}
	//
	return resolver.resolveAll(commands)
}

type resolver struct {
	scope expr.Scope
}

func (p *resolver) resolveAll(commands []Command) ([]Command, error) {
	var resolved []Command
	//
	for _, command := range commands {
		commands, err := p.resolve(command)
		if err != nil {
			return nil, err
		}
		//
		resolved = append(resolved, commands...)
	}
	//
	return resolved, nil
}

// resolve maps one command to its resolved form.  Most commands resolve to
// themselves; a for loop resolves to count-many copies of its resolved body.
func (p *resolver) resolve(command Command) ([]Command, error) {
	switch c := command.(type) {
	case Activate:
		return p.resolveActivate(c)
	case HardwareLoop:
		body, err := p.resolveAll(c.Body)
		if err != nil {
			return nil, err
		}
		//
		return []Command{HardwareLoop{Count: c.Count, Body: body}}, nil
	case ForLoop:
		return p.resolveFor(c)
	default:
		return []Command{command}, nil
	}
}

func (p *resolver) resolveActivate(command Activate) ([]Command, error) {
	bank, err := p.bind(command.Bank)
	if err != nil {
		return nil, err
	}
	//
	row, err := p.bind(command.Row)
	if err != nil {
		return nil, err
	}
	//
	return []Command{Activate{Bank: IntOperand(bank), Row: IntOperand(row)}}, nil
}

// resolveFor unrolls a for loop, binding its variable to each value of
// [start, end) in turn and concatenating the resolved bodies.  The variable
// shadows any like-named binding of an enclosing loop for the duration.
func (p *resolver) resolveFor(command ForLoop) ([]Command, error) {
	start, err := p.bind(command.Start)
	if err != nil {
		return nil, err
	}
	//
	end, err := p.bind(command.End)
	if err != nil {
		return nil, err
	}
	//
	outer, shadowed := p.scope.Vars[command.Var]
	//
	var resolved []Command
	//
	for value := start; value < end; value++ {
		p.scope.Vars[command.Var] = value
		//
		body, err := p.resolveAll(command.Body)
		if err != nil {
			return nil, err
		}
		//
		resolved = append(resolved, body...)
	}
	// Restore enclosing binding (if any)
	if shadowed {
		p.scope.Vars[command.Var] = outer
	} else {
		delete(p.scope.Vars, command.Var)
	}
	//
	return resolved, nil
}

// bind reduces an operand to a concrete integer.
func (p *resolver) bind(operand Operand) (int, error) {
	if operand.IsInt() {
		return operand.Int(), nil
	}
	//
	value, err := expr.EvalInt(operand.Expr(), p.scope)
	if err != nil {
		return 0, &UnboundExpressionError{Expr: operand.Expr(), Err: err}
	}
	//
	return value, nil
}
