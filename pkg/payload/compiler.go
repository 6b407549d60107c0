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
	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/dsl"
)

// MaxLoopCount is the largest iteration count a single LOOP instruction can
// carry; larger loops are chunked.
const MaxLoopCount = 4000

// Compiler translates resolved, unrolled programs into executor payloads.
// Activate rows are translated from their physical position to the vendor's
// logical numbering on the way through.
type Compiler struct {
	encoder *Encoder
	timing  TimingSettings
	mapping dram.RowMapping
}

// NewCompiler constructs a compiler for the given controller configuration
// and row mapping.
func NewCompiler(settings *Settings, mapping dram.RowMapping) *Compiler {
	return &Compiler{
		encoder: NewEncoder(settings),
		timing:  settings.Timing,
		mapping: mapping,
	}
}

// Encoder returns the address encoder in use.
func (p *Compiler) Encoder() *Encoder {
	return p.encoder
}

// Timing returns the timing parameters in use.
func (p *Compiler) Timing() TimingSettings {
	return p.timing
}

// CompileSource runs the whole pipeline over program text: parse, resolve
// against the given address tables, unroll and compile into a complete
// payload.
func (p *Compiler) CompileSource(code string, tables map[string][]dram.Address) ([]Instruction, error) {
	commands, serr := dsl.ParseString(code)
	if serr != nil {
		return nil, serr
	}
	//
	resolved, err := dsl.Resolve(commands, tables)
	if err != nil {
		return nil, err
	}
	//
	return p.Compile(dsl.Unroll(resolved))
}

// Compile translates a resolved, unrolled program into a complete payload,
// i.e. prologue, program body and epilogue.
func (p *Compiler) Compile(commands []dsl.Command) ([]Instruction, error) {
	prologue, err := p.Prologue()
	if err != nil {
		return nil, err
	}
	//
	body, err := p.CompileBody(commands)
	if err != nil {
		return nil, err
	}
	//
	payload := append(prologue, body...)
	//
	return append(payload, Epilogue()...), nil
}

// CompileBody translates a resolved, unrolled program into instructions,
// without prologue or epilogue.
func (p *Compiler) CompileBody(commands []dsl.Command) ([]Instruction, error) {
	var compiled []Instruction
	//
	for _, command := range commands {
		var err error
		//
		if compiled, err = p.compileCommand(compiled, command); err != nil {
			return nil, err
		}
	}
	//
	return compiled, nil
}

// Prologue produces the fixed payload preamble: three refresh-interval idles
// to let pending refreshes drain, a precharge-all, then three single-cycle
// idles.
func (p *Compiler) Prologue() ([]Instruction, error) {
	precharge, err := p.prechargeAll()
	if err != nil {
		return nil, err
	}
	//
	return []Instruction{
		NewInstruction(NOOP, p.timing.TREFI, 0),
		NewInstruction(NOOP, p.timing.TREFI, 0),
		NewInstruction(NOOP, p.timing.TREFI, 0),
		precharge,
		NewInstruction(NOOP, 1, 0),
		NewInstruction(NOOP, 1, 0),
		NewInstruction(NOOP, 1, 0),
	}, nil
}

// Epilogue produces the payload terminator.  A zero timeslice stops the
// executor.
func Epilogue() []Instruction {
	return []Instruction{NewInstruction(NOOP, 0, 0)}
}

// MaxRefreshBurst bounds the refresh count of a single refresh payload.
const MaxRefreshBurst = 4096

// RefreshBurst produces a standalone payload issuing the given number of
// refreshes, each padded to a full refresh interval so the DRAM sees its
// nominal refresh rate.
func (p *Compiler) RefreshBurst(count int) ([]Instruction, error) {
	if count > MaxRefreshBurst {
		return nil, constraintErrorf("refresh burst of %d exceeds %d", count, MaxRefreshBurst)
	}
	//
	payload := []Instruction{p.settle()}
	//
	if count > 0 {
		precharge, err := p.prechargeAll()
		if err != nil {
			return nil, err
		}
		//
		payload = append(payload,
			precharge,
			NewInstruction(REF, 1, 0),
			NewInstruction(NOOP, p.timing.TREFI-p.timing.TRP, 0),
			NewLoop(3, count-1))
	}
	//
	return append(payload, Epilogue()...), nil
}

// PrechargeAllPayload produces a standalone payload which just precharges
// all banks.
func (p *Compiler) PrechargeAllPayload() ([]Instruction, error) {
	precharge, err := p.prechargeAll()
	if err != nil {
		return nil, err
	}
	//
	payload := []Instruction{p.settle(), precharge}
	//
	return append(payload, Epilogue()...), nil
}

// settle idles long enough after the mode switch for any in-flight refresh
// to complete.
func (p *Compiler) settle() Instruction {
	return NewInstruction(NOOP, max(1, p.timing.TRFC-2, p.timing.TREFI-2), 0)
}

func (p *Compiler) compileCommand(compiled []Instruction, command dsl.Command) ([]Instruction, error) {
	switch c := command.(type) {
	case dsl.Precharge:
		precharge, err := p.prechargeAll()
		if err != nil {
			return nil, err
		}
		//
		return append(compiled, precharge), nil
	case dsl.Refresh:
		// The refresh command itself, then idle until the refresh cycle
		// completes.
		compiled = append(compiled, NewInstruction(REF, 1, 0))
		//
		return append(compiled, NewInstruction(NOOP, p.timing.TRFC-1, 0)), nil
	case dsl.Nop:
		if c.Cycles <= 0 {
			return nil, constraintErrorf("nop requires a cycle count > 0, got %d", c.Cycles)
		}
		//
		return append(compiled, NewInstruction(NOOP, c.Cycles, 0)), nil
	case dsl.Activate:
		return p.compileActivate(compiled, c)
	case dsl.HardwareLoop:
		return p.compileLoop(compiled, c)
	case dsl.ForLoop:
		return nil, invariantErrorf("unresolved for loop %q", c)
	default:
		return nil, invariantErrorf("unknown command %q", command)
	}
}

func (p *Compiler) compileActivate(compiled []Instruction, command dsl.Activate) ([]Instruction, error) {
	if !command.Bank.IsInt() || !command.Row.IsInt() {
		return nil, invariantErrorf("unresolved operand in %q", command)
	}
	//
	logicalRow := p.mapping.PhysicalToLogical(command.Row.Int())
	//
	address, err := p.encoder.RowAddress(0, command.Bank.Int(), logicalRow)
	if err != nil {
		return nil, err
	}
	//
	return append(compiled, NewInstruction(ACT, p.timing.TRAS, address)), nil
}

// compileLoop lowers a hardware loop, chunking counts beyond what a single
// LOOP instruction can express.  The body is emitted once per chunk; a LOOP
// with count n repeats it n additional times, hence chunk-1.
func (p *Compiler) compileLoop(compiled []Instruction, command dsl.HardwareLoop) ([]Instruction, error) {
	remaining := command.Count
	//
	for remaining > 0 {
		chunk := min(remaining, MaxLoopCount)
		//
		start := len(compiled)
		//
		body, err := p.CompileBody(command.Body)
		if err != nil {
			return nil, err
		}
		//
		compiled = append(compiled, body...)
		//
		if chunk > 1 {
			compiled = append(compiled, NewLoop(len(compiled)-start, chunk-1))
		}
		//
		remaining -= chunk
	}
	//
	return compiled, nil
}

func (p *Compiler) prechargeAll() (Instruction, error) {
	address, err := p.encoder.ColumnAddress(0, 0, PrechargeAllColumn)
	if err != nil {
		return Instruction{}, err
	}
	//
	return NewInstruction(PRE, p.timing.TRP, address), nil
}
