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
package stage

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
	"github.com/hwsec-lab/go-utrr/pkg/payload"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
)

// ExecutePayload runs a precompiled payload.  An empty payload is a no-op.
// With Verbose set, the payload is logged instruction by instruction at
// debug level before execution.
type ExecutePayload struct {
	Payload []payload.Instruction
	Verbose bool
}

// Setup implementation for the Stage interface.
func (p *ExecutePayload) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *ExecutePayload) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	if len(p.Payload) == 0 {
		return ctx, nil
	}
	//
	if p.Verbose {
		for i, insn := range p.Payload {
			log.Debugf("%4d: %s", i, insn)
		}
	}
	//
	return ctx, ctrl.ExecutePayload(p.Payload)
}

func (p *ExecutePayload) String() string {
	return fmt.Sprintf("ExecutePayload(len=%d)", len(p.Payload))
}

// SendRefresh issues a fixed number of refreshes and records the refresh
// counter afterwards under "refresh_count".  The payload is compiled once
// during setup.
type SendRefresh struct {
	Count int
	//
	compiler *payload.Compiler
	burst    []payload.Instruction
}

// NewSendRefresh constructs the stage; the payload is built in Setup.
func NewSendRefresh(compiler *payload.Compiler, count int) *SendRefresh {
	return &SendRefresh{Count: count, compiler: compiler}
}

// Setup implementation for the Stage interface.
func (p *SendRefresh) Setup(ctrl controller.Controller) error {
	burst, err := p.compiler.RefreshBurst(p.Count)
	if err != nil {
		return err
	}
	//
	p.burst = burst
	//
	return nil
}

// Execute implementation for the Stage interface.
func (p *SendRefresh) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	if err := ctrl.ExecutePayload(p.burst); err != nil {
		return pipeline.Context{}, err
	}
	//
	count, err := ctrl.ReadRefreshCount()
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	return ctx.AddData("refresh_count", count)
}

func (p *SendRefresh) String() string {
	return fmt.Sprintf("SendRefresh(count=%d)", p.Count)
}

// PrechargeAll closes any open row in every bank.
type PrechargeAll struct {
	compiler *payload.Compiler
	payload  []payload.Instruction
}

// NewPrechargeAll constructs the stage; the payload is built in Setup.
func NewPrechargeAll(compiler *payload.Compiler) *PrechargeAll {
	return &PrechargeAll{compiler: compiler}
}

// Setup implementation for the Stage interface.
func (p *PrechargeAll) Setup(ctrl controller.Controller) error {
	instructions, err := p.compiler.PrechargeAllPayload()
	if err != nil {
		return err
	}
	//
	p.payload = instructions
	//
	return nil
}

// Execute implementation for the Stage interface.
func (p *PrechargeAll) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	return ctx, ctrl.ExecutePayload(p.payload)
}

func (p *PrechargeAll) String() string {
	return "PrechargeAll()"
}
