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
package pipeline

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
)

// Pipeline is an ordered stage sequence.  Pipelines themselves are
// stateless; per-run state lives in the context.
type Pipeline struct {
	stages []Stage
}

// New constructs a pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the stages of this pipeline, in execution order.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// RunNew runs the pipeline against a fresh context starting now.
func (p *Pipeline) RunNew(ctrl controller.Controller) (Context, error) {
	return p.Run(ctrl, NewContext())
}

// Run sets up every stage, then executes them in order, threading the
// context through.  The first failing stage aborts the run.
func (p *Pipeline) Run(ctrl controller.Controller, ctx Context) (Context, error) {
	setupStart := time.Now()
	//
	for _, stage := range p.stages {
		if err := stage.Setup(ctrl); err != nil {
			return Context{}, fmt.Errorf("setting up %s: %w", stage, err)
		}
	}
	//
	log.Debugf("total setup time for all stages: %s", time.Since(setupStart))
	//
	runStart := time.Now()
	//
	for _, stage := range p.stages {
		relative := time.Since(ctx.StartTime())
		executeStart := time.Now()
		//
		next, err := stage.Execute(ctrl, ctx)
		if err != nil {
			return Context{}, fmt.Errorf("executing %s: %w", stage, err)
		}
		//
		log.Debugf("[%10s / %10s] executed: %s", relative, time.Since(executeStart), stage)
		//
		ctx = next
	}
	//
	log.Debugf("total execution time: %s", time.Since(runStart))
	//
	return ctx, nil
}
