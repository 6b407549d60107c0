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

// Package stage provides the building blocks experiments are assembled from.
// Each stage is a small, single-purpose step; experiments compose them into
// pipelines.
package stage

import (
	"fmt"
	"math/rand"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
)

// EnableRefresh re-enables the controller's auto refresh.
type EnableRefresh struct{}

// Setup implementation for the Stage interface.
func (p EnableRefresh) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p EnableRefresh) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	return ctx, ctrl.EnableRefresh()
}

func (p EnableRefresh) String() string {
	return "EnableRefresh()"
}

// DisableRefresh suspends the controller's auto refresh, leaving refresh
// timing entirely to the experiment.
type DisableRefresh struct{}

// Setup implementation for the Stage interface.
func (p DisableRefresh) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p DisableRefresh) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	return ctx, ctrl.DisableRefresh()
}

func (p DisableRefresh) String() string {
	return "DisableRefresh()"
}

// AlignModRefresh aligns the refresh counter to a target residue, pinning
// the experiment to a fixed phase of the module's internal refresh schedule.
type AlignModRefresh struct {
	Modulus int
	Mod     int
}

// Setup implementation for the Stage interface.
func (p AlignModRefresh) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p AlignModRefresh) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	return ctx, ctrl.AlignModRefresh(p.Modulus, p.Mod)
}

func (p AlignModRefresh) String() string {
	return fmt.Sprintf("AlignModRefresh(modulus=%d, mod=%d)", p.Modulus, p.Mod)
}

// IssueRandomRefresh advances the refresh counter by a random amount drawn
// from [Min, Max), de-phasing the experiment from the refresh schedule.
type IssueRandomRefresh struct {
	Min int
	Max int
	//
	random *rand.Rand
}

// NewIssueRandomRefresh constructs the stage with a seeded source, so runs
// remain reproducible.
func NewIssueRandomRefresh(min int, max int, seed int64) *IssueRandomRefresh {
	return &IssueRandomRefresh{Min: min, Max: max, random: rand.New(rand.NewSource(seed))}
}

// Setup implementation for the Stage interface.
func (p *IssueRandomRefresh) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p *IssueRandomRefresh) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	increment := p.Min + p.random.Intn(p.Max-p.Min)
	//
	current, err := ctrl.ReadRefreshCount()
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	return ctx, ctrl.AlignRefresh(current + increment)
}

func (p *IssueRandomRefresh) String() string {
	return fmt.Sprintf("IssueRandomRefresh(min=%d, max=%d)", p.Min, p.Max)
}

// EmitRefreshCounter records the current refresh counter into the context
// under Key; with a non-zero Modulus it additionally records the residue
// under "<key>_<modulus>".
type EmitRefreshCounter struct {
	Key     string
	Modulus int
}

// Setup implementation for the Stage interface.
func (p EmitRefreshCounter) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p EmitRefreshCounter) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	count, err := ctrl.ReadRefreshCount()
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	ctx, err = ctx.AddData(p.Key, count)
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	if p.Modulus != 0 {
		return ctx.AddData(fmt.Sprintf("%s_%d", p.Key, p.Modulus), count%p.Modulus)
	}
	//
	return ctx, nil
}

func (p EmitRefreshCounter) String() string {
	return fmt.Sprintf("EmitRefreshCounter(key=%q, modulus=%d)", p.Key, p.Modulus)
}
