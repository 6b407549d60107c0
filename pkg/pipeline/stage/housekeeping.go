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
	"os"
	"time"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
)

// WaitUntilElapsed blocks until the given duration has passed since the run
// started.  Arriving past the deadline is a hard failure, since it means the
// experiment's timing requirement was already missed.
type WaitUntilElapsed struct {
	Elapsed time.Duration
}

// Setup implementation for the Stage interface.
func (p WaitUntilElapsed) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p WaitUntilElapsed) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	deadline := ctx.StartTime().Add(p.Elapsed)
	remaining := time.Until(deadline)
	//
	if remaining < 0 {
		return pipeline.Context{}, fmt.Errorf(
			"timing requirement missed: stage scheduled at %s ran %s late", p.Elapsed, -remaining)
	}
	//
	time.Sleep(remaining)
	//
	return ctx, nil
}

func (p WaitUntilElapsed) String() string {
	return fmt.Sprintf("WaitUntilElapsed(%s)", p.Elapsed)
}

// ResetContext discards all accumulated results and restarts the context
// clock.  Placed between iterations of a repeated pipeline.
type ResetContext struct{}

// Setup implementation for the Stage interface.
func (p ResetContext) Setup(ctrl controller.Controller) error {
	return nil
}

// Execute implementation for the Stage interface.
func (p ResetContext) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	return pipeline.NewContext(), nil
}

func (p ResetContext) String() string {
	return "ResetContext()"
}

// ExportContext appends the context's data record to a JSON Lines file, one
// record per execution.  The stage owns the file handle, which is opened
// during setup; executions across runs append to the same file.
type ExportContext struct {
	Path string
	//
	file *os.File
}

// NewExportContext constructs the stage; the file is opened in Setup.
func NewExportContext(path string) *ExportContext {
	return &ExportContext{Path: path}
}

// Setup implementation for the Stage interface.
func (p *ExportContext) Setup(ctrl controller.Controller) error {
	if p.file != nil {
		return nil
	}
	//
	file, err := os.OpenFile(p.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	//
	p.file = file
	//
	return nil
}

// Execute implementation for the Stage interface.
func (p *ExportContext) Execute(ctrl controller.Controller, ctx pipeline.Context) (pipeline.Context, error) {
	data, err := ctx.MarshalData()
	if err != nil {
		return pipeline.Context{}, err
	}
	//
	record := fmt.Sprintf("{\"data\":%s}\n", data)
	//
	if _, err := p.file.WriteString(record); err != nil {
		return pipeline.Context{}, err
	}
	//
	return ctx, nil
}

// Close releases the underlying file.
func (p *ExportContext) Close() error {
	if p.file == nil {
		return nil
	}
	//
	return p.file.Close()
}

func (p *ExportContext) String() string {
	return fmt.Sprintf("ExportContext(path=%q)", p.Path)
}
