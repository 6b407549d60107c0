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

	"github.com/hwsec-lab/go-utrr/pkg/controller"
)

// Stage is one step of an experiment.  Setup runs once per pipeline run
// before any stage executes, e.g. to precompile payloads; Execute derives
// the successor context.
type Stage interface {
	Setup(ctrl controller.Controller) error
	Execute(ctrl controller.Controller, ctx Context) (Context, error)
	fmt.Stringer
}
