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

import "fmt"

// CompileInvariantError reports a program handed to the compiler in a state
// it should never reach, such as an activate with a still-symbolic operand.
// These indicate a phase was skipped, not a bad experiment.
type CompileInvariantError struct {
	Msg string
}

func (p *CompileInvariantError) Error() string {
	return "compile invariant violated: " + p.Msg
}

// HardwareConstraintError reports a payload the executor cannot represent,
// e.g. an address field too wide for the configured geometry or a zero-cycle
// NOOP.
type HardwareConstraintError struct {
	Msg string
}

func (p *HardwareConstraintError) Error() string {
	return "hardware constraint violated: " + p.Msg
}

func invariantErrorf(format string, args ...any) *CompileInvariantError {
	return &CompileInvariantError{Msg: fmt.Sprintf(format, args...)}
}

func constraintErrorf(format string, args ...any) *HardwareConstraintError {
	return &HardwareConstraintError{Msg: fmt.Sprintf(format, args...)}
}
