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

import "fmt"

// UnboundExpressionError reports a symbolic operand which could not be bound
// to a concrete value during resolution, e.g. because it references an
// unknown table or indexes out of range.
type UnboundExpressionError struct {
	// Expression which failed to bind.
	Expr string
	// Underlying evaluation failure.
	Err error
}

func (p *UnboundExpressionError) Error() string {
	return fmt.Sprintf("cannot bind expression %q: %v", p.Expr, p.Err)
}

func (p *UnboundExpressionError) Unwrap() error {
	return p.Err
}
