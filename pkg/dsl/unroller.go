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

// Unroll flattens nested hardware loops, since the controller supports only
// one level of looping.  Outermost loops are kept rolled and their bodies
// fully expanded; the overall number of executed primitives is preserved.
// Unrolling an already-flat program is the identity.
func Unroll(commands []Command) []Command {
	var unrolled []Command
	//
	for _, command := range commands {
		if loop, ok := command.(HardwareLoop); ok {
			unrolled = append(unrolled, HardwareLoop{Count: loop.Count, Body: expand(loop.Body)})
		} else {
			unrolled = append(unrolled, command)
		}
	}
	//
	return unrolled
}

// expand replaces every hardware loop in a loop body with count-many copies
// of its (recursively expanded) body.
func expand(commands []Command) []Command {
	var flat []Command
	//
	for _, command := range commands {
		if loop, ok := command.(HardwareLoop); ok {
			body := expand(loop.Body)
			//
			for i := 0; i < loop.Count; i++ {
				flat = append(flat, body...)
			}
		} else {
			flat = append(flat, command)
		}
	}
	//
	return flat
}
