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

// Package pipeline runs experiments as ordered stage sequences threading an
// immutable context.  Stages never mutate the context they receive; they
// derive a new one, so a failed run leaves earlier results intact.
package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
)

// Context carries the accumulated results of a pipeline run: a key-ordered
// data record plus the set of addresses most recently found bitflipped.
// Contexts are immutable; deriving operations copy on write.
type Context struct {
	startTime time.Time
	keys      []string
	data      map[string]any
	// Addresses flagged by the most recent bitflip check.
	bitflipped []dram.Address
}

// NewContext creates an empty context starting now.
func NewContext() Context {
	return Context{startTime: time.Now()}
}

// StartTime returns when this context (i.e. the run) started.
func (p Context) StartTime() time.Time {
	return p.startTime
}

// AddData derives a context with an additional data entry.  Keys are
// write-once; adding a duplicate fails.
func (p Context) AddData(key string, value any) (Context, error) {
	if _, ok := p.data[key]; ok {
		return Context{}, fmt.Errorf("key %q already present in pipeline context", key)
	}
	//
	data := make(map[string]any, len(p.data)+1)
	for k, v := range p.data {
		data[k] = v
	}
	//
	data[key] = value
	//
	derived := p
	derived.keys = append(p.keys[:len(p.keys):len(p.keys)], key)
	derived.data = data
	//
	return derived, nil
}

// Data looks up a data entry.
func (p Context) Data(key string) (any, bool) {
	value, ok := p.data[key]
	return value, ok
}

// Keys returns the data keys in insertion order.
func (p Context) Keys() []string {
	return p.keys[:len(p.keys):len(p.keys)]
}

// Bitflipped returns the addresses flagged by the most recent bitflip check.
func (p Context) Bitflipped() []dram.Address {
	return p.bitflipped
}

// ReplaceBitflipped derives a context with a new set of flagged addresses.
func (p Context) ReplaceBitflipped(addresses []dram.Address) Context {
	derived := p
	derived.bitflipped = addresses
	//
	return derived
}

// MarshalData renders the data record as JSON, preserving insertion order.
func (p Context) MarshalData() ([]byte, error) {
	var buffer bytes.Buffer
	//
	buffer.WriteByte('{')
	//
	for i, key := range p.keys {
		if i != 0 {
			buffer.WriteByte(',')
		}
		//
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		//
		value, err := json.Marshal(p.data[key])
		if err != nil {
			return nil, err
		}
		//
		buffer.Write(name)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	//
	buffer.WriteByte('}')
	//
	return buffer.Bytes(), nil
}
