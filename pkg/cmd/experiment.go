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
package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
)

// Experiment is a declarative hammer experiment, loaded from a TOML file.
// The program references its rows through the "aggressors" and "victims"
// address tables.
type Experiment struct {
	Name string `toml:"name"`
	// Bank all rows live in.
	Bank int `toml:"bank"`
	// Fill pattern for the victim rows.
	Pattern uint32 `toml:"pattern"`
	// Aggressor row numbers.
	Aggressors []int `toml:"aggressors"`
	// Victim row numbers.
	Victims []int `toml:"victims"`
	// How often to run the pipeline.
	Repetitions int `toml:"repetitions"`
	// JSON Lines file results are appended to, if any.
	Export string `toml:"export"`
	// Whether to suspend auto refresh for the run.
	DisableRefresh bool `toml:"disable_refresh"`
	// The experiment program.
	Program string `toml:"program"`
	// Faults the simulator should inject.
	Flips []FlipConfig `toml:"flips"`
}

// FlipConfig arms one simulated fault: hammering the aggressor row past the
// threshold flips the given bit of the victim row.
type FlipConfig struct {
	Aggressor int `toml:"aggressor"`
	Victim    int `toml:"victim"`
	Bit       int `toml:"bit"`
	Threshold int `toml:"threshold"`
}

// ReadExperiment loads and validates an experiment definition.
func ReadExperiment(filename string) (*Experiment, error) {
	var experiment Experiment
	//
	if _, err := toml.DecodeFile(filename, &experiment); err != nil {
		return nil, err
	}
	//
	if experiment.Program == "" {
		return nil, fmt.Errorf("%s: experiment has no program", filename)
	}
	//
	if experiment.Repetitions == 0 {
		experiment.Repetitions = 1
	}
	//
	return &experiment, nil
}

// AggressorAddresses returns the aggressor rows as addresses.
func (p *Experiment) AggressorAddresses() []dram.Address {
	return addressesOf(p.Bank, p.Aggressors)
}

// VictimAddresses returns the victim rows as addresses.
func (p *Experiment) VictimAddresses() []dram.Address {
	return addressesOf(p.Bank, p.Victims)
}

// Tables returns the address tables the program is resolved against.
func (p *Experiment) Tables() map[string][]dram.Address {
	return map[string][]dram.Address{
		"aggressors": p.AggressorAddresses(),
		"victims":    p.VictimAddresses(),
	}
}

func addressesOf(bank int, rows []int) []dram.Address {
	addresses := make([]dram.Address, len(rows))
	//
	for i, row := range rows {
		addresses[i] = dram.Address{Bank: bank, Row: row}
	}
	//
	return addresses
}
