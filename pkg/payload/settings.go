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

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings mirrors the controller's generated litedram_settings.json.  Only
// the fields the compiler needs are decoded; the file carries many more.
type Settings struct {
	Phy    PhySettings      `json:"phy"`
	Geom   GeometrySettings `json:"geom"`
	Timing TimingSettings   `json:"timing"`
}

// PhySettings describes the PHY the controller was built for.
type PhySettings struct {
	Memtype  string `json:"memtype"`
	Databits int    `json:"databits"`
	Nphases  int    `json:"nphases"`
	Nranks   int    `json:"nranks"`
}

// GeometrySettings describes the address geometry of the attached module.
type GeometrySettings struct {
	Bankbits    int `json:"bankbits"`
	Rowbits     int `json:"rowbits"`
	Colbits     int `json:"colbits"`
	Addressbits int `json:"addressbits"`
}

// NumBanks returns the number of addressable banks.
func (p GeometrySettings) NumBanks() int {
	return 1 << p.Bankbits
}

// NumRows returns the number of addressable rows per bank.
func (p GeometrySettings) NumRows() int {
	return 1 << p.Rowbits
}

// TimingSettings holds the DRAM timing parameters, in controller clock
// cycles.  The json tags follow JEDEC naming, as emitted by the controller
// build.
type TimingSettings struct {
	// Row precharge delay.
	TRP int `json:"tRP"`
	// Row to column delay.
	TRCD int `json:"tRCD"`
	// Write recovery time.
	TWR int `json:"tWR"`
	// Refresh interval.
	TREFI int `json:"tREFI"`
	// Refresh cycle time.
	TRFC int `json:"tRFC"`
	// Four-bank activation window.
	TFAW int `json:"tFAW"`
	// Row cycle time.
	TRC int `json:"tRC"`
	// Row active time.
	TRAS int `json:"tRAS"`
	// Activate to activate delay (different rows).
	TRRD int `json:"tRRD"`
}

// MaxActsPerTREFI returns how many activations fit into one refresh
// interval, after accounting for the refresh itself.
func (p TimingSettings) MaxActsPerTREFI() int {
	return (p.TREFI - p.TRFC) / (p.TRP + p.TRAS)
}

// ReadSettings loads controller settings from a litedram_settings.json file.
func ReadSettings(filename string) (*Settings, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	var settings Settings
	//
	if err := json.Unmarshal(bytes, &settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	//
	return &settings, nil
}
