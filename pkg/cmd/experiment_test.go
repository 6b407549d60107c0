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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
)

const testExperiment = `
name = "double_sided"
bank = 2
pattern = 0x55555555
aggressors = [100, 102]
victims = [101]
repetitions = 3
disable_refresh = true
program = """
for _ in range(100000):
    act(bank=aggressors[0].bank, row=aggressors[0].row)
    act(bank=aggressors[1].bank, row=aggressors[1].row)
    pre()
"""

[[flips]]
aggressor = 100
victim = 101
bit = 17
threshold = 50000
`

func TestExperiment_01(t *testing.T) {
	experiment := loadExperiment(t, testExperiment)
	//
	if experiment.Name != "double_sided" || experiment.Bank != 2 {
		t.Errorf("loaded %v", experiment)
	}
	//
	if experiment.Pattern != 0x55555555 {
		t.Errorf("pattern was 0x%x", experiment.Pattern)
	}
	//
	if experiment.Repetitions != 3 || !experiment.DisableRefresh {
		t.Errorf("loaded %v", experiment)
	}
	//
	if len(experiment.Flips) != 1 || experiment.Flips[0].Bit != 17 {
		t.Errorf("flips were %v", experiment.Flips)
	}
}

func TestExperiment_02(t *testing.T) {
	// Row numbers become addresses in the experiment's bank.
	experiment := loadExperiment(t, testExperiment)
	//
	aggressors := experiment.AggressorAddresses()
	if len(aggressors) != 2 || aggressors[0].Bank != 2 || aggressors[1].Row != 102 {
		t.Errorf("aggressors were %v", aggressors)
	}
	//
	tables := experiment.Tables()
	if len(tables["victims"]) != 1 || tables["victims"][0].Row != 101 {
		t.Errorf("victims were %v", tables["victims"])
	}
}

func TestExperiment_03(t *testing.T) {
	// Repetitions default to one.
	experiment := loadExperiment(t, "program = \"pre()\"")
	//
	if experiment.Repetitions != 1 {
		t.Errorf("repetitions defaulted to %d", experiment.Repetitions)
	}
}

func TestExperiment_04(t *testing.T) {
	// A program is mandatory.
	path := filepath.Join(t.TempDir(), "experiment.toml")
	if err := os.WriteFile(path, []byte("bank = 1"), 0644); err != nil {
		t.Fatal(err)
	}
	//
	if _, err := ReadExperiment(path); err == nil {
		t.Errorf("expected an error")
	}
}

func TestExperiment_05(t *testing.T) {
	// With refresh disabled for the hammer phase, it is re-enabled before
	// the bitflip scan.
	experiment := loadExperiment(t, testExperiment)
	//
	checkStageOrder(t, buildPipeline(experiment, nil),
		"DisableRefresh", "WriteRowsDMA", "ExecutePayload",
		"EnableRefresh", "BitflipCheckAddresses", "EmitRefreshCounter")
}

func TestExperiment_06(t *testing.T) {
	// With refresh left on throughout, there is nothing to resume.
	experiment := loadExperiment(t, testExperiment)
	experiment.DisableRefresh = false
	//
	checkStageOrder(t, buildPipeline(experiment, nil),
		"EnableRefresh", "WriteRowsDMA", "ExecutePayload",
		"BitflipCheckAddresses", "EmitRefreshCounter")
}

func checkStageOrder(t *testing.T, run *pipeline.Pipeline, expected ...string) {
	t.Helper()
	//
	stages := run.Stages()
	//
	if len(stages) != len(expected) {
		t.Fatalf("pipeline has %d stages, expected %d", len(stages), len(expected))
	}
	//
	for i, stage := range stages {
		name, _, _ := strings.Cut(stage.String(), "(")
		//
		if name != expected[i] {
			t.Errorf("stage %d was %s, expected %s", i, stage, expected[i])
		}
	}
}

func loadExperiment(t *testing.T, source string) *Experiment {
	path := filepath.Join(t.TempDir(), "experiment.toml")
	//
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	//
	experiment, err := ReadExperiment(path)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	//
	return experiment
}
