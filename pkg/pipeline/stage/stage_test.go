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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/payload"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
)

var testSettings = &payload.Settings{
	Phy:  payload.PhySettings{Memtype: "DDR4", Nranks: 1},
	Geom: payload.GeometrySettings{Bankbits: 3, Rowbits: 14, Colbits: 10},
	Timing: payload.TimingSettings{
		TRP: 3, TREFI: 782, TRFC: 52, TRAS: 7,
	},
}

func testSim() *controller.SimController {
	return controller.NewSimController(testSettings, dram.DirectMapping{})
}

func TestStage_01(t *testing.T) {
	// Refresh control stages drive the simulator's refresh switch.
	sim := testSim()
	//
	_, err := pipeline.New(DisableRefresh{}).RunNew(sim)
	if err != nil || sim.RefreshEnabled() {
		t.Errorf("refresh still enabled (%v)", err)
	}
	//
	_, err = pipeline.New(EnableRefresh{}).RunNew(sim)
	if err != nil || !sim.RefreshEnabled() {
		t.Errorf("refresh still disabled (%v)", err)
	}
}

func TestStage_02(t *testing.T) {
	// SendRefresh issues its burst and records the counter.
	sim := testSim()
	//
	ctx, err := pipeline.New(NewSendRefresh(sim.Compiler(), 16)).RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	if count, ok := ctx.Data("refresh_count"); !ok || count != 16 {
		t.Errorf("refresh_count was (%v, %v)", count, ok)
	}
}

func TestStage_03(t *testing.T) {
	// EmitRefreshCounter records the counter and its residue.
	sim := testSim()
	//
	run := pipeline.New(
		NewSendRefresh(sim.Compiler(), 10),
		EmitRefreshCounter{Key: "refs", Modulus: 4},
	)
	//
	ctx, err := run.RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	if value, ok := ctx.Data("refs"); !ok || value != 10 {
		t.Errorf("refs was (%v, %v)", value, ok)
	}
	//
	if value, ok := ctx.Data("refs_4"); !ok || value != 2 {
		t.Errorf("refs_4 was (%v, %v)", value, ok)
	}
}

func TestStage_04(t *testing.T) {
	// AlignModRefresh lands the counter on the requested residue.
	sim := testSim()
	//
	_, err := pipeline.New(AlignModRefresh{Modulus: 32, Mod: 5}).RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	}
	//
	count, _ := sim.ReadRefreshCount()
	if count%32 != 5 {
		t.Errorf("refresh count %d not congruent to 5 mod 32", count)
	}
}

func TestStage_05(t *testing.T) {
	// IssueRandomRefresh advances by an amount within its range.
	sim := testSim()
	//
	_, err := pipeline.New(NewIssueRandomRefresh(10, 20, 1)).RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	}
	//
	count, _ := sim.ReadRefreshCount()
	if count < 10 || count >= 20 {
		t.Errorf("refresh count %d outside [10, 20)", count)
	}
}

func TestStage_06(t *testing.T) {
	// A full hammer experiment: fill, hammer, check, annotate, export.
	sim := testSim()
	aggressor := dram.Address{Bank: 2, Row: 101}
	victim := dram.Address{Bank: 2, Row: 102}
	bystander := dram.Address{Bank: 2, Row: 104}
	//
	sim.AddFlipRule(controller.FlipRule{
		Aggressor: aggressor, Victim: victim, Bit: 5, Threshold: 1000,
	})
	//
	hammer, err := sim.Compiler().CompileSource(
		"for _ in range(2000):\n    act(bank=A[0].bank, row=A[0].row)\n    pre()",
		map[string][]dram.Address{"A": {aggressor}})
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	exportPath := filepath.Join(t.TempDir(), "results.jsonl")
	export := NewExportContext(exportPath)
	defer export.Close()
	//
	run := pipeline.New(
		DisableRefresh{},
		&WriteRowsDMA{Addresses: []dram.Address{victim, bystander}, Pattern: 0},
		&ExecutePayload{Payload: hammer},
		&BitflipCheckAddresses{Addresses: []dram.Address{victim, bystander}, Pattern: 0},
		&AnnotateIndexNotBitflipped{Indices: map[dram.Address][]int{victim: {7}, bystander: {9}}},
		export,
	)
	//
	ctx, err := run.RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	// Only the victim flips.
	flipped := ctx.Bitflipped()
	if len(flipped) != 1 || flipped[0] != victim {
		t.Errorf("bitflipped addresses were %v", flipped)
	}
	//
	if indices, ok := ctx.Data("indices_not_bitflipped"); !ok {
		t.Errorf("indices_not_bitflipped missing")
	} else if list, _ := indices.([]int); len(list) != 1 || list[0] != 7 {
		t.Errorf("indices_not_bitflipped was %v", indices)
	}
	// Exported record carries the data field.
	exported, err := os.ReadFile(exportPath)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	} else if !strings.Contains(string(exported), `{"data":{"addresses_dict_bitflipped":`) {
		t.Errorf("exported record was %s", exported)
	} else if !strings.HasSuffix(string(exported), "\n") {
		t.Errorf("exported record not newline terminated")
	}
}

func TestStage_07(t *testing.T) {
	// The dual check flags what did not flip.
	sim := testSim()
	victim := dram.Address{Bank: 0, Row: 10}
	bystander := dram.Address{Bank: 0, Row: 12}
	//
	sim.AddFlipRule(controller.FlipRule{
		Aggressor: dram.Address{Bank: 0, Row: 11}, Victim: victim, Bit: 0, Threshold: 1,
	})
	//
	hammer, err := sim.Compiler().CompileSource(
		"act(bank=0, row=11)\npre()", nil)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	run := pipeline.New(
		&WriteRowsDMA{Addresses: []dram.Address{victim, bystander}, Pattern: 0xFFFFFFFF},
		&ExecutePayload{Payload: hammer},
		&NoBitflipCheckAddresses{Addresses: []dram.Address{victim, bystander}, Pattern: 0xFFFFFFFF},
	)
	//
	ctx, err := run.RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	notFlipped := ctx.Bitflipped()
	if len(notFlipped) != 1 || notFlipped[0] != bystander {
		t.Errorf("not-bitflipped addresses were %v", notFlipped)
	}
}

func TestStage_08(t *testing.T) {
	// Row-number based check within one bank.
	sim := testSim()
	//
	sim.AddFlipRule(controller.FlipRule{
		Aggressor: dram.Address{Bank: 1, Row: 50},
		Victim:    dram.Address{Bank: 1, Row: 51},
		Bit:       3, Threshold: 1,
	})
	//
	hammer, err := sim.Compiler().CompileSource("act(bank=1, row=50)\npre()", nil)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	run := pipeline.New(
		&WriteRowsDMA{Addresses: dram.GenerateAddresses(1, 49, 53), Pattern: 0},
		&ExecutePayload{Payload: hammer},
		&BitflipCheckRows{Bank: 1, Rows: []int{49, 50, 51, 52}, Pattern: 0},
	)
	//
	ctx, err := run.RunNew(sim)
	if err != nil {
		t.Errorf("unexpected error %q", err)
		return
	}
	//
	if rows, ok := ctx.Data("rows_bitflipped"); !ok {
		t.Errorf("rows_bitflipped missing")
	} else if list, _ := rows.([]int); len(list) != 1 || list[0] != 51 {
		t.Errorf("rows_bitflipped was %v", rows)
	}
}

func TestStage_09(t *testing.T) {
	// Waiting on an already-passed deadline is a hard failure.
	ctx := pipeline.NewContext()
	//
	stage := WaitUntilElapsed{Elapsed: -time.Second}
	//
	if _, err := stage.Execute(testSim(), ctx); err == nil {
		t.Errorf("expected an error")
	}
	// A tiny future deadline succeeds.
	stage = WaitUntilElapsed{Elapsed: 100 * time.Millisecond}
	//
	if _, err := stage.Execute(testSim(), ctx); err != nil {
		t.Errorf("unexpected error %q", err)
	}
}

func TestStage_10(t *testing.T) {
	// ResetContext drops accumulated data.
	ctx, _ := pipeline.NewContext().AddData("stale", 1)
	//
	fresh, err := ResetContext{}.Execute(testSim(), ctx)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	}
	//
	if _, ok := fresh.Data("stale"); ok {
		t.Errorf("context not reset")
	}
}

func TestStage_11(t *testing.T) {
	// PrechargeAll executes without touching memory or the counter.
	sim := testSim()
	//
	if _, err := pipeline.New(NewPrechargeAll(sim.Compiler())).RunNew(sim); err != nil {
		t.Errorf("unexpected error %q", err)
	}
	//
	checkCount, _ := sim.ReadRefreshCount()
	if checkCount != 0 {
		t.Errorf("precharge advanced the refresh counter to %d", checkCount)
	}
}
