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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hwsec-lab/go-utrr/pkg/controller"
	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/payload"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline"
	"github.com/hwsec-lab/go-utrr/pkg/pipeline/stage"
)

var hammerCmd = &cobra.Command{
	Use:   "hammer [flags] experiment_file",
	Short: "run a hammer experiment against the simulated controller.",
	Long: `Run a declarative hammer experiment (TOML): fill the victim rows, execute the
	 experiment program, check the victims for bitflips and export the results.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		settings := readSettings(cmd)
		mapping := readMapping(cmd)
		// Load experiment
		experiment, err := ReadExperiment(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		// Construct simulator, arming any configured faults
		sim := controller.NewSimController(settings, mapping)
		//
		for _, flip := range experiment.Flips {
			sim.AddFlipRule(controller.FlipRule{
				Aggressor: dram.Address{Bank: experiment.Bank, Row: flip.Aggressor},
				Victim:    dram.Address{Bank: experiment.Bank, Row: flip.Victim},
				Bit:       uint(flip.Bit),
				Threshold: flip.Threshold,
			})
		}
		// Compile experiment program
		instructions, err := sim.Compiler().CompileSource(experiment.Program, experiment.Tables())
		if err != nil {
			fmt.Printf("%s: %s\n", args[0], err)
			os.Exit(1)
		}
		//
		log.Debugf("compiled %d instructions; budget is %d activations per tREFI",
			len(instructions), settings.Timing.MaxActsPerTREFI())
		//
		run := buildPipeline(experiment, instructions)
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		// Run experiment
		for i := 0; i < experiment.Repetitions; i++ {
			ctx, err := run.RunNew(sim)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			//
			if interactive {
				fmt.Printf("run %d/%d: %d victim row(s) flipped\n",
					i+1, experiment.Repetitions, len(ctx.Bitflipped()))
			}
		}
	},
}

// buildPipeline assembles the stage sequence of one experiment repetition.
func buildPipeline(experiment *Experiment, instructions []payload.Instruction) *pipeline.Pipeline {
	var stages []pipeline.Stage
	//
	if experiment.DisableRefresh {
		stages = append(stages, stage.DisableRefresh{})
	} else {
		stages = append(stages, stage.EnableRefresh{})
	}
	//
	stages = append(stages,
		&stage.WriteRowsDMA{Addresses: experiment.VictimAddresses(), Pattern: experiment.Pattern},
		&stage.ExecutePayload{Payload: instructions},
	)
	// Resume auto refresh before the scan
	if experiment.DisableRefresh {
		stages = append(stages, stage.EnableRefresh{})
	}
	//
	stages = append(stages,
		&stage.BitflipCheckAddresses{Addresses: experiment.VictimAddresses(), Pattern: experiment.Pattern},
		stage.EmitRefreshCounter{Key: "refresh_count"},
	)
	//
	if experiment.Export != "" {
		stages = append(stages, stage.NewExportContext(experiment.Export))
	}
	//
	return pipeline.New(stages...)
}

func init() {
	rootCmd.AddCommand(hammerCmd)
}
