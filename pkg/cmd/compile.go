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

	"github.com/hwsec-lab/go-utrr/pkg/payload"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] program_file",
	Short: "compile an experiment program into an executor payload.",
	Long: `Compile a given experiment program into the payload executor's instruction
	 stream, resolving address expressions against the given address tables, and
	 print the resulting payload.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		settings := readSettings(cmd)
		mapping := readMapping(cmd)
		tables := readTables(GetStringArray(cmd, "table"))
		output := GetString(cmd, "output")
		// Read program
		source, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		// Compile program
		compiler := payload.NewCompiler(settings, mapping)
		//
		instructions, err := compiler.CompileSource(string(source), tables)
		if err != nil {
			fmt.Printf("%s: %s\n", args[0], err)
			os.Exit(1)
		}
		//
		log.Debugf("compiled %s into %d instructions", args[0], len(instructions))
		// Write payload listing
		if output != "" {
			writeListing(compiler.Encoder(), instructions, output)
		} else {
			if term.IsTerminal(int(os.Stdout.Fd())) {
				fmt.Printf("payload (%d instructions):\n", len(instructions))
			}
			//
			fmt.Print(compiler.Encoder().Format(instructions))
		}
	},
}

func writeListing(encoder *payload.Encoder, instructions []payload.Instruction, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	defer file.Close()
	//
	if err := encoder.Disassemble(file, instructions); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringArrayP("table", "t", []string{}, "bind address table (name=file)")
	compileCmd.Flags().StringP("output", "o", "", "write payload listing to file")
}
