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
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwsec-lab/go-utrr/pkg/dram"
	"github.com/hwsec-lab/go-utrr/pkg/payload"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt gets an expected int, or panic if an error arises.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint32 gets an expected uint32, or panic if an error arises.
func GetUint32(cmd *cobra.Command, flag string) uint32 {
	r, err := cmd.Flags().GetUint32(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array, or panic if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readSettings loads the controller settings named by the persistent
// --settings flag.
func readSettings(cmd *cobra.Command) *payload.Settings {
	filename := GetString(cmd, "settings")
	//
	settings, err := payload.ReadSettings(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return settings
}

// readMapping resolves the persistent --mapping flag.
func readMapping(cmd *cobra.Command) dram.RowMapping {
	mapping, err := dram.MappingByName(GetString(cmd, "mapping"))
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return mapping
}

// readTables parses --table name=file pairs into named address tables.
func readTables(specs []string) map[string][]dram.Address {
	tables := make(map[string][]dram.Address)
	//
	for _, spec := range specs {
		name, filename, ok := strings.Cut(spec, "=")
		if !ok {
			fmt.Printf("malformed table definition %q (expected name=file)\n", spec)
			os.Exit(2)
		}
		//
		addresses, err := dram.ReadAddresses(filename)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		tables[name] = addresses
	}
	//
	return tables
}
