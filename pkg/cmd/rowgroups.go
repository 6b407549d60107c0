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

	"github.com/hwsec-lab/go-utrr/pkg/dram"
)

var rowgroupsCmd = &cobra.Command{
	Use:   "rowgroups [flags] address_file",
	Short: "select disjoint row groups from a set of candidate addresses.",
	Long: `Select disjoint groups of consecutive rows from a candidate address file
	 (e.g. rows with known retention failures), confined to the given subarrays
	 and separated by a minimum distance.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var (
			groupSize   = GetInt(cmd, "group-size")
			minDistance = GetInt(cmd, "min-distance")
			skipMiddle  = GetFlag(cmd, "skip-middle")
			output      = GetString(cmd, "output")
		)
		// Read candidate addresses
		addresses, err := dram.ReadAddresses(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		subarrays := readSubarrays(cmd)
		// Select groups
		groups, err := dram.FindRowGroups(addresses, groupSize, subarrays, skipMiddle, minDistance)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		log.Debugf("selected %d groups from %d candidate addresses", len(groups), len(addresses))
		//
		for _, group := range groups {
			fmt.Println(group)
		}
		// Write selected rows
		if output != "" {
			selected := dram.CollectPresentAddresses(groups)
			//
			if err := dram.WriteAddresses(selected, output); err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
		}
	},
}

func readSubarrays(cmd *cobra.Command) []dram.Subarray {
	filename := GetString(cmd, "subarrays")
	if filename == "" {
		return nil
	}
	//
	subarrays, err := dram.ReadSubarrays(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return subarrays
}

func init() {
	rootCmd.AddCommand(rowgroupsCmd)
	rowgroupsCmd.Flags().Int("group-size", 3, "rows per group")
	rowgroupsCmd.Flags().Int("min-distance", 2, "minimum distance between kept groups")
	rowgroupsCmd.Flags().Bool("skip-middle", false, "exclude the middle row of each group")
	rowgroupsCmd.Flags().String("subarrays", "", "subarray boundary file (csv)")
	rowgroupsCmd.Flags().StringP("output", "o", "", "write selected addresses to file")
}
