// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"dataio/cli/internal/plan"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	runPlanFlags = &runFlags{}
	runCheckOnly bool
)

// runCmd executes a declarative HCL plan.
var runCmd = &cobra.Command{
	Use:   "run <plan.hcl>",
	Short: "Run a declarative execution plan",
	Long: `The run command loads an HCL plan describing one script execution: login, an
optional project with preloads, an optional upload, encoded inputs, requested
outputs, repository storage and what to do with returned files. The plan runs
through the same connection handling and inspection as the built-in examples.

With --check the plan is only parsed and validated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		if runCheckOnly {
			pterm.Success.Printf("Plan %s is valid (script %s, inputs %v, outputs %v)\n",
				p.Name, p.Recipe.Script.Filename, p.Inputs(), p.Recipe.Outputs)
			return nil
		}
		return runExample(cmd, p.Example(), runPlanFlags)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runPlanFlags.register(runCmd)
	runCmd.Flags().StringVar(&runPlanFlags.file, "file", "", "Override the upload path of the plan")
	runCmd.Flags().StringVar(&runPlanFlags.dataURL, "data-url", "", "Override the URL of the first frame input")
	runCmd.Flags().BoolVar(&runCheckOnly, "check", false, "Validate the plan without running it")
}
