// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"dataio/cli/internal/dataio"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// exampleCmd groups the built-in data I/O examples.
var exampleCmd = &cobra.Command{
	Use:     "example",
	Aliases: []string{"ex"},
	Short:   "Run a built-in data input/output example",
	Long: `Each example connects to the DeployR server, optionally logs in and creates a
project, pushes data in, executes the repository script example-data-io/dataIO.R
and inspects the returned console, objects and files. The connection (and any
project) is always released when the example ends.`,
	ValidArgs: dataio.Names(),
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("unknown example %q (available: %s)", args[0], strings.Join(dataio.Names(), ", "))
	},
}

var exampleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in examples",
	RunE: func(cmd *cobra.Command, args []string) error {
		data := pterm.TableData{{"Example", "Auth", "Description"}}
		for _, ex := range dataio.Builtins() {
			authText := "anonymous"
			if ex.Auth {
				authText = "login"
			}
			data = append(data, []string{ex.Name, authText, ex.Short})
		}
		return printTable(os.Stdout, data)
	},
}

// newExampleCommand builds the subcommand running ex.
func newExampleCommand(ex dataio.Example) *cobra.Command {
	flags := &runFlags{}
	c := &cobra.Command{
		Use:   ex.Name,
		Short: ex.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExample(cmd, ex, flags)
		},
	}
	flags.register(c)
	switch ex.Name {
	case "stateful-local-encoded":
		c.Flags().StringVar(&flags.file, "file", dataio.HipStarFile, "Local data file uploaded to the project working directory")
	case "stateful-encoded-binary":
		c.Flags().StringVar(&flags.dataURL, "data-url", dataio.HipStarURL, "URL or path of the delimited dataset sent as data frame \"hip\"")
	}
	return c
}

func init() {
	rootCmd.AddCommand(exampleCmd)
	exampleCmd.AddCommand(exampleListCmd)
	for _, ex := range dataio.Builtins() {
		exampleCmd.AddCommand(newExampleCommand(ex))
	}
}
