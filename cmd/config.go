// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"dataio/cli/internal/config"
	"dataio/cli/internal/manifest"

	"github.com/BurntSushi/toml"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// configCmd shows and edits the non-secret settings file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := flagConfig
		if p == "" {
			p, _ = config.Path()
		}
		pterm.Println("# " + p)
		eff := cfg
		eff.Endpoint = endpoint()
		return toml.NewEncoder(os.Stdout).Encode(eff)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set endpoint, log_level, download_dir, format or export.table_prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		key, value := strings.ToLower(args[0]), strings.TrimSpace(args[1])
		switch key {
		case "endpoint":
			if _, err := manifest.BaseURL(value); err != nil {
				return err
			}
			c.Endpoint = value
		case "log_level":
			c.LogLevel = value
		case "download_dir":
			c.DownloadDir = value
		case "format":
			if !validFormat(value) {
				return fmt.Errorf("unknown format %q: want table, yaml or json", value)
			}
			c.Format = value
		case "export.table_prefix":
			c.Export.TablePrefix = value
		default:
			return fmt.Errorf("unknown setting %q", args[0])
		}
		save := config.Save
		if flagConfig != "" {
			save = func(c config.Config) error { return config.SaveFile(flagConfig, c) }
		}
		if err := save(c); err != nil {
			return err
		}
		pterm.Success.Printf("%s = %s\n", key, value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
