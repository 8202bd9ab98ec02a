// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dataio/cli/internal/auth"
	"dataio/cli/internal/dataio"
	"dataio/cli/internal/deployr"
	"dataio/cli/internal/export"
	"dataio/cli/internal/httperrors"
	"dataio/cli/internal/xdg"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// runFlags are shared by every command that runs an example or a plan.
type runFlags struct {
	downloadDir string
	save        bool
	export      bool
	exportDSN   string
	replace     bool
	format      string
	file        string
	dataURL     string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.downloadDir, "download-dir", "", "Save returned files to this directory (default from config; discarded when empty)")
	cmd.Flags().BoolVar(&f.save, "save", false, "Save returned files under the dataio data directory")
	cmd.Flags().BoolVar(&f.export, "export", false, "Write tabular outputs to the export database")
	cmd.Flags().StringVar(&f.exportDSN, "export-dsn", "", "Export database DSN (default $"+export.EnvDSN+" or keychain)")
	cmd.Flags().BoolVar(&f.replace, "replace", false, "Drop export tables before writing")
	cmd.Flags().StringVarP(&f.format, "format", "o", "", "Summary format: table, yaml or json (default from config)")
}

// runExample runs ex against the configured endpoint and renders its summary.
func runExample(cmd *cobra.Command, ex dataio.Example, f *runFlags) error {
	ctx := cmd.Context()
	format := strings.ToLower(firstNonEmpty(f.format, cfg.Format, "table"))
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q: want table, yaml or json", format)
	}

	env := dataio.Env{UploadPath: f.file, DataURL: f.dataURL}
	if ex.Auth {
		creds, err := auth.NewService(endpoint(), cfg.Manifest().HTTP).Credentials()
		if err != nil {
			return err
		}
		env.Credentials = deployr.BasicAuth{Username: creds.Username, Password: creds.Password}
		log.Debug().Str("source", creds.Source).Str("user", creds.Username).Msg("Resolved credentials")
	}

	dir := firstNonEmpty(f.downloadDir, cfg.DownloadDir)
	if dir == "" && f.save {
		data, err := xdg.DataDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(data, ex.Name)
	}
	in := &dataio.Inspector{DownloadDir: dir}
	if f.export || f.exportDSN != "" {
		raw, _, err := export.ResolveDSN(f.exportDSN)
		if err != nil {
			return err
		}
		sink, err := export.Open(ctx, raw, export.Options{TablePrefix: cfg.Export.TablePrefix, Replace: f.replace})
		if err != nil {
			return fmt.Errorf("open export database: %w", err)
		}
		defer sink.Close()
		in.Exporter = sink
	}

	runner := &dataio.Runner{
		Connector: dataio.DeployRConnector{Options: []deployr.Option{
			deployr.WithCalls(cfg.Manifest().HTTP),
			deployr.WithUserAgent(userAgent()),
		}},
		Endpoint:  endpoint(),
		Env:       env,
		Inspector: in,
	}
	sum, err := runner.Run(ctx, ex)
	if sum != nil {
		if rerr := renderSummary(os.Stdout, sum, format); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err != nil {
		return httperrors.FormatNetworkError(err, "running "+ex.Name, endpoint())
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
