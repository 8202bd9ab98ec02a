// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"

	apperr "dataio/cli/internal/errors"
	"dataio/cli/internal/logging"
	"dataio/cli/internal/rdata"
)

// InspectOptions selects what an Inspector does with a result.
type InspectOptions struct {
	// Artifacts, when set, restricts working directory downloads to these
	// filenames.
	Artifacts []string
	// DeleteRepositoryFiles removes repository files after download.
	DeleteRepositoryFiles bool
	// Tables converts tabular objects into rdata tables.
	Tables bool
}

// Exporter accepts tables converted from workspace objects.
type Exporter interface {
	WriteTable(ctx context.Context, name string, t *rdata.Table) (int64, error)
}

// Inspector walks an execution result: console, objects, files.
type Inspector struct {
	// DownloadDir receives downloaded files. Empty discards the content.
	DownloadDir string
	// Exporter, when set, receives every tabular object.
	Exporter Exporter
}

// Inspect logs and collects everything in out. Download and delete
// failures are recorded in the summary and never stop the inspection. The
// returned error reports failed exports only.
func (in *Inspector) Inspect(ctx context.Context, out *Outcome, opts InspectOptions) (*Summary, error) {
	res := out.Result
	if res == nil {
		res = &Result{}
	}
	sum := &Summary{
		Project:      out.Project,
		Console:      res.Console,
		ConsoleBytes: len(res.Console),
		Tables:       map[string]*rdata.Table{},
	}
	if res.Console != "" {
		logging.Stage(logging.StageDataOutput).Msg("Retrieved R console output")
	}

	for _, v := range res.Objects {
		describe(v)
		sum.Objects = append(sum.Objects, ObjectSummary{Name: v.Name(), Kind: v.Kind().String(), Length: rdata.Len(v)})
		if !opts.Tables && in.Exporter == nil {
			continue
		}
		t, err := rdata.FromValue(v)
		if err != nil {
			if !errors.Is(err, rdata.ErrNotTabular) {
				log.Warn().Err(err).Str("object", v.Name()).Msg("Table conversion failed")
			}
			continue
		}
		sum.Tables[v.Name()] = t
	}
	if len(out.Requested) > 0 {
		sum.Outputs = MatchOutputs(out.Requested, res.Objects)
		if !sum.Outputs.OK() {
			log.Warn().Strs("missing", sum.Outputs.Missing).Strs("unexpected", sum.Outputs.Unexpected).Msg("Returned objects do not match the requested outputs")
		}
	}

	for _, f := range res.Artifacts {
		if len(opts.Artifacts) > 0 && !slices.Contains(opts.Artifacts, f.Name()) {
			continue
		}
		logging.Stage(logging.StageDataOutput).Msgf("Retrieved working directory file output %s", f.Name())
		sum.Files = append(sum.Files, in.download(ctx, f, CategoryArtifact, "Working directory binary file download"))
	}
	for _, f := range res.Results {
		logging.Stage(logging.StageDataOutput).Msgf("Retrieved graphics device plot output %s", f.Name())
		sum.Files = append(sum.Files, in.download(ctx, f, CategoryResult, "Graphics device plot download"))
	}
	for _, f := range res.RepositoryFiles {
		logging.Stage(logging.StageDataOutput).Msgf("Retrieved repository file output %s", f.Name())
		fs := in.download(ctx, f, CategoryRepository, "Repository-managed file download")
		if opts.DeleteRepositoryFiles {
			if err := f.Delete(ctx); err != nil {
				log.Warn().Err(err).Str("file", f.Name()).Msg("Repository-managed file delete")
				if fs.Error == "" {
					fs.Error = err.Error()
				}
			} else {
				fs.Deleted = true
			}
		}
		sum.Files = append(sum.Files, fs)
	}

	return sum, in.export(ctx, sum)
}

func describe(v rdata.Value) {
	ev := logging.Stage(logging.StageDataOutput)
	switch x := v.(type) {
	case *rdata.DataFrame:
		ev.Msgf("Retrieved DeployR-encoded R object output %s [ %s, %d columns ]", v.Name(), v.Kind(), len(x.Columns))
	case *rdata.NumericVector:
		ev.Msgf("Retrieved DeployR-encoded R object %s value=%v", v.Name(), x.Value)
	case *rdata.StringVector:
		ev.Msgf("Retrieved DeployR-encoded R object %s value=%v", v.Name(), x.Value)
	case *rdata.BooleanVector:
		ev.Msgf("Retrieved DeployR-encoded R object %s value=%v", v.Name(), x.Value)
	case *rdata.String:
		ev.Msgf("Retrieved DeployR-encoded R object %s value=%s", v.Name(), x.Value)
	case *rdata.Numeric:
		ev.Msgf("Retrieved DeployR-encoded R object %s value=%v", v.Name(), x.Value)
	case *rdata.Boolean:
		ev.Msgf("Retrieved DeployR-encoded R object %s value=%t", v.Name(), x.Value)
	default:
		encoding := fmt.Sprintf("%T", v)
		if u, ok := v.(*rdata.Unknown); ok {
			encoding = u.Type + "/" + u.RClass
		}
		ev.Msgf("Unexpected DeployR-encoded R object returned, object name=%s, encoding=%s", v.Name(), encoding)
		log.Debug().Msg(spew.Sdump(v))
	}
}

func (in *Inspector) download(ctx context.Context, f File, category, failure string) FileSummary {
	fs := FileSummary{Name: f.Name(), Category: category}
	rc, err := f.Download(ctx)
	if err != nil {
		log.Warn().Err(err).Str("file", f.Name()).Msg(failure)
		fs.Error = err.Error()
		return fs
	}
	defer rc.Close()

	var w io.Writer = io.Discard
	if in.DownloadDir != "" {
		if err := os.MkdirAll(in.DownloadDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", in.DownloadDir).Msg(failure)
			fs.Error = err.Error()
			return fs
		}
		fs.Path = filepath.Join(in.DownloadDir, category+"-"+filepath.Base(f.Name()))
		out, err := os.Create(fs.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", fs.Path).Msg(failure)
			fs.Error = err.Error()
			fs.Path = ""
			return fs
		}
		defer out.Close()
		w = out
	}
	fs.Bytes, err = io.Copy(w, rc)
	if err != nil {
		log.Warn().Err(err).Str("file", f.Name()).Msg(failure)
		fs.Error = err.Error()
	}
	return fs
}

func (in *Inspector) export(ctx context.Context, sum *Summary) error {
	if in.Exporter == nil {
		return nil
	}
	var errs []error
	for _, o := range sum.Objects {
		t, ok := sum.Tables[o.Name]
		if !ok {
			continue
		}
		n, err := in.Exporter.WriteTable(ctx, o.Name, t)
		es := ExportSummary{Object: o.Name, Rows: n}
		if err != nil {
			log.Warn().Err(err).Str("object", o.Name).Msg("Export failed")
			es.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", o.Name, err))
		} else {
			logging.Stage(logging.StageExport).Msgf("Exported %s [ %d rows ]", o.Name, n)
		}
		sum.Exports = append(sum.Exports, es)
	}
	if len(errs) > 0 {
		return apperr.Wrap(apperr.ExportFailed, "export tables", errors.Join(errs...))
	}
	return nil
}
