// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"dataio/cli/internal/deployr"
	apperr "dataio/cli/internal/errors"
	"dataio/cli/internal/logging"
	"dataio/cli/internal/rdata"
)

// Upload sends a local file to the project working directory before
// execution.
type Upload struct {
	Path      string
	Filename  string
	Overwrite bool
}

// RemoteFrame is a delimited dataset read client-side into a data frame and
// pushed as an encoded input.
type RemoteFrame struct {
	Name string
	// URL is an http(s) URL or a local path.
	URL       string
	Delimiter string
	Header    bool
}

// Recipe describes one example run: what goes in, what is executed and what
// is asked back.
type Recipe struct {
	Script deployr.Script
	// Auth requires a login before execution. Stateful implies it.
	Auth bool
	// Stateful runs the script on a project instead of anonymously.
	Stateful bool
	// Project carries creation time preloads and inputs.
	Project *deployr.ProjectCreationOptions
	Upload  *Upload

	Inputs           []rdata.Value
	Frames           []RemoteFrame
	Outputs          []string
	PreloadWorkspace *deployr.PreloadOptions
	PreloadDirectory *deployr.PreloadOptions
	Storage          *deployr.StorageOptions
	// RandomWorkspace stores the workspace under a generated name.
	RandomWorkspace bool
	Graphics        string
}

// Env carries run time settings shared by every example.
type Env struct {
	Credentials deployr.BasicAuth
	// UploadPath overrides Upload.Path.
	UploadPath string
	// DataURL overrides the URL of the first RemoteFrame.
	DataURL    string
	HTTPClient *http.Client
	// StorageName generates repository workspace names.
	StorageName func() string
}

// Outcome pairs an execution result with the outputs that were requested.
type Outcome struct {
	Requested []string
	Result    *Result
	Project   string
}

// NeedsAuth reports whether the recipe requires a login.
func (r *Recipe) NeedsAuth() bool { return r.Auth || r.Stateful }

// Run executes the recipe inside s.
func (r *Recipe) Run(ctx context.Context, s *Scope, env Env) (*Outcome, error) {
	var session Session
	if r.Stateful {
		if r.Project != nil && r.Project.PreloadWorkspace != nil {
			logging.Stage(logging.StagePreload).Msgf("Repository binary file input set on project creation [ %s ]", r.Project.PreloadWorkspace.Filename)
		}
		if r.Project != nil && r.Project.PreloadDirectory != nil {
			logging.Stage(logging.StagePreload).Msgf("Repository data file input set on project creation [ %s ]", r.Project.PreloadDirectory.Filename)
		}
		var err error
		if session, err = s.CreateProject(ctx, r.Project); err != nil {
			return nil, err
		}
	}

	if r.Upload != nil {
		if session == nil {
			return nil, apperr.New(apperr.UploadFailed, "upload requires a stateful run")
		}
		if err := r.upload(ctx, session, env); err != nil {
			return nil, err
		}
	}

	opts := r.options(ctx, env)

	var (
		res *Result
		err error
	)
	outcome := &Outcome{Requested: append([]string(nil), r.Outputs...)}
	if session != nil {
		res, err = session.ExecuteScript(ctx, r.Script, opts)
		if err == nil {
			outcome.Project = session.ID()
			logging.Stage(logging.StageExecution).Msgf("Stateful R script execution completed [ %s ]", r.Script.Filename)
		}
	} else {
		res, err = s.Conn().ExecuteScript(ctx, r.Script, opts)
		if err == nil {
			logging.Stage(logging.StageExecution).Msgf("Discrete R script execution completed [ %s ]", r.Script.Filename)
		}
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ExecutionFailed, "execute "+r.Script.Filename, err)
	}
	outcome.Result = res
	return outcome, nil
}

func (r *Recipe) upload(ctx context.Context, session Session, env Env) error {
	path := r.Upload.Path
	if env.UploadPath != "" {
		path = env.UploadPath
	}
	f, err := os.Open(path)
	if err != nil {
		return apperr.Wrap(apperr.UploadFailed, "open "+path, err)
	}
	defer f.Close()

	name := r.Upload.Filename
	if name == "" {
		name = filepath.Base(path)
	}
	if _, err := session.UploadFile(ctx, f, deployr.UploadOptions{Filename: name, Overwrite: r.Upload.Overwrite}); err != nil {
		return apperr.Wrap(apperr.UploadFailed, "upload "+name, err)
	}
	logging.Stage(logging.StageUpload).Msgf("Uploaded data file input to working directory [ %s ]", name)
	return nil
}

// options builds the execution options, logging each input and option the
// way it is set.
func (r *Recipe) options(ctx context.Context, env Env) *deployr.ExecutionOptions {
	opts := &deployr.ExecutionOptions{
		Inputs:           append([]rdata.Value(nil), r.Inputs...),
		Outputs:          append([]string(nil), r.Outputs...),
		PreloadWorkspace: r.PreloadWorkspace,
		PreloadDirectory: r.PreloadDirectory,
		Graphics:         r.Graphics,
	}
	if r.PreloadWorkspace != nil {
		logging.Stage(logging.StageDataInput).Msgf("Repository binary file input set on execution [ %s ]", r.PreloadWorkspace.Filename)
	}
	if r.PreloadDirectory != nil {
		logging.Stage(logging.StageDataInput).Msgf("Repository data file input set on execution [ %s ]", r.PreloadDirectory.Filename)
	}
	for _, in := range r.Inputs {
		logging.Stage(logging.StageDataInput).Msgf("DeployR-encoded R input set on execution [ %s %s ]", in.Name(), in.Kind())
	}

	for i, fr := range r.Frames {
		if i == 0 && env.DataURL != "" {
			fr.URL = env.DataURL
		}
		df, err := loadFrame(ctx, env.HTTPClient, fr)
		if err != nil {
			// The script still runs, without the generated input.
			log.Warn().Err(err).Str("source", fr.URL).Msg("Simulate generated data failed")
			continue
		}
		opts.Inputs = append(opts.Inputs, df)
		logging.Stage(logging.StageDataInput).Msgf("DeployR-encoded R input set on execution [ %s %s, %d columns ]", df.Name(), df.Kind(), len(df.Columns))
	}

	if len(r.Outputs) > 0 {
		logging.Stage(logging.StageExecOption).Msgf("DeployR-encoded R object request set on execution %v", r.Outputs)
	}

	if r.Storage != nil || r.RandomWorkspace {
		st := deployr.StorageOptions{}
		if r.Storage != nil {
			st = *r.Storage
		}
		if r.RandomWorkspace && st.Workspace == "" {
			st.Workspace = storageName(env)
		}
		opts.Storage = &st
		logging.Stage(logging.StageExecOption).Msgf("Repository storage request set on execution [ %s ]", st.Workspace)
	}
	return opts
}

func storageName(env Env) string {
	if env.StorageName != nil {
		return env.StorageName()
	}
	return RandomName()
}

// RandomName returns a short random hex name for repository storage.
func RandomName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

var defaultHTTPClient = &http.Client{Timeout: 2 * time.Minute}

// loadFrame reads fr into a data frame.
func loadFrame(ctx context.Context, hc *http.Client, fr RemoteFrame) (*rdata.DataFrame, error) {
	rc, err := openSource(ctx, hc, fr.URL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	delim := fr.Delimiter
	if delim == "" {
		delim = `\s+`
	}
	t, err := rdata.ReadTable(rc, delim, fr.Header, true)
	if err != nil {
		return nil, apperr.Wrap(apperr.InputFailed, "read "+fr.URL, err)
	}
	return t.AsDataFrame(fr.Name), nil
}

func openSource(ctx context.Context, hc *http.Client, src string) (io.ReadCloser, error) {
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		f, ferr := os.Open(strings.TrimPrefix(src, "file://"))
		if ferr != nil {
			return nil, apperr.Wrap(apperr.InputFailed, "open "+src, ferr)
		}
		return f, nil
	}
	if hc == nil {
		hc = defaultHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.InputFailed, "fetch "+src, err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.InputFailed, "fetch "+src, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperr.Wrap(apperr.InputFailed, "fetch "+src, fmt.Errorf("status %s", resp.Status))
	}
	return resp.Body, nil
}
