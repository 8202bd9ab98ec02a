// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"io"

	"dataio/cli/internal/deployr"
)

// DeployRConnector connects with the deployr HTTP client.
type DeployRConnector struct {
	Options []deployr.Option
}

func (c DeployRConnector) Connect(_ context.Context, endpoint string) (Conn, error) {
	client, err := deployr.New(endpoint, c.Options...)
	if err != nil {
		return nil, err
	}
	return &deployrConn{client: client}, nil
}

type deployrConn struct {
	client *deployr.Client
}

func (c *deployrConn) Login(ctx context.Context, auth deployr.BasicAuth) (Identity, error) {
	u, err := c.client.Login(ctx, auth)
	if err != nil {
		return nil, err
	}
	return deployrIdentity{user: u}, nil
}

func (c *deployrConn) ExecuteScript(ctx context.Context, script deployr.Script, opts *deployr.ExecutionOptions) (*Result, error) {
	exec, err := c.client.ExecuteScript(ctx, script, opts)
	if err != nil {
		return nil, err
	}
	return toResult(exec), nil
}

func (c *deployrConn) Release(ctx context.Context) error { return c.client.Release(ctx) }

type deployrIdentity struct {
	user *deployr.User
}

func (i deployrIdentity) Username() string { return i.user.Username }

func (i deployrIdentity) CreateProject(ctx context.Context, opts *deployr.ProjectCreationOptions) (Session, error) {
	p, err := i.user.CreateProject(ctx, opts)
	if err != nil {
		return nil, err
	}
	return deployrSession{project: p}, nil
}

type deployrSession struct {
	project *deployr.Project
}

func (s deployrSession) ID() string { return s.project.ID }

func (s deployrSession) ExecuteScript(ctx context.Context, script deployr.Script, opts *deployr.ExecutionOptions) (*Result, error) {
	exec, err := s.project.ExecuteScript(ctx, script, opts)
	if err != nil {
		return nil, err
	}
	return toResult(exec), nil
}

func (s deployrSession) UploadFile(ctx context.Context, content io.Reader, opts deployr.UploadOptions) (File, error) {
	f, err := s.project.UploadFile(ctx, content, opts)
	if err != nil {
		return nil, err
	}
	return deployrFile{f}, nil
}

func (s deployrSession) Close(ctx context.Context) error { return s.project.Close(ctx) }

type deployrFile struct{ *deployr.File }

func (f deployrFile) Name() string { return f.Filename }

type deployrRepoFile struct{ *deployr.RepositoryFile }

func (f deployrRepoFile) Name() string { return f.Filename }

func toResult(e *deployr.Execution) *Result {
	r := &Result{Console: e.Console, Objects: e.Objects}
	for _, f := range e.Artifacts {
		r.Artifacts = append(r.Artifacts, deployrFile{f})
	}
	for _, f := range e.Results {
		r.Results = append(r.Results, deployrFile{f})
	}
	for _, f := range e.RepositoryFiles {
		r.RepositoryFiles = append(r.RepositoryFiles, deployrRepoFile{f})
	}
	return r
}
