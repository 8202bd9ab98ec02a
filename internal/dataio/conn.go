// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dataio runs DeployR data input/output examples.
//
// Every example follows the same linear sequence: connect to the server,
// optionally log in, optionally create a project (a stateful R session),
// push data in (encoded inputs, repository preloads or file uploads),
// execute a repository script, then inspect what came back (console,
// encoded objects, working directory files, plots and repository files).
//
// A Scope owns the connection and project of one run and releases them on
// every exit path: the project is closed first, the connection released
// second, each exactly once, and a failure while closing never prevents the
// release. The engine talks to the server through the small Connector,
// Conn, Identity and Session interfaces so the sequencing can be tested
// without a server.
package dataio

import (
	"context"
	"io"

	"dataio/cli/internal/deployr"
	"dataio/cli/internal/rdata"
)

// Connector opens connections to a server endpoint.
type Connector interface {
	Connect(ctx context.Context, endpoint string) (Conn, error)
}

// Conn is an anonymous or authenticated connection.
type Conn interface {
	Login(ctx context.Context, auth deployr.BasicAuth) (Identity, error)
	ExecuteScript(ctx context.Context, script deployr.Script, opts *deployr.ExecutionOptions) (*Result, error)
	Release(ctx context.Context) error
}

// Identity is an authenticated user on a Conn.
type Identity interface {
	Username() string
	CreateProject(ctx context.Context, opts *deployr.ProjectCreationOptions) (Session, error)
}

// Session is a project: a stateful R session owned by an Identity.
type Session interface {
	ID() string
	ExecuteScript(ctx context.Context, script deployr.Script, opts *deployr.ExecutionOptions) (*Result, error)
	UploadFile(ctx context.Context, content io.Reader, opts deployr.UploadOptions) (File, error)
	Close(ctx context.Context) error
}

// File is a downloadable execution output.
type File interface {
	Name() string
	Download(ctx context.Context) (io.ReadCloser, error)
}

// RepositoryFile is a file stored in the server repository.
type RepositoryFile interface {
	File
	Delete(ctx context.Context) error
}

// Result is the immutable outcome of one script execution.
type Result struct {
	Console         string
	Objects         []rdata.Value
	Artifacts       []File
	Results         []File
	RepositoryFiles []RepositoryFile
}
