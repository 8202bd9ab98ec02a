// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"dataio/cli/internal/deployr"
)

// recorder keeps the ordered list of calls seen by the fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (r *recorder) index(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeConnector struct {
	rec  *recorder
	conn *fakeConn
	err  error
}

func (f *fakeConnector) Connect(_ context.Context, _ string) (Conn, error) {
	f.rec.add("connect")
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

type fakeConn struct {
	rec *recorder

	loginErr     error
	execErr      error
	execPanic    any
	releaseErr   error
	releasePanic bool

	result   *Result
	session  *fakeSession
	lastOpts *deployr.ExecutionOptions
}

func (c *fakeConn) Login(_ context.Context, auth deployr.BasicAuth) (Identity, error) {
	c.rec.add("login")
	if c.loginErr != nil {
		return nil, c.loginErr
	}
	return fakeIdentity{conn: c, name: auth.Username}, nil
}

func (c *fakeConn) ExecuteScript(_ context.Context, _ deployr.Script, opts *deployr.ExecutionOptions) (*Result, error) {
	c.rec.add("execute")
	c.lastOpts = opts
	if c.execPanic != nil {
		panic(c.execPanic)
	}
	if c.execErr != nil {
		return nil, c.execErr
	}
	return c.result, nil
}

func (c *fakeConn) Release(context.Context) error {
	c.rec.add("release")
	if c.releasePanic {
		panic("release blew up")
	}
	return c.releaseErr
}

type fakeIdentity struct {
	conn *fakeConn
	name string
}

func (i fakeIdentity) Username() string { return i.name }

func (i fakeIdentity) CreateProject(_ context.Context, opts *deployr.ProjectCreationOptions) (Session, error) {
	i.conn.rec.add("create")
	if i.conn.session == nil {
		return nil, errors.New("no project available")
	}
	i.conn.session.created = opts
	return i.conn.session, nil
}

type fakeSession struct {
	rec *recorder
	id  string

	closeErr   error
	closePanic bool
	execErr    error
	result     *Result

	created  *deployr.ProjectCreationOptions
	uploaded string
	uploadAs string
	lastOpts *deployr.ExecutionOptions
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) ExecuteScript(_ context.Context, _ deployr.Script, opts *deployr.ExecutionOptions) (*Result, error) {
	s.rec.add("execute:" + s.id)
	s.lastOpts = opts
	if s.execErr != nil {
		return nil, s.execErr
	}
	return s.result, nil
}

func (s *fakeSession) UploadFile(_ context.Context, content io.Reader, opts deployr.UploadOptions) (File, error) {
	s.rec.add("upload:" + s.id)
	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.uploaded = string(b)
	s.uploadAs = opts.Filename
	return &fakeFile{name: opts.Filename, content: string(b)}, nil
}

func (s *fakeSession) Close(context.Context) error {
	s.rec.add("close")
	if s.closePanic {
		panic("close blew up")
	}
	return s.closeErr
}

type fakeFile struct {
	name        string
	content     string
	downloadErr error
	deleteErr   error
	deleted     bool
}

func (f *fakeFile) Name() string { return f.name }

func (f *fakeFile) Download(context.Context) (io.ReadCloser, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeFile) Delete(context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = true
	return nil
}

// newFakes wires a connector, connection and project sharing one recorder.
func newFakes() (*recorder, *fakeConnector, *fakeConn, *fakeSession) {
	rec := &recorder{}
	session := &fakeSession{rec: rec, id: "PROJECT-1", result: &Result{}}
	conn := &fakeConn{rec: rec, session: session, result: &Result{}}
	return rec, &fakeConnector{rec: rec, conn: conn}, conn, session
}

func testRunner(connector Connector) *Runner {
	return &Runner{
		Connector: connector,
		Endpoint:  "http://localhost:8000/deployr",
		Env: Env{
			Credentials: deployr.BasicAuth{Username: "testuser", Password: "changeme"},
			StorageName: func() string { return "ws-fixed" },
		},
		Inspector: &Inspector{},
	}
}

func mustLookup(name string) Example {
	ex, ok := Lookup(name)
	if !ok {
		panic("unknown example " + name)
	}
	return ex
}
