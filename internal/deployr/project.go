// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package deployr

import (
	"context"
	"io"
	"net/url"
	"sync"
)

type projectInfo struct {
	ID   string `json:"project"`
	Name string `json:"name"`
}

// Project is a stateful R session. Its workspace and working directory
// persist across executions until Close.
type Project struct {
	ID   string
	Name string

	client *Client
	mu     sync.Mutex
	closed bool
}

func (p *Project) checkOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrProjectClosed
	}
	return nil
}

// Closed reports whether Close has been called.
func (p *Project) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// ExecuteScript runs a repository script on this project. opts may be nil.
func (p *Project) ExecuteScript(ctx context.Context, script Script, opts *ExecutionOptions) (*Execution, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("project", p.ID)
	script.params(params)
	if err := opts.params(params); err != nil {
		return nil, err
	}
	r, err := p.client.post(ctx, p.client.calls.ProjectExecuteScript, params)
	if err != nil {
		return nil, err
	}
	return newExecution(p.client, p, r)
}

// UploadFile copies content into the project working directory.
func (p *Project) UploadFile(ctx context.Context, content io.Reader, opts UploadOptions) (*File, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("project", p.ID)
	params.Set("filename", opts.Filename)
	setIf(params, "descr", opts.Description)
	if opts.Overwrite {
		params.Set("overwrite", "true")
	}
	r, err := p.client.postMultipart(ctx, p.client.calls.ProjectDirectoryUpload, params, "file", opts.Filename, content)
	if err != nil {
		return nil, err
	}
	f := &File{Filename: opts.Filename, client: p.client, project: p}
	if r.Directory != nil && r.Directory.File != nil {
		f.fill(*r.Directory.File)
	}
	return f, nil
}

// Close ends the project on the server. Only the first call issues a
// request; the project is unusable afterwards even when that request fails.
func (p *Project) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	params := url.Values{}
	params.Set("project", p.ID)
	_, err := p.client.post(ctx, p.client.calls.ProjectClose, params)
	return err
}
