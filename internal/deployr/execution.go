// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package deployr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"dataio/cli/internal/rdata"
)

type executionInfo struct {
	ID        string     `json:"execution"`
	Console   string     `json:"console"`
	Results   []fileInfo `json:"results"`
	Artifacts []fileInfo `json:"artifacts"`
}

type workspaceInfo struct {
	Objects json.RawMessage `json:"objects"`
}

type repositoryInfo struct {
	Files []repoFileInfo `json:"files"`
}

type directoryInfo struct {
	File *fileInfo `json:"file"`
}

type fileInfo struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Length   int64  `json:"length"`
	URL      string `json:"url"`
}

type repoFileInfo struct {
	Filename  string `json:"filename"`
	Directory string `json:"directory"`
	Author    string `json:"author"`
	Version   string `json:"version"`
	Type      string `json:"type"`
	Length    int64  `json:"length"`
	URL       string `json:"url"`
}

// Execution is the immutable result of a script execution.
type Execution struct {
	ID      string
	Console string
	// Objects are the encoded workspace objects requested as outputs.
	Objects []rdata.Value
	// Artifacts are files the script wrote to the working directory.
	Artifacts []*File
	// Results are graphics device plots.
	Results []*File
	// RepositoryFiles are files stored to the repository on completion.
	RepositoryFiles []*RepositoryFile
}

func newExecution(c *Client, p *Project, r *response) (*Execution, error) {
	e := &Execution{}
	if r.Execution != nil {
		e.ID = r.Execution.ID
		e.Console = r.Execution.Console
		for _, fi := range r.Execution.Artifacts {
			f := &File{client: c, project: p}
			f.fill(fi)
			e.Artifacts = append(e.Artifacts, f)
		}
		for _, fi := range r.Execution.Results {
			f := &File{client: c, project: p}
			f.fill(fi)
			e.Results = append(e.Results, f)
		}
	}
	if r.Workspace != nil {
		objs, err := rdata.DecodeObjects(r.Workspace.Objects)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Call, err)
		}
		e.Objects = objs
	}
	if r.Repository != nil {
		for _, fi := range r.Repository.Files {
			e.RepositoryFiles = append(e.RepositoryFiles, &RepositoryFile{
				Filename:  fi.Filename,
				Directory: fi.Directory,
				Author:    fi.Author,
				Version:   fi.Version,
				Type:      fi.Type,
				Length:    fi.Length,
				URL:       fi.URL,
				client:    c,
			})
		}
	}
	return e, nil
}

// ExecuteScript runs a repository script anonymously on a temporary
// session that the server discards on completion. opts may be nil.
func (c *Client) ExecuteScript(ctx context.Context, script Script, opts *ExecutionOptions) (*Execution, error) {
	params := url.Values{}
	script.params(params)
	if err := opts.params(params); err != nil {
		return nil, err
	}
	r, err := c.post(ctx, c.calls.RepositoryScriptExecute, params)
	if err != nil {
		return nil, err
	}
	return newExecution(c, nil, r)
}

// File is a working directory file or graphics result of a project.
type File struct {
	Filename string
	Type     string
	Length   int64
	URL      string

	client  *Client
	project *Project
}

func (f *File) fill(fi fileInfo) {
	if fi.Filename != "" {
		f.Filename = fi.Filename
	}
	f.Type = fi.Type
	f.Length = fi.Length
	f.URL = fi.URL
}

// Download opens the file content. The caller must close the reader.
func (f *File) Download(ctx context.Context) (io.ReadCloser, error) {
	if f.project != nil {
		if err := f.project.checkOpen(); err != nil {
			return nil, err
		}
	}
	if f.URL != "" {
		return f.client.fetch(ctx, f.URL)
	}
	if f.project == nil {
		return nil, fmt.Errorf("deployr: file %q has no download location", f.Filename)
	}
	params := url.Values{}
	params.Set("project", f.project.ID)
	params.Set("filename", f.Filename)
	return f.client.stream(ctx, f.client.calls.ProjectDirectoryDownload, params)
}

// RepositoryFile is a file managed by the server repository.
type RepositoryFile struct {
	Filename  string
	Directory string
	Author    string
	Version   string
	Type      string
	Length    int64
	URL       string

	client *Client
}

// Download opens the repository file content. The caller must close the
// reader.
func (f *RepositoryFile) Download(ctx context.Context) (io.ReadCloser, error) {
	params := url.Values{}
	params.Set("filename", f.Filename)
	setIf(params, "directory", f.Directory)
	setIf(params, "author", f.Author)
	setIf(params, "version", f.Version)
	return f.client.stream(ctx, f.client.calls.RepositoryFileDownload, params)
}

// Delete removes the file from the repository. This is a remote side
// effect and cannot be undone.
func (f *RepositoryFile) Delete(ctx context.Context) error {
	params := url.Values{}
	params.Set("filename", f.Filename)
	setIf(params, "directory", f.Directory)
	_, err := f.client.post(ctx, f.client.calls.RepositoryFileDelete, params)
	return err
}
