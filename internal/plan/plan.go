// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package plan loads declarative execution plans written in HCL.
//
// A plan describes one run of a repository script: whether to log in,
// whether to create a project (and what to preload into it), a local file
// to upload, the encoded inputs, the outputs to fetch, storage requests and
// what to do with the returned files. A plan yields a dataio.Example so it
// runs through the same scope and inspection path as the built-in examples.
//
//	name = "hip-stateful"
//	auth = true
//
//	project {
//	  preload_workspace {
//	    filename  = "hipStar.rData"
//	    directory = "example-data-io"
//	    author    = "testuser"
//	  }
//	}
//
//	input "threshold" { value = 9.5 }
//
//	execute {
//	  script    = "dataIO.R"
//	  directory = "example-data-io"
//	  author    = "testuser"
//	  outputs   = ["hip", "hipDim", "hipNames"]
//	}
package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"dataio/cli/internal/dataio"
	"dataio/cli/internal/deployr"
)

type file struct {
	Name        string        `hcl:"name,optional"`
	Description string        `hcl:"description,optional"`
	Auth        bool          `hcl:"auth,optional"`
	Project     *projectBlock `hcl:"project,block"`
	Upload      *uploadBlock  `hcl:"upload,block"`
	Inputs      []*inputBlock `hcl:"input,block"`
	Frames      []*frameBlock `hcl:"frame,block"`
	Execute     *executeBlock `hcl:"execute,block"`
	Inspect     *inspectBlock `hcl:"inspect,block"`
}

type repoFileBlock struct {
	Filename  string `hcl:"filename"`
	Directory string `hcl:"directory,optional"`
	Author    string `hcl:"author,optional"`
	Version   string `hcl:"version,optional"`
}

type projectBlock struct {
	Name             string         `hcl:"name,optional"`
	Description      string         `hcl:"description,optional"`
	PreloadWorkspace *repoFileBlock `hcl:"preload_workspace,block"`
	PreloadDirectory *repoFileBlock `hcl:"preload_directory,block"`
}

type uploadBlock struct {
	Path      string `hcl:"path"`
	Filename  string `hcl:"filename,optional"`
	Overwrite bool   `hcl:"overwrite,optional"`
}

type inputBlock struct {
	Name  string    `hcl:"name,label"`
	Value cty.Value `hcl:"value"`
}

type frameBlock struct {
	Name      string `hcl:"name,label"`
	URL       string `hcl:"url"`
	Delimiter string `hcl:"delimiter,optional"`
	Header    *bool  `hcl:"header,optional"`
}

type storageBlock struct {
	Workspace       string   `hcl:"workspace,optional"`
	RandomWorkspace bool     `hcl:"random_workspace,optional"`
	Directory       string   `hcl:"directory,optional"`
	Objects         []string `hcl:"objects,optional"`
	Files           []string `hcl:"files,optional"`
	Public          bool     `hcl:"public,optional"`
	NewVersion      bool     `hcl:"new_version,optional"`
}

type executeBlock struct {
	Script           string         `hcl:"script"`
	Directory        string         `hcl:"directory,optional"`
	Author           string         `hcl:"author,optional"`
	Version          string         `hcl:"version,optional"`
	Outputs          []string       `hcl:"outputs,optional"`
	Graphics         string         `hcl:"graphics,optional"`
	PreloadWorkspace *repoFileBlock `hcl:"preload_workspace,block"`
	PreloadDirectory *repoFileBlock `hcl:"preload_directory,block"`
	Storage          *storageBlock  `hcl:"storage,block"`
}

type inspectBlock struct {
	Artifacts             []string `hcl:"artifacts,optional"`
	DeleteRepositoryFiles bool     `hcl:"delete_repository_files,optional"`
	Tables                *bool    `hcl:"tables,optional"`
}

// Plan is a validated execution plan.
type Plan struct {
	Name        string
	Description string
	Path        string
	Recipe      *dataio.Recipe
	Inspect     dataio.InspectOptions
}

// Load parses and validates the plan file at path.
func Load(path string) (*Plan, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, diags)
	}
	return decode(f.Body, path)
}

// Parse parses a plan held in memory. filename is used in diagnostics and
// as the base for relative upload paths.
func Parse(src []byte, filename string) (*Plan, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plan %s: %w", filename, diags)
	}
	return decode(f.Body, filename)
}

func decode(body hcl.Body, path string) (*Plan, error) {
	var f file
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode plan %s: %w", path, diags)
	}
	p, err := build(&f, path)
	if err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return p, nil
}

func build(f *file, path string) (*Plan, error) {
	if f.Execute == nil {
		return nil, errors.New("missing execute block")
	}
	if strings.TrimSpace(f.Execute.Script) == "" {
		return nil, errors.New("execute.script must not be empty")
	}
	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	r := &dataio.Recipe{
		Script: deployr.Script{
			Filename:  f.Execute.Script,
			Directory: f.Execute.Directory,
			Author:    f.Execute.Author,
			Version:   f.Execute.Version,
		},
		Auth:             f.Auth,
		Outputs:          f.Execute.Outputs,
		Graphics:         f.Execute.Graphics,
		PreloadWorkspace: f.Execute.PreloadWorkspace.options(),
		PreloadDirectory: f.Execute.PreloadDirectory.options(),
	}

	if pb := f.Project; pb != nil {
		r.Stateful = true
		r.Project = &deployr.ProjectCreationOptions{
			Name:             pb.Name,
			Description:      pb.Description,
			PreloadWorkspace: pb.PreloadWorkspace.options(),
			PreloadDirectory: pb.PreloadDirectory.options(),
		}
	}

	if ub := f.Upload; ub != nil {
		if !r.Stateful {
			return nil, errors.New("upload requires a project block")
		}
		up := ub.Path
		if !filepath.IsAbs(up) {
			up = filepath.Join(filepath.Dir(path), up)
		}
		r.Upload = &dataio.Upload{Path: up, Filename: ub.Filename, Overwrite: ub.Overwrite}
	}

	seen := map[string]bool{}
	for _, in := range f.Inputs {
		if seen[in.Name] {
			return nil, fmt.Errorf("duplicate input %q", in.Name)
		}
		seen[in.Name] = true
		v, err := ToValue(in.Name, in.Value)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		r.Inputs = append(r.Inputs, v)
	}
	for _, fb := range f.Frames {
		if seen[fb.Name] {
			return nil, fmt.Errorf("duplicate input %q", fb.Name)
		}
		seen[fb.Name] = true
		header := true
		if fb.Header != nil {
			header = *fb.Header
		}
		r.Frames = append(r.Frames, dataio.RemoteFrame{Name: fb.Name, URL: fb.URL, Delimiter: fb.Delimiter, Header: header})
	}

	if sb := f.Execute.Storage; sb != nil {
		if sb.RandomWorkspace && sb.Workspace != "" {
			return nil, errors.New("storage: workspace and random_workspace are exclusive")
		}
		r.RandomWorkspace = sb.RandomWorkspace
		r.Storage = &deployr.StorageOptions{
			Workspace:  sb.Workspace,
			Directory:  sb.Directory,
			Objects:    sb.Objects,
			Files:      sb.Files,
			Public:     sb.Public,
			NewVersion: sb.NewVersion,
		}
	}

	p := &Plan{Name: name, Description: f.Description, Path: path, Recipe: r, Inspect: dataio.InspectOptions{Tables: true}}
	if ib := f.Inspect; ib != nil {
		p.Inspect.Artifacts = ib.Artifacts
		p.Inspect.DeleteRepositoryFiles = ib.DeleteRepositoryFiles
		if ib.Tables != nil {
			p.Inspect.Tables = *ib.Tables
		}
	}
	return p, nil
}

func (b *repoFileBlock) options() *deployr.PreloadOptions {
	if b == nil {
		return nil
	}
	return &deployr.PreloadOptions{Filename: b.Filename, Directory: b.Directory, Author: b.Author, Version: b.Version}
}

// Example returns the plan as a runnable example.
func (p *Plan) Example() dataio.Example {
	short := p.Description
	if short == "" {
		short = "Plan " + p.Path
	}
	return dataio.FromRecipe(p.Name, short, p.Recipe, p.Inspect)
}

// Inputs lists the names of the encoded inputs the plan sends.
func (p *Plan) Inputs() []string {
	var out []string
	for _, v := range p.Recipe.Inputs {
		out = append(out, v.Name())
	}
	for _, fr := range p.Recipe.Frames {
		out = append(out, fr.Name)
	}
	return out
}
