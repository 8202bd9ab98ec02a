// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package deployr

import (
	"net/url"
	"strconv"
	"strings"

	"dataio/cli/internal/rdata"
)

// BasicAuth holds username/password credentials for Login.
type BasicAuth struct {
	Username string
	Password string
}

// Script identifies a repository-managed script.
type Script struct {
	Filename  string
	Directory string
	Author    string
	// Version is empty for the latest version.
	Version string
}

func (s Script) params(v url.Values) {
	v.Set("filename", s.Filename)
	setIf(v, "directory", s.Directory)
	setIf(v, "author", s.Author)
	setIf(v, "version", s.Version)
}

// PreloadOptions names a repository file to load before execution.
type PreloadOptions struct {
	Filename  string
	Directory string
	Author    string
	Version   string
}

// StorageOptions asks the server to store execution output in the
// repository once the script completes.
type StorageOptions struct {
	// Workspace, when set, saves the whole workspace as a binary R object
	// file with this name.
	Workspace string
	// Objects lists individual workspace objects to store.
	Objects []string
	// Files lists working directory files to store.
	Files     []string
	Directory string
	Public    bool
	// NewVersion keeps the previous file version instead of overwriting it.
	NewVersion bool
}

// ExecutionOptions configures a single script execution.
type ExecutionOptions struct {
	// Inputs are DeployR-encoded values pushed into the workspace.
	Inputs []rdata.Value
	// Outputs names workspace objects to return encoded.
	Outputs []string
	// PreloadWorkspace loads a binary R object file into the workspace.
	PreloadWorkspace *PreloadOptions
	// PreloadDirectory copies a repository file into the working directory.
	PreloadDirectory *PreloadOptions
	Storage          *StorageOptions

	ConsoleOff bool
	EchoOff    bool
	// Graphics selects the graphics device (png or svg); empty for none.
	Graphics       string
	GraphicsWidth  int
	GraphicsHeight int
	// Tag is a free-form label stored with the execution history.
	Tag string
}

// ProjectCreationOptions configures a new project.
type ProjectCreationOptions struct {
	Name             string
	Description      string
	Inputs           []rdata.Value
	PreloadWorkspace *PreloadOptions
	PreloadDirectory *PreloadOptions
}

// UploadOptions configures a working directory upload.
type UploadOptions struct {
	Filename    string
	Description string
	Overwrite   bool
}

func (o *ExecutionOptions) params(v url.Values) error {
	if o == nil {
		return nil
	}
	if err := inputParams(v, o.Inputs); err != nil {
		return err
	}
	if len(o.Outputs) > 0 {
		v.Set("robjects", strings.Join(o.Outputs, ","))
	}
	preloadDirectoryParams(v, o.PreloadDirectory)
	preloadWorkspaceParams(v, o.PreloadWorkspace)
	if s := o.Storage; s != nil {
		setIf(v, "storeworkspace", s.Workspace)
		if len(s.Objects) > 0 {
			v.Set("storeobject", strings.Join(s.Objects, ","))
		}
		if len(s.Files) > 0 {
			v.Set("storefile", strings.Join(s.Files, ","))
		}
		setIf(v, "storedirectory", s.Directory)
		if s.Public {
			v.Set("storepublic", "true")
		}
		if s.NewVersion {
			v.Set("storenewversion", "true")
		}
	}
	if o.ConsoleOff {
		v.Set("consoleoff", "true")
	}
	if o.EchoOff {
		v.Set("echooff", "true")
	}
	if o.Graphics != "" {
		v.Set("graphics", o.Graphics)
		if o.GraphicsWidth > 0 {
			v.Set("graphicswidth", strconv.Itoa(o.GraphicsWidth))
		}
		if o.GraphicsHeight > 0 {
			v.Set("graphicsheight", strconv.Itoa(o.GraphicsHeight))
		}
	}
	setIf(v, "tag", o.Tag)
	return nil
}

func (o *ProjectCreationOptions) params(v url.Values) error {
	if o == nil {
		return nil
	}
	setIf(v, "projectname", o.Name)
	setIf(v, "projectdescr", o.Description)
	if err := inputParams(v, o.Inputs); err != nil {
		return err
	}
	preloadDirectoryParams(v, o.PreloadDirectory)
	preloadWorkspaceParams(v, o.PreloadWorkspace)
	return nil
}

func inputParams(v url.Values, inputs []rdata.Value) error {
	enc, err := rdata.EncodeInputs(inputs)
	if err != nil {
		return err
	}
	setIf(v, "inputs", enc)
	return nil
}

func preloadDirectoryParams(v url.Values, p *PreloadOptions) {
	if p == nil {
		return
	}
	setIf(v, "preloadfilename", p.Filename)
	setIf(v, "preloadfiledirectory", p.Directory)
	setIf(v, "preloadfileauthor", p.Author)
	setIf(v, "preloadfileversion", p.Version)
}

func preloadWorkspaceParams(v url.Values, p *PreloadOptions) {
	if p == nil {
		return
	}
	setIf(v, "preloadobjectname", p.Filename)
	setIf(v, "preloadobjectdirectory", p.Directory)
	setIf(v, "preloadobjectauthor", p.Author)
	setIf(v, "preloadobjectversion", p.Version)
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}
