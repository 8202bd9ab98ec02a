// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"sort"

	"dataio/cli/internal/deployr"
	"dataio/cli/internal/rdata"
)

// Repository coordinates shared by the built-in examples.
const (
	ScriptName      = "dataIO.R"
	ScriptDirectory = "example-data-io"
	ScriptAuthor    = "testuser"

	// HipStarURL is the public Hipparcos star dataset used as external input.
	HipStarURL = "http://astrostatistics.psu.edu/datasets/HIP_star.dat"
	// HipStarFile is the local copy uploaded by stateful-local-encoded.
	HipStarFile = "analytics/hipStar.dat"
	// HipArtifact is the binary workspace file written by dataIO.R.
	HipArtifact = "hip.rData"
)

// HipOutputs are the workspace objects produced by dataIO.R.
var HipOutputs = []string{"hip", "hipDim", "hipNames"}

// Example is one runnable data I/O scenario.
type Example struct {
	Name  string
	Short string
	// Auth requires credentials.
	Auth    bool
	Run     func(ctx context.Context, s *Scope, env Env) (*Outcome, error)
	Inspect InspectOptions
}

// FromRecipe builds an Example that runs r.
func FromRecipe(name, short string, r *Recipe, inspect InspectOptions) Example {
	return Example{Name: name, Short: short, Auth: r.NeedsAuth(), Run: r.Run, Inspect: inspect}
}

func script() deployr.Script {
	return deployr.Script{Filename: ScriptName, Directory: ScriptDirectory, Author: ScriptAuthor}
}

func repoFile(name string) *deployr.PreloadOptions {
	return &deployr.PreloadOptions{Filename: name, Directory: ScriptDirectory, Author: ScriptAuthor}
}

func outputs() []string { return append([]string(nil), HipOutputs...) }

// Builtins returns the built-in examples in presentation order.
func Builtins() []Example {
	return []Example{
		FromRecipe("anon-repo-encoded",
			"Anonymous execution, repository binary file in, encoded objects out",
			&Recipe{
				Script:           script(),
				PreloadWorkspace: repoFile("hipStar.rData"),
				Outputs:          outputs(),
			},
			InspectOptions{Tables: true}),
		FromRecipe("anon-multi",
			"Anonymous execution, repository file and string input in, objects, files and plots out",
			&Recipe{
				Script:           script(),
				PreloadWorkspace: repoFile("hipStar.rData"),
				Inputs:           []rdata.Value{rdata.NewString("hipStarUrl", HipStarURL)},
				Outputs:          outputs(),
			},
			InspectOptions{Tables: true}),
		FromRecipe("auth-repo-repo",
			"Authenticated execution, repository data file in, repository file out",
			&Recipe{
				Script:           script(),
				Auth:             true,
				PreloadDirectory: repoFile("hipStar.dat"),
				Storage:          &deployr.StorageOptions{Directory: ScriptDirectory},
				RandomWorkspace:  true,
			},
			InspectOptions{DeleteRepositoryFiles: true}),
		FromRecipe("stateful-local-encoded",
			"Stateful execution, local file uploaded to working directory, encoded objects out",
			&Recipe{
				Script:   script(),
				Stateful: true,
				Upload:   &Upload{Path: HipStarFile, Filename: "hipStar.dat", Overwrite: true},
				Outputs:  outputs(),
			},
			InspectOptions{Tables: true}),
		FromRecipe("stateful-encoded-binary",
			"Stateful execution, client generated data frame in, binary file out",
			&Recipe{
				Script:   script(),
				Stateful: true,
				Frames:   []RemoteFrame{{Name: "hip", URL: HipStarURL, Delimiter: `\s+`, Header: true}},
			},
			InspectOptions{Artifacts: []string{HipArtifact}}),
		FromRecipe("preload-repo-encoded",
			"Project preloaded from repository binary file, encoded objects out",
			&Recipe{
				Script:   script(),
				Stateful: true,
				Project:  &deployr.ProjectCreationOptions{PreloadWorkspace: repoFile("hipStar.rData")},
				Outputs:  outputs(),
			},
			InspectOptions{Tables: true}),
		FromRecipe("preload-repo-repo",
			"Project preloaded from repository binary file, repository file out",
			&Recipe{
				Script:          script(),
				Stateful:        true,
				Project:         &deployr.ProjectCreationOptions{PreloadWorkspace: repoFile("hipStar.rData")},
				Storage:         &deployr.StorageOptions{Directory: ScriptDirectory},
				RandomWorkspace: true,
			},
			InspectOptions{DeleteRepositoryFiles: true}),
	}
}

// Lookup finds a built-in example by name.
func Lookup(name string) (Example, bool) {
	for _, ex := range Builtins() {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}

// Names lists the built-in example names sorted.
func Names() []string {
	var names []string
	for _, ex := range Builtins() {
		names = append(names, ex.Name)
	}
	sort.Strings(names)
	return names
}
