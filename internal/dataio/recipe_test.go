// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataio/cli/internal/rdata"
)

const hipSample = `HIP   Vmag      RA         DE        Plx
   2  9.27  0.003797 -19.498837  21.90
  38  8.65  0.111047 -79.061831  23.84
`

func TestAnonMultiOptions(t *testing.T) {
	_, connector, conn, _ := newFakes()

	_, err := testRunner(connector).Run(context.Background(), mustLookup("anon-multi"))
	require.NoError(t, err)

	opts := conn.lastOpts
	require.NotNil(t, opts)
	require.NotNil(t, opts.PreloadWorkspace)
	assert.Equal(t, "hipStar.rData", opts.PreloadWorkspace.Filename)
	assert.Equal(t, ScriptDirectory, opts.PreloadWorkspace.Directory)
	assert.Equal(t, HipOutputs, opts.Outputs)
	require.Len(t, opts.Inputs, 1)
	in, ok := opts.Inputs[0].(*rdata.String)
	require.True(t, ok)
	assert.Equal(t, "hipStarUrl", in.Name())
	assert.Equal(t, HipStarURL, in.Value)
	assert.Nil(t, opts.Storage)
}

func TestRepositoryStorageUsesGeneratedName(t *testing.T) {
	_, connector, conn, _ := newFakes()

	_, err := testRunner(connector).Run(context.Background(), mustLookup("auth-repo-repo"))
	require.NoError(t, err)

	opts := conn.lastOpts
	require.NotNil(t, opts.Storage)
	assert.Equal(t, "ws-fixed", opts.Storage.Workspace)
	assert.Equal(t, ScriptDirectory, opts.Storage.Directory)
	require.NotNil(t, opts.PreloadDirectory)
	assert.Equal(t, "hipStar.dat", opts.PreloadDirectory.Filename)
}

func TestPreloadOnProjectCreation(t *testing.T) {
	_, connector, _, session := newFakes()

	_, err := testRunner(connector).Run(context.Background(), mustLookup("preload-repo-repo"))
	require.NoError(t, err)

	require.NotNil(t, session.created)
	require.NotNil(t, session.created.PreloadWorkspace)
	assert.Equal(t, "hipStar.rData", session.created.PreloadWorkspace.Filename)
	require.NotNil(t, session.lastOpts.Storage)
	assert.Equal(t, "ws-fixed", session.lastOpts.Storage.Workspace)
}

func TestGeneratedFrameFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(hipSample))
	}))
	defer srv.Close()

	_, connector, _, session := newFakes()
	r := testRunner(connector)
	r.Env.DataURL = srv.URL + "/HIP_star.dat"

	_, err := r.Run(context.Background(), mustLookup("stateful-encoded-binary"))
	require.NoError(t, err)

	require.Len(t, session.lastOpts.Inputs, 1)
	df, ok := session.lastOpts.Inputs[0].(*rdata.DataFrame)
	require.True(t, ok)
	assert.Equal(t, "hip", df.Name())
	require.Len(t, df.Columns, 5)
	vmag, ok := df.Column("Vmag").(*rdata.NumericVector)
	require.True(t, ok)
	assert.Equal(t, []float64{9.27, 8.65}, vmag.Value)
}

func TestGeneratedFrameFromLocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HIP_star.dat")
	require.NoError(t, os.WriteFile(path, []byte(hipSample), 0o644))

	_, connector, _, session := newFakes()
	r := testRunner(connector)
	r.Env.DataURL = path

	_, err := r.Run(context.Background(), mustLookup("stateful-encoded-binary"))
	require.NoError(t, err)
	require.Len(t, session.lastOpts.Inputs, 1)
}

func TestGeneratedFrameFailureStillExecutes(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	rec, connector, _, session := newFakes()
	r := testRunner(connector)
	r.Env.DataURL = srv.URL + "/missing.dat"

	_, err := r.Run(context.Background(), mustLookup("stateful-encoded-binary"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count("execute:PROJECT-1"))
	assert.Empty(t, session.lastOpts.Inputs)
}

func TestRecipeInputsNotShared(t *testing.T) {
	r := &Recipe{Inputs: []rdata.Value{rdata.NewNumeric("x", 1)}}
	opts := r.options(context.Background(), Env{})
	opts.Inputs = append(opts.Inputs, rdata.NewNumeric("y", 2))
	assert.Len(t, r.Inputs, 1)
}

func TestRandomName(t *testing.T) {
	a, b := RandomName(), RandomName()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), a)
	assert.NotEqual(t, a, b)
}
