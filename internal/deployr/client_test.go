// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package deployr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataio/cli/internal/manifest"
	"dataio/cli/internal/rdata"
)

var hipScript = Script{Filename: "dataIO.R", Directory: "example-data-io", Author: "testuser"}

func TestNewRejectsInvalidEndpoint(t *testing.T) {
	tests := []string{"", "localhost:8000/deployr", "ftp://host/deployr", "http://"}
	for _, ep := range tests {
		t.Run(ep, func(t *testing.T) {
			_, err := New(ep)
			assert.Error(t, err)
		})
	}
}

func TestNewNormalizesEndpoint(t *testing.T) {
	c, err := New("http://localhost:8000/deployr/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/deployr", c.Endpoint())
	assert.Nil(t, c.User())
}

func TestLogin(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)

	u, err := c.Login(context.Background(), BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	assert.Equal(t, "testuser", u.Username)
	assert.Equal(t, "Test User", u.DisplayName)
	assert.Same(t, u, c.User())

	calls := f.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "json", calls[0].Form.Get("format"))
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)

	_, err = c.Login(context.Background(), BasicAuth{Username: "testuser", Password: "wrong"})
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "/r/user/login", ce.Call)
	assert.Equal(t, 940, ce.Code)
	assert.Equal(t, "Bad credentials", ce.Message)
	assert.True(t, IsUnauthorized(err))
	assert.Nil(t, c.User())
}

func TestLoginRequiresUsername(t *testing.T) {
	c, err := New("http://localhost:8000/deployr")
	require.NoError(t, err)
	_, err = c.Login(context.Background(), BasicAuth{})
	assert.Error(t, err)
}

func TestSessionCookieCarried(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()

	u, err := c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	_, err = u.CreateProject(ctx, nil)
	require.NoError(t, err)

	calls := f.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "SESSION-1", calls[1].Cookie)
}

func TestReleaseIsIdempotent(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)

	require.NoError(t, c.Release(ctx))
	require.NoError(t, c.Release(ctx))
	assert.True(t, c.Released())
	assert.Equal(t, []string{"/r/user/login", "/r/user/logout"}, f.paths())

	_, err = c.ExecuteScript(ctx, hipScript, nil)
	assert.ErrorIs(t, err, ErrReleased)
	_, err = c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	assert.ErrorIs(t, err, ErrReleased)
}

func TestReleaseAnonymousSkipsLogout(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)

	require.NoError(t, c.Release(context.Background()))
	assert.Empty(t, f.paths())
}

func TestReleaseMarksReleasedEvenWhenLogoutFails(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/user/logout", func(url.Values) (int, any) {
		return http.StatusInternalServerError, "boom"
	})
	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)

	err = c.Release(ctx)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusInternalServerError, ce.HTTPStatus)
	assert.True(t, c.Released())
}

func TestAnonymousExecuteScript(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/repository/script/execute", func(form url.Values) (int, any) {
		return http.StatusOK, success("/r/repository/script/execute", map[string]any{
			"execution": map[string]any{
				"execution": "EXEC-1",
				"console":   "> hip <- read.table(hipStarUrl)",
				"artifacts": []any{map[string]any{"filename": "hip.csv", "type": "text/csv", "length": 12, "url": "/deployr/files/hip.csv"}},
				"results":   []any{map[string]any{"filename": "unnamedplot001.png", "type": "image/png", "url": "/deployr/files/plot.png"}},
			},
			"workspace": map[string]any{"objects": []any{
				map[string]any{"name": "hipDim", "type": "vector", "rclass": "integer", "value": []any{2719, 9}},
				map[string]any{"name": "hipNames", "type": "vector", "rclass": "character", "value": []any{"HIP", "Vmag"}},
			}},
		})
	})
	f.on("/files/hip.csv", func(url.Values) (int, any) { return http.StatusOK, "HIP,Vmag\n" })

	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()

	exec, err := c.ExecuteScript(ctx, hipScript, &ExecutionOptions{
		Inputs:           []rdata.Value{rdata.NewString("hipStarUrl", "http://example.com/HIP_star.dat")},
		Outputs:          []string{"hipDim", "hipNames"},
		PreloadWorkspace: &PreloadOptions{Filename: "hipStar.rData", Directory: "example-data-io", Author: "testuser"},
		Graphics:         "png",
	})
	require.NoError(t, err)

	assert.Equal(t, "EXEC-1", exec.ID)
	assert.Contains(t, exec.Console, "read.table")
	require.Len(t, exec.Objects, 2)
	assert.Equal(t, "hipDim", exec.Objects[0].Name())
	assert.Equal(t, rdata.KindStringVector, exec.Objects[1].Kind())
	require.Len(t, exec.Artifacts, 1)
	assert.Equal(t, int64(12), exec.Artifacts[0].Length)
	require.Len(t, exec.Results, 1)

	form := f.recorded()[0].Form
	assert.Equal(t, "dataIO.R", form.Get("filename"))
	assert.Equal(t, "example-data-io", form.Get("directory"))
	assert.Equal(t, "testuser", form.Get("author"))
	assert.Equal(t, "hipDim,hipNames", form.Get("robjects"))
	assert.Equal(t, "hipStar.rData", form.Get("preloadobjectname"))
	assert.Equal(t, "example-data-io", form.Get("preloadobjectdirectory"))
	assert.Equal(t, "png", form.Get("graphics"))
	assert.Empty(t, form.Get("project"))
	assert.JSONEq(t, `{"hipStarUrl":{"type":"primitive","rclass":"character","value":"http://example.com/HIP_star.dat"}}`, form.Get("inputs"))

	rc, err := exec.Artifacts[0].Download(ctx)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "HIP,Vmag\n", string(b))
}

func TestExecuteScriptServerError(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/repository/script/execute", func(url.Values) (int, any) {
		return http.StatusOK, failure("/r/repository/script/execute", "Script not found", 404)
	})
	c, err := New(f.endpoint())
	require.NoError(t, err)

	_, err = c.ExecuteScript(context.Background(), hipScript, nil)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Script not found", ce.Message)
	assert.False(t, IsUnauthorized(err))
}

func TestExecuteScriptMalformedResponse(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/repository/script/execute", func(url.Values) (int, any) {
		return http.StatusOK, "<html>proxy error</html>"
	})
	c, err := New(f.endpoint())
	require.NoError(t, err)

	_, err = c.ExecuteScript(context.Background(), hipScript, nil)
	assert.Error(t, err)
}

func TestStorageOptionsParams(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/repository/script/execute", func(url.Values) (int, any) {
		return http.StatusOK, success("/r/repository/script/execute", map[string]any{
			"repository": map[string]any{"files": []any{
				map[string]any{"filename": "ab12.rData", "directory": "example-data-io", "author": "testuser", "version": "v1"},
			}},
		})
	})
	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()

	exec, err := c.ExecuteScript(ctx, hipScript, &ExecutionOptions{
		PreloadDirectory: &PreloadOptions{Filename: "hipStar.dat", Directory: "example-data-io", Author: "testuser"},
		Storage:          &StorageOptions{Workspace: "ab12", Directory: "example-data-io", NewVersion: true},
	})
	require.NoError(t, err)
	require.Len(t, exec.RepositoryFiles, 1)
	assert.Equal(t, "v1", exec.RepositoryFiles[0].Version)

	form := f.recorded()[0].Form
	assert.Equal(t, "hipStar.dat", form.Get("preloadfilename"))
	assert.Equal(t, "ab12", form.Get("storeworkspace"))
	assert.Equal(t, "example-data-io", form.Get("storedirectory"))
	assert.Equal(t, "true", form.Get("storenewversion"))
	assert.Empty(t, form.Get("storepublic"))

	f.on("/r/repository/file/download", func(form url.Values) (int, any) {
		return http.StatusOK, "RDX2" + form.Get("filename")
	})
	rc, err := exec.RepositoryFiles[0].Download(ctx)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "RDX2ab12.rData", string(b))

	require.NoError(t, exec.RepositoryFiles[0].Delete(ctx))
	last := f.recorded()[len(f.recorded())-1]
	assert.Equal(t, "/r/repository/file/delete", last.Path)
	assert.Equal(t, "ab12.rData", last.Form.Get("filename"))
	assert.Equal(t, "example-data-io", last.Form.Get("directory"))
}

func TestRepositoryDownloadFailure(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/repository/file/download", func(url.Values) (int, any) {
		return http.StatusNotFound, failure("/r/repository/file/download", "File not found", 404)
	})
	c, err := New(f.endpoint())
	require.NoError(t, err)

	rf := &RepositoryFile{Filename: "missing.rData", client: c}
	_, err = rf.Download(context.Background())
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "File not found", ce.Message)
}

func TestProjectUploadAndExecuteShareSession(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/project/directory/upload", func(form url.Values) (int, any) {
		return http.StatusOK, success("/r/project/directory/upload", map[string]any{
			"directory": map[string]any{"file": map[string]any{"filename": form.Get("filename"), "type": "text/plain", "length": 5}},
		})
	})
	f.on("/r/project/execute/script", func(url.Values) (int, any) {
		return http.StatusOK, success("/r/project/execute/script", map[string]any{
			"execution": map[string]any{"execution": "EXEC-2", "artifacts": []any{map[string]any{"filename": "hip.rData"}}},
		})
	})
	f.on("/r/project/directory/download", func(form url.Values) (int, any) {
		return http.StatusOK, "bin:" + form.Get("project") + "/" + form.Get("filename")
	})

	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()
	u, err := c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	p, err := u.CreateProject(ctx, &ProjectCreationOptions{
		PreloadWorkspace: &PreloadOptions{Filename: "hipStar.rData", Directory: "example-data-io", Author: "testuser"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROJECT-1", p.ID)

	file, err := p.UploadFile(ctx, strings.NewReader("HIP 1"), UploadOptions{Filename: "hipStar.dat", Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, "hipStar.dat", file.Filename)
	assert.Equal(t, int64(5), file.Length)

	exec, err := p.ExecuteScript(ctx, hipScript, &ExecutionOptions{Outputs: []string{"hip"}})
	require.NoError(t, err)

	calls := f.recorded()
	require.Len(t, calls, 4)
	create, upload, execute := calls[1], calls[2], calls[3]
	assert.Equal(t, "hipStar.rData", create.Form.Get("preloadobjectname"))
	assert.Equal(t, "HIP 1", upload.Upload)
	assert.Equal(t, "true", upload.Form.Get("overwrite"))
	assert.Equal(t, "PROJECT-1", upload.Form.Get("project"))
	assert.Equal(t, upload.Form.Get("project"), execute.Form.Get("project"))
	assert.Equal(t, upload.Cookie, execute.Cookie)

	rc, err := exec.Artifacts[0].Download(ctx)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "bin:PROJECT-1/hip.rData", string(b))
}

func TestProjectCloseIsIdempotent(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()
	u, err := c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	p, err := u.CreateProject(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, p.Close(ctx))
	require.NoError(t, p.Close(ctx))
	assert.True(t, p.Closed())

	_, err = p.ExecuteScript(ctx, hipScript, nil)
	assert.ErrorIs(t, err, ErrProjectClosed)
	_, err = p.UploadFile(ctx, strings.NewReader("x"), UploadOptions{Filename: "x"})
	assert.ErrorIs(t, err, ErrProjectClosed)

	closes := 0
	for _, path := range f.paths() {
		if path == "/r/project/close" {
			closes++
		}
	}
	assert.Equal(t, 1, closes)
}

func TestProjectCloseFailureStillCloses(t *testing.T) {
	f := newFakeServer(t)
	f.on("/r/project/close", func(url.Values) (int, any) {
		return http.StatusOK, failure("/r/project/close", "Project busy", 500)
	})
	c, err := New(f.endpoint())
	require.NoError(t, err)
	ctx := context.Background()
	u, err := c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	p, err := u.CreateProject(ctx, nil)
	require.NoError(t, err)

	assert.Error(t, p.Close(ctx))
	assert.True(t, p.Closed())
	assert.NoError(t, p.Close(ctx))
}

func TestCallPathOverrides(t *testing.T) {
	f := newFakeServer(t)
	f.on("/v2/login", func(url.Values) (int, any) {
		return http.StatusOK, success("/v2/login", nil)
	})
	calls := manifest.Default().WithOverrides(manifest.HTTPEndpoints{UserLogin: "v2/login"}).HTTP
	c, err := New(f.endpoint(), WithCalls(calls), WithHTTPClient(&http.Client{}))
	require.NoError(t, err)

	_, err = c.Login(context.Background(), BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/v2/login"}, f.paths())
}

func TestEmptyCallOverridesKeepDefaults(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint(), WithCalls(manifest.HTTPEndpoints{}))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	require.NoError(t, c.Release(ctx))
	assert.Equal(t, []string{"/r/user/login", "/r/user/logout"}, f.paths())
}

func TestPartialCallOverrides(t *testing.T) {
	f := newFakeServer(t)
	f.on("/v2/login", func(url.Values) (int, any) {
		return http.StatusOK, success("/v2/login", nil)
	})
	c, err := New(f.endpoint(), WithCalls(manifest.HTTPEndpoints{UserLogin: "v2/login"}))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	require.NoError(t, err)
	require.NoError(t, c.Release(ctx))
	assert.Equal(t, []string{"/v2/login", "/r/user/logout"}, f.paths())
}

func TestContextCancelled(t *testing.T) {
	f := newFakeServer(t)
	c, err := New(f.endpoint())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Login(ctx, BasicAuth{Username: "testuser", Password: "changeme"})
	assert.True(t, errors.Is(err, context.Canceled))
}
