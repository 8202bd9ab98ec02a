// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest holds the table of DeployR API call paths used by the
// client. The defaults match the public DeployR API; a deployment that sits
// behind a rewriting proxy can override individual paths from the config file.
package manifest

import (
	"net/url"
	"strings"
)

// Version of the call table layout.
const Version = 1

// Manifest represents the endpoint configuration used by the client.
type Manifest struct {
	Version int           `json:"version" toml:"version"`
	HTTP    HTTPEndpoints `json:"http" toml:"http"`
}

// HTTPEndpoints contains REST API call paths, relative to the server endpoint.
type HTTPEndpoints struct {
	UserLogin                string `json:"user_login" toml:"user_login"`                                 // e.g., "/r/user/login"
	UserLogout               string `json:"user_logout" toml:"user_logout"`                               // e.g., "/r/user/logout"
	ProjectCreate            string `json:"project_create" toml:"project_create"`                         // e.g., "/r/project/create"
	ProjectClose             string `json:"project_close" toml:"project_close"`                           // e.g., "/r/project/close"
	ProjectExecuteScript     string `json:"project_execute_script" toml:"project_execute_script"`         // e.g., "/r/project/execute/script"
	ProjectDirectoryUpload   string `json:"project_directory_upload" toml:"project_directory_upload"`     // e.g., "/r/project/directory/upload"
	ProjectDirectoryDownload string `json:"project_directory_download" toml:"project_directory_download"` // e.g., "/r/project/directory/download"
	RepositoryScriptExecute  string `json:"repository_script_execute" toml:"repository_script_execute"`   // e.g., "/r/repository/script/execute"
	RepositoryFileDownload   string `json:"repository_file_download" toml:"repository_file_download"`     // e.g., "/r/repository/file/download"
	RepositoryFileDelete     string `json:"repository_file_delete" toml:"repository_file_delete"`         // e.g., "/r/repository/file/delete"
}

// Default returns the call table of the public DeployR API.
func Default() *Manifest {
	return &Manifest{
		Version: Version,
		HTTP: HTTPEndpoints{
			UserLogin:                "/r/user/login",
			UserLogout:               "/r/user/logout",
			ProjectCreate:            "/r/project/create",
			ProjectClose:             "/r/project/close",
			ProjectExecuteScript:     "/r/project/execute/script",
			ProjectDirectoryUpload:   "/r/project/directory/upload",
			ProjectDirectoryDownload: "/r/project/directory/download",
			RepositoryScriptExecute:  "/r/repository/script/execute",
			RepositoryFileDownload:   "/r/repository/file/download",
			RepositoryFileDelete:     "/r/repository/file/delete",
		},
	}
}

// WithOverrides returns a copy of m where every non-empty path in o replaces
// the corresponding default. Paths without a leading slash get one.
func (m *Manifest) WithOverrides(o HTTPEndpoints) *Manifest {
	out := *m
	pick := func(dst *string, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		*dst = v
	}
	pick(&out.HTTP.UserLogin, o.UserLogin)
	pick(&out.HTTP.UserLogout, o.UserLogout)
	pick(&out.HTTP.ProjectCreate, o.ProjectCreate)
	pick(&out.HTTP.ProjectClose, o.ProjectClose)
	pick(&out.HTTP.ProjectExecuteScript, o.ProjectExecuteScript)
	pick(&out.HTTP.ProjectDirectoryUpload, o.ProjectDirectoryUpload)
	pick(&out.HTTP.ProjectDirectoryDownload, o.ProjectDirectoryDownload)
	pick(&out.HTTP.RepositoryScriptExecute, o.RepositoryScriptExecute)
	pick(&out.HTTP.RepositoryFileDownload, o.RepositoryFileDownload)
	pick(&out.HTTP.RepositoryFileDelete, o.RepositoryFileDelete)
	return &out
}

// BaseURL normalizes a server endpoint: it must be an absolute http(s) URL,
// and the trailing slash is dropped so call paths can be appended.
func BaseURL(endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &url.Error{Op: "parse", URL: endpoint, Err: errBadScheme}
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: endpoint, Err: errNoHost}
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
