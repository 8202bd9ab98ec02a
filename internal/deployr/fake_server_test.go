// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package deployr

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// recordedCall is one request seen by fakeServer.
type recordedCall struct {
	Path   string
	Form   url.Values
	Cookie string
	Upload string
}

// fakeServer is a minimal DeployR endpoint mounted under /deployr.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(form url.Values) (int, any)
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{t: t, handlers: map[string]func(url.Values) (int, any){}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	f.on("/r/user/login", func(form url.Values) (int, any) {
		if form.Get("password") != "changeme" {
			return http.StatusUnauthorized, failure("/r/user/login", "Bad credentials", 940)
		}
		return http.StatusOK, success("/r/user/login", map[string]any{
			"user": map[string]any{"username": form.Get("username"), "displayname": "Test User"},
		})
	})
	f.on("/r/user/logout", okHandler("/r/user/logout"))
	f.on("/r/project/close", okHandler("/r/project/close"))
	f.on("/r/repository/file/delete", okHandler("/r/repository/file/delete"))
	f.on("/r/project/create", func(url.Values) (int, any) {
		return http.StatusOK, success("/r/project/create", map[string]any{
			"project": map[string]any{"project": "PROJECT-1", "name": "tmp"},
		})
	})
	return f
}

func (f *fakeServer) endpoint() string { return f.srv.URL + "/deployr" }

func (f *fakeServer) on(call string, h func(url.Values) (int, any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[call] = h
}

func (f *fakeServer) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func (f *fakeServer) paths() []string {
	var out []string
	for _, c := range f.recorded() {
		out = append(out, c.Path)
	}
	return out
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	call := strings.TrimPrefix(r.URL.Path, "/deployr")
	rc := recordedCall{Path: call}
	if c, err := r.Cookie("JSESSIONID"); err == nil {
		rc.Cookie = c.Value
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			f.t.Errorf("parse multipart: %v", err)
		}
		if file, _, err := r.FormFile("file"); err == nil {
			b, _ := io.ReadAll(file)
			rc.Upload = string(b)
			file.Close()
		}
	} else if err := r.ParseForm(); err != nil {
		f.t.Errorf("parse form: %v", err)
	}
	rc.Form = r.Form

	f.mu.Lock()
	f.calls = append(f.calls, rc)
	h := f.handlers[call]
	f.mu.Unlock()

	if call == "/r/user/login" {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "SESSION-1", Path: "/"})
	}
	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, body := h(r.Form)
	if s, ok := body.(string); ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, s)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func okHandler(call string) func(url.Values) (int, any) {
	return func(url.Values) (int, any) { return http.StatusOK, success(call, nil) }
}

func success(call string, fields map[string]any) map[string]any {
	resp := map[string]any{"call": call, "success": true}
	for k, v := range fields {
		resp[k] = v
	}
	return map[string]any{"deployr": map[string]any{"response": resp}}
}

func failure(call, msg string, code int) map[string]any {
	return map[string]any{"deployr": map[string]any{"response": map[string]any{
		"call": call, "success": false, "error": msg, "errorCode": code,
	}}}
}
