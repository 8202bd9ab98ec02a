// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package deployr

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

type userInfo struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
}

// User is an authenticated session on a Client.
type User struct {
	Username    string
	DisplayName string

	client *Client
}

// Login authenticates with basic credentials. On success the session
// cookie is retained by the client and the returned User can create
// projects. Bad credentials yield a *CallError.
func (c *Client) Login(ctx context.Context, auth BasicAuth) (*User, error) {
	if strings.TrimSpace(auth.Username) == "" {
		return nil, errors.New("deployr: username is required")
	}
	params := url.Values{}
	params.Set("username", auth.Username)
	params.Set("password", auth.Password)

	r, err := c.post(ctx, c.calls.UserLogin, params)
	if err != nil {
		return nil, err
	}
	u := &User{Username: auth.Username, client: c}
	if r.User != nil {
		if r.User.Username != "" {
			u.Username = r.User.Username
		}
		u.DisplayName = r.User.DisplayName
	}

	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
	return u, nil
}

// Client returns the connection the user is logged in on.
func (u *User) Client() *Client { return u.client }

// CreateProject creates a temporary project, a stateful R session owned by
// the user. opts may be nil.
func (u *User) CreateProject(ctx context.Context, opts *ProjectCreationOptions) (*Project, error) {
	params := url.Values{}
	if err := opts.params(params); err != nil {
		return nil, err
	}
	r, err := u.client.post(ctx, u.client.calls.ProjectCreate, params)
	if err != nil {
		return nil, err
	}
	if r.Project == nil || r.Project.ID == "" {
		return nil, &CallError{Call: u.client.calls.ProjectCreate, Message: "response carries no project identifier"}
	}
	return &Project{
		ID:     r.Project.ID,
		Name:   r.Project.Name,
		client: u.client,
	}, nil
}
