// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"dataio/cli/internal/deployr"
	apperr "dataio/cli/internal/errors"
	"dataio/cli/internal/logging"
)

var (
	// ErrNotAuthenticated is returned when a project is requested on an
	// anonymous connection.
	ErrNotAuthenticated = errors.New("connection is not authenticated")
	// ErrScopeClosed is returned by Scope operations after Close.
	ErrScopeClosed = errors.New("scope is closed")
	// ErrSessionExists is returned when a second project is requested.
	ErrSessionExists = errors.New("scope already owns a project")
)

// Scope owns the connection of one example run and at most one project.
// Close is safe to defer and runs at most once.
type Scope struct {
	endpoint string
	conn     Conn

	mu       sync.Mutex
	identity Identity
	session  Session
	closed   bool
}

// Open connects to endpoint. The returned Scope must be closed.
func Open(ctx context.Context, connector Connector, endpoint string) (*Scope, error) {
	conn, err := connector.Connect(ctx, endpoint)
	if err != nil {
		return nil, apperr.Wrap(apperr.ConnectFailed, "connect to "+endpoint, err)
	}
	logging.Stage(logging.StageConnection).Msgf("Established anonymous connection [ %s ]", endpoint)
	return &Scope{endpoint: endpoint, conn: conn}, nil
}

// Endpoint reports the server endpoint of the scope.
func (s *Scope) Endpoint() string { return s.endpoint }

// Conn returns the scoped connection.
func (s *Scope) Conn() Conn { return s.conn }

// Identity returns the logged in user, or nil for an anonymous scope.
func (s *Scope) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Session returns the scoped project, or nil when none was created.
func (s *Scope) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Login upgrades the scoped connection to an authenticated one.
func (s *Scope) Login(ctx context.Context, auth deployr.BasicAuth) (Identity, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	id, err := s.conn.Login(ctx, auth)
	if err != nil {
		return nil, apperr.Wrap(apperr.LoginFailed, "login as "+auth.Username, err)
	}
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
	logging.Stage(logging.StageAuth).Msgf("Upgraded to authenticated connection [ %s ]", id.Username())
	return id, nil
}

// CreateProject creates the scoped project. It requires a prior Login.
func (s *Scope) CreateProject(ctx context.Context, opts *deployr.ProjectCreationOptions) (Session, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	id, existing := s.identity, s.session
	s.mu.Unlock()
	if id == nil {
		return nil, apperr.Wrap(apperr.ProjectFailed, "create project", ErrNotAuthenticated)
	}
	if existing != nil {
		return nil, apperr.Wrap(apperr.ProjectFailed, "create project", ErrSessionExists)
	}
	session, err := id.CreateProject(ctx, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProjectFailed, "create project", err)
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	logging.Stage(logging.StageStateful).Msgf("Created stateful temporary R session [ %s ]", session.ID())
	return session, nil
}

func (s *Scope) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	return nil
}

// Close closes the project, if any, then releases the connection. A project
// close failure is logged and never prevents the release. Errors and panics
// raised by either step are swallowed. Later calls do nothing.
func (s *Scope) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	session := s.session
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if session != nil {
		if err := guard(func() error { return session.Close(ctx) }); err != nil {
			log.Warn().Err(err).Str("stage", logging.StageCleanup).Str("project", session.ID()).Msg("Project close failed")
		}
	}
	if err := guard(func() error { return s.conn.Release(ctx) }); err != nil {
		log.Debug().Err(err).Str("stage", logging.StageCleanup).Msg("Connection release failed")
	}
}

// guard runs fn, turning a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
