// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	apperr "dataio/cli/internal/errors"
	"dataio/cli/internal/logging"
)

// Runner runs examples against one endpoint.
type Runner struct {
	Connector Connector
	Endpoint  string
	Env       Env
	Inspector *Inspector
}

// Run executes ex inside a Scope and inspects the result. The scope is
// closed on every exit path, panics included. A panic raised by the example
// is reported as an error.
func (r *Runner) Run(ctx context.Context, ex Example) (sum *Summary, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("example %s panicked: %v", ex.Name, p)
		}
		if err != nil {
			log.Warn().Err(err).Str("example", ex.Name).Msg("Unexpected runtime failure")
		}
	}()

	logging.Stage(logging.StageConfiguration).Msgf("Using endpoint=%s", r.Endpoint)
	if ex.Auth && strings.TrimSpace(r.Env.Credentials.Username) == "" {
		return nil, apperr.New(apperr.LoginFailed, "example "+ex.Name+" requires credentials")
	}

	scope, err := Open(ctx, r.Connector, r.Endpoint)
	if err != nil {
		return nil, err
	}
	defer scope.Close(ctx)

	if ex.Auth {
		if _, err := scope.Login(ctx, r.Env.Credentials); err != nil {
			return nil, err
		}
	}

	out, err := ex.Run(ctx, scope, r.Env)
	if err != nil {
		return nil, err
	}

	in := r.Inspector
	if in == nil {
		in = &Inspector{}
	}
	sum, err = in.Inspect(ctx, out, ex.Inspect)
	if sum != nil {
		sum.Example = ex.Name
		sum.Endpoint = r.Endpoint
	}
	return sum, err
}
