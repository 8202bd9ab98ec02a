// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"dataio/cli/internal/deployr"
)

func TestClassify(t *testing.T) {
	refused := &url.Error{Op: "Post", URL: "http://localhost:8000/deployr", Err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}}

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "nil", err: nil, want: NotNetwork},
		{name: "plain", err: errors.New("open analytics/hipStar.dat: no such file"), want: NotNetwork},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: Timeout},
		{name: "dns", err: &url.Error{Op: "Post", URL: "http://nowhere", Err: &net.DNSError{Err: "no such host", Name: "nowhere"}}, want: DNS},
		{name: "refused", err: refused, want: ConnectionRefused},
		{name: "tls", err: errors.New("x509: certificate signed by unknown authority"), want: TLS},
		{name: "unauthorized", err: &deployr.CallError{Call: "/r/user/login", HTTPStatus: 401}, want: Unauthorized},
		{name: "server", err: &deployr.CallError{Call: "/r/project/create", HTTPStatus: 503}, want: ServerError},
		{name: "rejected", err: fmt.Errorf("execute: %w", &deployr.CallError{Call: "/r/repository/script/execute", HTTPStatus: 200, Message: "script not found"}), want: CallRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFormatNetworkErrorPassesThroughLocalErrors(t *testing.T) {
	err := errors.New("plan.hcl: missing execute block")
	assert.Same(t, err, FormatNetworkError(err, "running plan", "http://localhost:8000/deployr"))
	assert.Nil(t, FormatNetworkError(nil, "x", ""))
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "localhost:8000", ExtractHostFromURL("http://localhost:8000/deployr"))
	assert.Equal(t, "server", ExtractHostFromURL("::bad"))
}
