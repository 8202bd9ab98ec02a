// Package errors defines typed errors with categories for user-friendly reporting.
// Each example run is a fixed sequence of steps against the DeployR server
// (connect, login, create project, upload, execute, inspect); a Kind names the
// step that failed so the CLI can report it and pick an exit message without
// parsing error strings.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// so errors.Is/As still reach the transport or server error underneath.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectFailed indicates the client could not be created for the endpoint.
	ConnectFailed Kind = "connect_failed"
	// LoginFailed indicates basic authentication was rejected or unreachable.
	LoginFailed Kind = "login_failed"
	// ProjectFailed indicates a project could not be created.
	ProjectFailed Kind = "project_failed"
	// UploadFailed indicates a working directory upload failed.
	UploadFailed Kind = "upload_failed"
	// ExecutionFailed indicates the script execution call failed.
	ExecutionFailed Kind = "execution_failed"
	// InputFailed indicates a client-side input could not be prepared.
	InputFailed Kind = "input_failed"
	// ExportFailed indicates retrieved data could not be written to a database.
	ExportFailed Kind = "export_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
