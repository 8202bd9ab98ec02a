package deployr

import (
	"errors"
	"fmt"
)

var (
	// ErrReleased is returned by any call on a released Client.
	ErrReleased = errors.New("deployr: client released")
	// ErrProjectClosed is returned by any call on a closed Project.
	ErrProjectClosed = errors.New("deployr: project closed")
)

// CallError is a failed API call: either the server answered with
// success=false, or the HTTP exchange itself failed with a non-200 status.
type CallError struct {
	Call       string
	Code       int
	HTTPStatus int
	Message    string
}

func (e *CallError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (code %d)", e.Call, e.Message, e.Code)
	}
	if e.HTTPStatus != 0 && e.HTTPStatus != 200 {
		return fmt.Sprintf("%s: http %d: %s", e.Call, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Call, e.Message)
}

// IsUnauthorized reports whether err is a call rejected for missing or
// invalid credentials.
func IsUnauthorized(err error) bool {
	var ce *CallError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.HTTPStatus == 401 || ce.HTTPStatus == 403
}
