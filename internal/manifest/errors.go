package manifest

import "errors"

var (
	errBadScheme = errors.New("endpoint scheme must be http or https")
	errNoHost    = errors.New("endpoint has no host")
)
