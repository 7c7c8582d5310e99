package gateway

import "github.com/pkg/errors"

var (
	ErrNetwork     = errors.New("gateway unreachable")
	ErrSubmission  = errors.New("transaction rejected")
	ErrUnsupported = errors.New("operation not supported by gateway")
	ErrNotFound    = errors.New("not found")
)
