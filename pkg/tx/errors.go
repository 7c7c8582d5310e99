package tx

import "github.com/pkg/errors"

var (
	ErrUnbalanced = errors.New("transaction does not conserve value")
)
