package coin

import "github.com/pkg/errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTarget     = errors.New("target amount must be positive")
)
