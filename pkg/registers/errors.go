package registers

import "github.com/pkg/errors"

var (
	ErrDecode = errors.New("malformed register")
)
