package wallet

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotConfigured = errors.New("wallet not configured")
)

// Session identifies the node wallet every signing call is made against.
// It is passed explicitly to each gateway and assembler call.
type Session struct {
	URL     string
	APIKey  string
	Address string
}

// Reachable reports whether a node wallet is set, whether or not its
// address is known yet.
func (s *Session) Reachable() bool {
	return s != nil && s.URL != ""
}

// Configured reports whether the session can sign: a node wallet is set and
// its address is known.
func (s *Session) Configured() bool {
	return s != nil && s.URL != "" && s.Address != ""
}

// Validate rejects an unusable session before any network attempt is made.
func (s *Session) Validate() error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	return nil
}

// Balances is the confirmed holding of a node wallet.
type Balances struct {
	Height  int64            `json:"height"`
	Balance int64            `json:"balance"`
	Assets  map[string]int64 `json:"assets"`
}

// Endpoint normalises the configured URL the way the node expects it:
// a scheme is always present and there is no trailing slash.
func (s *Session) Endpoint() string {
	return NormaliseURL(s.URL)
}

func NormaliseURL(u string) string {
	if !strings.HasPrefix(u, "http") {
		u = "http://" + u
	}
	return strings.TrimSuffix(u, "/")
}
