//go:generate mockery --name Gateway --output mocks

package gateway

import (
	"context"

	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

// NodeInfo is the subset of the node status the client cares about.
type NodeInfo struct {
	Name       string `json:"name"`
	AppVersion string `json:"appVersion"`
	FullHeight int64  `json:"fullHeight"`
	Network    string `json:"network"`
}

// Gateway is the node and explorer surface the auction client depends on.
// Every call is network I/O and may fail with ErrNetwork.
type Gateway interface {
	registers.AddressCodec

	Info(ctx context.Context) (*NodeInfo, error)

	// Height is the current chain height as seen by the explorer.
	Height(ctx context.Context) (int64, error)
	// ActiveAuctionBoxes lists the unspent boxes at the auction contract address.
	ActiveAuctionBoxes(ctx context.Context) ([]*tx.Box, error)
	// Box fetches a single unspent box.
	Box(ctx context.Context, boxID string) (*tx.Box, error)
	// RawBox fetches the serialized bytes of a box, hex encoded.
	RawBox(ctx context.Context, boxID string) (string, error)

	// DeriveAddress asks the wallet for its root address. Only the session
	// URL and API key are used.
	DeriveAddress(ctx context.Context, s *wallet.Session) (string, error)
	// Balances reads the confirmed balance of the session wallet.
	Balances(ctx context.Context, s *wallet.Session) (*wallet.Balances, error)
	UnspentCoins(ctx context.Context, s *wallet.Session) ([]tx.Coin, error)

	// GenerateUnsigned asks the wallet to select inputs for req without
	// signing. Returns the ids of the chosen input boxes. Not every wallet
	// supports it; those return ErrUnsupported.
	GenerateUnsigned(ctx context.Context, s *wallet.Session, req *tx.Request) ([]string, error)
	// Generate builds and signs req with the session wallet.
	Generate(ctx context.Context, s *wallet.Session, req *tx.Request) (*tx.Signed, error)
	// Send broadcasts a signed transaction.
	Send(ctx context.Context, signed *tx.Signed) (string, error)
}
