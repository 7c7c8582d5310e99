package node

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/internal/config"
	"github.com/tcfw/auctionhouse/internal/gateway"
	"github.com/tcfw/auctionhouse/internal/storage"
	gatewayIface "github.com/tcfw/auctionhouse/pkg/gateway"
	"github.com/tcfw/auctionhouse/pkg/ledger"
)

type NodeOption func(*Node) error

func WithConfig(c *config.Config) NodeOption {
	return func(n *Node) error {
		n.cfg = c
		return nil
	}
}

func WithGateway(gw gatewayIface.Gateway) NodeOption {
	return func(n *Node) error {
		n.gw = gw
		return nil
	}
}

func WithLedger(l ledger.Store) NodeOption {
	return func(n *Node) error {
		n.ledger = l
		return nil
	}
}

// WithManualSettle stops refreshes from settling matured auctions.
func WithManualSettle() NodeOption {
	return func(n *Node) error {
		n.manualSettle = true
		return nil
	}
}

func WithLogger(l *logrus.Logger) NodeOption {
	return func(n *Node) error {
		n.logger = l
		return nil
	}
}

// WithDefaultOptions loads the configuration and opens the persistent
// ledger when a path is configured.
func WithDefaultOptions() NodeOption {
	return func(n *Node) error {
		n.logger = logrus.StandardLogger()

		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}
		n.cfg = cfg

		if path := cfg.Storage().LedgerPath; path != "" {
			s, err := storage.NewPebbleStore(path)
			if err != nil {
				return errors.Wrap(err, "initing ledger")
			}
			n.ledger = s
		}

		return nil
	}
}

func newGateway(cfg *config.Config, l *logrus.Logger) (*gateway.Client, error) {
	ecfg := cfg.Explorer()

	opts := []gateway.Option{
		gateway.WithAuctionAddress(cfg.Auction().AuctionAddress),
		gateway.WithTimeout(ecfg.Timeout),
		gateway.WithRetries(ecfg.Retries, 200*time.Millisecond),
		gateway.WithLogger(l.WithField("component", "gateway")),
	}
	if ecfg.NodeURL != "" {
		opts = append(opts, gateway.WithNode(ecfg.NodeURL))
	}

	return gateway.NewClient(ecfg.URL, opts...)
}
