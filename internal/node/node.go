package node

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/internal/config"
	"github.com/tcfw/auctionhouse/internal/metrics"
	"github.com/tcfw/auctionhouse/pkg/assembler"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/ledger"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tracker"
	"github.com/tcfw/auctionhouse/pkg/wallet"

	gatewayIface "github.com/tcfw/auctionhouse/pkg/gateway"
)

const (
	addressCacheSize = 1024

	readyMinWait = time.Second
	readyMaxWait = time.Minute
)

type readier interface {
	WaitReady(ctx context.Context, min, max time.Duration) (*gatewayIface.NodeInfo, error)
}

// Node wires the gateway, ledger, assembler and tracker for one wallet.
type Node struct {
	cfg     *config.Config
	session *wallet.Session

	gw        gatewayIface.Gateway
	ledger    ledger.Store
	codec     *registers.Codec
	assembler *assembler.Assembler
	tracker   *tracker.Tracker
	poller    *tracker.Poller
	metrics   *metrics.Server

	manualSettle bool

	logger *logrus.Logger
}

func (n *Node) Session() *wallet.Session {
	return n.session
}

func (n *Node) Gateway() gatewayIface.Gateway {
	return n.gw
}

func (n *Node) Assembler() *assembler.Assembler {
	return n.assembler
}

func (n *Node) Tracker() *tracker.Tracker {
	return n.tracker
}

func (n *Node) Poller() *tracker.Poller {
	return n.poller
}

func NewNode(ctx context.Context, opts ...NodeOption) (*Node, error) {
	n := &Node{
		logger: logrus.StandardLogger(),
	}

	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	if n.cfg == nil {
		cfg, err := config.GetConfig()
		if err != nil {
			return nil, err
		}
		n.cfg = cfg
	}

	n.session = &n.cfg.Wallet().Session

	if n.gw == nil {
		gw, err := newGateway(n.cfg, n.logger)
		if err != nil {
			return nil, errors.Wrap(err, "initing gateway")
		}
		n.gw = gw
	}

	if n.ledger == nil {
		n.ledger = ledger.NewMemStore()
	}

	if err := n.resolveWallet(ctx); err != nil {
		n.logger.WithError(err).Warn("wallet address unknown, signing disabled until the node answers")
	}

	addrs, err := registers.NewCachedAddresses(n.gw, addressCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "initing address cache")
	}
	n.codec = registers.NewCodec(addrs, registers.WithLogger(n.logger.WithField("component", "registers")))

	n.assembler, err = assembler.NewAssembler(n.gw,
		assembler.WithParams(n.cfg.Auction().Params),
		assembler.WithCodec(n.codec),
		assembler.WithLedger(n.ledger),
		assembler.WithLogger(n.logger.WithField("component", "assembler")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "initing assembler")
	}

	topts := []tracker.Option{
		tracker.WithSession(n.session),
		tracker.WithSortKey(n.cfg.Poll().SortKey),
		tracker.WithLogger(n.logger.WithField("component", "tracker")),
	}
	if !n.manualSettle {
		topts = append(topts, tracker.WithSettler(n.assembler))
	}

	n.tracker, err = tracker.NewTracker(n.codec, n.ledger, topts...)
	if err != nil {
		return nil, errors.Wrap(err, "initing tracker")
	}

	pcfg := n.cfg.Poll()
	n.poller, err = tracker.NewPoller(n.gw, n.tracker,
		tracker.WithInterval(pcfg.Interval),
		tracker.WithForceAfter(pcfg.ForceAfter),
		tracker.WithRetryPolicy(pcfg.Retry),
		tracker.WithPollerLogger(n.logger.WithField("component", "poller")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "initing poller")
	}

	if port := n.cfg.Storage().MetricsPort; port != 0 {
		n.metrics = metrics.NewServer(port)
	}

	return n, nil
}

// resolveWallet fills in the session address from the node wallet when it
// was not configured.
func (n *Node) resolveWallet(ctx context.Context) error {
	if !n.session.Reachable() || n.session.Address != "" {
		return nil
	}

	addr, err := n.gw.DeriveAddress(ctx, n.session)
	if err != nil {
		return errors.Wrap(err, "deriving wallet address")
	}

	n.session.Address = addr
	n.logger.WithField("address", addr).Info("using wallet address from node")

	return nil
}

// Balances reads the session wallet's confirmed balance.
func (n *Node) Balances(ctx context.Context) (*wallet.Balances, error) {
	return n.gw.Balances(ctx, n.session)
}

// Refresh runs one refresh cycle immediately.
func (n *Node) Refresh(ctx context.Context) ([]*auction.Box, error) {
	return n.poller.RefreshNow(ctx)
}

// ListenAndServe waits for the node to come up and then polls until ctx is
// done.
func (n *Node) ListenAndServe(ctx context.Context) error {
	if r, ok := n.gw.(readier); ok && n.session.Reachable() {
		info, err := r.WaitReady(ctx, readyMinWait, readyMaxWait)
		if err != nil {
			return errors.Wrap(err, "waiting for node")
		}
		n.logger.WithField("node", info.Name).WithField("height", info.FullHeight).Info("node ready")
	}

	if err := n.resolveWallet(ctx); err != nil {
		return err
	}

	if n.metrics != nil {
		go func() {
			if err := n.metrics.ListenAndServe(); err != nil {
				n.logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	n.logger.
		WithField("auction", n.cfg.Auction().AuctionAddress).
		WithField("wallet", n.session.Configured()).
		Info("Starting polling")

	err := n.poller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (n *Node) Stop() error {
	n.logger.Warn("Shutting down")

	if n.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.metrics.Shutdown(ctx); err != nil {
			n.logger.WithError(err).Warn("stopping metrics server")
		}
	}

	if s, ok := n.ledger.(interface{ Stop() error }); ok {
		return s.Stop()
	}

	return nil
}
