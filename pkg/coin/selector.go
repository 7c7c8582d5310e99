package coin

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/pkg/gateway"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

// PlaceholderAddress receives the placeholder output used to ask the wallet for
// an input set. The request is never signed.
const PlaceholderAddress = "4MQyML64GnzMxZgm"

type Selector struct {
	gw     gateway.Gateway
	fee    int64
	logger logrus.FieldLogger
}

func NewSelector(gw gateway.Gateway, fee int64, logger logrus.FieldLogger) *Selector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Selector{gw: gw, fee: fee, logger: logger}
}

func (s *Selector) Fee() int64 {
	return s.fee
}

// Select finds inputs from the session wallet covering target plus the fee.
// The wallet's own selection is preferred; if it is unavailable the unspent
// coins are fetched and selected greedily.
func (s *Selector) Select(ctx context.Context, sess *wallet.Session, target int64) (*Selection, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	sel, err := s.selectRemote(ctx, sess, target)
	if err == nil {
		return sel, nil
	}

	s.logger.WithError(err).Debug("wallet side selection failed, selecting locally")

	coins, err := s.gw.UnspentCoins(ctx, sess)
	if err != nil {
		return nil, errors.Wrap(err, "listing unspent coins")
	}

	return Greedy(coins, target, s.fee)
}

func (s *Selector) selectRemote(ctx context.Context, sess *wallet.Session, target int64) (*Selection, error) {
	req := &tx.Request{
		Outputs: []tx.Output{{Address: PlaceholderAddress, Value: target}},
		Fee:     s.fee,
	}

	ids, err := s.gw.GenerateUnsigned(ctx, sess, req)
	if err != nil {
		return nil, errors.Wrap(err, "generating unsigned")
	}

	coins := make([]tx.Coin, 0, len(ids))
	for _, id := range ids {
		b, err := s.gw.Box(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching input %s", id)
		}
		coins = append(coins, b.Coin())
	}

	return NewSelection(coins, target, s.fee)
}
