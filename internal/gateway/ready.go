package gateway

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/tcfw/auctionhouse/pkg/gateway"
)

// WaitReady blocks until the node answers /info, backing off between
// attempts, or ctx is done.
func (c *Client) WaitReady(ctx context.Context, min, max time.Duration) (*gateway.NodeInfo, error) {
	bo := &backoff.Backoff{
		Min:    min,
		Max:    max,
		Factor: 2,
	}

	for {
		info, err := c.Info(ctx)
		if err == nil {
			return info, nil
		}
		if errors.Is(err, gateway.ErrUnsupported) {
			return nil, err
		}

		d := bo.Duration()
		c.logger.
			WithError(err).
			WithField("waiting", d).
			WithField("attempt", bo.Attempt()).
			Info("waiting for node")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}
}
