package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/tracker"
)

type Poll struct {
	Interval   time.Duration
	ForceAfter time.Duration
	Retry      tracker.RetryPolicy
	SortKey    auction.SortKey
}

const (
	Cfg_poll_interval   = "poll.interval"
	Cfg_poll_forceAfter = "poll.forceAfter"
	Cfg_poll_retryShort = "poll.retryShort"
	Cfg_poll_retryLong  = "poll.retryLong"
	Cfg_poll_sortKey    = "poll.sortKey"
)

var (
	pollDefaults = map[string]interface{}{
		Cfg_poll_interval:   tracker.DefaultInterval,
		Cfg_poll_forceAfter: tracker.DefaultForceAfter,
		Cfg_poll_retryShort: tracker.DefaultRetryPolicy.Short,
		Cfg_poll_retryLong:  tracker.DefaultRetryPolicy.Long,
		Cfg_poll_sortKey:    int(auction.SortLowestRemaining),
	}
)

func init() {
	for k, v := range pollDefaults {
		viper.SetDefault(k, v)
	}
}

func buildPollConfig() (*Poll, error) {
	c := &Poll{
		Interval:   viper.GetDuration(Cfg_poll_interval),
		ForceAfter: viper.GetDuration(Cfg_poll_forceAfter),
		Retry: tracker.RetryPolicy{
			Short: viper.GetDuration(Cfg_poll_retryShort),
			Long:  viper.GetDuration(Cfg_poll_retryLong),
		},
		SortKey: auction.SortKey(viper.GetInt(Cfg_poll_sortKey)),
	}

	if c.Interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if !c.SortKey.Valid() {
		return nil, errors.Errorf("unknown sort key %d", c.SortKey)
	}

	return c, nil
}
