package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/tcfw/auctionhouse/pkg/assembler"
)

type Auction struct {
	assembler.Params
}

const (
	Cfg_auction_address        = "auction.address"
	Cfg_auction_fee            = "auction.fee"
	Cfg_auction_winnerAmount   = "auction.winnerAmount"
	Cfg_auction_enforceMinStep = "auction.enforceMinStep"
)

var (
	auctionDefaults = map[string]interface{}{
		Cfg_auction_address:        "",
		Cfg_auction_fee:            1000000,
		Cfg_auction_winnerAmount:   1000000,
		Cfg_auction_enforceMinStep: true,
	}
)

func init() {
	for k, v := range auctionDefaults {
		viper.SetDefault(k, v)
	}
}

func buildAuctionConfig() (*Auction, error) {
	c := &Auction{
		Params: assembler.Params{
			AuctionAddress: viper.GetString(Cfg_auction_address),
			Fee:            viper.GetInt64(Cfg_auction_fee),
			WinnerAmount:   viper.GetInt64(Cfg_auction_winnerAmount),
			EnforceMinStep: viper.GetBool(Cfg_auction_enforceMinStep),
		},
	}

	if c.Fee <= 0 {
		return nil, errors.New("fee must be positive")
	}
	if c.WinnerAmount <= 0 {
		return nil, errors.New("winner amount must be positive")
	}

	return c, nil
}
