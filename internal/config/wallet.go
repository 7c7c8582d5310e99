package config

import (
	"github.com/spf13/viper"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

type Wallet struct {
	wallet.Session
}

const (
	Cfg_wallet_url     = "wallet.url"
	Cfg_wallet_apiKey  = "wallet.apiKey"
	Cfg_wallet_address = "wallet.address" // derived from the node wallet when empty
)

func buildWalletConfig() *Wallet {
	return &Wallet{
		Session: wallet.Session{
			URL:     viper.GetString(Cfg_wallet_url),
			APIKey:  viper.GetString(Cfg_wallet_apiKey),
			Address: viper.GetString(Cfg_wallet_address),
		},
	}
}
