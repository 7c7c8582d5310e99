package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	Cfg_verbose = "verbose"
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose: false,
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("auctionhouse")
	viper.AddConfigPath("/etc/auctionhouse/")
	viper.AddConfigPath("$HOME/.auctionhouse")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("AUCTIONHOUSE")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logrus.New().Warnf("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return Build()
}

// Build assembles the configuration from the current viper state.
func Build() (*Config, error) {
	var err error
	c := &Config{}

	c.wallet = buildWalletConfig()

	c.explorer, err = buildExplorerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "explorer config")
	}

	c.auction, err = buildAuctionConfig()
	if err != nil {
		return nil, errors.Wrap(err, "auction config")
	}

	c.poll, err = buildPollConfig()
	if err != nil {
		return nil, errors.Wrap(err, "poll config")
	}

	c.storage = buildStorageConfig()

	if viper.GetBool(Cfg_verbose) {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	wallet   *Wallet
	explorer *Explorer
	auction  *Auction
	poll     *Poll
	storage  *Storage
}

func (c *Config) Wallet() *Wallet {
	return c.wallet
}

func (c *Config) Explorer() *Explorer {
	return c.explorer
}

func (c *Config) Auction() *Auction {
	return c.auction
}

func (c *Config) Poll() *Poll {
	return c.poll
}

func (c *Config) Storage() *Storage {
	return c.storage
}
