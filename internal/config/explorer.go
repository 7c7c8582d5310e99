package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Explorer struct {
	URL     string
	NodeURL string
	Timeout time.Duration
	Retries uint
}

const (
	Cfg_explorer_url     = "explorer.url"
	Cfg_explorer_timeout = "explorer.timeout"
	Cfg_explorer_retries = "explorer.retries"
	Cfg_node_url         = "node.url"
)

var (
	explorerDefaults = map[string]interface{}{
		Cfg_explorer_url:     "https://api.ergoplatform.com",
		Cfg_explorer_timeout: 15 * time.Second,
		Cfg_explorer_retries: 3,
		Cfg_node_url:         "",
	}
)

func init() {
	for k, v := range explorerDefaults {
		viper.SetDefault(k, v)
	}
}

func buildExplorerConfig() (*Explorer, error) {
	c := &Explorer{
		URL:     viper.GetString(Cfg_explorer_url),
		NodeURL: viper.GetString(Cfg_node_url),
		Timeout: viper.GetDuration(Cfg_explorer_timeout),
		Retries: viper.GetUint(Cfg_explorer_retries),
	}

	if c.URL == "" {
		return nil, errors.New("explorer url required")
	}
	if c.Retries == 0 {
		c.Retries = 1
	}

	// box and script lookups fall back to the wallet node
	if c.NodeURL == "" {
		c.NodeURL = viper.GetString(Cfg_wallet_url)
	}

	return c, nil
}
