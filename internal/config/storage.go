package config

import (
	"github.com/spf13/viper"
)

type Storage struct {
	LedgerPath  string
	MetricsPort int
}

const (
	Cfg_ledger_path  = "ledger.path"
	Cfg_metrics_port = "metrics.port"
)

var (
	storageDefaults = map[string]interface{}{
		Cfg_ledger_path:  "",
		Cfg_metrics_port: 0,
	}
)

func init() {
	for k, v := range storageDefaults {
		viper.SetDefault(k, v)
	}
}

func buildStorageConfig() *Storage {
	return &Storage{
		LedgerPath:  viper.GetString(Cfg_ledger_path),
		MetricsPort: viper.GetInt(Cfg_metrics_port),
	}
}
