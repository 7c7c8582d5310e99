package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/auctionhouse/internal/config"
	"github.com/tcfw/auctionhouse/internal/node"
)

var (
	rootCmd = &cobra.Command{
		Use:   "auctionhouse",
		Short: "On-chain auction house client",
		RunE:  runDaemon,
	}
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	viper.BindPFlag(config.Cfg_verbose, rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.PersistentFlags().String("wallet", "", "wallet node url")
	viper.BindPFlag(config.Cfg_wallet_url, rootCmd.PersistentFlags().Lookup("wallet"))

	rootCmd.PersistentFlags().String("api-key", "", "wallet node api key")
	viper.BindPFlag(config.Cfg_wallet_apiKey, rootCmd.PersistentFlags().Lookup("api-key"))

	regCommands()

	return rootCmd.Execute()
}

func newNode(ctx context.Context, opts ...node.NodeOption) (*node.Node, error) {
	n, err := node.NewNode(ctx, append([]node.NodeOption{node.WithDefaultOptions()}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "initing node")
	}

	return n, nil
}

func waitExit() <-chan os.Signal {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	return sigs
}
