package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/auctionhouse/internal/config"
	"github.com/tcfw/auctionhouse/internal/utils/logging"
)

var (
	daemonCmd = &cobra.Command{
		Use:   "daemon",
		RunE:  runDaemon,
		Short: "poll auctions and settle the ones that end",
	}
)

func init() {
	daemonCmd.Flags().IntP("metrics-port", "p", 0, "metrics port, 0 disables")
	viper.BindPFlag(config.Cfg_metrics_port, daemonCmd.Flags().Lookup("metrics-port"))
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, err := newNode(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- node.ListenAndServe(ctx)
	}()

	select {
	case err := <-errCh:
		if serr := node.Stop(); serr != nil {
			logging.WithError(serr).Warn("stopping node")
		}
		return err
	case <-waitExit():
		cancel()
		<-errCh
		return node.Stop()
	}
}
