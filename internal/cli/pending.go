package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcfw/auctionhouse/internal/utils/logging"
)

var (
	pendingCmd = &cobra.Command{
		Use:   "pending",
		Short: "List bids waiting to be mined",
		RunE:  runPending,
	}

	pending_rebroadcastCmd = &cobra.Command{
		Use:   "rebroadcast <boxId>",
		Short: "Send a pending bid's transaction again",
		Args:  cobra.ExactArgs(1),
		RunE:  runPendingRebroadcast,
	}
)

func runPending(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	bids, err := n.Tracker().Pending(ctx)
	if err != nil {
		return errors.Wrap(err, "listing pending bids")
	}

	s, _ := json.MarshalIndent(bids, "", "  ")

	fmt.Printf("%s\n", s)

	return nil
}

func runPendingRebroadcast(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	id, err := n.Assembler().Rebroadcast(ctx, args[0])
	if err != nil {
		return err
	}

	logging.Entry().WithField("tx", id).Info("transaction sent")

	return nil
}
