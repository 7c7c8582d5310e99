package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcfw/auctionhouse/internal/node"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

var (
	balanceCmd = &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet address and confirmed balance",
		RunE:  runBalance,
	}
)

func runBalance(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := newNode(ctx, node.WithManualSettle())
	if err != nil {
		return err
	}
	defer n.Stop()

	b, err := n.Balances(ctx)
	if err != nil {
		return errors.Wrap(err, "reading balances")
	}

	s, _ := json.MarshalIndent(struct {
		Address string `json:"address"`
		*wallet.Balances
	}{n.Session().Address, b}, "", "  ")

	fmt.Printf("%s\n", s)

	return nil
}
