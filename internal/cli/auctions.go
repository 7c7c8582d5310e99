package cli

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/auctionhouse/internal/config"
	"github.com/tcfw/auctionhouse/internal/node"
	"github.com/tcfw/auctionhouse/internal/utils/logging"
	"github.com/tcfw/auctionhouse/pkg/assembler"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"gopkg.in/yaml.v3"
)

const (
	commandTimeout = 2 * time.Minute
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List active auctions",
		RunE:  runList,
	}

	openCmd = &cobra.Command{
		Use:   "open",
		Short: "Open an auction from a terms file",
		RunE:  runOpen,
	}

	bidCmd = &cobra.Command{
		Use:   "bid <boxId> <amount>",
		Short: "Bid on an auction",
		Args:  cobra.ExactArgs(2),
		RunE:  runBid,
	}

	settleCmd = &cobra.Command{
		Use:   "settle",
		Short: "Settle every ended auction",
		RunE:  runSettle,
	}
)

func init() {
	listCmd.Flags().String("sort", "", "sort order: "+sortKeyHelp())
	openCmd.Flags().StringP("terms", "t", "", "yaml file with the auction terms")
	openCmd.MarkFlagRequired("terms")
}

func sortKeyHelp() string {
	s := ""
	for k := auction.SortLowestRemaining; k.Valid(); k++ {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("%d=%s", k, k)
	}
	return s
}

func runList(cmd *cobra.Command, args []string) error {
	if s, _ := cmd.Flags().GetString("sort"); s != "" {
		k, err := auction.ParseSortKey(s)
		if err != nil {
			return err
		}
		viper.Set(config.Cfg_poll_sortKey, int(k))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// listing never submits settlements
	n, err := newNode(ctx, node.WithManualSettle())
	if err != nil {
		return err
	}
	defer n.Stop()

	boxes, err := n.Refresh(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing auctions")
	}

	printAuctions(n, boxes)

	return nil
}

func printAuctions(n *node.Node, boxes []*auction.Box) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "height %d\n", n.Tracker().Height())
	fmt.Fprintln(w, "BOX\tVALUE\tNEXT\tASSET\tAMOUNT\tBIDDER\tREMAINING\tDESCRIPTION")
	for _, b := range boxes {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%s\t%d\t%s\n",
			b.ID, b.Value, b.NextMinimum(), b.AssetID, b.AssetAmount, b.Bidder, b.RemainingBlocks, b.Description)
	}
}

func readTerms(path string) (*assembler.OpenParams, error) {
	d, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading terms")
	}

	o := &assembler.OpenParams{}
	if err := yaml.Unmarshal(d, o); err != nil {
		return nil, errors.Wrap(err, "parsing terms")
	}

	return o, nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("terms")

	o, err := readTerms(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	signed, err := n.Assembler().Open(ctx, n.Session(), o)
	if err != nil {
		return errors.Wrap(err, "opening auction")
	}

	logging.Entry().WithField("tx", signed.ID).Info("auction submitted")
	fmt.Println(signed.ID)

	return nil
}

func runBid(cmd *cobra.Command, args []string) error {
	boxID := args[0]
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errors.Wrap(err, "parsing amount")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	if _, err := n.Refresh(ctx); err != nil {
		return errors.Wrap(err, "refreshing auctions")
	}

	box, ok := n.Tracker().Auction(boxID)
	if !ok {
		return errors.Errorf("auction %s is not active", boxID)
	}

	signed, err := n.Assembler().Bid(ctx, n.Session(), box, amount)
	if err != nil {
		return errors.Wrap(err, "placing bid")
	}

	logging.Entry().WithField("tx", signed.ID).WithField("box", boxID).Info("bid submitted")
	fmt.Println(signed.ID)

	return nil
}

func runSettle(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := newNode(ctx, node.WithManualSettle())
	if err != nil {
		return err
	}
	defer n.Stop()

	if err := n.Session().Validate(); err != nil {
		return err
	}

	boxes, err := n.Refresh(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing auctions")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, r := range n.Assembler().SettleMatured(ctx, n.Session(), boxes) {
		if r.OK() {
			fmt.Fprintf(w, "%s\tsettled\t%s\n", r.BoxID, r.TxID)
		} else {
			fmt.Fprintf(w, "%s\tfailed\t%s\n", r.BoxID, r.Err)
		}
	}

	return nil
}
