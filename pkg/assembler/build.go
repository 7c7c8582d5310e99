package assembler

import (
	"github.com/pkg/errors"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/coin"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

// Params are the protocol constants requests are built with.
type Params struct {
	AuctionAddress string
	Fee            int64
	WinnerAmount   int64
	EnforceMinStep bool
}

// OpenParams are the terms a seller opens an auction with.
type OpenParams struct {
	AssetID      string `yaml:"assetId"`
	AssetAmount  int64  `yaml:"assetAmount"`
	InitialValue int64  `yaml:"initialValue"`
	MinStep      int64  `yaml:"minStep"`
	StartHeight  int64  `yaml:"startHeight"`
	EndHeight    int64  `yaml:"endHeight"`
	Description  string `yaml:"description"`
}

func (o *OpenParams) Validate() error {
	switch {
	case o.AssetID == "":
		return errors.Wrap(ErrInvalidTerms, "asset id missing")
	case o.AssetAmount <= 0:
		return errors.Wrap(ErrInvalidTerms, "asset amount must be positive")
	case o.InitialValue <= 0:
		return errors.Wrap(ErrInvalidTerms, "initial value must be positive")
	case o.MinStep <= 0:
		return errors.Wrap(ErrInvalidTerms, "minimum step must be positive")
	case o.EndHeight <= o.StartHeight:
		return errors.Wrap(ErrInvalidTerms, "end height must be after start height")
	}
	return nil
}

// Terms lays the opening parameters out as auction terms with the seller as
// its own first bidder.
func (o *OpenParams) Terms(seller string) auction.Terms {
	return auction.Terms{
		Seller:      seller,
		Bidder:      seller,
		EndHeight:   o.EndHeight,
		MinStep:     o.MinStep,
		Description: o.Description,
		Info: auction.Info{
			InitialValue: o.InitialValue,
			Step:         o.MinStep,
			StartHeight:  o.StartHeight,
			EndHeight:    o.EndHeight,
		},
	}
}

// BuildOpen creates the single auction box output. Inputs and change are
// left to the wallet.
func BuildOpen(p Params, o *OpenParams, regs tx.Registers) *tx.Request {
	return &tx.Request{
		Outputs: []tx.Output{
			{
				Address:   p.AuctionAddress,
				Value:     o.InitialValue,
				Assets:    []tx.Asset{{TokenID: o.AssetID, Amount: o.AssetAmount}},
				Registers: regs,
			},
		},
		Fee: p.Fee,
	}
}

// BuildBid replaces box with a box worth amount owned by the new bidder,
// refunds the previous bidder and returns change from sel to the new
// bidder. bidderReg is the encoded bidder slot for bidder.
func BuildBid(p Params, box *auction.Box, bidder, bidderReg string, amount int64, sel *coin.Selection) (*tx.Request, error) {
	regs := make(tx.Registers, len(box.Registers))
	for k, v := range box.Registers {
		regs[k] = v
	}
	regs[registers.SlotBidder] = bidderReg

	req := &tx.Request{
		Outputs: []tx.Output{
			{
				Address:   p.AuctionAddress,
				Value:     amount,
				Assets:    box.Assets,
				Registers: regs,
			},
			{
				Address: box.Bidder,
				Value:   box.Value,
			},
		},
		Fee: p.Fee,
	}

	switch {
	case sel.ChangeValue > 0:
		req.Outputs = append(req.Outputs, tx.Output{
			Address: bidder,
			Value:   sel.ChangeValue,
			Assets:  sel.ChangeAssets,
		})
	case len(sel.ChangeAssets) > 0:
		return nil, ErrDustChange
	}

	inputs := append([]tx.Coin{}, sel.Chosen...)
	inputs = append(inputs, tx.Coin{ID: box.ID, Value: box.Value, Assets: box.Assets})

	if err := req.Balance(inputs); err != nil {
		return nil, err
	}

	return req, nil
}

// BuildSettle splits a matured box into the winner payout, which carries the
// auctioned assets, and the remainder for the seller.
func BuildSettle(p Params, box *auction.Box) (*tx.Request, error) {
	if !box.Matured() {
		return nil, ErrNotMatured
	}

	sellerValue := box.Value - p.Fee - p.WinnerAmount
	if sellerValue <= 0 {
		return nil, errors.Wrapf(ErrSettleUnderfunded, "value %d, fee %d, winner %d", box.Value, p.Fee, p.WinnerAmount)
	}

	req := &tx.Request{
		Outputs: []tx.Output{
			{
				Address: box.Bidder,
				Value:   p.WinnerAmount,
				Assets:  box.Assets,
			},
			{
				Address: box.Seller,
				Value:   sellerValue,
			},
		},
		Fee: p.Fee,
	}

	if err := req.Balance([]tx.Coin{{ID: box.ID, Value: box.Value, Assets: box.Assets}}); err != nil {
		return nil, err
	}

	return req, nil
}
