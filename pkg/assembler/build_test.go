package assembler

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/coin"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

var testParams = Params{
	AuctionAddress: "auction",
	Fee:            1,
	WinnerAmount:   10,
	EnforceMinStep: true,
}

func liveBox() *auction.Box {
	return &auction.Box{
		ID:              "box1",
		Value:           100,
		AssetID:         "tok",
		AssetAmount:     1,
		Assets:          []tx.Asset{{TokenID: "tok", Amount: 1}},
		Seller:          "S",
		Bidder:          "A",
		MinStep:         10,
		EndHeight:       1000,
		RemainingBlocks: 20,
		Registers: tx.Registers{
			tx.R4: "0e0153",
			tx.R5: "050203e8",
			tx.R6: "05010a",
			tx.R7: "0e00",
			tx.R8: "0e0141",
			tx.R9: "0e0b3130302c31302c302c31",
		},
	}
}

func TestBuildBidReplacement(t *testing.T) {
	box := liveBox()

	sel, err := coin.Greedy([]tx.Coin{{ID: "c1", Value: 120}}, 115, testParams.Fee)
	require.NoError(t, err)

	req, err := BuildBid(testParams, box, "B", "0e0142", 115, sel)
	require.NoError(t, err)
	require.Len(t, req.Outputs, 3)

	replacement := req.Outputs[0]
	assert.Equal(t, "auction", replacement.Address)
	assert.Equal(t, int64(115), replacement.Value)
	assert.Equal(t, box.Assets, replacement.Assets)
	assert.Equal(t, "0e0142", replacement.Registers[registers.SlotBidder])
	for _, slot := range []string{tx.R4, tx.R5, tx.R6, tx.R7, tx.R9} {
		assert.Equal(t, box.Registers[slot], replacement.Registers[slot], slot)
	}

	assert.Equal(t, tx.Output{Address: "A", Value: 100}, req.Outputs[1])
	assert.Equal(t, "B", req.Outputs[2].Address)
	assert.Equal(t, int64(4), req.Outputs[2].Value)

	// the prior box keeps its registers
	assert.Equal(t, "0e0141", box.Registers[registers.SlotBidder])
}

func TestBuildBidChangeAssets(t *testing.T) {
	box := liveBox()

	chosen := []tx.Coin{
		{ID: "c1", Value: 80, Assets: []tx.Asset{{TokenID: "x", Amount: 2}}},
		{ID: "c2", Value: 60, Assets: []tx.Asset{{TokenID: "x", Amount: 3}, {TokenID: "y", Amount: 1}}},
	}
	sel, err := coin.NewSelection(chosen, 130, testParams.Fee)
	require.NoError(t, err)

	req, err := BuildBid(testParams, box, "B", "0e0142", 130, sel)
	require.NoError(t, err)

	change := req.Outputs[2]
	assert.Equal(t, int64(9), change.Value)
	assert.Equal(t, []tx.Asset{{TokenID: "x", Amount: 5}, {TokenID: "y", Amount: 1}}, change.Assets)
}

func TestBuildBidExactAmount(t *testing.T) {
	box := liveBox()

	sel, err := coin.NewSelection([]tx.Coin{{ID: "c1", Value: 116}}, 115, testParams.Fee)
	require.NoError(t, err)

	req, err := BuildBid(testParams, box, "B", "0e0142", 115, sel)
	require.NoError(t, err)
	assert.Len(t, req.Outputs, 2)

	sel, err = coin.NewSelection([]tx.Coin{{ID: "c1", Value: 116, Assets: []tx.Asset{{TokenID: "x", Amount: 1}}}}, 115, testParams.Fee)
	require.NoError(t, err)

	_, err = BuildBid(testParams, box, "B", "0e0142", 115, sel)
	assert.Equal(t, ErrDustChange, err)
}

func TestBuildSettle(t *testing.T) {
	box := liveBox()
	box.RemainingBlocks = 0
	box.Value = 1000

	req, err := BuildSettle(testParams, box)
	require.NoError(t, err)
	require.Len(t, req.Outputs, 2)

	assert.Equal(t, tx.Output{Address: "A", Value: 10, Assets: box.Assets}, req.Outputs[0])
	assert.Equal(t, tx.Output{Address: "S", Value: 989}, req.Outputs[1])
	assert.NoError(t, req.Balance([]tx.Coin{{Value: 1000, Assets: box.Assets}}))
}

func TestBuildSettleScenario(t *testing.T) {
	p := Params{AuctionAddress: "auction", Fee: 1000, WinnerAmount: 1000000}

	box := liveBox()
	box.RemainingBlocks = 0
	box.Value = 1000000
	box.Bidder = "W"

	_, err := BuildSettle(p, box)
	assert.True(t, errors.Is(err, ErrSettleUnderfunded))

	box.Value = 2500000
	req, err := BuildSettle(p, box)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), req.Outputs[0].Value)
	assert.Equal(t, "W", req.Outputs[0].Address)
	assert.Equal(t, box.Assets, req.Outputs[0].Assets)
	assert.Equal(t, int64(2500000-1000-1000000), req.Outputs[1].Value)
	assert.Equal(t, "S", req.Outputs[1].Address)
}

func TestBuildSettleNotMatured(t *testing.T) {
	_, err := BuildSettle(testParams, liveBox())
	assert.Equal(t, ErrNotMatured, err)
}

func TestBuildOpen(t *testing.T) {
	o := &OpenParams{
		AssetID:      "tok",
		AssetAmount:  5,
		InitialValue: 1000,
		MinStep:      100,
		StartHeight:  10,
		EndHeight:    730,
	}
	require.NoError(t, o.Validate())

	regs := tx.Registers{tx.R4: "0e00"}
	req := BuildOpen(testParams, o, regs)

	require.Len(t, req.Outputs, 1)
	assert.Equal(t, "auction", req.Outputs[0].Address)
	assert.Equal(t, int64(1000), req.Outputs[0].Value)
	assert.Equal(t, []tx.Asset{{TokenID: "tok", Amount: 5}}, req.Outputs[0].Assets)
	assert.Equal(t, regs, req.Outputs[0].Registers)
	assert.Equal(t, testParams.Fee, req.Fee)

	// a wallet input covering value and fee with the staked asset balances
	assert.NoError(t, req.Balance([]tx.Coin{{Value: 1001, Assets: []tx.Asset{{TokenID: "tok", Amount: 5}}}}))

	terms := o.Terms("S")
	assert.Equal(t, "S", terms.Seller)
	assert.Equal(t, "S", terms.Bidder)
	assert.Equal(t, auction.Info{InitialValue: 1000, Step: 100, StartHeight: 10, EndHeight: 730}, terms.Info)
}

func TestOpenParamsValidate(t *testing.T) {
	valid := OpenParams{AssetID: "t", AssetAmount: 1, InitialValue: 1, MinStep: 1, StartHeight: 1, EndHeight: 2}
	require.NoError(t, valid.Validate())

	broken := []func(o *OpenParams){
		func(o *OpenParams) { o.AssetID = "" },
		func(o *OpenParams) { o.AssetAmount = 0 },
		func(o *OpenParams) { o.InitialValue = 0 },
		func(o *OpenParams) { o.MinStep = 0 },
		func(o *OpenParams) { o.EndHeight = o.StartHeight },
	}

	for _, b := range broken {
		o := valid
		b(&o)
		assert.True(t, errors.Is(o.Validate(), ErrInvalidTerms))
	}
}
