package auction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

// Info is the composite summary kept in R9: the opening terms of the auction.
type Info struct {
	InitialValue int64
	Step         int64
	StartHeight  int64
	EndHeight    int64
}

func (i Info) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", i.InitialValue, i.Step, i.StartHeight, i.EndHeight)
}

func ParseInfo(s string) (Info, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Info{}, errors.Errorf("info has %d fields", len(parts))
	}

	var vals [4]int64
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return Info{}, errors.Wrapf(err, "parsing info field %d", i)
		}
		vals[i] = v
	}

	return Info{
		InitialValue: vals[0],
		Step:         vals[1],
		StartHeight:  vals[2],
		EndHeight:    vals[3],
	}, nil
}

// Terms are the semantic fields carried in the registers of an auction box.
type Terms struct {
	Seller      string
	Bidder      string
	EndHeight   int64
	MinStep     int64
	Description string
	Info        Info
}

// Box is a live or finished auction as seen at some chain height.
type Box struct {
	ID             string
	Value          int64
	AssetID        string
	AssetAmount    int64
	Assets         []tx.Asset
	Seller         string
	Bidder         string
	MinStep        int64
	EndHeight      int64
	Description    string
	CreationHeight int64
	Info           Info

	RemainingBlocks int64

	// Registers are the raw registers of the box, kept so a bid can carry
	// them over unchanged.
	Registers tx.Registers
}

// Remaining is max(0, end - height).
func Remaining(endHeight, height int64) int64 {
	if r := endHeight - height; r > 0 {
		return r
	}
	return 0
}

// Matured reports whether the auction can be settled.
func (b *Box) Matured() bool {
	return b.RemainingBlocks == 0
}

// NextMinimum is the smallest amount a new bid must offer.
func (b *Box) NextMinimum() int64 {
	return b.Value + b.MinStep
}

func (b *Box) Terms() Terms {
	return Terms{
		Seller:      b.Seller,
		Bidder:      b.Bidder,
		EndHeight:   b.EndHeight,
		MinStep:     b.MinStep,
		Description: b.Description,
		Info:        b.Info,
	}
}
