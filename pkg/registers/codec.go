package registers

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

// Slot assignment of auction terms.
const (
	SlotSeller      = tx.R4
	SlotEndHeight   = tx.R5
	SlotMinStep     = tx.R6
	SlotDescription = tx.R7
	SlotBidder      = tx.R8
	SlotInfo        = tx.R9
)

type Codec struct {
	addrs  AddressCodec
	logger logrus.FieldLogger
}

type Option func(*Codec)

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Codec) {
		c.logger = l
	}
}

func NewCodec(addrs AddressCodec, opts ...Option) *Codec {
	c := &Codec{
		addrs:  addrs,
		logger: logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Encode lays the terms out over R4..R9. An empty bidder means the seller
// opens the auction as its own first bidder, so such terms decode with
// Bidder equal to Seller.
func (c *Codec) Encode(ctx context.Context, t auction.Terms) (tx.Registers, error) {
	if t.Seller == "" {
		return nil, errors.New("seller address missing")
	}
	if !utf8.ValidString(t.Description) {
		return nil, errors.New("description is not valid utf-8")
	}

	sellerTree, err := c.addrs.AddressToTree(ctx, t.Seller)
	if err != nil {
		return nil, errors.Wrap(err, "seller address to tree")
	}

	bidderTree := sellerTree
	if t.Bidder != "" && t.Bidder != t.Seller {
		bidderTree, err = c.addrs.AddressToTree(ctx, t.Bidder)
		if err != nil {
			return nil, errors.Wrap(err, "bidder address to tree")
		}
	}

	end, err := longHex(t.EndHeight)
	if err != nil {
		return nil, errors.Wrap(err, "encoding end height")
	}

	step, err := longHex(t.MinStep)
	if err != nil {
		return nil, errors.Wrap(err, "encoding min step")
	}

	return tx.Registers{
		SlotSeller:      collHex(sellerTree),
		SlotEndHeight:   end,
		SlotMinStep:     step,
		SlotDescription: collHex([]byte(t.Description)),
		SlotBidder:      collHex(bidderTree),
		SlotInfo:        collHex([]byte(t.Info.String())),
	}, nil
}

// EncodeBidder produces the bidder slot value for address.
func (c *Codec) EncodeBidder(ctx context.Context, address string) (string, error) {
	tree, err := c.addrs.AddressToTree(ctx, address)
	if err != nil {
		return "", errors.Wrap(err, "bidder address to tree")
	}
	return collHex(tree), nil
}

// DecodeTerms reverses Encode. Missing description or info slots fall back
// to defaults; the other slots are required.
func (c *Codec) DecodeTerms(ctx context.Context, regs tx.Registers) (auction.Terms, error) {
	t, _, err := c.decodeTerms(ctx, regs)
	return t, err
}

func (c *Codec) decodeTerms(ctx context.Context, regs tx.Registers) (auction.Terms, bool, error) {
	t := auction.Terms{}

	seller, err := c.decodeAddress(ctx, regs, SlotSeller)
	if err != nil {
		return t, false, err
	}
	t.Seller = seller

	bidder, err := c.decodeAddress(ctx, regs, SlotBidder)
	if err != nil {
		return t, false, err
	}
	t.Bidder = bidder

	t.EndHeight, err = decodeLongSlot(regs, SlotEndHeight)
	if err != nil {
		return t, false, err
	}

	t.MinStep, err = decodeLongSlot(regs, SlotMinStep)
	if err != nil {
		return t, false, err
	}

	if v, ok := regs[SlotDescription]; ok {
		if d, err := parseCollHex(v); err == nil && utf8.Valid(d) {
			t.Description = string(d)
		} else {
			c.logger.WithField("slot", SlotDescription).Debug("ignoring malformed description")
		}
	}

	hasInfo := false
	if v, ok := regs[SlotInfo]; ok {
		if d, err := parseCollHex(v); err == nil {
			if info, err := auction.ParseInfo(string(d)); err == nil {
				t.Info = info
				hasInfo = true
			}
		}
		if !hasInfo {
			c.logger.WithField("slot", SlotInfo).Debug("ignoring malformed info")
		}
	}

	if !hasInfo {
		t.Info = auction.Info{Step: t.MinStep, EndHeight: t.EndHeight}
	}

	return t, hasInfo, nil
}

func (c *Codec) decodeAddress(ctx context.Context, regs tx.Registers, slot string) (string, error) {
	v, ok := regs[slot]
	if !ok {
		return "", errors.Wrapf(ErrDecode, "%s missing", slot)
	}

	tree, err := parseCollHex(v)
	if err != nil {
		return "", errors.Wrapf(ErrDecode, "%s: %s", slot, err)
	}

	// a tree the node rejects is reported as ErrDecode by the address codec;
	// any other failure is the node's and fails the caller
	addr, err := c.addrs.TreeToAddress(ctx, tree)
	if err != nil {
		return "", errors.Wrapf(err, "%s tree to address", slot)
	}

	return addr, nil
}

func decodeLongSlot(regs tx.Registers, slot string) (int64, error) {
	v, ok := regs[slot]
	if !ok {
		return 0, errors.Wrapf(ErrDecode, "%s missing", slot)
	}

	n, err := parseLongHex(v)
	if err != nil {
		return 0, errors.Wrapf(ErrDecode, "%s: %s", slot, err)
	}

	return n, nil
}

// Decode turns an on-chain box into an auction at the given height.
func (c *Codec) Decode(ctx context.Context, b *tx.Box, height int64) (*auction.Box, error) {
	t, hasInfo, err := c.decodeTerms(ctx, b.Registers)
	if err != nil {
		return nil, err
	}

	if !hasInfo {
		t.Info.InitialValue = b.Value
		t.Info.StartHeight = b.CreationHeight
	}

	ab := &auction.Box{
		ID:              b.ID,
		Value:           b.Value,
		Assets:          b.Assets,
		Seller:          t.Seller,
		Bidder:          t.Bidder,
		MinStep:         t.MinStep,
		EndHeight:       t.EndHeight,
		Description:     t.Description,
		CreationHeight:  b.CreationHeight,
		Info:            t.Info,
		RemainingBlocks: auction.Remaining(t.EndHeight, height),
		Registers:       b.Registers,
	}

	if len(b.Assets) > 0 {
		ab.AssetID = b.Assets[0].TokenID
		ab.AssetAmount = b.Assets[0].Amount
	}

	return ab, nil
}

// DecodeAll decodes a batch, dropping boxes whose registers are malformed.
// Any other failure, such as the node being unreachable while mapping
// addresses, fails the whole batch. Input order is preserved.
func (c *Codec) DecodeAll(ctx context.Context, boxes []*tx.Box, height int64) ([]*auction.Box, error) {
	out := make([]*auction.Box, 0, len(boxes))

	for _, b := range boxes {
		ab, err := c.Decode(ctx, b, height)
		if errors.Is(err, ErrDecode) {
			c.logger.WithError(err).WithField("box", b.ID).Warn("skipping undecodable auction box")
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decoding box %s", b.ID)
		}
		out = append(out, ab)
	}

	return out, nil
}
