package assembler

import "github.com/pkg/errors"

var (
	ErrBidTooLow         = errors.New("bid below current value plus minimum step")
	ErrAuctionEnded      = errors.New("auction has ended")
	ErrNotMatured        = errors.New("auction has not ended yet")
	ErrSettleUnderfunded = errors.New("box value does not cover fee and winner payout")
	ErrDustChange        = errors.New("change carries assets but no value")
	ErrInvalidTerms      = errors.New("invalid auction terms")
)
