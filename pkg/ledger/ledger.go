package ledger

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyPending = errors.New("bid already pending for auction")
)

// Store holds at most one pending bid per auction box.
type Store interface {
	Put(context.Context, *PendingBid) error
	Get(context.Context, string) (*PendingBid, error)
	Delete(context.Context, string) error
	// List returns every pending bid, oldest first.
	List(context.Context) ([]*PendingBid, error)
}

// CheckDuplicate reports ErrAlreadyPending when a bid on boxID for at least
// amount, or for the identical request, is still waiting to be mined.
func CheckDuplicate(ctx context.Context, s Store, boxID string, amount int64, reqHash []byte) error {
	existing, err := s.Get(ctx, boxID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "looking up pending bid")
	}

	if existing.Status != StatusPendingMining {
		return nil
	}

	if existing.Amount >= amount || (len(reqHash) > 0 && bytes.Equal(existing.RequestHash, reqHash)) {
		return errors.Wrapf(ErrAlreadyPending, "tx %s for %d", existing.TxID, existing.Amount)
	}

	return nil
}

// CheckDuplicateRequest reports ErrAlreadyPending when any entry still
// waiting to be mined was made from a request with fingerprint reqHash. It
// covers entries whose box id is not known before signing.
func CheckDuplicateRequest(ctx context.Context, s Store, reqHash []byte) error {
	if len(reqHash) == 0 {
		return nil
	}

	pending, err := s.List(ctx)
	if err != nil {
		return errors.Wrap(err, "listing pending bids")
	}

	for _, p := range pending {
		if p.Status == StatusPendingMining && bytes.Equal(p.RequestHash, reqHash) {
			return errors.Wrapf(ErrAlreadyPending, "tx %s for %s", p.TxID, p.BoxID)
		}
	}

	return nil
}
