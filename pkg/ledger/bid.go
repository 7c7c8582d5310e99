package ledger

import (
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/vmihailenco/msgpack/v5"
)

type Status string

const (
	StatusPendingMining Status = "pending-mining"
	StatusConfirmed     Status = "confirmed"
)

// PendingBid is a submitted open or bid transaction that the chain has not
// reflected yet.
type PendingBid struct {
	BoxID       string   `msgpack:"b" json:"boxId"`
	TxID        string   `msgpack:"t" json:"txId"`
	Token       tx.Asset `msgpack:"k" json:"token"`
	Amount      int64    `msgpack:"a" json:"amount"`
	Status      Status   `msgpack:"s" json:"status"`
	IsFirst     bool     `msgpack:"f" json:"isFirst"`
	Bidder      string   `msgpack:"w" json:"bidder"`
	RequestHash []byte   `msgpack:"h" json:"requestHash"`
	CreatedAt   int64    `msgpack:"c" json:"createdAt"`

	// Tx is the raw signed transaction as returned by the wallet, kept for
	// re-broadcasting.
	Tx []byte `msgpack:"x,omitempty" json:"-"`
}

func (b *PendingBid) Marshal() ([]byte, error) {
	d, err := msgpack.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling pending bid")
	}

	return d, nil
}

func (b *PendingBid) Unmarshal(d []byte) error {
	if err := msgpack.Unmarshal(d, b); err != nil {
		return errors.Wrap(err, "unmarshaling pending bid")
	}

	return nil
}

// Fingerprint hashes the canonical encoding of a request so that the same
// request submitted twice can be recognised.
func Fingerprint(req *tx.Request) ([]byte, error) {
	d, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	h, err := multihash.Sum(d, multihash.SHA3_256, multihash.DefaultLengths[multihash.SHA3_256])
	if err != nil {
		return nil, errors.Wrap(err, "hashing request")
	}

	return h, nil
}
