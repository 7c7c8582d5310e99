package storage

import (
	"context"
	"io"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/tcfw/auctionhouse/pkg/ledger"
)

var (
	_ ledger.Store = (*PebbleStore)(nil)
)

const (
	cacheSize = 1 << 20 * 8

	tableSep byte = ':'
)

type keyType byte

const (
	pendingBidTPrefix keyType = iota + 1
)

// PebbleStore persists pending bids so duplicate submissions are still
// caught after a restart.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	c := pebble.NewCache(cacheSize)
	defer c.Unref()

	db, err := pebble.Open(path, &pebble.Options{Cache: c})
	if err != nil {
		return nil, errors.Wrap(err, "opening ledger store")
	}

	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) get(key []byte) ([]byte, io.Closer, error) {
	return s.db.Get(key)
}

func (s *PebbleStore) Put(_ context.Context, b *ledger.PendingBid) error {
	if b.BoxID == "" {
		return errors.New("pending bid without box id")
	}

	d, err := b.Marshal()
	if err != nil {
		return err
	}

	if err := s.db.Set(typedKey(pendingBidTPrefix, b.BoxID), d, pebble.Sync); err != nil {
		return errors.Wrap(err, "storing pending bid")
	}

	return nil
}

func (s *PebbleStore) Get(_ context.Context, boxID string) (*ledger.PendingBid, error) {
	d, closer, err := s.get(typedKey(pendingBidTPrefix, boxID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "looking up pending bid")
	}
	defer closer.Close()

	b := &ledger.PendingBid{}
	if err := b.Unmarshal(d); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *PebbleStore) Delete(_ context.Context, boxID string) error {
	if err := s.db.Delete(typedKey(pendingBidTPrefix, boxID), pebble.Sync); err != nil {
		return errors.Wrap(err, "removing pending bid")
	}

	return nil
}

func (s *PebbleStore) List(_ context.Context) ([]*ledger.PendingBid, error) {
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{byte(pendingBidTPrefix)},
		UpperBound: []byte{byte(pendingBidTPrefix) + 1},
	})
	defer iter.Close()

	bids := []*ledger.PendingBid{}
	for iter.First(); iter.Valid(); iter.Next() {
		b := &ledger.PendingBid{}
		// the iterator reuses its value buffer
		if err := b.Unmarshal(append([]byte{}, iter.Value()...)); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating pending bids")
	}

	ledger.SortByAge(bids)

	return bids, nil
}

func (s *PebbleStore) Stop() error {
	return s.db.Close()
}

func typedKey(kType keyType, parts ...string) []byte {
	n := 1
	for _, p := range parts {
		n += len(p) + 1 //add sep as well
	}

	k := make([]byte, 0, n)
	k = append(k, byte(kType))
	for _, p := range parts {
		k = append(k, []byte(p)...)
		k = append(k, tableSep)
	}

	return k[:len(k)-1]
}
