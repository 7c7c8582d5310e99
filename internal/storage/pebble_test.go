package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/auctionhouse/pkg/ledger"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

func TestPebbleStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewPebbleStore(dir)
	require.NoError(t, err)

	newer := &ledger.PendingBid{
		BoxID:     "b2",
		TxID:      "tx2",
		Token:     tx.Asset{TokenID: "tok", Amount: 1},
		Amount:    150,
		Status:    ledger.StatusPendingMining,
		CreatedAt: 200,
	}
	older := &ledger.PendingBid{
		BoxID:     "b1",
		TxID:      "tx1",
		Amount:    100,
		Status:    ledger.StatusPendingMining,
		IsFirst:   true,
		CreatedAt: 100,
	}

	require.NoError(t, s.Put(ctx, newer))
	require.NoError(t, s.Put(ctx, older))

	got, err := s.Get(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	_, err = s.Get(ctx, "missing")
	assert.Equal(t, ledger.ErrNotFound, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b1", list[0].BoxID)
	assert.Equal(t, "b2", list[1].BoxID)

	require.NoError(t, s.Delete(ctx, "b1"))
	require.NoError(t, s.Stop())

	// reopened stores keep what was not removed
	s, err = NewPebbleStore(dir)
	require.NoError(t, err)
	defer s.Stop()

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b2", list[0].BoxID)
	assert.Equal(t, int64(150), list[0].Amount)
}

func TestPebbleStoreDuplicateCheck(t *testing.T) {
	ctx := context.Background()

	s, err := NewPebbleStore(t.TempDir())
	require.NoError(t, err)
	defer s.Stop()

	require.NoError(t, s.Put(ctx, &ledger.PendingBid{BoxID: "b1", Amount: 100, Status: ledger.StatusPendingMining}))

	assert.ErrorIs(t, ledger.CheckDuplicate(ctx, s, "b1", 100, nil), ledger.ErrAlreadyPending)
	assert.NoError(t, ledger.CheckDuplicate(ctx, s, "b1", 120, nil))
	assert.NoError(t, ledger.CheckDuplicate(ctx, s, "b2", 100, nil))
}

func TestTypedKey(t *testing.T) {
	assert.Equal(t, []byte{byte(pendingBidTPrefix), 'a', ':', 'b'}, typedKey(pendingBidTPrefix, "a", "b"))
	assert.Equal(t, []byte{byte(pendingBidTPrefix)}, typedKey(pendingBidTPrefix))
}
