package tracker

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/auctionhouse/pkg/assembler"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/ledger"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

var session = &wallet.Session{URL: "node:9053", APIKey: "key", Address: "B"}

type fakeAddresses struct{}

func (fakeAddresses) AddressToTree(_ context.Context, address string) ([]byte, error) {
	return []byte("tree:" + address), nil
}

func (fakeAddresses) TreeToAddress(_ context.Context, tree []byte) (string, error) {
	if !strings.HasPrefix(string(tree), "tree:") {
		return "", errors.Wrap(registers.ErrDecode, "unknown tree")
	}
	return strings.TrimPrefix(string(tree), "tree:"), nil
}

// unreachableAddresses fails every lookup the way an offline node does.
type unreachableAddresses struct {
	fakeAddresses
}

func (unreachableAddresses) TreeToAddress(context.Context, []byte) (string, error) {
	return "", errors.New("node unreachable")
}

type fakeSettler struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]bool
}

func (f *fakeSettler) SettleMatured(_ context.Context, _ *wallet.Session, boxes []*auction.Box) []assembler.SettleResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	var results []assembler.SettleResult
	for _, b := range boxes {
		if !b.Matured() {
			continue
		}
		ids = append(ids, b.ID)
		r := assembler.SettleResult{BoxID: b.ID, TxID: "tx-" + b.ID}
		if f.fail[b.ID] {
			r = assembler.SettleResult{BoxID: b.ID, Err: errors.New("box spent")}
		}
		results = append(results, r)
	}
	f.calls = append(f.calls, ids)

	return results
}

func testCodec() *registers.Codec {
	return registers.NewCodec(fakeAddresses{})
}

func rawBox(t *testing.T, id string, value, end, creation int64, bidder string) *tx.Box {
	regs, err := testCodec().Encode(context.Background(), auction.Terms{
		Seller:    "S",
		Bidder:    bidder,
		EndHeight: end,
		MinStep:   10,
		Info:      auction.Info{InitialValue: 100, Step: 10, StartHeight: 1, EndHeight: end},
	})
	require.NoError(t, err)

	return &tx.Box{
		ID:             id,
		Value:          value,
		Address:        "auction",
		Assets:         []tx.Asset{{TokenID: "tok", Amount: 1}},
		CreationHeight: creation,
		Registers:      regs,
	}
}

func ids(boxes []*auction.Box) []string {
	out := make([]string, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.ID)
	}
	return out
}

func TestRefreshSortsAndSkipsMalformed(t *testing.T) {
	ctx := context.Background()

	tr, err := NewTracker(testCodec(), nil, WithSortKey(auction.SortHighestPrice))
	require.NoError(t, err)

	broken := rawBox(t, "broken", 999, 200, 1, "A")
	broken.Registers[tx.R5] = "zz"

	raw := []*tx.Box{
		rawBox(t, "a", 10, 200, 1, "A"),
		broken,
		rawBox(t, "b", 50, 150, 2, "A"),
		rawBox(t, "c", 30, 120, 3, "A"),
	}

	boxes, err := tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c", "a"}, ids(boxes))
	assert.Equal(t, []string{"b", "c", "a"}, ids(tr.Auctions()))
	assert.Equal(t, int64(100), tr.Height())
	assert.Equal(t, int64(50), boxes[0].RemainingBlocks)
	assert.Equal(t, "A", boxes[0].Bidder)
	assert.Equal(t, "S", boxes[0].Seller)

	b, ok := tr.Auction("c")
	require.True(t, ok)
	assert.Equal(t, int64(20), b.RemainingBlocks)

	_, ok = tr.Auction("broken")
	assert.False(t, ok)
}

func TestRefreshIsRepeatable(t *testing.T) {
	ctx := context.Background()

	tr, err := NewTracker(testCodec(), nil)
	require.NoError(t, err)

	raw := []*tx.Box{
		rawBox(t, "a", 10, 110, 1, "A"),
		rawBox(t, "b", 20, 110, 2, "A"),
		rawBox(t, "c", 30, 105, 3, "A"),
	}

	first, err := tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)
	second, err := tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, ids(first))
	assert.Equal(t, ids(first), ids(second))
}

func TestSetSortKey(t *testing.T) {
	ctx := context.Background()

	tr, err := NewTracker(testCodec(), nil)
	require.NoError(t, err)

	_, err = tr.Refresh(ctx, []*tx.Box{
		rawBox(t, "a", 10, 110, 1, "A"),
		rawBox(t, "b", 20, 120, 3, "A"),
		rawBox(t, "c", 30, 130, 2, "A"),
	}, 100)
	require.NoError(t, err)

	require.NoError(t, tr.SetSortKey(auction.SortLatest))
	assert.Equal(t, auction.SortLatest, tr.SortKey())
	assert.Equal(t, []string{"b", "c", "a"}, ids(tr.Auctions()))

	assert.Error(t, tr.SetSortKey(auction.SortKey(9)))

	_, err = NewTracker(testCodec(), nil, WithSortKey(auction.SortKey(-1)))
	assert.Error(t, err)
}

func TestRefreshSettlesMatured(t *testing.T) {
	ctx := context.Background()
	settler := &fakeSettler{fail: map[string]bool{"m2": true}}

	tr, err := NewTracker(testCodec(), nil, WithSession(session), WithSettler(settler))
	require.NoError(t, err)

	raw := []*tx.Box{
		rawBox(t, "m1", 10, 90, 1, "A"),
		rawBox(t, "live", 10, 200, 1, "A"),
		rawBox(t, "m2", 10, 100, 1, "A"),
	}

	_, err = tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)

	// the finalize scan on the first refresh retries only what failed
	require.Len(t, settler.calls, 2)
	assert.Equal(t, []string{"m1", "m2"}, settler.calls[0])
	assert.Equal(t, []string{"m2"}, settler.calls[1])

	// m1 already has a settlement in flight
	_, err = tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)
	require.Len(t, settler.calls, 3)
	assert.Equal(t, []string{"m2"}, settler.calls[2])

	settler.fail = nil
	_, err = tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)
	require.Len(t, settler.calls, 4)

	_, err = tr.Refresh(ctx, raw, 100)
	require.NoError(t, err)
	assert.Len(t, settler.calls, 4)
}

func TestRefreshWithoutWalletDoesNotSettle(t *testing.T) {
	settler := &fakeSettler{}

	tr, err := NewTracker(testCodec(), nil, WithSettler(settler))
	require.NoError(t, err)

	_, err = tr.Refresh(context.Background(), []*tx.Box{rawBox(t, "m1", 10, 90, 1, "A")}, 100)
	require.NoError(t, err)

	assert.Empty(t, settler.calls)
}

func TestRefreshReconcilesLedger(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemStore()

	put := func(boxID string, amount int64) {
		require.NoError(t, store.Put(ctx, &ledger.PendingBid{
			BoxID:  boxID,
			TxID:   "tx-" + boxID,
			Amount: amount,
			Status: ledger.StatusPendingMining,
			Bidder: session.Address,
		}))
	}

	put("gone", 100)
	put("mined", 150)
	put("waiting", 300)

	tr, err := NewTracker(testCodec(), store, WithSession(session))
	require.NoError(t, err)

	_, err = tr.Refresh(ctx, []*tx.Box{
		rawBox(t, "mined", 150, 200, 1, "B"),
		rawBox(t, "waiting", 200, 200, 1, "A"),
	}, 100)
	require.NoError(t, err)

	pending, err := tr.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "waiting", pending[0].BoxID)

	_, err = tr.PendingFor(ctx, "gone")
	assert.Equal(t, ledger.ErrNotFound, err)

	p, err := tr.PendingFor(ctx, "waiting")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPendingMining, p.Status)
}

func TestRefreshFailsWhenNodeUnreachable(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemStore()

	require.NoError(t, store.Put(ctx, &ledger.PendingBid{
		BoxID:  "b1",
		TxID:   "tx-b1",
		Amount: 150,
		Status: ledger.StatusPendingMining,
		Bidder: session.Address,
	}))

	settler := &fakeSettler{}
	tr, err := NewTracker(registers.NewCodec(unreachableAddresses{}), store,
		WithSession(session), WithSettler(settler))
	require.NoError(t, err)

	_, err = tr.Refresh(ctx, []*tx.Box{
		rawBox(t, "b1", 100, 90, 1, "A"),
	}, 100)
	require.Error(t, err)
	assert.False(t, errors.Is(err, registers.ErrDecode))

	p, err := tr.PendingFor(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPendingMining, p.Status)

	err = ledger.CheckDuplicate(ctx, store, "b1", 150, nil)
	assert.True(t, errors.Is(err, ledger.ErrAlreadyPending))

	assert.Empty(t, settler.calls)
	assert.Empty(t, tr.Auctions())
	assert.Equal(t, int64(0), tr.Height())
}

func TestRefreshKeepsBidOnUndecodableBox(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemStore()

	require.NoError(t, store.Put(ctx, &ledger.PendingBid{
		BoxID:  "b1",
		Amount: 150,
		Status: ledger.StatusPendingMining,
		Bidder: session.Address,
	}))

	tr, err := NewTracker(testCodec(), store, WithSession(session))
	require.NoError(t, err)

	broken := rawBox(t, "b1", 100, 200, 1, "A")
	broken.Registers[tx.R5] = "zz"

	boxes, err := tr.Refresh(ctx, []*tx.Box{broken}, 100)
	require.NoError(t, err)
	assert.Empty(t, boxes)

	_, err = tr.PendingFor(ctx, "b1")
	assert.NoError(t, err)
}

func TestRefreshReconcilesOpenedAuction(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemStore()

	require.NoError(t, store.Put(ctx, &ledger.PendingBid{
		BoxID:   "new",
		TxID:    "tx-new",
		Amount:  100,
		IsFirst: true,
		Status:  ledger.StatusPendingMining,
		Bidder:  session.Address,
	}))

	tr, err := NewTracker(testCodec(), store, WithSession(session))
	require.NoError(t, err)

	_, err = tr.Refresh(ctx, []*tx.Box{rawBox(t, "other", 10, 200, 1, "A")}, 100)
	require.NoError(t, err)

	_, err = tr.PendingFor(ctx, "new")
	require.NoError(t, err)

	_, err = tr.Refresh(ctx, []*tx.Box{
		rawBox(t, "other", 10, 200, 1, "A"),
		rawBox(t, "new", 100, 200, 100, "B"),
	}, 101)
	require.NoError(t, err)

	_, err = tr.PendingFor(ctx, "new")
	assert.Equal(t, ledger.ErrNotFound, err)
}

func TestRefreshResubmitsStuckSettlement(t *testing.T) {
	ctx := context.Background()
	settler := &fakeSettler{}

	tr, err := NewTracker(testCodec(), nil, WithSession(session), WithSettler(settler), WithSettleRetry(20))
	require.NoError(t, err)

	raw := []*tx.Box{rawBox(t, "m", 10, 90, 1, "A")}

	for h := int64(100); h <= 140; h += 10 {
		_, err = tr.Refresh(ctx, raw, h)
		require.NoError(t, err)
	}

	assert.Equal(t, [][]string{{"m"}, {"m"}, {"m"}}, settler.calls)

	_, err = NewTracker(testCodec(), nil, WithSettleRetry(0))
	assert.Error(t, err)
}

func TestRefreshCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	settler := &fakeSettler{}
	tr, err := NewTracker(testCodec(), nil, WithSession(session), WithSettler(settler))
	require.NoError(t, err)

	_, err = tr.Refresh(ctx, []*tx.Box{rawBox(t, "m1", 10, 90, 1, "A")}, 100)
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, settler.calls)
}

func TestNewTrackerRequiresCodec(t *testing.T) {
	_, err := NewTracker(nil, nil)
	assert.Error(t, err)
}
