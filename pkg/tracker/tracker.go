package tracker

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/pkg/assembler"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/ledger"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

const (
	settledCacheSize = 512

	// DefaultSettleRetryBlocks is how many blocks a submitted settlement may
	// stay unmined before the box is settled again.
	DefaultSettleRetryBlocks = 5
)

var (
	activeAuctionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auctionhouse_active_auctions",
		Help: "Auctions in the last refreshed listing",
	})
	pendingBidsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auctionhouse_pending_bids",
		Help: "Submitted bids not yet seen on chain",
	})
	reconciledCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionhouse_pending_bids_confirmed_total",
		Help: "Pending bids removed from the ledger after confirmation",
	})
)

// Settler settles matured auctions on behalf of a wallet.
type Settler interface {
	SettleMatured(context.Context, *wallet.Session, []*auction.Box) []assembler.SettleResult
}

// Tracker owns the decoded auction listing and reconciles the pending bid
// ledger against it.
type Tracker struct {
	codec   *registers.Codec
	ledger  ledger.Store
	settler Settler
	session *wallet.Session
	logger  logrus.FieldLogger

	// box id -> height a settlement was submitted at
	settled     *lru.Cache
	settleRetry int64

	mu        sync.RWMutex
	boxes     []*auction.Box
	height    int64
	sortKey   auction.SortKey
	refreshed bool
}

type Option func(*Tracker) error

func WithSettler(s Settler) Option {
	return func(t *Tracker) error {
		t.settler = s
		return nil
	}
}

func WithSession(s *wallet.Session) Option {
	return func(t *Tracker) error {
		t.session = s
		return nil
	}
}

func WithSortKey(k auction.SortKey) Option {
	return func(t *Tracker) error {
		if !k.Valid() {
			return errors.Errorf("unknown sort key %d", k)
		}
		t.sortKey = k
		return nil
	}
}

// WithSettleRetry sets how many blocks a matured box may stay listed after
// its settlement was submitted before another settlement is attempted.
func WithSettleRetry(blocks int64) Option {
	return func(t *Tracker) error {
		if blocks <= 0 {
			return errors.New("settle retry must be at least one block")
		}
		t.settleRetry = blocks
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tracker) error {
		t.logger = l
		return nil
	}
}

func NewTracker(codec *registers.Codec, store ledger.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		codec:       codec,
		ledger:      store,
		session:     &wallet.Session{},
		logger:      logrus.StandardLogger(),
		settleRetry: DefaultSettleRetryBlocks,
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	if t.codec == nil {
		return nil, errors.New("tracker requires a register codec")
	}
	if t.ledger == nil {
		t.ledger = ledger.NewMemStore()
	}

	settled, err := lru.New(settledCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "initing settled cache")
	}
	t.settled = settled

	return t, nil
}

// Refresh replaces the current listing with rawBoxes decoded at height.
// Boxes with malformed registers are left out; any other decode failure
// fails the refresh and keeps the previous listing. Matured auctions are
// handed to the settler when a wallet is configured; the first refresh runs
// a second settlement pass over the boxes that failed the first time.
func (t *Tracker) Refresh(ctx context.Context, rawBoxes []*tx.Box, height int64) ([]*auction.Box, error) {
	boxes, err := t.codec.DecodeAll(ctx, rawBoxes, height)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	auction.Sort(boxes, t.sortKey)
	t.boxes = boxes
	t.height = height
	first := !t.refreshed
	t.refreshed = true
	t.mu.Unlock()

	activeAuctionsGauge.Set(float64(len(boxes)))

	if err := t.reconcile(ctx, rawBoxes, boxes); err != nil {
		t.logger.WithError(err).Warn("reconciling pending bids")
	}

	if t.settler != nil && t.session.Configured() {
		t.settle(ctx, boxes, height, first)
	}

	return copyBoxes(boxes), nil
}

func (t *Tracker) settle(ctx context.Context, boxes []*auction.Box, height int64, first bool) {
	t.submitSettlements(ctx, t.unsettled(boxes, height), height)

	if !first {
		return
	}

	if retry := t.unsettled(boxes, height); len(retry) > 0 {
		t.logger.WithField("count", len(retry)).Debug("finalize scan")
		t.submitSettlements(ctx, retry, height)
	}
}

func (t *Tracker) submitSettlements(ctx context.Context, boxes []*auction.Box, height int64) {
	if len(boxes) == 0 {
		return
	}

	for _, r := range t.settler.SettleMatured(ctx, t.session, boxes) {
		if r.OK() {
			t.settled.Add(r.BoxID, height)
		}
	}
}

// unsettled returns the matured boxes without a settlement submitted in the
// last settleRetry blocks.
func (t *Tracker) unsettled(boxes []*auction.Box, height int64) []*auction.Box {
	var out []*auction.Box
	for _, b := range boxes {
		if !b.Matured() {
			continue
		}
		if at, ok := t.settled.Get(b.ID); ok && height-at.(int64) < t.settleRetry {
			continue
		}
		out = append(out, b)
	}
	return out
}

// reconcile drops pending entries that the listing shows as resolved. A bid
// is resolved when the box it spent is gone, or the box now carries the bid
// amount with the session wallet as bidder. An opened auction is resolved
// once its box is listed. Boxes that are listed but undecodable still count
// as present.
func (t *Tracker) reconcile(ctx context.Context, rawBoxes []*tx.Box, boxes []*auction.Box) error {
	pending, err := t.ledger.List(ctx)
	if err != nil {
		return errors.Wrap(err, "listing pending bids")
	}

	listed := make(map[string]bool, len(rawBoxes))
	for _, b := range rawBoxes {
		listed[b.ID] = true
	}

	decoded := make(map[string]*auction.Box, len(boxes))
	for _, b := range boxes {
		decoded[b.ID] = b
	}

	remaining := len(pending)
	for _, p := range pending {
		if p.Status != ledger.StatusPendingMining {
			continue
		}

		if !t.resolved(p, listed[p.BoxID], decoded[p.BoxID]) {
			continue
		}

		p.Status = ledger.StatusConfirmed
		if err := t.ledger.Delete(ctx, p.BoxID); err != nil {
			return errors.Wrapf(err, "removing pending bid for %s", p.BoxID)
		}

		remaining--
		reconciledCounter.Inc()
		t.logger.WithFields(logrus.Fields{
			"box":    p.BoxID,
			"tx":     p.TxID,
			"status": p.Status,
			"open":   p.IsFirst,
		}).Info("bid confirmed")
	}

	pendingBidsGauge.Set(float64(remaining))

	return nil
}

func (t *Tracker) resolved(p *ledger.PendingBid, listed bool, b *auction.Box) bool {
	if p.IsFirst {
		return listed
	}
	if !listed {
		return true
	}
	return b != nil && b.Value == p.Amount && b.Bidder == t.session.Address
}

// Auctions returns the last refreshed listing in the current sort order.
func (t *Tracker) Auctions() []*auction.Box {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return copyBoxes(t.boxes)
}

// Auction looks up a box in the current listing.
func (t *Tracker) Auction(id string) (*auction.Box, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, b := range t.boxes {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

func (t *Tracker) Height() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.height
}

func (t *Tracker) SortKey() auction.SortKey {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.sortKey
}

// SetSortKey changes the order and re-sorts the current listing.
func (t *Tracker) SetSortKey(k auction.SortKey) error {
	if !k.Valid() {
		return errors.Errorf("unknown sort key %d", k)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sortKey = k
	auction.Sort(t.boxes, k)

	return nil
}

// Pending lists the bids still waiting to be mined, oldest first.
func (t *Tracker) Pending(ctx context.Context) ([]*ledger.PendingBid, error) {
	return t.ledger.List(ctx)
}

func (t *Tracker) PendingFor(ctx context.Context, boxID string) (*ledger.PendingBid, error) {
	return t.ledger.Get(ctx, boxID)
}

func copyBoxes(boxes []*auction.Box) []*auction.Box {
	out := make([]*auction.Box, len(boxes))
	copy(out, boxes)
	return out
}
