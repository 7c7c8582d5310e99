package assembler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/coin"
	"github.com/tcfw/auctionhouse/pkg/gateway"
	"github.com/tcfw/auctionhouse/pkg/ledger"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/tcfw/auctionhouse/pkg/wallet"
	"golang.org/x/sync/errgroup"
)

const (
	settleParallelism = 4
)

var txCounterVec = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auctionhouse_transactions_total",
		Help: "Transactions assembled, by intent and outcome",
	},
	[]string{"intent", "result"},
)

func observe(intent string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	txCounterVec.WithLabelValues(intent, result).Inc()
}

type Assembler struct {
	gw       gateway.Gateway
	codec    *registers.Codec
	selector *coin.Selector
	ledger   ledger.Store
	params   Params
	logger   logrus.FieldLogger
	now      func() time.Time
}

type Option func(*Assembler) error

func WithParams(p Params) Option {
	return func(a *Assembler) error {
		if p.AuctionAddress == "" {
			return errors.New("auction address missing")
		}
		if p.Fee <= 0 {
			return errors.New("fee must be positive")
		}
		a.params = p
		return nil
	}
}

func WithCodec(c *registers.Codec) Option {
	return func(a *Assembler) error {
		a.codec = c
		return nil
	}
}

func WithSelector(s *coin.Selector) Option {
	return func(a *Assembler) error {
		a.selector = s
		return nil
	}
}

func WithLedger(l ledger.Store) Option {
	return func(a *Assembler) error {
		a.ledger = l
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Assembler) error {
		a.logger = l
		return nil
	}
}

func NewAssembler(gw gateway.Gateway, opts ...Option) (*Assembler, error) {
	a := &Assembler{
		gw:     gw,
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.params.AuctionAddress == "" {
		return nil, errors.New("assembler params not set")
	}
	if a.codec == nil {
		a.codec = registers.NewCodec(gw, registers.WithLogger(a.logger))
	}
	if a.selector == nil {
		a.selector = coin.NewSelector(gw, a.params.Fee, a.logger)
	}
	if a.ledger == nil {
		a.ledger = ledger.NewMemStore()
	}

	return a, nil
}

func (a *Assembler) Params() Params {
	return a.params
}

func (a *Assembler) Ledger() ledger.Store {
	return a.ledger
}

// Open submits a new auction staking the given asset.
func (a *Assembler) Open(ctx context.Context, s *wallet.Session, o *OpenParams) (signed *tx.Signed, err error) {
	defer func() { observe("open", err) }()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	regs, err := a.codec.Encode(ctx, o.Terms(s.Address))
	if err != nil {
		return nil, errors.Wrap(err, "encoding registers")
	}

	req := BuildOpen(a.params, o, regs)

	reqHash, err := ledger.Fingerprint(req)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckDuplicateRequest(ctx, a.ledger, reqHash); err != nil {
		return nil, err
	}

	signed, err = a.submit(ctx, s, req)
	if err != nil {
		return nil, err
	}
	if len(signed.Outputs) == 0 || signed.Outputs[0].ID == "" {
		return signed, errors.New("signed open transaction has no auction output")
	}

	// the auction box is the first output and keeps its id once mined
	a.record(ctx, &ledger.PendingBid{
		BoxID:   signed.Outputs[0].ID,
		TxID:    signed.ID,
		Token:   tx.Asset{TokenID: o.AssetID, Amount: o.AssetAmount},
		Amount:  o.InitialValue,
		IsFirst: true,
		Bidder:  s.Address,
		Tx:      signed.Raw,
	}, req)

	return signed, nil
}

// Bid replaces box with a higher bid from the session wallet.
func (a *Assembler) Bid(ctx context.Context, s *wallet.Session, box *auction.Box, amount int64) (signed *tx.Signed, err error) {
	defer func() { observe("bid", err) }()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if box.Matured() {
		return nil, ErrAuctionEnded
	}
	if a.params.EnforceMinStep && amount < box.NextMinimum() {
		return nil, errors.Wrapf(ErrBidTooLow, "bid %d, minimum %d", amount, box.NextMinimum())
	}
	if amount <= box.Value {
		return nil, errors.Wrapf(ErrBidTooLow, "bid %d does not exceed %d", amount, box.Value)
	}

	if err := ledger.CheckDuplicate(ctx, a.ledger, box.ID, amount, nil); err != nil {
		return nil, err
	}

	sel, err := a.selector.Select(ctx, s, amount)
	if err != nil {
		return nil, errors.Wrap(err, "selecting coins")
	}

	bidderReg, err := a.codec.EncodeBidder(ctx, s.Address)
	if err != nil {
		return nil, err
	}

	req, err := BuildBid(a.params, box, s.Address, bidderReg, amount, sel)
	if err != nil {
		return nil, errors.Wrap(err, "building bid")
	}

	req.RawInputs, err = a.rawInputs(ctx, append(sel.IDs(), box.ID))
	if err != nil {
		return nil, err
	}

	signed, err = a.submit(ctx, s, req)
	if err != nil {
		return nil, err
	}

	token := tx.Asset{}
	if len(box.Assets) > 0 {
		token = box.Assets[0]
	}

	a.record(ctx, &ledger.PendingBid{
		BoxID:  box.ID,
		TxID:   signed.ID,
		Token:  token,
		Amount: amount,
		Bidder: s.Address,
		Tx:     signed.Raw,
	}, req)

	return signed, nil
}

// SettleResult is the outcome of one settlement attempt. Failures are
// expected: the box may have been spent already or the node may be down,
// and settlement is retried on the next scan.
type SettleResult struct {
	BoxID string
	TxID  string
	Err   error
}

func (r SettleResult) OK() bool {
	return r.Err == nil
}

// Settle pays out a matured auction: the winner receives the asset and the
// seller the remaining value.
func (a *Assembler) Settle(ctx context.Context, s *wallet.Session, box *auction.Box) (res SettleResult) {
	res.BoxID = box.ID
	defer func() { observe("settle", res.Err) }()

	if err := s.Validate(); err != nil {
		res.Err = err
		return
	}

	req, err := BuildSettle(a.params, box)
	if err != nil {
		res.Err = err
		return
	}

	raw, err := a.gw.RawBox(ctx, box.ID)
	if err != nil {
		res.Err = errors.Wrap(err, "fetching raw box")
		return
	}
	req.RawInputs = []string{raw}

	signed, err := a.submit(ctx, s, req)
	if err != nil {
		res.Err = err
		return
	}

	res.TxID = signed.ID
	return
}

// SettleMatured attempts settlement of every matured box. Results are in
// the order of the matured boxes in the input.
func (a *Assembler) SettleMatured(ctx context.Context, s *wallet.Session, boxes []*auction.Box) []SettleResult {
	if !s.Configured() {
		return nil
	}

	matured := make([]*auction.Box, 0, len(boxes))
	for _, b := range boxes {
		if b.Matured() {
			matured = append(matured, b)
		}
	}

	results := make([]SettleResult, len(matured))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settleParallelism)

	for i, b := range matured {
		i, b := i, b
		g.Go(func() error {
			results[i] = a.Settle(gctx, s, b)
			return nil
		})
	}
	g.Wait()

	for _, r := range results {
		l := a.logger.WithField("box", r.BoxID)
		if r.OK() {
			l.WithField("tx", r.TxID).Info("settled auction")
		} else {
			l.WithError(r.Err).Warn("settlement failed, will retry next scan")
		}
	}

	return results
}

func (a *Assembler) rawInputs(ctx context.Context, ids []string) ([]string, error) {
	raws := make([]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			raw, err := a.gw.RawBox(gctx, id)
			if err != nil {
				return errors.Wrapf(err, "fetching raw box %s", id)
			}
			raws[i] = raw
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return raws, nil
}

func (a *Assembler) submit(ctx context.Context, s *wallet.Session, req *tx.Request) (*tx.Signed, error) {
	signed, err := a.gw.Generate(ctx, s, req)
	if err != nil {
		return nil, errors.Wrap(err, "generating transaction")
	}

	if _, err := a.gw.Send(ctx, signed); err != nil {
		return nil, errors.Wrap(err, "sending transaction")
	}

	return signed, nil
}

func (a *Assembler) record(ctx context.Context, b *ledger.PendingBid, req *tx.Request) {
	b.Status = ledger.StatusPendingMining
	b.CreatedAt = a.now().Unix()

	if h, err := ledger.Fingerprint(req); err == nil {
		b.RequestHash = h
	}

	if err := a.ledger.Put(ctx, b); err != nil {
		a.logger.WithError(err).WithField("box", b.BoxID).Warn("recording pending bid")
	}
}

// Rebroadcast sends the stored transaction of a pending bid again, for when
// the first broadcast never reached the mempool.
func (a *Assembler) Rebroadcast(ctx context.Context, boxID string) (string, error) {
	p, err := a.ledger.Get(ctx, boxID)
	if err != nil {
		return "", errors.Wrapf(err, "pending bid for %s", boxID)
	}

	if p.Status != ledger.StatusPendingMining {
		return "", errors.Errorf("bid for %s is %s", boxID, p.Status)
	}
	if len(p.Tx) == 0 {
		return "", errors.Errorf("no transaction stored for %s", boxID)
	}

	id, err := a.gw.Send(ctx, &tx.Signed{ID: p.TxID, Raw: p.Tx})
	if err != nil {
		return "", errors.Wrap(err, "sending transaction")
	}

	a.logger.WithField("box", boxID).WithField("tx", id).Info("rebroadcast pending bid")

	return id, nil
}
