package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/pkg/auction"
	"github.com/tcfw/auctionhouse/pkg/gateway"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultInterval   = 5 * time.Second
	DefaultForceAfter = 40 * time.Second

	// StatusExplorerDown is shown while the poller waits to retry after a
	// failed refresh.
	StatusExplorerDown = "Error connecting to the explorer. Will try again..."
)

var (
	refreshCounterVec = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auctionhouse_refresh_total",
			Help: "Refresh cycles by outcome",
		},
		[]string{"result"},
	)
	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auctionhouse_refresh_duration_seconds",
		Help:    "Duration of a full refresh cycle",
		Buckets: prometheus.DefBuckets,
	})
)

// RetryPolicy holds the two fixed delays used after a failed refresh.
type RetryPolicy struct {
	Short time.Duration
	Long  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Short: 4 * time.Second, Long: 20 * time.Second}

// Delay is Short when the failing refresh was forced and Long otherwise.
func (r RetryPolicy) Delay(forced bool) time.Duration {
	if forced {
		return r.Short
	}
	return r.Long
}

// Poller drives periodic refreshes of a Tracker from the gateway.
type Poller struct {
	gw      gateway.Gateway
	tracker *Tracker
	logger  logrus.FieldLogger

	interval   time.Duration
	forceAfter time.Duration
	retry      RetryPolicy

	flight singleflight.Group
	force  chan bool
	wg     sync.WaitGroup

	mu          sync.Mutex
	lastUpdated time.Duration
	running     bool
	cancel      context.CancelFunc
	retryTimer  *time.Timer
	status      string
	lastErr     error
}

type PollerOption func(*Poller) error

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		p.interval = d
		return nil
	}
}

func WithForceAfter(d time.Duration) PollerOption {
	return func(p *Poller) error {
		p.forceAfter = d
		return nil
	}
}

func WithRetryPolicy(r RetryPolicy) PollerOption {
	return func(p *Poller) error {
		if r.Short <= 0 || r.Long <= 0 {
			return errors.New("retry delays must be positive")
		}
		p.retry = r
		return nil
	}
}

func WithPollerLogger(l logrus.FieldLogger) PollerOption {
	return func(p *Poller) error {
		p.logger = l
		return nil
	}
}

func NewPoller(gw gateway.Gateway, t *Tracker, opts ...PollerOption) (*Poller, error) {
	p := &Poller{
		gw:         gw,
		tracker:    t,
		logger:     logrus.StandardLogger(),
		interval:   DefaultInterval,
		forceAfter: DefaultForceAfter,
		retry:      DefaultRetryPolicy,
		force:      make(chan bool, 1),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run refreshes immediately and then whenever enough ticks have passed,
// until ctx is done. Refreshes scheduled after a failure are forced. An in-flight refresh is cancelled before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.trigger(ctx, true)

	for {
		select {
		case <-ctx.Done():
			p.stop()
			return ctx.Err()
		case <-ticker.C:
			if p.due() {
				p.trigger(ctx, false)
			}
		case forced := <-p.force:
			p.trigger(ctx, forced)
		}
	}
}

// RefreshNow runs a refresh cycle and waits for it. Concurrent callers
// share the same cycle.
func (p *Poller) RefreshNow(ctx context.Context) ([]*auction.Box, error) {
	v, err, _ := p.flight.Do("refresh", func() (interface{}, error) {
		return p.cycle(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*auction.Box), nil
}

// Status is the last transient message for display, empty when the last
// refresh succeeded.
func (p *Poller) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}

// LastError is the error of the last failed refresh, nil after a success.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastErr
}

// due advances the soft counter by one tick and reports whether a forced
// refresh is owed.
func (p *Poller) due() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastUpdated += p.interval
	return p.lastUpdated >= p.forceAfter
}

func (p *Poller) trigger(ctx context.Context, forced bool) {
	p.mu.Lock()
	p.lastUpdated = 0
	if p.running {
		p.mu.Unlock()
		p.logger.Debug("refresh already in flight, skipping")
		return
	}

	cctx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer cancel()

		_, err := p.RefreshNow(cctx)

		p.mu.Lock()
		defer p.mu.Unlock()

		p.running = false
		p.cancel = nil

		if err == nil {
			p.status = ""
			p.lastErr = nil
			return
		}

		if cctx.Err() != nil {
			return
		}

		delay := p.retry.Delay(forced)
		p.status = StatusExplorerDown
		p.lastErr = err
		p.logger.WithError(err).WithField("retry", delay).Warn("refresh failed")

		if p.retryTimer != nil {
			p.retryTimer.Stop()
		}
		p.retryTimer = time.AfterFunc(delay, func() {
			select {
			case p.force <- true:
			default:
			}
		})
	}()
}

func (p *Poller) stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.retryTimer != nil {
		p.retryTimer.Stop()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) cycle(ctx context.Context) (boxes []*auction.Box, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		refreshCounterVec.WithLabelValues(result).Inc()
		refreshDuration.Observe(time.Since(start).Seconds())
	}()

	height, err := p.gw.Height(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching height")
	}

	raw, err := p.gw.ActiveAuctionBoxes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching auction boxes")
	}

	return p.tracker.Refresh(ctx, raw, height)
}
