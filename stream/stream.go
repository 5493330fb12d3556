// Package stream keeps a portfolio live.
//
// A [Stream] is seeded once with the positions of a portfolio. While it has
// subscribers it ticks on a fixed interval: each tick moves the prices of the
// previous tick through a [Quoter], valuates the result and broadcasts one
// immutable [portfolio.Snapshot] to every subscriber, in subscription order.
//
// The first snapshot (tick 0) is the seed itself, published as soon as the
// stream is both seeded and subscribed to. Late subscribers first receive the
// most recent snapshot. When the last subscriber cancels, the ticker is
// released and the stream is stopped for good: a new Stream must be created
// and seeded to start over.
//
// Subscriber callbacks run synchronously on the stream's goroutine and must
// not block. They may cancel subscriptions or close the stream, but must not
// subscribe.
package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saudanwar3/portfolio"
)

// DefaultInterval is the default time between two ticks.
const DefaultInterval = time.Second

// Quoter produces the next prices of a set of positions.
//
// quote.Simulator is the Quoter used outside tests.
type Quoter interface {
	NextPrices(current []portfolio.Position) []portfolio.Position
}

// Fetcher retrieves the portfolio used as a seed.
type Fetcher interface {
	Fetch(ctx context.Context) (portfolio.Portfolio, error)
}

// Stream is a live portfolio.
type Stream struct {
	quoter    Quoter
	interval  time.Duration
	now       func() time.Time
	newTicker TickerFunc
	metrics   *Metrics
	logger    zerolog.Logger

	// deliver serializes deliveries, so that subscribers receive updates in
	// tick order, replays included. It is always acquired before mu.
	deliver sync.Mutex

	mu        sync.Mutex
	state     State
	seeded    bool
	err       error
	positions []portfolio.Position
	latest    portfolio.Snapshot
	hasLatest bool
	tick      uint64
	subs      []*Subscription
	// delivering is set while a broadcast runs. A Close meanwhile leaves
	// its Stopped update to that broadcast.
	delivering  bool
	stopPending []*Subscription
	hasPending  bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Stream.
type Option func(*Stream)

// WithInterval sets the time between two ticks. Non positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Stream) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock sets the function timestamping snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Stream) { s.now = now }
}

// WithTicker sets the factory of the ticker driving the stream.
func WithTicker(f TickerFunc) Option {
	return func(s *Stream) { s.newTicker = f }
}

// WithMetrics sets the collectors updated by the stream.
func WithMetrics(m *Metrics) Option {
	return func(s *Stream) { s.metrics = m }
}

// WithLogger sets the logger of the stream.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Stream) { s.logger = l }
}

// New returns an Idle stream moving prices with q.
func New(q Quoter, opts ...Option) *Stream {
	s := &Stream{
		quoter:    q,
		interval:  DefaultInterval,
		now:       time.Now,
		newTicker: NewTimeTicker,
		logger:    log.Logger,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "stream").Logger()
	return s
}

// State returns the current state of the stream.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the reason the stream is Unavailable, nil otherwise.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Latest returns the most recent snapshot, if any.
func (s *Stream) Latest() (portfolio.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// Done is closed once the ticking goroutine has exited and released its ticker.
// It is never closed for a stream that never ran.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Load fetches the seed with f and seeds the stream, or sets the stream
// Unavailable if the fetch fails. It blocks during the fetch. It does not retry.
func (s *Stream) Load(ctx context.Context, f Fetcher) error {
	p, err := f.Fetch(ctx)
	if err != nil {
		if ferr := s.Fail(err); ferr != nil {
			return fmt.Errorf("cannot fetch portfolio: %w (%w)", err, ferr)
		}
		return fmt.Errorf("cannot fetch portfolio: %w", err)
	}
	return s.Seed(p.Seed())
}

// Seed sets the initial positions of an Idle stream. The stream starts
// ticking as soon as it has a subscriber.
//
// An invalid seed makes the stream Unavailable.
func (s *Stream) Seed(positions []portfolio.Position) error {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if err := s.checkSeedableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := portfolio.ValidateSeed(positions); err != nil {
		update, subs := s.failLocked(err)
		s.mu.Unlock()
		s.broadcast(subs, update)
		return err
	}
	s.seeded = true
	s.positions = make([]portfolio.Position, len(positions))
	copy(s.positions, positions)
	s.logger.Info().Int("positions", len(positions)).Msg("seeded")

	if len(s.subs) == 0 {
		s.mu.Unlock()
		return nil
	}
	update, subs := s.startLocked()
	s.mu.Unlock()
	s.broadcast(subs, update)
	return nil
}

// Fail marks an Idle, unseeded stream as Unavailable because no seed could
// be obtained. Subscribers receive an Unavailable update carrying err.
func (s *Stream) Fail(err error) error {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if cerr := s.checkSeedableLocked(); cerr != nil {
		s.mu.Unlock()
		return cerr
	}
	if err == nil {
		err = ErrUnavailable
	}
	update, subs := s.failLocked(err)
	s.mu.Unlock()
	s.broadcast(subs, update)
	return nil
}

// Subscribe attaches fn to the stream.
//
// fn first receives the current state of the stream: the latest snapshot of a
// Running stream, the error of an Unavailable one, or Idle while waiting for
// the seed. Subscribing to a seeded Idle stream starts it.
func (s *Stream) Subscribe(fn func(Update)) (*Subscription, error) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return nil, ErrStopped
	}
	sub := &Subscription{id: uuid.New(), fn: fn, stream: s}
	s.subs = append(s.subs, sub)
	s.metrics.setSubscribers(len(s.subs))
	s.logger.Debug().Str("subscription", sub.id.String()).Int("subscribers", len(s.subs)).Msg("subscribed")

	switch {
	case s.state == Unavailable:
		update := Update{State: Unavailable, Err: s.err}
		s.mu.Unlock()
		s.broadcast([]*Subscription{sub}, update)
	case s.state == Running && s.hasLatest:
		update := Update{State: Running, Snapshot: s.latest}
		s.mu.Unlock()
		s.broadcast([]*Subscription{sub}, update)
	case s.seeded:
		update, subs := s.startLocked()
		s.mu.Unlock()
		s.broadcast(subs, update)
	default:
		s.mu.Unlock()
		s.broadcast([]*Subscription{sub}, Update{State: Idle})
	}
	return sub, nil
}

// Close tears the stream down. Attached subscribers receive a Stopped update.
//
// Close may be called from a subscriber callback. When a delivery is in
// progress, it completes to every subscriber, followed by the Stopped
// update, and Close returns without waiting for it.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	subs := s.subs
	s.subs = nil
	s.stopLocked()
	if s.delivering {
		s.stopPending, s.hasPending = subs, true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// no delivery can start once Stopped, only one in progress can hold deliver.
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.broadcast(subs, Update{State: Stopped})
	cancelAll(subs)
}

func cancelAll(subs []*Subscription) {
	for _, sub := range subs {
		sub.canceled.Store(true)
	}
}

func (s *Stream) checkSeedableLocked() error {
	switch {
	case s.state == Stopped:
		return ErrStopped
	case s.state == Unavailable:
		return fmt.Errorf("%w: %w", ErrUnavailable, s.err)
	case s.seeded:
		return ErrSeeded
	}
	return nil
}

func (s *Stream) failLocked(err error) (Update, []*Subscription) {
	s.state = Unavailable
	s.err = err
	s.logger.Error().Err(err).Msg("no portfolio available")
	return Update{State: Unavailable, Err: err}, s.subscribersLocked()
}

// startLocked publishes tick 0 and starts the ticker.
func (s *Stream) startLocked() (Update, []*Subscription) {
	start := time.Now()
	snap := portfolio.NewSnapshot(0, s.now(), s.positions)
	s.latest, s.hasLatest = snap, true
	s.state = Running
	s.metrics.observeTick(time.Since(start).Seconds(), snap.Balance().NetValue, snap.Balance().PnL)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ticker := s.newTicker(s.interval)
	go s.run(ctx, ticker)

	s.logger.Info().Dur("interval", s.interval).Msg("started")
	return Update{State: Running, Snapshot: snap}, s.subscribersLocked()
}

// stopLocked moves the stream to Stopped and releases the ticker.
func (s *Stream) stopLocked() {
	s.state = Stopped
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.metrics.setSubscribers(0)
	s.logger.Info().Uint64("tick", s.tick).Msg("stopped")
}

func (s *Stream) subscribersLocked() []*Subscription {
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	return subs
}

func (s *Stream) run(ctx context.Context, ticker Ticker) {
	defer close(s.done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !s.step() {
				return
			}
		}
	}
}

// step computes and publishes the next tick. It returns false once the
// stream no longer runs.
func (s *Stream) step() bool {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return false
	}
	start := time.Now()
	s.positions = s.quoter.NextPrices(s.positions)
	s.tick++
	snap := portfolio.NewSnapshot(s.tick, s.now(), s.positions)
	s.latest = snap
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.broadcast(subs, Update{State: Running, Snapshot: snap})
	b := snap.Balance()
	s.metrics.observeTick(time.Since(start).Seconds(), b.NetValue, b.PnL)
	s.logger.Trace().Uint64("tick", snap.Tick()).Float64("net_value", b.NetValue).Float64("pnl", b.PnL).Msg("tick")
	return true
}

// broadcast sends update to subs in order, then the Stopped update of a
// Close called meanwhile. It must be called with deliver held.
func (s *Stream) broadcast(subs []*Subscription, update Update) {
	s.mu.Lock()
	s.delivering = true
	s.mu.Unlock()

	for _, sub := range subs {
		sub.send(update)
	}

	s.mu.Lock()
	s.delivering = false
	pending, ok := s.stopPending, s.hasPending
	s.stopPending, s.hasPending = nil, false
	s.mu.Unlock()
	if ok {
		for _, sub := range pending {
			sub.send(Update{State: Stopped})
		}
		cancelAll(pending)
	}
}

func (s *Stream) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.subs {
		if v == sub {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			break
		}
	}
	s.metrics.setSubscribers(len(s.subs))
	s.logger.Debug().Str("subscription", sub.id.String()).Int("subscribers", len(s.subs)).Msg("unsubscribed")
	if len(s.subs) == 0 && s.state == Running {
		s.stopLocked()
	}
}

// Subscription is the handle of a subscriber attached to a Stream.
type Subscription struct {
	id       uuid.UUID
	fn       func(Update)
	stream   *Stream
	canceled atomic.Bool
	once     sync.Once
}

// ID returns the unique identifier of the subscription.
func (sub *Subscription) ID() uuid.UUID { return sub.id }

// Cancel detaches the subscriber. It is safe to call more than once, and from
// within the subscriber's callback. A delivery already in progress completes,
// no other update is delivered afterwards.
//
// Cancelling the last subscription of a Running stream stops it.
func (sub *Subscription) Cancel() {
	sub.once.Do(func() {
		sub.canceled.Store(true)
		sub.stream.unsubscribe(sub)
	})
}

func (sub *Subscription) send(u Update) {
	if sub.canceled.Load() || sub.fn == nil {
		return
	}
	sub.fn(u)
}
