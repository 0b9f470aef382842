package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/catalog"
	"github.com/malusev998/currency-board/rates"
	"github.com/malusev998/currency-board/selection"
	"github.com/malusev998/currency-board/services"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	seedTimeout         = 2 * time.Second
)

var (
	ErrClosed      = errors.New("session is closed")
	ErrNoRefresher = errors.New("session needs a refresher")
)

type (
	// Seeder returns the last retained snapshot for a base.
	Seeder interface {
		Latest(ctx context.Context, base currency.Code) (currency.Snapshot, error)
	}

	Config struct {
		Catalog      *catalog.Catalog
		Refresher    currency.Refresher
		Seeder       Seeder
		Codes        []currency.Code
		Focal        currency.Code
		Amount       string
		MaxSelection int
		Interval     time.Duration
		FetchTimeout time.Duration
		Logger       log.Logger
	}

	// Session is one live board. All state changes run on a single loop
	// goroutine; public methods hand work to it and wait for the result.
	Session struct {
		ID string

		catalog   *catalog.Catalog
		refresher currency.Refresher
		set       *selection.Set
		validate  func(*selection.Set) error
		focal     selection.Focal
		store     *rates.Store
		scheduler *Scheduler
		timeout   time.Duration
		logger    log.Logger

		board       atomic.Pointer[services.Board]
		actions     chan func()
		subscribers map[int]chan services.Board
		nextID      int

		ctx     context.Context
		cancel  context.CancelFunc
		done    chan struct{}
		fetches sync.WaitGroup
	}
)

func (c Config) withDefaults() Config {
	if c.Catalog == nil {
		c.Catalog = catalog.Default()
	}

	if len(c.Codes) == 0 {
		c.Codes = selection.DefaultCodes
	}

	if c.Amount == "" {
		c.Amount = selection.DefaultAmount
	}

	if c.MaxSelection <= 0 {
		c.MaxSelection = selection.DefaultMax
	}

	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}

	if c.Logger == nil {
		c.Logger = log.NewNopLogger()
	}

	return c
}

// New starts a session and its first refresh. The session runs until ctx is
// cancelled or Close is called.
func New(ctx context.Context, config Config) (*Session, error) {
	config = config.withDefaults()

	if config.Refresher == nil {
		return nil, ErrNoRefresher
	}

	set, err := selection.New(config.MaxSelection, config.Codes...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()

	s := &Session{
		ID:          id,
		catalog:     config.Catalog,
		refresher:   config.Refresher,
		set:         set,
		validate:    (*selection.Set).Validate,
		focal:       selection.NewFocal(set, config.Focal, config.Amount),
		store:       rates.NewStore(set.Base()),
		scheduler:   NewScheduler(config.Interval),
		timeout:     config.FetchTimeout,
		logger:      log.With(config.Logger, "component", "session", "session", id),
		actions:     make(chan func()),
		subscribers: make(map[int]chan services.Board),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	if config.Seeder != nil {
		s.seed(config.Seeder)
	}

	s.refresh()
	s.publish()

	level.Debug(s.logger).Log("msg", "session started", "base", set.Base(), "interval", s.scheduler.Interval())

	go s.run()

	return s, nil
}

func (s *Session) seed(seeder Seeder) {
	ctx, cancel := context.WithTimeout(s.ctx, seedTimeout)
	defer cancel()

	snapshot, err := seeder.Latest(ctx, s.set.Base())
	if err != nil {
		level.Debug(s.logger).Log("msg", "no retained rates", "base", s.set.Base(), "err", err)
		return
	}

	if s.store.Seed(snapshot) {
		level.Info(s.logger).Log("msg", "seeded board with retained rates", "base", snapshot.Base, "fetchedAt", snapshot.FetchedAt)
	}
}

func (s *Session) run() {
	defer s.teardown()

	for {
		select {
		case <-s.ctx.Done():
			return
		case action := <-s.actions:
			action()
		case <-s.scheduler.C():
			s.refresh()
			s.publish()
		}
	}
}

func (s *Session) teardown() {
	s.scheduler.Stop()

	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}

	close(s.done)
	level.Debug(s.logger).Log("msg", "session closed")
}

// post hands f to the loop without waiting for it to run.
func (s *Session) post(f func()) bool {
	select {
	case s.actions <- f:
		return true
	case <-s.done:
		return false
	}
}

// do runs f on the loop and waits for it.
func (s *Session) do(f func()) error {
	finished := make(chan struct{})

	if !s.post(func() {
		defer close(finished)
		f()
	}) {
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// refresh issues a fetch tagged with the current base. The result is
// resolved on the loop; a result for a base that changed meanwhile is dropped.
func (s *Session) refresh() {
	base := s.set.Base()
	targets := s.set.Targets()
	ticket := s.store.Begin(base)

	if len(targets) == 0 {
		s.store.Resolve(ticket, currency.Rates{}, nil)
		return
	}

	s.fetches.Add(1)

	go func() {
		defer s.fetches.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		snapshot, err := s.refresher.Refresh(ctx, base, targets)

		s.post(func() {
			if err != nil {
				level.Warn(s.logger).Log("msg", "refresh failed", "base", base, "err", err)
			}

			if !s.store.Resolve(ticket, snapshot.Rates, err) {
				level.Debug(s.logger).Log("msg", "discarded rates for previous base", "base", base)
			}

			s.publish()
		})
	}()
}

func (s *Session) publish() {
	board := services.Derive(s.catalog, s.set, s.focal, s.store.Table(), s.store.Loading())
	s.board.Store(&board)

	for _, ch := range s.subscribers {
		select {
		case ch <- board:
		default:
			// Latest wins: replace the board the subscriber has not read yet.
			select {
			case <-ch:
			default:
			}

			select {
			case ch <- board:
			default:
			}
		}
	}
}

func (s *Session) apply(change selection.Change) {
	if change == selection.None {
		return
	}

	if change.Has(selection.Base) {
		s.store.Rebase(s.set.Base())
	}

	s.focal.Reconcile(s.set)

	if change.NeedsRefresh() {
		s.refresh()
		s.scheduler.Reset()
	}

	s.publish()
}

func (s *Session) mutate(f func() selection.Change) bool {
	var change selection.Change

	if err := s.do(func() {
		before := s.set.Clone()
		change = f()

		if err := s.validate(s.set); err != nil {
			level.Error(s.logger).Log("msg", "selection change reverted", "codes", currency.JoinCodes(s.set.Codes()), "err", err)
			s.set = before
			change = selection.None

			return
		}

		s.apply(change)
	}); err != nil {
		return false
	}

	return change != selection.None
}

// Add selects a currency known to the catalog.
func (s *Session) Add(code currency.Code) bool {
	code, err := currency.Normalize(code.String())
	if err != nil || !s.catalog.Contains(code) {
		return false
	}

	return s.mutate(func() selection.Change {
		return s.set.Add(code)
	})
}

func (s *Session) Remove(code currency.Code) bool {
	code, err := currency.Normalize(code.String())
	if err != nil {
		return false
	}

	return s.mutate(func() selection.Change {
		return s.set.Remove(code)
	})
}

func (s *Session) Reorder(from, to int) bool {
	return s.mutate(func() selection.Change {
		return s.set.Reorder(from, to)
	})
}

// Focus switches the currency the amount is entered in. No fetch is needed.
func (s *Session) Focus(code currency.Code) bool {
	code, err := currency.Normalize(code.String())
	if err != nil {
		return false
	}

	var ok bool

	if err := s.do(func() {
		if ok = s.focal.Focus(s.set, code); ok {
			s.publish()
		}
	}); err != nil {
		return false
	}

	return ok
}

func (s *Session) SetAmount(amount string) error {
	return s.do(func() {
		s.focal.Amount = amount
		s.publish()
	})
}

// Refresh fetches rates now and restarts the interval.
func (s *Session) Refresh() error {
	return s.do(func() {
		s.refresh()
		s.scheduler.Reset()
		s.publish()
	})
}

// Board returns the last derived board. Safe to call from any goroutine.
func (s *Session) Board() services.Board {
	return *s.board.Load()
}

// Subscribe returns a channel receiving the board after every change,
// starting with the current one. Slow readers only see the latest board.
func (s *Session) Subscribe() (<-chan services.Board, func()) {
	ch := make(chan services.Board, 1)
	id := -1

	err := s.do(func() {
		id = s.nextID
		s.nextID++
		s.subscribers[id] = ch
		ch <- *s.board.Load()
	})
	if err != nil {
		close(ch)
		return ch, func() {}
	}

	unsubscribe := func() {
		_ = s.do(func() {
			if _, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(ch)
			}
		})
	}

	return ch, unsubscribe
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the loop and the timer and waits for fetches in flight.
func (s *Session) Close() {
	s.cancel()
	<-s.done
	s.fetches.Wait()
}
