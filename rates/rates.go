package rates

import (
	"sync"
	"sync/atomic"
	"time"

	currency "github.com/malusev998/currency-board"
)

type (
	// Table is an immutable snapshot of the rates quoted against Base.
	// It is replaced as a whole and never edited in place.
	Table struct {
		Base      currency.Code
		Rates     currency.Rates
		FetchedAt time.Time
		// Unavailable is set when the last refresh failed completely.
		Unavailable bool
		// Stale marks rates loaded from storage, not yet confirmed by a live fetch.
		Stale bool
	}

	// Ticket tags a refresh with the base it was issued for.
	Ticket struct {
		Base currency.Code
		seq  uint64
	}

	Store struct {
		table    atomic.Pointer[Table]
		lock     sync.Mutex
		seq      uint64
		inFlight map[uint64]currency.Code
	}
)

func (t *Table) Get(code currency.Code) (float64, bool) {
	if t == nil {
		return 0, false
	}

	return t.Rates.Get(code)
}

func (t *Table) Empty() bool {
	return t == nil || len(t.Rates) == 0
}

func NewStore(base currency.Code) *Store {
	s := &Store{inFlight: make(map[uint64]currency.Code)}
	s.table.Store(&Table{Base: base, Rates: currency.Rates{}})

	return s
}

// Table returns the current table; callers must not modify it.
func (s *Store) Table() *Table {
	return s.table.Load()
}

func (s *Store) Base() currency.Code {
	return s.table.Load().Base
}

// Begin registers an in-flight refresh for base.
func (s *Store) Begin(base currency.Code) Ticket {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.seq++
	s.inFlight[s.seq] = base

	return Ticket{Base: base, seq: s.seq}
}

// Resolve installs the result of a refresh. Results for a base that is no
// longer current are discarded and Resolve reports false. A failed refresh
// leaves an empty table flagged Unavailable.
func (s *Store) Resolve(ticket Ticket, rates currency.Rates, err error) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inFlight, ticket.seq)

	if ticket.Base != s.table.Load().Base {
		return false
	}

	table := &Table{
		Base:      ticket.Base,
		Rates:     currency.Rates{},
		FetchedAt: time.Now(),
	}

	if err != nil {
		table.Unavailable = true
	} else {
		table.Rates = rates.Clone()
	}

	s.table.Store(table)

	return true
}

// Rebase switches to a new base with an empty table. Refreshes already in
// flight for the old base will be discarded by Resolve.
func (s *Store) Rebase(base currency.Code) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.table.Load().Base == base {
		return
	}

	s.table.Store(&Table{Base: base, Rates: currency.Rates{}})
}

// Seed installs a previously retained snapshot when it matches the current
// base and nothing live has been resolved yet.
func (s *Store) Seed(snapshot currency.Snapshot) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	current := s.table.Load()

	if snapshot.Base != current.Base || !current.FetchedAt.IsZero() {
		return false
	}

	s.table.Store(&Table{
		Base:      snapshot.Base,
		Rates:     snapshot.Rates.Clone(),
		FetchedAt: snapshot.FetchedAt,
		Stale:     true,
	})

	return true
}

// Loading reports whether a refresh for the current base is in flight.
func (s *Store) Loading() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	base := s.table.Load().Base

	for _, b := range s.inFlight {
		if b == base {
			return true
		}
	}

	return false
}
