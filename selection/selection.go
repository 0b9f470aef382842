package selection

import (
	"errors"
	"fmt"

	currency "github.com/malusev998/currency-board"
)

type (
	// Change describes what a mutation did to the set.
	Change uint8

	// Set is the ordered list of selected currencies. The first element is
	// the base every rate is quoted against.
	Set struct {
		codes []currency.Code
		max   int
	}
)

const (
	Order Change = 1 << iota
	Membership
	Base
)

const (
	None       Change = 0
	DefaultMax        = 5
)

var (
	ErrEmptySelection = errors.New("selection must contain at least one currency")
	ErrTooMany        = errors.New("selection exceeds the maximum size")
	ErrDuplicate      = errors.New("selection contains a duplicate")
)

// DefaultCodes is the selection a new board starts with.
var DefaultCodes = []currency.Code{"CNY", "HKD", "USD"}

func (c Change) Has(flag Change) bool {
	return c&flag != 0
}

// NeedsRefresh reports whether rates must be fetched again after the change.
func (c Change) NeedsRefresh() bool {
	return c.Has(Membership) || c.Has(Base)
}

// New builds a set from codes, dropping duplicates and anything beyond max.
func New(max int, codes ...currency.Code) (*Set, error) {
	if max < 1 {
		max = DefaultMax
	}

	s := &Set{max: max, codes: make([]currency.Code, 0, max)}

	for _, code := range codes {
		if len(s.codes) == max {
			break
		}

		if !s.Contains(code) {
			s.codes = append(s.codes, code)
		}
	}

	if len(s.codes) == 0 {
		return nil, ErrEmptySelection
	}

	return s, nil
}

func (s *Set) Base() currency.Code {
	return s.codes[0]
}

// Targets returns every selected code except the base.
func (s *Set) Targets() []currency.Code {
	targets := make([]currency.Code, len(s.codes)-1)
	copy(targets, s.codes[1:])

	return targets
}

func (s *Set) Codes() []currency.Code {
	codes := make([]currency.Code, len(s.codes))
	copy(codes, s.codes)

	return codes
}

func (s *Set) Contains(code currency.Code) bool {
	return s.indexOf(code) >= 0
}

func (s *Set) Len() int {
	return len(s.codes)
}

func (s *Set) Max() int {
	return s.max
}

func (s *Set) indexOf(code currency.Code) int {
	for i, c := range s.codes {
		if c == code {
			return i
		}
	}

	return -1
}

// Add appends code. It is a no-op when the code is already selected or the
// set is full.
func (s *Set) Add(code currency.Code) Change {
	if s.Contains(code) || len(s.codes) >= s.max {
		return None
	}

	s.codes = append(s.codes, code)

	return Membership
}

// Remove drops code, keeping the order of the rest. The last remaining
// currency cannot be removed.
func (s *Set) Remove(code currency.Code) Change {
	idx := s.indexOf(code)

	if idx < 0 || len(s.codes) <= 1 {
		return None
	}

	s.codes = append(s.codes[:idx], s.codes[idx+1:]...)

	if idx == 0 {
		return Membership | Base
	}

	return Membership
}

// Reorder moves the element at from to position to, shifting the elements
// in between.
func (s *Set) Reorder(from, to int) Change {
	if from == to || from < 0 || to < 0 || from >= len(s.codes) || to >= len(s.codes) {
		return None
	}

	base := s.codes[0]
	moved := s.codes[from]

	if from < to {
		copy(s.codes[from:to], s.codes[from+1:to+1])
	} else {
		copy(s.codes[to+1:from+1], s.codes[to:from])
	}

	s.codes[to] = moved

	if s.codes[0] != base {
		return Order | Base
	}

	return Order
}

func (s *Set) Clone() *Set {
	return &Set{
		codes: append(make([]currency.Code, 0, s.max), s.codes...),
		max:   s.max,
	}
}

// Validate checks the size bounds and uniqueness of the set.
func (s *Set) Validate() error {
	if len(s.codes) == 0 {
		return ErrEmptySelection
	}

	if len(s.codes) > s.max {
		return fmt.Errorf("%w: %d > %d", ErrTooMany, len(s.codes), s.max)
	}

	seen := make(map[currency.Code]struct{}, len(s.codes))

	for _, c := range s.codes {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, c)
		}

		seen[c] = struct{}{}
	}

	return nil
}
