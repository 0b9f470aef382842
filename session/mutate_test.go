package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/selection"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Snapshot, error) {
	r.calls.Add(1)

	rates := currency.Rates{}
	for _, t := range targets {
		rates[t] = 2
	}

	return currency.Snapshot{Base: base, Rates: rates, FetchedAt: time.Now()}, nil
}

func TestSession_InvalidSelectionIsReverted(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	refresher := &countingRefresher{}

	s, err := New(context.Background(), Config{
		Refresher: refresher,
		Interval:  time.Hour,
		Logger:    log.NewNopLogger(),
	})
	asserts.NoError(err)
	defer s.Close()

	asserts.Equal(time.Hour, s.scheduler.Interval())
	asserts.Eventually(func() bool { return refresher.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	broken := errors.New("broken invariant")
	asserts.NoError(s.do(func() {
		s.validate = func(*selection.Set) error { return broken }
	}))

	asserts.False(s.Add("EUR"))
	asserts.False(s.Remove("USD"))
	asserts.False(s.Reorder(2, 0))

	board := s.Board()
	asserts.Equal(currency.Code("CNY"), board.Base)
	asserts.Len(board.Rows, 3)
	asserts.Equal(int32(1), refresher.calls.Load())

	asserts.NoError(s.do(func() {
		s.validate = (*selection.Set).Validate
	}))

	asserts.True(s.Add("eur"))
	asserts.Len(s.Board().Rows, 4)
	asserts.Eventually(func() bool { return refresher.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}
