package session

import "time"

const DefaultInterval = 30 * time.Second

// Scheduler ticks at a fixed interval. Reset restarts the interval, so an
// immediate refresh is not followed by a tick shortly after.
type Scheduler struct {
	interval time.Duration
	ticker   *time.Ticker
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		interval: interval,
		ticker:   time.NewTicker(interval),
	}
}

func (s *Scheduler) C() <-chan time.Time {
	return s.ticker.C
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) Reset() {
	s.ticker.Reset(s.interval)
}

func (s *Scheduler) Stop() {
	s.ticker.Stop()
}
