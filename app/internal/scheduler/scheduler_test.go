package scheduler

import (
	"sync"
	"testing"
	"time"
)

// fakeClock hands out manually driven tickers. Tickers are created inside the
// scheduler's goroutines, so access is synchronized.
type fakeClock struct {
	now time.Time

	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

// ticker waits for the i-th ticker to be created and returns it
func (f *fakeClock) ticker(t *testing.T, i int) *fakeTicker {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		f.mu.Lock()
		if len(f.tickers) > i {
			tk := f.tickers[i]
			f.mu.Unlock()
			return tk
		}
		f.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatal("ticker was not created")
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeClock) tickerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

type fakeTicker struct {
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped = true }

func TestRunJob_InvokesAtClockTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	s := New(clock)

	var got time.Time
	s.Add("job", time.Minute, func(now time.Time) { got = now })

	if !s.RunJob("job") {
		t.Fatal("RunJob should find the registered job")
	}
	if !got.Equal(clock.now) {
		t.Errorf("job should run at clock time, got %v", got)
	}
}

func TestRunJob_UnknownName(t *testing.T) {
	s := New(&fakeClock{})
	if s.RunJob("nope") {
		t.Error("RunJob should report false for unknown job")
	}
}

func TestRunJob_SingleSteps(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := New(clock)

	count := 0
	s.Add("counter", time.Minute, func(time.Time) { count++ })

	s.RunJob("counter")
	s.RunJob("counter")
	s.RunJob("counter")

	if count != 3 {
		t.Errorf("expected 3 runs, got %d", count)
	}
}

func TestStart_RunsOnTick(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := New(clock)

	ran := make(chan time.Time, 1)
	s.Add("job", time.Minute, func(now time.Time) { ran <- now })

	stop := make(chan struct{})
	defer close(stop)
	s.Start(stop)

	tickAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock.ticker(t, 0).ch <- tickAt

	select {
	case got := <-ran:
		if !got.Equal(tickAt) {
			t.Errorf("job should receive the tick time, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("job did not run on tick")
	}
}

func TestStart_OneTickerPerJob(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := New(clock)
	s.Add("a", time.Minute, func(time.Time) {})
	s.Add("b", time.Hour, func(time.Time) {})

	stop := make(chan struct{})
	defer close(stop)
	s.Start(stop)

	clock.ticker(t, 0)
	clock.ticker(t, 1)
	if n := clock.tickerCount(); n != 2 {
		t.Errorf("expected 2 tickers, got %d", n)
	}
}

func TestClock_Accessor(t *testing.T) {
	clock := &fakeClock{}
	if New(clock).Clock() != Clock(clock) {
		t.Error("Clock should return the constructor's clock")
	}
}
