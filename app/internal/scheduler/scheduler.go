package scheduler

import (
	"log"
	"sync"
	"time"
)

// Clock abstracts time so cycles can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the minimal ticker surface the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is the production Clock backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Job is one periodic driver. Runs never overlap for the same job: each tick
// invokes Run to completion before the next is consumed.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(now time.Time)
}

// Scheduler owns every periodic driver in the process, replacing ad-hoc
// ticker loops with one registration point.
type Scheduler struct {
	clock Clock

	mu   sync.Mutex
	jobs []Job
}

// New creates a scheduler on the given clock
func New(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Clock returns the scheduler's clock
func (s *Scheduler) Clock() Clock { return s.clock }

// Add registers a periodic job
func (s *Scheduler) Add(name string, interval time.Duration, run func(now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

// Start launches one goroutine per registered job. The goroutines exit when
// stop is closed.
func (s *Scheduler) Start(stop <-chan struct{}) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		go s.runLoop(job, stop)
	}
	log.Printf("Scheduler started with %d jobs", len(jobs))
}

func (s *Scheduler) runLoop(job Job, stop <-chan struct{}) {
	ticker := s.clock.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C():
			job.Run(now)
		case <-stop:
			return
		}
	}
}

// RunJob invokes one registered job synchronously at the clock's current
// time. Returns false when no job has that name. Used by tests to
// single-step cycles without real timers.
func (s *Scheduler) RunJob(name string) bool {
	s.mu.Lock()
	var run func(time.Time)
	for _, j := range s.jobs {
		if j.Name == name {
			run = j.Run
			break
		}
	}
	s.mu.Unlock()

	if run == nil {
		return false
	}
	run(s.clock.Now())
	return true
}
