package monitor

import (
	"log"
	"sync"
	"time"

	"statuswatch/app/internal/alerts"
	"statuswatch/app/internal/checker"
	"statuswatch/app/internal/database"
	"statuswatch/app/internal/models"
	"statuswatch/app/internal/stats"
)

// ProbeFunc matches checker.Probe; injectable so cycles can run against
// scripted probe results in tests.
type ProbeFunc func(host string, port int, checkType string, timeout time.Duration) checker.Result

// Runner executes one full probe cycle: rollover detection, concurrent
// probes, ledger and daily accounting per service, then alert checks.
type Runner struct {
	timeout    time.Duration
	workers    int
	probe      ProbeFunc
	alertMgr   *alerts.Manager
	aggregator *stats.Aggregator
}

// NewRunner creates a cycle runner
func NewRunner(timeout time.Duration, workers int, alertMgr *alerts.Manager, aggregator *stats.Aggregator) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		timeout:    timeout,
		workers:    workers,
		probe:      checker.Probe,
		alertMgr:   alertMgr,
		aggregator: aggregator,
	}
}

// SetProbe replaces the probe function; used by tests
func (r *Runner) SetProbe(p ProbeFunc) { r.probe = p }

// RunCycle performs one probe cycle at the given time. Per-service errors are
// logged and skipped; the rest of the cycle continues.
func (r *Runner) RunCycle(now time.Time) {
	// Rollover runs before any ledger write so the first cycle of a new date
	// starts from zeroed counters and a finalized yesterday.
	rolled, err := stats.Rollover(now)
	if err != nil {
		log.Printf("Warning: rollover failed: %v", err)
	} else if rolled {
		log.Printf("Finalized daily records before %s", now.Format(database.DateFormat))
	}

	services, err := database.GetServices()
	if err != nil {
		log.Printf("Warning: failed to load services: %v", err)
		return
	}
	if len(services) == 0 {
		return
	}

	overrides, err := database.GetManualStatuses()
	if err != nil {
		log.Printf("Warning: failed to load manual statuses: %v", err)
		overrides = map[int64]models.ManualStatus{}
	}

	results := r.probeAll(services)

	for _, svc := range services {
		probeOK := results[svc.ID].OK

		var override *models.ManualStatus
		if o, ok := overrides[svc.ID]; ok {
			override = &o
		}

		up, err := stats.RecordCycle(svc.ID, override, probeOK, now)
		if err != nil {
			log.Printf("Warning: ledger update failed for %s: %v", svc.Name, err)
			continue
		}

		if err := stats.RecordDaily(svc.ID, now); err != nil {
			log.Printf("Warning: daily record failed for %s: %v", svc.Name, err)
		}

		fresh, err := database.GetServiceByID(svc.ID)
		if err != nil || fresh == nil {
			log.Printf("Warning: reload failed for %s: %v", svc.Name, err)
			continue
		}
		r.alertMgr.Check(fresh.Name, fresh.DownSince, up, now)
	}

	r.aggregator.Invalidate()
}

// probeAll checks every service with a bounded worker pool and returns the
// results keyed by service id.
func (r *Runner) probeAll(services []models.Service) map[int64]checker.Result {
	jobs := make(chan models.Service)
	results := make(map[int64]checker.Result, len(services))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(services) {
		workers = len(services)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for svc := range jobs {
				res := r.probe(svc.Host, svc.Port, svc.CheckType, r.timeout)
				mu.Lock()
				results[svc.ID] = res
				mu.Unlock()
			}
		}()
	}

	for _, svc := range services {
		jobs <- svc
	}
	close(jobs)
	wg.Wait()

	return results
}
