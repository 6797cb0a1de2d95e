// Package health runs readiness checks for the folionav server.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// Status represents the health status of a service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// DefaultTimeout bounds a check registered without a timeout.
const DefaultTimeout = 5 * time.Second

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status     Status  `json:"status"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// Report is the overall result of a Check run.
type Report struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

type check struct {
	name     string
	fn       func(ctx context.Context) error
	timeout  time.Duration
	critical bool
}

// Checker runs registered checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  []check
	version string
	now     func() time.Time
}

// NewChecker creates a checker reporting version.
func NewChecker(version string) *Checker {
	return &Checker{version: version, now: time.Now}
}

// AddCheck adds a check whose failure degrades the service.
func (hc *Checker) AddCheck(name string, fn func(context.Context) error, timeout time.Duration) {
	hc.add(check{name: name, fn: fn, timeout: timeout})
}

// AddCriticalCheck adds a check whose failure makes the service unhealthy.
func (hc *Checker) AddCriticalCheck(name string, fn func(context.Context) error, timeout time.Duration) {
	hc.add(check{name: name, fn: fn, timeout: timeout, critical: true})
}

func (hc *Checker) add(c check) {
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	hc.mu.Lock()
	hc.checks = append(hc.checks, c)
	hc.mu.Unlock()
}

// Check runs every check and folds the results.
func (hc *Checker) Check(ctx context.Context) Report {
	hc.mu.RLock()
	checks := append([]check(nil), hc.checks...)
	hc.mu.RUnlock()

	results := make([]CheckResult, len(checks))

	// Checks report failures in their result; the group only waits.
	var g errgroup.Group
	for i, c := range checks {
		i, c := i, c
		g.Go(func() error {
			results[i] = run(ctx, c)
			return nil
		})
	}
	g.Wait()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: hc.now(),
		Version:   hc.version,
	}
	for i, c := range checks {
		r := results[i]
		report.Checks[c.name] = r
		if r.Status == StatusHealthy {
			continue
		}
		if c.critical {
			report.Status = StatusUnhealthy
		} else if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}

func run(ctx context.Context, c check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.fn(ctx)
	result := CheckResult{
		Status:     StatusHealthy,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// ReadinessHandler serves the report; 503 when a critical check fails.
func (hc *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := hc.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(report)
	})
}

// ErrAtCapacity is reported by CapacityCheck.
var ErrAtCapacity = errors.New("at capacity")

// CapacityCheck fails once count reaches limit.
func CapacityCheck(count func() int, limit int) func(context.Context) error {
	return func(context.Context) error {
		if n := count(); n >= limit {
			return fmt.Errorf("%w: %d of %d", ErrAtCapacity, n, limit)
		}
		return nil
	}
}

// ErrNotReady is reported by ReadyCheck.
var ErrNotReady = errors.New("not ready")

// ReadyCheck fails while ready returns false.
func ReadyCheck(what string, ready func() bool) func(context.Context) error {
	return func(context.Context) error {
		if !ready() {
			return fmt.Errorf("%w: %s", ErrNotReady, what)
		}
		return nil
	}
}
