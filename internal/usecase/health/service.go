package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds a single component check.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over named components.
type Service struct {
	components map[string]Pinger
	timeout    time.Duration
}

// New creates a Service checking the table storage.
func New(storage Pinger) *Service {
	return &Service{
		components: map[string]Pinger{"storage": storage},
		timeout:    DefaultTimeout,
	}
}

// With adds another named component to the report.
func (s *Service) With(name string, p Pinger) *Service {
	s.components[name] = p
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0
	for name, p := range s.components {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := p.Ping(cctx)
		cancel()
		if err != nil {
			checks[name] = CheckError
			failed++
			continue
		}
		checks[name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == len(checks) && failed > 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
