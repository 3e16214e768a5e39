package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the resolver cannot serve queries.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckEmpty indicates a model without any node.
	CheckEmpty CheckResult = "empty"
	// CheckSkipped indicates a component that is not configured.
	CheckSkipped CheckResult = "skipped"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	model ModelSizer
	store StorePinger
}

// New creates a Service. store is nil when the model is served from a file.
func New(model ModelSizer, store StorePinger) *Service {
	return &Service{model: model, store: store}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if s.model == nil || s.model.Len() == 0 {
		checks["model"] = CheckEmpty
		status = Unhealthy
	} else {
		checks["model"] = CheckOK
	}

	switch {
	case s.store == nil:
		checks["store"] = CheckSkipped
	case s.store.Ping(ctx) != nil:
		checks["store"] = CheckError
		if status == Healthy {
			status = Degraded
		}
	default:
		checks["store"] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
