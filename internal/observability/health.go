package observability

import (
	"context"
	"sync"
	"time"
)

// HealthStatus represents the state of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is the result of a single component check
type HealthCheck struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Duration  string       `json:"duration"`
	CheckedAt time.Time    `json:"checked_at"`
}

// HealthCheckFunc performs a single component check
type HealthCheckFunc func(context.Context) *HealthCheck

// HealthChecker runs registered component checks
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheckFunc
}

// NewHealthChecker creates an empty health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheckFunc),
	}
}

// Register adds a named health check
func (hc *HealthChecker) Register(name string, check HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// Check runs all registered checks and returns their results
func (hc *HealthChecker) Check(ctx context.Context) map[string]*HealthCheck {
	hc.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(hc.checks))
	for name, fn := range hc.checks {
		checks[name] = fn
	}
	hc.mu.RUnlock()

	results := make(map[string]*HealthCheck, len(checks))
	for name, fn := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		results[name] = fn(checkCtx)
		cancel()
	}
	return results
}

// GetOverallStatus aggregates all checks into a single status
func (hc *HealthChecker) GetOverallStatus(ctx context.Context) HealthStatus {
	results := hc.Check(ctx)

	status := HealthStatusHealthy
	for _, result := range results {
		switch result.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// HealthResponse is the JSON body served on the health endpoint
type HealthResponse struct {
	Status  HealthStatus            `json:"status"`
	Service string                  `json:"service"`
	Version string                  `json:"version"`
	Checks  map[string]*HealthCheck `json:"checks"`
}

// GetHealthResponse builds the full health endpoint response
func (hc *HealthChecker) GetHealthResponse(ctx context.Context) *HealthResponse {
	checks := hc.Check(ctx)

	status := HealthStatusHealthy
	for _, result := range checks {
		switch result.Status {
		case HealthStatusUnhealthy:
			status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if status == HealthStatusHealthy {
				status = HealthStatusDegraded
			}
		}
	}

	return &HealthResponse{
		Status:  status,
		Service: "ledgerchat",
		Version: "1.0.0",
		Checks:  checks,
	}
}

func runPing(ctx context.Context, name string, ping func(context.Context) error) *HealthCheck {
	start := time.Now()
	check := &HealthCheck{
		Name:      name,
		Status:    HealthStatusHealthy,
		CheckedAt: start,
	}

	if err := ping(ctx); err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = err.Error()
	}

	check.Duration = time.Since(start).String()
	return check
}

// DatabaseHealthCheck wraps a database ping as a health check
func DatabaseHealthCheck(ping func(context.Context) error) HealthCheckFunc {
	return func(ctx context.Context) *HealthCheck {
		return runPing(ctx, "database", ping)
	}
}

// RedisHealthCheck wraps a Redis ping as a health check
func RedisHealthCheck(ping func(context.Context) error) HealthCheckFunc {
	return func(ctx context.Context) *HealthCheck {
		return runPing(ctx, "redis", ping)
	}
}

// LLMHealthCheck wraps a model endpoint probe as a health check.
// A failing model endpoint degrades rather than kills the service because
// the budget shortcut still works without it.
func LLMHealthCheck(probe func(context.Context) error) HealthCheckFunc {
	return func(ctx context.Context) *HealthCheck {
		check := runPing(ctx, "llm", probe)
		if check.Status == HealthStatusUnhealthy {
			check.Status = HealthStatusDegraded
		}
		return check
	}
}

// CachedHealthCheck serves the wrapped check's last result for ttl before
// probing again. Health endpoints are public and unauthenticated; a check
// whose probe costs money (a model completion) must not run once per request.
func CachedHealthCheck(check HealthCheckFunc, ttl time.Duration) HealthCheckFunc {
	var (
		mu     sync.Mutex
		cached *HealthCheck
	)

	return func(ctx context.Context) *HealthCheck {
		mu.Lock()
		defer mu.Unlock()

		if cached != nil && time.Since(cached.CheckedAt) < ttl {
			return cached
		}
		cached = check(ctx)
		return cached
	}
}
