package api

// Health states reported by the readiness endpoint.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// HealthStatus is the body of GET /readyz.
type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Version     string            `json:"version,omitempty"`
	Services    map[string]string `json:"services"`
	Performance HealthPerformance `json:"performance"`
}

// HealthPerformance carries process timing figures for HealthStatus.
type HealthPerformance struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ResponseTimeMS int64   `json:"response_time_ms"`
}
