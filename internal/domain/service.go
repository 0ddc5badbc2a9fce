package domain

import (
	"time"
)

type ServiceStatus string

const (
	StatusHealthy   ServiceStatus = "healthy"
	StatusUnhealthy ServiceStatus = "unhealthy"
	StatusUnknown   ServiceStatus = "unknown"
)

// ServiceRecord is the authoritative registry row for one service.
// ServiceName is the sole identity key.
type ServiceRecord struct {
	ServiceName     string         `json:"service_name"`
	ServiceURL      string         `json:"service_url"`
	HealthCheckURL  string         `json:"health_check_url,omitempty"`
	Status          ServiceStatus  `json:"status"`
	LastHealthCheck *time.Time     `json:"last_health_check"`
	Metadata        map[string]any `json:"metadata"`
	RegisteredAt    time.Time      `json:"registered_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (r *ServiceRecord) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// Clone returns a deep copy so callers can mutate the result without
// racing against the store's copy.
func (r *ServiceRecord) Clone() *ServiceRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.LastHealthCheck != nil {
		t := *r.LastHealthCheck
		cp.LastHealthCheck = &t
	}
	if r.Metadata != nil {
		cp.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// MergeMetadata applies merge-on-update semantics: new keys are added,
// existing keys overwritten, nothing is deleted.
func (r *ServiceRecord) MergeMetadata(updates map[string]any) {
	if len(updates) == 0 {
		return
	}
	if r.Metadata == nil {
		r.Metadata = make(map[string]any, len(updates))
	}
	for k, v := range updates {
		r.Metadata[k] = v
	}
}

// InstanceEntry is the ephemeral discovery-index projection of a record,
// written alongside every mutation and expired by TTL.
type InstanceEntry struct {
	InstanceID          string        `json:"instance_id"`
	URL                 string        `json:"url"`
	HealthStatus        ServiceStatus `json:"health_status"`
	LastCheckTimestamp  *time.Time    `json:"last_check_timestamp"`
	AvgResponseTime     float64       `json:"avg_response_time"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
}

// ProbeResult is a single health-check verdict, produced per monitoring
// cycle and consumed immediately. Never persisted.
type ProbeResult struct {
	ServiceName    string
	Healthy        bool
	ResponseTimeMs float64
}

func (p ProbeResult) Status() ServiceStatus {
	if p.Healthy {
		return StatusHealthy
	}
	return StatusUnhealthy
}
