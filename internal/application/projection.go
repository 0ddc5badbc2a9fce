package application

import (
	"context"

	"github.com/apascualco/fleetway/internal/domain"
)

// instanceEntry builds the canonical discovery-index projection of a
// record. Every write path goes through this one conversion so the index
// never diverges in shape between register and health update.
func instanceEntry(rec *domain.ServiceRecord, failures int) *domain.InstanceEntry {
	entry := &domain.InstanceEntry{
		InstanceID:          rec.ServiceName + "-1",
		URL:                 rec.ServiceURL,
		HealthStatus:        rec.Status,
		LastCheckTimestamp:  rec.LastHealthCheck,
		ConsecutiveFailures: failures,
	}
	if v, ok := rec.Metadata["avg_response_time"]; ok {
		if f, ok := toFloat(v); ok {
			entry.AvgResponseTime = f
		}
	}
	return entry
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// consecutiveFailures derives the failure streak for the next projection:
// an unhealthy verdict extends the streak recorded in the index, anything
// else resets it.
func (r *Registry) consecutiveFailures(ctx context.Context, rec *domain.ServiceRecord) int {
	if rec.Status != domain.StatusUnhealthy {
		return 0
	}
	if prev, ok := r.index.GetInstance(ctx, rec.ServiceName); ok {
		return prev.ConsecutiveFailures + 1
	}
	return 1
}

func (r *Registry) publishServiceEvent(ctx context.Context, action, name string, status domain.ServiceStatus) {
	r.publisher.Publish(ctx, domain.TopicServiceRegistryUpdates, domain.NewEvent(action, domain.ResourceService, name, map[string]any{
		"service_name": name,
		"status":       string(status),
	}))
}
