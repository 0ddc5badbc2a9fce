package application

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

// Conventional health endpoints per service name; anything unlisted
// probes /health.
var healthEndpoints = map[string]string{
	"api-gateway-service": "/health",
	"auth-service":        "/health",
	"config-service":      "/health",
	"metrics-service":     "/health",
	"telemetry-service":   "/health",
	"alerting-service":    "/health",
	"dashboard-service":   "/health",
	"asr-service":         "/api/v1/asr/health",
	"tts-service":         "/health",
	"nmt-service":         "/api/v1/nmt/health",
	"pipeline-service":    "/health",
	"simple-ui-frontend":  "/health",
}

const defaultHealthEndpoint = "/health"

// Prober issues a single bounded health check against a service and
// classifies the response.
type Prober struct {
	client *http.Client
}

func NewProber(timeout time.Duration) *Prober {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		client: &http.Client{Timeout: timeout},
	}
}

// probeURL prefers the explicit health check URL and otherwise derives
// one from the service URL and the conventional endpoint table.
func probeURL(rec *domain.ServiceRecord) string {
	if rec.HealthCheckURL != "" {
		return rec.HealthCheckURL
	}
	if rec.ServiceURL == "" {
		return ""
	}
	endpoint, ok := healthEndpoints[rec.ServiceName]
	if !ok {
		endpoint = defaultHealthEndpoint
	}
	return strings.TrimRight(rec.ServiceURL, "/") + endpoint
}

// Check probes one service. Connection errors and timeouts classify as
// unhealthy with a zero response time; they are verdicts, not errors.
func (p *Prober) Check(ctx context.Context, rec *domain.ServiceRecord) domain.ProbeResult {
	result := domain.ProbeResult{ServiceName: rec.ServiceName}

	url := probeURL(rec)
	if url == "" {
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return result
	}
	defer resp.Body.Close()

	result.ResponseTimeMs = float64(time.Since(start)) / float64(time.Millisecond)
	result.Healthy = classifyResponse(resp)
	return result
}

// classifyResponse decides a verdict from one health response. A JSON
// status field wins over the HTTP status code: some services return 200
// while reporting unhealthy, others 503 with a detailed healthy payload.
func classifyResponse(resp *http.Response) bool {
	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		// Unparseable body: the HTTP status code is all we have.
		return resp.StatusCode == http.StatusOK
	}

	body, ok := payload.(map[string]any)
	if !ok {
		// Valid JSON but not an object carries no status field to trust.
		return false
	}

	status := extractStatus(body)
	switch status {
	case "healthy":
		return true
	case "unhealthy", "error", "down":
		return false
	default:
		return resp.StatusCode == http.StatusOK
	}
}

// extractStatus reads the status field, unwrapping one level of detail
// nesting as produced by HTTP-exception style error payloads.
func extractStatus(body map[string]any) string {
	if detail, ok := body["detail"].(map[string]any); ok {
		if s, ok := detail["status"].(string); ok {
			return strings.ToLower(s)
		}
		return ""
	}
	if s, ok := body["status"].(string); ok {
		return strings.ToLower(s)
	}
	return ""
}
