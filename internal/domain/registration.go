package domain

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

var serviceNameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type RegisterRequest struct {
	ServiceName    string         `json:"service_name" binding:"required"`
	ServiceURL     string         `json:"service_url" binding:"required"`
	HealthCheckURL string         `json:"health_check_url"`
	Metadata       map[string]any `json:"metadata"`
}

func (r *RegisterRequest) Validate() error {
	if err := ValidateServiceName(r.ServiceName); err != nil {
		return err
	}
	if r.ServiceURL == "" {
		return errors.New("service_url is required")
	}
	if err := validateAbsoluteURL(r.ServiceURL); err != nil {
		return fmt.Errorf("service_url: %w", err)
	}
	if r.HealthCheckURL != "" {
		if err := validateAbsoluteURL(r.HealthCheckURL); err != nil {
			return fmt.Errorf("health_check_url: %w", err)
		}
	}
	return nil
}

func ValidateServiceName(name string) error {
	if name == "" {
		return errors.New("service_name is required")
	}
	if len(name) > 100 {
		return errors.New("service_name must be at most 100 characters")
	}
	if !serviceNameRegex.MatchString(name) {
		return errors.New("service_name must be lowercase alphanumeric with hyphens")
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

type HealthUpdateRequest struct {
	Status         ServiceStatus `json:"status" binding:"required"`
	ResponseTimeMs *float64      `json:"response_time_ms"`
}

func (r *HealthUpdateRequest) Validate() error {
	switch r.Status {
	case StatusHealthy, StatusUnhealthy, StatusUnknown:
	default:
		return fmt.Errorf("status must be one of healthy, unhealthy, unknown")
	}
	if r.ResponseTimeMs != nil && *r.ResponseTimeMs < 0 {
		return errors.New("response_time_ms must not be negative")
	}
	return nil
}

type ServiceListResponse struct {
	Services []*ServiceRecord `json:"services"`
	Total    int              `json:"total"`
}
