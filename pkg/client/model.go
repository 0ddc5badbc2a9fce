package client

import (
	"errors"
	"time"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrUnauthorized    = errors.New("unauthorized")
)

type RegisterRequest struct {
	ServiceName    string         `json:"service_name"`
	ServiceURL     string         `json:"service_url"`
	HealthCheckURL string         `json:"health_check_url,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type ServiceRecord struct {
	ServiceName     string         `json:"service_name"`
	ServiceURL      string         `json:"service_url"`
	HealthCheckURL  string         `json:"health_check_url,omitempty"`
	Status          string         `json:"status"`
	LastHealthCheck *time.Time     `json:"last_health_check"`
	Metadata        map[string]any `json:"metadata"`
	RegisteredAt    time.Time      `json:"registered_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type ServiceList struct {
	Services []ServiceRecord `json:"services"`
	Total    int             `json:"total"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
