package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicServiceRegistryUpdates = "service-registry-updates"
	TopicFeatureFlagUpdates     = "feature-flag-updates"
)

const (
	ActionRegister     = "register"
	ActionHealthUpdate = "health_update"
	ActionDeregister   = "deregister"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
)

const (
	ResourceService     = "service"
	ResourceFeatureFlag = "feature_flag"
)

type Event struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Data         map[string]any `json:"data,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

func NewEvent(action, resourceType, resourceID string, data map[string]any) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Data:         data,
		Timestamp:    time.Now().UTC(),
	}
}
