package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"
)

var SupportedEnvironments = []string{"development", "staging", "production"}

var flagNameRegex = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// FeatureFlag is identified by the (Name, Environment) pair.
type FeatureFlag struct {
	Name              string    `json:"name"`
	Environment       string    `json:"environment"`
	Description       string    `json:"description,omitempty"`
	IsEnabled         bool      `json:"is_enabled"`
	RolloutPercentage float64   `json:"rollout_percentage"`
	TargetUsers       []string  `json:"target_users"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (f *FeatureFlag) Clone() *FeatureFlag {
	if f == nil {
		return nil
	}
	cp := *f
	if f.TargetUsers != nil {
		cp.TargetUsers = append([]string(nil), f.TargetUsers...)
	}
	return &cp
}

func (f *FeatureFlag) IsTargeted(userID string) bool {
	for _, u := range f.TargetUsers {
		if u == userID {
			return true
		}
	}
	return false
}

type FlagRequest struct {
	Name              string   `json:"name" binding:"required"`
	Environment       string   `json:"environment" binding:"required"`
	Description       string   `json:"description"`
	IsEnabled         bool     `json:"is_enabled"`
	RolloutPercentage float64  `json:"rollout_percentage"`
	TargetUsers       []string `json:"target_users"`
}

func (r *FlagRequest) Validate() error {
	if err := ValidateFlagName(r.Name); err != nil {
		return err
	}
	if err := ValidateEnvironment(r.Environment); err != nil {
		return err
	}
	if r.RolloutPercentage < 0 || r.RolloutPercentage > 100 {
		return errors.New("rollout_percentage must be between 0 and 100")
	}
	return nil
}

// FlagUpdate carries partial updates; nil fields are left untouched.
type FlagUpdate struct {
	Description       *string   `json:"description"`
	IsEnabled         *bool     `json:"is_enabled"`
	RolloutPercentage *float64  `json:"rollout_percentage"`
	TargetUsers       *[]string `json:"target_users"`
}

func (u *FlagUpdate) Validate() error {
	if u.RolloutPercentage != nil && (*u.RolloutPercentage < 0 || *u.RolloutPercentage > 100) {
		return errors.New("rollout_percentage must be between 0 and 100")
	}
	return nil
}

func ValidateFlagName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > 255 {
		return errors.New("name must be at most 255 characters")
	}
	if !flagNameRegex.MatchString(name) {
		return errors.New("name must be lowercase with underscores")
	}
	return nil
}

func ValidateEnvironment(env string) error {
	for _, e := range SupportedEnvironments {
		if env == e {
			return nil
		}
	}
	return fmt.Errorf("environment must be one of %v", SupportedEnvironments)
}

// Evaluation reasons, first match wins in the order listed.
const (
	ReasonFlagNotFound     = "flag_not_found"
	ReasonGloballyDisabled = "globally_disabled"
	ReasonUserTargeted     = "user_targeted"
	ReasonGloballyEnabled  = "globally_enabled"
)

// ReasonRollout names the rollout decision for the given percentage.
// Whole percentages keep a trailing .0, e.g. "rollout_percentage_25.0",
// fractional ones render as written, e.g. "rollout_percentage_12.5".
func ReasonRollout(percentage float64) string {
	if percentage == math.Trunc(percentage) {
		return fmt.Sprintf("rollout_percentage_%.1f", percentage)
	}
	return fmt.Sprintf("rollout_percentage_%g", percentage)
}

type Evaluation struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
}
