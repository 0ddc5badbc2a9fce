package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

type FlagsConfig struct {
	CacheTTL time.Duration
}

// Flags manages feature flag CRUD with a read-through cache, and the
// deterministic rollout evaluation consumed at request time.
type Flags struct {
	config    FlagsConfig
	store     domain.FlagStore
	cache     domain.Cache
	publisher domain.Publisher
}

func NewFlags(cfg FlagsConfig, store domain.FlagStore, cache domain.Cache, publisher domain.Publisher) *Flags {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &Flags{
		config:    cfg,
		store:     store,
		cache:     cache,
		publisher: publisher,
	}
}

func (f *Flags) Create(ctx context.Context, req *domain.FlagRequest) (*domain.FeatureFlag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	flag, err := f.store.Create(ctx, &domain.FeatureFlag{
		Name:              req.Name,
		Environment:       req.Environment,
		Description:       req.Description,
		IsEnabled:         req.IsEnabled,
		RolloutPercentage: req.RolloutPercentage,
		TargetUsers:       req.TargetUsers,
	})
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, domain.FlagKey(flag.Name, flag.Environment), flag, f.config.CacheTTL)
	f.publishFlagEvent(ctx, domain.ActionCreate, flag)

	slog.Info("feature flag created", "flag", flag.Name, "environment", flag.Environment)
	return flag, nil
}

// Get is cache-first; nil, nil when the flag does not exist.
func (f *Flags) Get(ctx context.Context, name, environment string) (*domain.FeatureFlag, error) {
	key := domain.FlagKey(name, environment)

	var cached domain.FeatureFlag
	if f.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	flag, err := f.store.GetByName(ctx, name, environment)
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, nil
	}

	f.cache.Set(ctx, key, flag, f.config.CacheTTL)
	return flag, nil
}

func (f *Flags) List(ctx context.Context, environment string, limit, offset int) ([]*domain.FeatureFlag, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return f.store.List(ctx, environment, limit, offset)
}

func (f *Flags) Update(ctx context.Context, name, environment string, update *domain.FlagUpdate) (*domain.FeatureFlag, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	flag, err := f.store.Update(ctx, name, environment, update)
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, nil
	}

	f.cache.Delete(ctx, domain.FlagKey(name, environment))
	f.publishFlagEvent(ctx, domain.ActionUpdate, flag)

	slog.Info("feature flag updated", "flag", name, "environment", environment)
	return flag, nil
}

func (f *Flags) Delete(ctx context.Context, name, environment string) (bool, error) {
	flag, err := f.store.GetByName(ctx, name, environment)
	if err != nil {
		return false, err
	}
	if flag == nil {
		return false, nil
	}

	found, err := f.store.Delete(ctx, name, environment)
	if err != nil {
		return false, err
	}
	if found {
		f.cache.Delete(ctx, domain.FlagKey(name, environment))
		f.publishFlagEvent(ctx, domain.ActionDelete, flag)
		slog.Info("feature flag deleted", "flag", name, "environment", environment)
	}
	return found, nil
}

// Evaluate decides whether a flag is enabled for a user. First match
// wins: missing flag, global kill-switch, targeting allowlist, rollout
// bucket, then the flag's global state. Evaluation never mutates the
// flag and performs no I/O beyond the single read.
func (f *Flags) Evaluate(ctx context.Context, name, environment, userID string) (domain.Evaluation, error) {
	flag, err := f.Get(ctx, name, environment)
	if err != nil {
		return domain.Evaluation{}, err
	}

	switch {
	case flag == nil:
		return domain.Evaluation{Enabled: false, Reason: domain.ReasonFlagNotFound}, nil
	case !flag.IsEnabled && flag.RolloutPercentage == 0:
		return domain.Evaluation{Enabled: false, Reason: domain.ReasonGloballyDisabled}, nil
	case userID != "" && flag.IsTargeted(userID):
		return domain.Evaluation{Enabled: true, Reason: domain.ReasonUserTargeted}, nil
	}

	if userID != "" && flag.RolloutPercentage > 0 {
		if bucket := rolloutBucket(name, userID); float64(bucket) < flag.RolloutPercentage {
			return domain.Evaluation{Enabled: true, Reason: domain.ReasonRollout(flag.RolloutPercentage)}, nil
		}
	}

	return domain.Evaluation{Enabled: flag.IsEnabled, Reason: domain.ReasonGloballyEnabled}, nil
}

func (f *Flags) publishFlagEvent(ctx context.Context, action string, flag *domain.FeatureFlag) {
	f.publisher.Publish(ctx, domain.TopicFeatureFlagUpdates, domain.NewEvent(action, domain.ResourceFeatureFlag, flag.Name, map[string]any{
		"name":        flag.Name,
		"environment": flag.Environment,
		"is_enabled":  flag.IsEnabled,
	}))
}
