package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               int      `envconfig:"PORT" default:"8080"`
	Env                string   `envconfig:"ENV" default:"development"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"debug"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Request-ID,X-Service-Token"`

	RegistryTTL          time.Duration `envconfig:"SERVICE_REGISTRY_TTL" default:"300s"`
	HealthyListTTL       time.Duration `envconfig:"HEALTHY_SERVICES_TTL" default:"30s"`
	FlagCacheTTL         time.Duration `envconfig:"FEATURE_FLAG_CACHE_TTL" default:"300s"`
	HealthCheckInterval  time.Duration `envconfig:"HEALTH_CHECK_INTERVAL" default:"30s"`
	HealthCheckDelay     time.Duration `envconfig:"HEALTH_CHECK_STARTUP_DELAY" default:"10s"`
	HealthProbeTimeout   time.Duration `envconfig:"HEALTH_PROBE_TIMEOUT" default:"5s"`
	HealthMonitorEnabled bool          `envconfig:"HEALTH_MONITOR_ENABLED" default:"true"`

	JWTPublicKey      string        `envconfig:"JWT_PUBLIC_KEY"`
	JWTPrivateKey     string        `envconfig:"JWT_PRIVATE_KEY"`
	JWTIssuer         string        `envconfig:"JWT_ISSUER" default:"fleetway"`
	JWTTokenTTL       time.Duration `envconfig:"JWT_TOKEN_TTL" default:"5m"`
	JWTAllowedIssuers []string      `envconfig:"JWT_ALLOWED_ISSUERS" default:"fleetway"`

	RedisURL           string `envconfig:"REDIS_URL" default:""`
	EventBusEnabled    bool   `envconfig:"EVENT_BUS_ENABLED" default:"true"`
	RateLimitEnabled   bool   `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitGlobalRPM int    `envconfig:"RATE_LIMIT_GLOBAL_RPM" default:"10000"`
	RateLimitUserRPM   int    `envconfig:"RATE_LIMIT_USER_RPM" default:"100"`
	RateLimitIPRPM     int    `envconfig:"RATE_LIMIT_IP_RPM" default:"60"`

	Version, Commit, BuildDate string
}

func Load(version, commit, buildDate string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.Version, cfg.Commit, cfg.BuildDate = version, commit, buildDate
	return &cfg, nil
}
