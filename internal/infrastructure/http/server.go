package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/apascualco/fleetway/internal/application"
	"github.com/apascualco/fleetway/internal/domain"
	"github.com/apascualco/fleetway/internal/infrastructure/config"
	"github.com/apascualco/fleetway/internal/infrastructure/http/handler"
	"github.com/apascualco/fleetway/internal/infrastructure/http/middleware"
	"github.com/apascualco/fleetway/internal/infrastructure/jwt"
	"github.com/apascualco/fleetway/internal/infrastructure/memstore"
	"github.com/apascualco/fleetway/internal/infrastructure/ratelimit"
	"github.com/apascualco/fleetway/internal/infrastructure/redis"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router      *gin.Engine
	config      *config.Config
	httpServer  *http.Server
	startTime   time.Time
	registry    *application.Registry
	flags       *application.Flags
	monitor     *application.Monitor
	jwtService  *jwt.Service
	redisClient *redis.Client
	rateLimiter ratelimit.RateLimiter
}

func NewServer(cfg *config.Config) (*Server, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
	}

	var cache domain.Cache
	var index domain.DiscoveryIndex
	var publisher domain.Publisher = domain.NopPublisher{}

	if redisClient != nil {
		cache = redis.NewCache(redisClient)
		index = redis.NewIndex(redisClient)
		if cfg.EventBusEnabled {
			publisher = redis.NewPublisher(redisClient)
			slog.Info("event publishing enabled over redis")
		}
	} else {
		cache = nopCache{}
		index = nopIndex{}
		slog.Warn("redis not configured, cache layer and discovery index disabled")
	}

	registry := application.NewRegistry(application.RegistryConfig{
		RegistryTTL:    cfg.RegistryTTL,
		HealthyListTTL: cfg.HealthyListTTL,
	}, memstore.NewServiceStore(), cache, index, publisher)

	flags := application.NewFlags(application.FlagsConfig{
		CacheTTL: cfg.FlagCacheTTL,
	}, memstore.NewFlagStore(), cache, publisher)

	var monitor *application.Monitor
	if cfg.HealthMonitorEnabled {
		monitor = application.NewMonitor(application.MonitorConfig{
			Interval:     cfg.HealthCheckInterval,
			StartupDelay: cfg.HealthCheckDelay,
			ProbeTimeout: cfg.HealthProbeTimeout,
		}, registry)
	}

	var jwtService *jwt.Service
	if cfg.JWTPublicKey != "" || cfg.JWTPrivateKey != "" {
		var err error
		jwtService, err = jwt.NewService(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT service: %w", err)
		}
		slog.Info("service token authentication enabled")
	} else {
		slog.Warn("JWT keys not configured, authentication disabled")
	}

	var rateLimiter ratelimit.RateLimiter
	if cfg.RateLimitEnabled {
		if redisClient != nil {
			rateLimiter = ratelimit.NewLimiter(redisClient.Client)
			slog.Info("rate limiting enabled with Redis")
		} else {
			rateLimiter = ratelimit.NewInMemoryLimiter()
			slog.Warn("rate limiting enabled with in-memory limiter (not recommended for production)")
		}
	}

	s := &Server{
		config:      cfg,
		startTime:   time.Now(),
		registry:    registry,
		flags:       flags,
		monitor:     monitor,
		jwtService:  jwtService,
		redisClient: redisClient,
		rateLimiter: rateLimiter,
	}
	s.setupRouter()
	return s, nil
}

func (s *Server) setupRouter() {
	if s.config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: s.config.CORSAllowedMethods,
		AllowedHeaders: s.config.CORSAllowedHeaders,
	}))

	if s.rateLimiter != nil {
		s.router.Use(middleware.RateLimitMiddleware(s.rateLimiter, s.config))
	}

	s.router.GET("/health", handler.HealthHandler(s.startTime, s.config.Version))
	s.router.GET("/ready", handler.ReadyHandler())

	s.setupRegistryRoutes()
	s.setupFlagRoutes()
}

func (s *Server) setupRegistryRoutes() {
	registryHandler := handler.NewRegistryHandler(s.registry)
	discoveryHandler := handler.NewDiscoveryHandler(s.registry)

	services := s.router.Group("/api/v1/registry/services")
	{
		services.GET("", registryHandler.List)
		services.GET("/healthy", registryHandler.ListHealthy)
		services.GET("/:name", registryHandler.Get)
	}

	mutating := s.router.Group("/api/v1/registry/services")
	if s.jwtService != nil {
		serviceAuth := middleware.NewServiceAuthMiddleware(s.jwtService)
		mutating.Use(serviceAuth.Authenticate())
	}
	{
		mutating.POST("", registryHandler.Register)
		mutating.POST("/:name/health", registryHandler.UpdateHealth)
		mutating.DELETE("/:name", registryHandler.Deregister)
	}

	discovery := s.router.Group("/api/v1/discovery")
	{
		discovery.GET("/:name/instance", discoveryHandler.Instance)
		discovery.GET("/:name/active", discoveryHandler.Active)
	}
}

func (s *Server) setupFlagRoutes() {
	flagsHandler := handler.NewFlagsHandler(s.flags)

	flags := s.router.Group("/api/v1/flags")
	{
		flags.GET("", flagsHandler.List)
		flags.GET("/:name", flagsHandler.Get)
		flags.POST("/evaluate", flagsHandler.Evaluate)
	}

	mutating := s.router.Group("/api/v1/flags")
	if s.jwtService != nil {
		serviceAuth := middleware.NewServiceAuthMiddleware(s.jwtService)
		mutating.Use(serviceAuth.Authenticate())
	}
	{
		mutating.POST("", flagsHandler.Create)
		mutating.PUT("/:name", flagsHandler.Update)
		mutating.DELETE("/:name", flagsHandler.Delete)
	}
}

func (s *Server) Run() error {
	if s.monitor != nil {
		s.monitor.Start()
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			return err
		}
	}
	return s.httpServer.Shutdown(ctx)
}

// nopCache and nopIndex stand in when Redis is absent: every read is a
// miss, every write a no-op, so all traffic degrades to the store.
type nopCache struct{}

func (nopCache) Get(context.Context, string, any) bool           { return false }
func (nopCache) Set(context.Context, string, any, time.Duration) {}
func (nopCache) Delete(context.Context, string)                  {}
func (nopCache) DeletePattern(context.Context, string)           {}

type nopIndex struct{}

func (nopIndex) PutInstance(context.Context, string, *domain.InstanceEntry, time.Duration) {}
func (nopIndex) GetInstance(context.Context, string) (*domain.InstanceEntry, bool) {
	return nil, false
}
func (nopIndex) SetActive(context.Context, string, bool, time.Duration) {}
func (nopIndex) GetActive(context.Context, string) (bool, bool)         { return false, false }
func (nopIndex) Purge(context.Context, string)                          {}
