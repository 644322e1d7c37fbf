package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/kedai-dev/checkout-api/internal/analytics"
	"github.com/kedai-dev/checkout-api/internal/app"
	"github.com/kedai-dev/checkout-api/internal/auth"
	"github.com/kedai-dev/checkout-api/internal/cart"
	"github.com/kedai-dev/checkout-api/internal/catalog"
	"github.com/kedai-dev/checkout-api/internal/checkout"
	"github.com/kedai-dev/checkout-api/internal/common"
	"github.com/kedai-dev/checkout-api/internal/config"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
	"github.com/kedai-dev/checkout-api/internal/health"
	"github.com/kedai-dev/checkout-api/internal/notify"
	"github.com/kedai-dev/checkout-api/internal/obs"
	"github.com/kedai-dev/checkout-api/internal/order"
	"github.com/kedai-dev/checkout-api/internal/security"
	"github.com/kedai-dev/checkout-api/internal/shipping"
	"github.com/kedai-dev/checkout-api/internal/tasks"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Str("service", "checkout-api").Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		ServiceName:   "checkout-api",
		Endpoint:      cfg.OTLPEndpoint,
		Environment:   cfg.AppEnv,
		SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	if envBool("MIGRATE_ON_START", false) {
		m, err := migrate.New("file://db/migrations", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("open migrations")
		}
		if err := app.RunMigrations(m); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "checkout-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	queries := dbgen.New(pool)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	})
	defer func() { _ = taskClient.Close() }()

	bus := &events.Bus{
		Store:     queries,
		Scheduler: &tasks.EventScheduler{Client: taskClient, PaymentWindow: cfg.PaymentWindow},
		Notifiers: []events.Notifier{webhookNotifier(taskClient)},
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   envOrDefault("JWT_ISSUER", "checkout-api"),
		Audience: envOrDefault("JWT_AUDIENCE", ""),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}
	authMiddleware := auth.Middleware{Verifier: verifier}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	limiterStore, err := app.NewLimiterStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter store")
	}
	voucherLimit, err := app.NewRateLimit(limiterStore, cfg.RateLimitVoucher)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse voucher rate limit")
	}
	checkoutLimit, err := app.NewRateLimit(limiterStore, cfg.RateLimitCheckout)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse checkout rate limit")
	}

	catalogSvc := &catalog.Service{Q: queries, Cache: catalog.NewCache(redisClient, cfg.VoucherCacheTTL)}
	catalogHandler := catalog.Handler{Svc: catalogSvc}

	voucherSvc := &voucher.Service{Q: queries, Cache: voucher.NewCache(redisClient, cfg.VoucherCacheTTL)}
	voucherHandler := &voucher.Handler{Q: queries, Svc: voucherSvc, Validate: validator.New()}

	cartSvc := &cart.Service{Q: queries, Vouchers: voucherSvc, TTL: cfg.CartTTL}
	cartHandler := &cart.Handler{
		Svc: cartSvc,
		ShippingClient: shipping.FlatRateClient{
			Base:  cfg.ShippingBaseRate,
			PerKg: cfg.ShippingPerKgRate,
		},
		ShippingOrigin: cfg.ShippingOrigin,
		Currency:       cfg.CurrencyCode,
	}

	checkoutSvc := &checkout.Service{
		Q:        queries,
		Pool:     pool,
		Cart:     cartSvc,
		Events:   bus,
		Log:      logger,
		Currency: cfg.CurrencyCode,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	orderHandler := &order.Handler{Q: queries, Events: bus}
	orderAdmin := &order.AdminHandler{Q: queries}

	analyticsSvc := &analytics.Service{
		Q:            queries,
		R:            redisClient,
		TTL:          cfg.AnalyticsCacheTTL,
		DefaultRange: envInt("ANALYTICS_DEFAULT_RANGE_DAYS", 30),
	}
	analyticsHandler := &analytics.Handler{Svc: analyticsSvc}

	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", "")), nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.IsProduction(), EnableHSTS: cfg.IsProduction()}.Middleware)
	r.Use(security.BodyLimit{Max: security.DefaultBodyLimit}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.List)
		v.Get("/products/{slug}", catalogHandler.Get)

		v.Get("/vouchers", voucherHandler.List)
		v.Get("/vouchers/{code}", voucherHandler.GetByCode)
		v.With(voucherLimit).Post("/vouchers/preview", voucherHandler.Preview)

		v.Route("/carts", func(c chi.Router) {
			c.Use(authMiddleware.Authenticate)
			c.Get("/active", cartHandler.GetActive)
			c.Get("/{id}", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Post("/{id}/items", cartHandler.AddItem)
				g.Patch("/{id}/items/{itemId}", cartHandler.UpdateItem)
				g.Delete("/{id}/items/{itemId}", cartHandler.RemoveItem)
				g.With(voucherLimit).Post("/{id}/apply-voucher", cartHandler.ApplyVoucher)
				g.Delete("/{id}/vouchers/{code}", cartHandler.RemoveVoucher)
				g.Post("/{id}/quote/shipping", cartHandler.QuoteShipping)
			})
		})

		v.With(idem.Middleware, authMiddleware.RequireAuth, checkoutLimit).Post("/checkout", checkoutHandler.Checkout)

		v.Group(func(authR chi.Router) {
			authR.Use(authMiddleware.RequireAuth)
			authR.Get("/orders", orderHandler.List)
			authR.Get("/orders/{orderId}", orderHandler.Get)
			authR.Post("/orders/{orderId}/cancel", orderHandler.Cancel)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAdmin)
			admin.Post("/vouchers", voucherHandler.Create)
			admin.Put("/vouchers/{code}", voucherHandler.Update)
			admin.Patch("/orders/{orderId}/status", orderAdmin.PatchStatus)
			admin.Get("/analytics/voucher-redemptions", analyticsHandler.Redemptions)
			admin.Get("/analytics/discount-granted", analyticsHandler.DiscountGranted)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	health.SetReady(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

// webhookNotifier builds the webhook fan-out from the environment. A missing
// WEBHOOK_URLS disables webhooks without disabling the notifier plumbing.
func webhookNotifier(client notify.Enqueuer) events.Notifier {
	var endpoints []notify.Endpoint
	secret := envOrDefault("WEBHOOK_SECRET", "")
	topics := splitCSV(envOrDefault("WEBHOOK_TOPICS", ""))
	for _, raw := range splitCSV(envOrDefault("WEBHOOK_URLS", "")) {
		endpoints = append(endpoints, notify.Endpoint{URL: raw, Secret: secret, Topics: topics})
	}
	return &notify.TaskNotifier{Client: client, Endpoints: endpoints}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
