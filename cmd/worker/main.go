package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kedai-dev/checkout-api/internal/config"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
	"github.com/kedai-dev/checkout-api/internal/lock"
	"github.com/kedai-dev/checkout-api/internal/notify"
	"github.com/kedai-dev/checkout-api/internal/obs"
	"github.com/kedai-dev/checkout-api/internal/resilience"
	"github.com/kedai-dev/checkout-api/internal/tasks"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(envOrDefault("OBS_LOG_FORMAT", "json"), envOrDefault("OBS_LOG_LEVEL", "info")).
		With().Str("env", cfg.AppEnv).Str("service", "checkout-worker").Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "checkout-worker"

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
	defer func() { _ = redisClient.Close() }()

	asynqRedis := asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	}

	taskClient := asynq.NewClient(asynqRedis)
	defer func() { _ = taskClient.Close() }()

	bus := &events.Bus{Store: queries}

	voucherSvc := &voucher.Service{Q: queries, Cache: voucher.NewCache(redisClient, cfg.VoucherCacheTTL)}

	handlers := &tasks.Handlers{
		Q:             queries,
		Vouchers:      voucherSvc,
		Events:        bus,
		Locker:        &lock.Locker{R: redisClient},
		Log:           logger,
		PaymentWindow: cfg.PaymentWindow,
	}

	webhook := &notify.Webhook{
		HTTP: resilience.HTTPClient{
			Client: &http.Client{
				Timeout:   10 * time.Second,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			Breaker:     resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("webhook").WithLogger(logger),
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
			Jitter:      0.2,
		},
		Log: logger,
	}

	mux := asynq.NewServeMux()
	handlers.Register(mux)
	webhook.RegisterHandlers(mux)

	srv := asynq.NewServer(asynqRedis, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      asynqZerolog{logger},
		Queues: map[string]int{
			"default": 1,
		},
	})

	// Periodic backstop so orders still expire if a delayed task was lost.
	sweepInterval := cfg.PaymentWindow / 4
	if sweepInterval < time.Minute {
		sweepInterval = time.Minute
	}
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				if _, err := taskClient.Enqueue(tasks.NewOrderExpireSweepTask()); err != nil {
					logger.Error().Err(err).Msg("enqueue expiry sweep")
				}
			}
		}
	}()

	go func() {
		logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
		if err := srv.Run(mux); err != nil {
			logger.Fatal().Err(err).Msg("worker exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	close(sweepDone)
	srv.Shutdown()
}

// asynqZerolog adapts zerolog to the asynq logger contract.
type asynqZerolog struct {
	log zerolog.Logger
}

func (l asynqZerolog) Debug(args ...interface{}) { l.log.Debug().Msgf("%v", args) }
func (l asynqZerolog) Info(args ...interface{})  { l.log.Info().Msgf("%v", args) }
func (l asynqZerolog) Warn(args ...interface{})  { l.log.Warn().Msgf("%v", args) }
func (l asynqZerolog) Error(args ...interface{}) { l.log.Error().Msgf("%v", args) }
func (l asynqZerolog) Fatal(args ...interface{}) { l.log.Fatal().Msgf("%v", args) }

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
