package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vatelanka/waste-admin-api/internal/adapters/email"
	"github.com/vatelanka/waste-admin-api/internal/adapters/httpapi"
	memdirectory "github.com/vatelanka/waste-admin-api/internal/adapters/memory/directory"
	memidempotency "github.com/vatelanka/waste-admin-api/internal/adapters/memory/idempotency"
	memidentity "github.com/vatelanka/waste-admin-api/internal/adapters/memory/identity"
	postgres "github.com/vatelanka/waste-admin-api/internal/adapters/postgres"
	pgdirectory "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/directory"
	pgidempotency "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/idempotency"
	pgidentity "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/identity"
	"github.com/vatelanka/waste-admin-api/internal/adapters/queue"
	"github.com/vatelanka/waste-admin-api/internal/app/locations"
	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
	"github.com/vatelanka/waste-admin-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/vatelanka/waste-admin-api/internal/platform/clock"
	"github.com/vatelanka/waste-admin-api/internal/platform/config"
	"github.com/vatelanka/waste-admin-api/internal/platform/health"
	"github.com/vatelanka/waste-admin-api/internal/platform/logger"
	"github.com/vatelanka/waste-admin-api/internal/platform/metrics"
	directoryport "github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
	idempotencyport "github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
	identityport "github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "waste-admin-api",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
	log.Info().Msg("api stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	clk := platformclock.NewSystemClock()
	m := metrics.New()
	checker := health.NewChecker(2 * time.Second)

	var (
		store     directoryport.Store
		idp       identityport.Provider
		idemStore idempotencyport.Store
	)
	switch cfg.Storage.Backend {
	case "postgres":
		if cfg.Storage.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.Storage.DatabaseURL, log); err != nil {
				return err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL, log, postgres.PoolOptions{
			MaxConns: cfg.Storage.MaxConns,
			TraceSQL: cfg.Storage.TraceSQL,
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		checker.Register("postgres", health.Postgres(pool))

		store = pgdirectory.NewStore(pool)
		idp = pgidentity.NewProvider(pool)
		idemStore = pgidempotency.NewStore(pool, cfg.Auth.Issuer(), pgidempotency.WithClock(clk))
	default:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		store = memdirectory.NewStore()
		idp = memidentity.NewProvider(clk)
		idemStore = memidempotency.NewStore()
	}

	var redisOpt asynq.RedisClientOpt
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		checker.Register("redis", health.Redis(rdb))
		redisOpt = asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	}

	delivery, err := newDeliveryNotifier(cfg.Email, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	front := delivery
	if delivery != nil && cfg.Email.Async {
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		front = queue.NewNotifier(client, log)

		worker := queue.NewWorker(redisOpt, cfg.Email.Concurrency, delivery, log)
		g.Go(func() error { return worker.Run(gctx) })
	}

	opts, err := onboardingOptions(cfg.Onboarding)
	if err != nil {
		return err
	}
	onb := onboarding.NewService(store, idp, clk, opts, log).WithMetrics(m)
	if front != nil {
		onb = onb.WithNotifier(front)
	}
	loc := locations.NewService(store, clk, log)

	if cfg.Directory.SeedFile != "" {
		if _, err := loc.SeedFile(ctx, cfg.Directory.SeedFile, true); err != nil {
			return err
		}
	}

	authMW, err := authMiddleware(cfg.Auth)
	if err != nil {
		return err
	}
	handler := httpapi.NewRouter(httpapi.NewServer(onb, loc, checker), httpapi.RouterOptions{
		AuthMiddleware: authMW,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
		Metrics:        m,
		Idempotency:    idemStore,
		Clock:          clk,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Backend).Str("auth", cfg.Auth.Mode).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		j := janitor{
			store:     idemStore,
			clk:       clk,
			retention: cfg.Idempotency.Retention,
			purged:    m.IdempotencyPurged,
			log:       log,
		}
		j.run(gctx, cfg.Idempotency.PurgeInterval)
		return nil
	})

	return g.Wait()
}

func authMiddleware(cfg config.AuthConfig) (func(http.Handler) http.Handler, error) {
	switch cfg.Mode {
	case "dev":
		return httpapi.NewDevAuthMiddleware(cfg.DevSubject), nil
	case "none":
		return httpapi.NewAnonymousAuthMiddleware(cfg.DevSubject), nil
	case "jwt":
		return httpapi.NewAuthMiddleware(jwtverifier.New(cfg.JWT)), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// newDeliveryNotifier returns the notifier that actually sends mail, or nil when
// email is disabled.
func newDeliveryNotifier(cfg config.EmailConfig, log zerolog.Logger) (notifier.Notifier, error) {
	switch cfg.Provider {
	case "resend":
		n, err := email.NewResendNotifier(cfg.ResendAPIKey, cfg.From, log)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "log":
		n, err := email.NewLogNotifier(log)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, nil
	}
}

func onboardingOptions(cfg config.OnboardingConfig) (onboarding.Options, error) {
	plate, err := regexp.Compile(cfg.PlatePattern)
	if err != nil {
		return onboarding.Options{}, fmt.Errorf("onboarding.plate_pattern: %w", err)
	}
	scope, ok := onboarding.ParseNameScope(cfg.NameScope)
	if !ok {
		return onboarding.Options{}, fmt.Errorf("onboarding.name_scope: unknown scope %q", cfg.NameScope)
	}
	return onboarding.Options{
		CallingCode:      cfg.CallingCode,
		PlatePattern:     plate,
		NameScope:        scope,
		AllowedDistricts: cfg.AllowedDistricts,
		RequireEmail:     cfg.RequireEmail,
		RequirePhone:     cfg.RequirePhone,
	}, nil
}
