// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskboard/core/profile/adapters/persistence/memory"
	persistence "taskboard/core/profile/adapters/persistence/pg"
	profile_http "taskboard/core/profile/adapters/rest"
	"taskboard/core/profile/domain"
	"taskboard/modules/appconfig"
	"taskboard/modules/auth"
	"taskboard/modules/clock"
	"taskboard/modules/db/postgres"
	"taskboard/modules/db/redis"
	"taskboard/modules/db/redis/counter"
	"taskboard/modules/db/redis/locking"
	"taskboard/modules/keymutex"
	"taskboard/modules/middleware"
	"taskboard/modules/ratelimit"
	"taskboard/modules/server"
	"taskboard/modules/services"
	"taskboard/modules/telemetry"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/rueidis"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// cancel the context when these signals occur
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// manual dependency injections, imo there's no need to over-engineer with DI frameworks like Fx or Wire

	// --- application config ----
	appConfig, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("error", err))
		exitCode = 1
		return
	}
	if appConfig.Env == "dev" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	otelShutdown, err := telemetry.Init(ctx, appConfig.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry not properly configured", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := otelShutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// --- infrastructure ---

	var (
		reader   domain.UserReadStore
		writer   domain.UserWriteStore
		memStore *memory.Store
		checkers []profile_http.HealthChecker
	)

	switch appConfig.StoreBackend {
	case appconfig.StorePostgres:
		connectionPool, err := postgres.New(
			ctx,
			&appConfig.Postgres,
			postgres.PostgresOptions{
				// assuming writer connection does not pass through pgBouncer,
				// so we can apply server-side prepared statements
				ReaderOptions: []postgres.PgxConfigOption{
					postgres.WithPgBouncerSimpleProtocol(),
				},
			},
		)
		if err != nil {
			slog.ErrorContext(ctx, "database error", slog.Any("error", err))
			exitCode = 1
			return
		}
		defer func() {
			if err := connectionPool.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
			}
		}()

		if err := connectionPool.HealthCheck(ctx); err != nil {
			slog.ErrorContext(ctx, "database health check failed", slog.Any("error", err))
			exitCode = 1
			return
		}

		if appConfig.MigrateOnStart {
			if err := connectionPool.MigrateUp(ctx); err != nil {
				slog.ErrorContext(ctx, "database migration failed", slog.Any("error", err))
				exitCode = 1
				return
			}
		}

		// reader uses replicas when configured, writer always goes to the primary
		reader = persistence.NewPostgresUserReader(connectionPool, persistence.DefaultTable)
		writer = persistence.NewPostgresUserWriter(connectionPool, persistence.DefaultTable)
		checkers = append(checkers, connectionPool)

	case appconfig.StoreMemory:
		slog.WarnContext(ctx, "using in-memory user store, data is lost on restart")
		memStore = memory.New()
		reader, writer = memStore, memStore
	}

	useRedisRateLimit := appConfig.RateLimit.Enabled && appConfig.RateLimit.Backend == middleware.RateLimitBackendRedis

	var redisClient rueidis.Client
	if appConfig.LockBackend == appconfig.LockRedis || useRedisRateLimit {
		redisClient, err = redis.NewRueidisClient(ctx, appConfig.Redis)
		if err != nil {
			slog.ErrorContext(ctx, "redis not properly setup", slog.Any("error", err))
			exitCode = 1
			return
		}
		defer redisClient.Close()
		checkers = append(checkers, redis.Pinger{Client: redisClient})
	}

	var locker domain.IdentityLocker
	switch appConfig.LockBackend {
	case appconfig.LockRedis:
		redisLocker, err := redis.NewLocker(appConfig.Redis)
		if err != nil {
			slog.ErrorContext(ctx, "redis locker not properly setup", slog.Any("error", err))
			exitCode = 1
			return
		}
		defer redisLocker.Close()

		locker = locking.NewKeyedLocker(
			redisLocker,
			locking.WithAcquireTimeout(appConfig.LockTimeout),
			locking.WithHoldAtMostFor(appConfig.LockTimeout),
			locking.WithLogger(slog.Default()),
		)

	case appconfig.LockLocal:
		locker = keymutex.New()
	}

	// nil selects the in-process token bucket
	var limiter ratelimit.Limiter
	if useRedisRateLimit {
		limiter, err = ratelimit.NewSlidingWindow(
			counter.NewRedisCounter(redisClient, appConfig.Env),
			appConfig.RateLimit.WindowLimit,
			appConfig.RateLimit.Window,
		)
		if err != nil {
			slog.ErrorContext(ctx, "rate limiter not properly setup", slog.Any("error", err))
			exitCode = 1
			return
		}
	}

	tokens, err := auth.NewTokenService(appConfig.Auth)
	if err != nil {
		slog.ErrorContext(ctx, "token service setup error", slog.Any("error", err))
		exitCode = 1
		return
	}

	if memStore != nil && appConfig.Seed.Enabled() {
		if err := seedUser(ctx, memStore, tokens, appConfig.Seed); err != nil {
			slog.ErrorContext(ctx, "seeding user failed", slog.Any("error", err))
			exitCode = 1
			return
		}
	}

	// --- application layer ---

	httpMetrics, err := telemetry.NewHTTPMetrics(appConfig.Otel.ServiceName)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize HTTP metrics, continuing without metrics", slog.Any("error", err))
		httpMetrics = nil
	}

	appOpts := []domain.Option{}
	if appConfig.RevealNotFound {
		appOpts = append(appOpts, domain.WithNotFoundPolicy(domain.RevealNotFound))
	}
	if profileMetrics, err := telemetry.NewProfileMetrics(appConfig.Otel.ServiceName); err != nil {
		slog.WarnContext(ctx, "failed to initialize profile metrics", slog.Any("error", err))
	} else {
		appOpts = append(appOpts, domain.WithMetrics(profileMetrics))
	}

	app := domain.NewApp(reader, writer, locker, appOpts...)

	profileSvc := services.NewProfileAPIService(
		profile_http.NewProfileAPI(app),
		tokens,
		checkers...,
	)

	slog.DebugContext(ctx, "app rate limit config", slog.Any("rate_limit_config", appConfig.RateLimit))

	srv, err := server.New(
		appConfig.HTTP.Host, appConfig.HTTP.Port,
		server.WithReadTimeout(appConfig.HTTP.ReadTimeout),
		server.WithWriteTimeout(appConfig.HTTP.WriteTimeout),
		server.WithServices(profileSvc),
		server.WithGlobalMiddlewares(
			middleware.Recovery(nil),
			middleware.Telemetry(httpMetrics),
			middleware.RateLimit(appConfig.RateLimit, limiter),
		),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init server error", slog.Any("error", err))
		exitCode = 1
		return
	}

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running server error", slog.Any("error", err))
		exitCode = 1
		return
	}
}

// seedUser adds the configured user to store and logs a token for it so the
// API can be called right away.
func seedUser(ctx context.Context, store *memory.Store, tokens *auth.TokenService, cfg appconfig.SeedConfig) error {
	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	now := clock.RealClockProvider().Now().UTC()
	store.Seed(domain.User{
		ID:           id,
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	token, err := tokens.Issue(id)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "seeded user",
		slog.String("id", id.String()),
		slog.String("email", cfg.Email),
		slog.String("token", token),
	)
	return nil
}
