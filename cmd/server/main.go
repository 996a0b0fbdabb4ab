package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskwave/backend/api/handler"
	"github.com/taskwave/backend/internal/config"
	"github.com/taskwave/backend/internal/infrastructure/activity"
	"github.com/taskwave/backend/internal/infrastructure/monitor"
	"github.com/taskwave/backend/internal/infrastructure/oauth"
	pgInfra "github.com/taskwave/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskwave/backend/internal/infrastructure/redis"
	"github.com/taskwave/backend/internal/middleware"
	"github.com/taskwave/backend/internal/router"
	"github.com/taskwave/backend/internal/services"
	"github.com/taskwave/backend/internal/services/lifecycle"
	"github.com/taskwave/backend/pkg/httpcontext"
	"github.com/taskwave/backend/pkg/logger"
	"github.com/taskwave/backend/pkg/token"
	"github.com/taskwave/backend/repository/postgres"
	redisRepo "github.com/taskwave/backend/repository/redis"
	authUC "github.com/taskwave/backend/usecase/auth"
	taskUC "github.com/taskwave/backend/usecase/task"
	userUC "github.com/taskwave/backend/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	activityStore, err := activity.Open(cfg.Activity.Path, "activity")
	if err != nil {
		zapLogger.Fatal("failed to open activity store", zap.Error(err))
	}
	manager.Register("activity_store", func(ctx context.Context) error {
		return activityStore.Close()
	})

	mon := monitor.New(pool, redisClient, activityStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	recorder := services.NewActivityRecorder(activityStore, zapLogger, services.RecorderConfig{
		Retention:     cfg.Activity.Retention,
		PruneInterval: cfg.Activity.PruneInterval,
	})
	recorder.Start()
	manager.Register("activity_recorder", func(ctx context.Context) error {
		recorder.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.Expiry)

	tokens := token.NewManager(token.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry,
		Skew:     cfg.JWT.Skew,
	})

	exchanger := oauth.NewClient(oauth.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		TenantID:     cfg.OAuth.TenantID,
		RedirectURI:  cfg.OAuth.RedirectURI,
		Scopes:       cfg.OAuth.Scopes,
		TokenURL:     cfg.OAuth.TokenURL,
		Timeout:      cfg.OAuth.Timeout,
	}, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, exchanger, tokens, recorder, zapLogger)
	taskUseCase := taskUC.New(taskRepo, userRepo, recorder, zapLogger)
	userUseCase := userUC.New(userRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(userUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(tokens, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
