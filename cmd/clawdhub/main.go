package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/clawdhub/clawdhub/client"
	"github.com/clawdhub/clawdhub/internal/config"
	"github.com/clawdhub/clawdhub/internal/infra/database"
	"github.com/clawdhub/clawdhub/internal/infra/repository"
	"github.com/clawdhub/clawdhub/internal/present/rest"
	"github.com/clawdhub/clawdhub/internal/present/rest/middleware"
	"github.com/clawdhub/clawdhub/internal/service"
	"github.com/clawdhub/clawdhub/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(conf.Server.TraceEndpoint, conf.Hub.FQDN)
		if err != nil {
			slog.Error("failed to setup trace provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	oracle := client.New(client.Config{
		WalletAuthURL:    conf.Oracles.WalletAuthURL,
		WalletAuthSecret: conf.Oracles.WalletAuthSecret,
		MoltbookURL:      conf.Oracles.MoltbookURL,
		MoltbookAppKey:   conf.Oracles.MoltbookAppKey,
	})

	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db, mc)
	linkRepo := repository.NewLinkRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(conf.Hub, userRepo, linkRepo)

	identity := usecase.NewIdentityUsecase(conf.Hub, oracle, userRepo, agentRepo, linkRepo)
	project := usecase.NewProjectUsecase(projectRepo, agentRepo, signal)
	task := usecase.NewTaskUsecase(taskRepo, projectRepo, signal)

	authMiddleware := middleware.NewAuthMiddleware(auth, identity, conf.Hub)
	handler := rest.NewHandler(conf.Hub, identity, project, task, agentRepo, signal)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	corsConfig := echomiddleware.DefaultCORSConfig
	if conf.Hub.AppOrigin != "" {
		corsConfig.AllowOrigins = []string{conf.Hub.AppOrigin}
		corsConfig.AllowCredentials = true
	}
	e.Use(echomiddleware.CORSWithConfig(corsConfig))

	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(conf.Hub.FQDN))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler.RegisterRoutes(e, authMiddleware.IdentifyAgent)

	bind := conf.Server.Bind
	if bind == "" {
		bind = ":8000"
	}

	e.Logger.Fatal(e.Start(bind))
}

func setupTraceProvider(endpoint string, serviceName string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	shutdown := func() {
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()))
		}
	}

	return shutdown, nil
}
