package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fauves/fauves-server/internal/app"
	"github.com/fauves/fauves-server/internal/auth"
	"github.com/fauves/fauves-server/internal/barcode"
	"github.com/fauves/fauves-server/internal/credentials"
	"github.com/fauves/fauves-server/internal/events"
	"github.com/fauves/fauves-server/internal/observability"
	"github.com/fauves/fauves-server/internal/payments"
	"github.com/fauves/fauves-server/internal/payments/efipay"
	"github.com/fauves/fauves-server/internal/platform/cache"
	"github.com/fauves/fauves-server/internal/platform/db"
	"github.com/fauves/fauves-server/internal/producers"
	"github.com/fauves/fauves-server/internal/rbac"
	"github.com/fauves/fauves-server/internal/tickets"
	"github.com/fauves/fauves-server/internal/users"
	"github.com/fauves/fauves-server/jobs"
)

// issuanceNotifier bridges credential issuance to the mail queue.
type issuanceNotifier struct {
	client *jobs.Client
	users  auth.Repository
}

func (n issuanceNotifier) NotifyIssuance(ctx context.Context, userID, eventID int64, quantity int) error {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	_, err = n.client.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      user.Email,
		Subject: "Seus ingressos chegaram",
		Body:    fmt.Sprintf("Olá %s, você recebeu %d ingresso(s) para o evento %d.", user.Name, quantity, eventID),
	})
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	eventsRepo := events.NewRepository(pool)
	eventsService := events.NewService(eventsRepo)
	eventsHandler := events.NewHandler(logger, eventsService)

	guard := rbac.Guard{
		Tokens:     tokens,
		Principals: authService,
		Grants:     eventsRepo,
		Logger:     logger,
	}

	ticketsRepo := tickets.NewRepository(pool)
	ticketsService := tickets.NewService(ticketsRepo, eventsRepo)
	ticketsHandler := tickets.NewHandler(logger, ticketsService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	renderer := barcode.NewRenderer(cfg.PublicHost)
	credentialsRepo := credentials.NewRepository(pool)
	credentialsService := credentials.NewService(logger, credentialsRepo, ticketsService, renderer,
		issuanceNotifier{client: jobClient, users: authRepo}, metrics)
	credentialsHandler := credentials.NewHandler(logger, credentialsService)

	gateway, err := efipay.NewClient(efipay.Config{
		BaseURL:      cfg.EfipayBaseURL,
		ClientID:     cfg.EfipayClientID,
		ClientSecret: cfg.EfipayClientSecret,
		CertFile:     cfg.EfipayCertFile,
		KeyFile:      cfg.EfipayKeyFile,
		PixKey:       cfg.EfipayPixKey,
	}, redisClient)
	if err != nil {
		logger.Error("init efipay client", slog.Any("error", err))
		os.Exit(1)
	}

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(logger, paymentsRepo, gateway, ticketsService, credentialsService)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, producers.NewRepository(pool), credentialsRepo)
	usersHandler := users.NewHandler(logger, usersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Guard:              guard,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		EventsHandler:      eventsHandler,
		TicketsHandler:     ticketsHandler,
		CredentialsHandler: credentialsHandler,
		PaymentsHandler:    paymentsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
