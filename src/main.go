package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerly-server/src/api"
	"ledgerly-server/src/config"
	"ledgerly-server/src/db"
	dbsql "ledgerly-server/src/db/sql"
	"ledgerly-server/src/ledger"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/notify"
	"ledgerly-server/src/util"
)

func main() {
	cfg, err := config.Load()
	l := logger.New(cfg.LogLevel)
	if err != nil {
		fatal(l, "Invalid configuration", err)
	}
	appLog := logger.WithComponent(l, logger.ComponentApp)

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		fatal(appLog, "DB connection failed", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(pool); err != nil {
			fatal(appLog, "Migrations failed", err)
		}
		appLog.Info("Migrations applied")
	}

	if err := db.InitCache(); err != nil {
		fatal(appLog, "Cache init failed", err)
	}
	defer db.Cache.Close()

	pusher, closePusher, err := newPusher(cfg, l)
	if err != nil {
		fatal(appLog, "Push backend init failed", err)
	}
	defer closePusher()

	store := dbsql.NewStore(pool)
	dispatcher := notify.NewDispatcher(store, pusher, l)
	svc := ledger.NewService(store, dispatcher, l)
	issuer := util.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, pool, svc, issuer, l),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		appLog.Info("API server running", "port", cfg.Port, "push_backend", cfg.PushBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(appLog, "Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Graceful shutdown failed", logger.FieldError, err)
	}
}

func newPusher(cfg config.Config, l *slog.Logger) (notify.Pusher, func(), error) {
	noop := func() {}
	switch cfg.PushBackend {
	case config.PushBackendFCM:
		p, err := notify.NewFCMPusher(context.Background(), notify.FirebaseCredentials{
			ProjectID:     cfg.Firebase.ProjectID,
			PrivateKeyID:  cfg.Firebase.PrivateKeyID,
			PrivateKey:    cfg.Firebase.PrivateKey,
			ClientEmail:   cfg.Firebase.ClientEmail,
			ClientID:      cfg.Firebase.ClientID,
			ClientCertURL: cfg.Firebase.ClientX509CertURL,
		})
		return p, noop, err
	case config.PushBackendAMQP:
		p, err := notify.NewAMQPPusher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return notify.LogPusher{Log: logger.WithComponent(l, logger.ComponentNotify)}, noop, nil
	}
}

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, logger.FieldError, err)
	os.Exit(1)
}
