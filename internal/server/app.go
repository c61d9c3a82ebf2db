// Package server initializes and runs the authflow server: it wires the
// store, mailer, and services together, applies schema migrations, and hosts
// the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkotenko/authflow/internal/cryptox"
	"github.com/dkotenko/authflow/internal/logging"
	"github.com/dkotenko/authflow/internal/server/config"
	"github.com/dkotenko/authflow/internal/server/httpapi"
	"github.com/dkotenko/authflow/internal/server/mail"
	"github.com/dkotenko/authflow/internal/server/repositories/repomanager"
	"github.com/dkotenko/authflow/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	handler *httpapi.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	repo := manager.Accounts(db)

	hasher, err := cryptox.NewHasher(cfg.PasswordHashCost)
	if err != nil {
		return nil, err
	}

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUser,
		Password: cfg.MailPassword,
		Sender:   cfg.MailSender,
		Timeout:  cfg.MailTimeout,
	})
	if err != nil {
		return nil, err
	}

	locks := services.NewKeyedMutex()
	otp := services.NewOtpService(repo, mailer, cfg, locks)
	sessions := services.NewSessionService(repo, hasher, cfg, locks)
	handler := httpapi.NewHandler(cfg, logger, otp, sessions)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		manager: manager,
		handler: handler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return app.db.Close()
}
