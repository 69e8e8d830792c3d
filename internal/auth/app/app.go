package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/aura-clinic/aura/internal/auth/http"
	"github.com/aura-clinic/aura/internal/auth/mail"
	"github.com/aura-clinic/aura/internal/auth/metrics"
	"github.com/aura-clinic/aura/internal/auth/service"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/internal/auth/store/drivers/sqlite"
	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/jwtx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth service together: store, signer, services,
// router and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer jwtx.Signer
	keys   *jwtx.KeySet

	authService         *service.AuthService
	tokenService        *service.TokenService
	userService         *service.UserService
	rolesService        *service.RolesService
	resetService        *service.PasswordResetService
	housekeepingService *service.HousekeepingService

	metrics *metrics.Metrics
	server  *http.Server
	router  *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "aura-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := loadOrGenerateSigner(cfg.SigningKeyFile)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer = signer

	app.keys = jwtx.NewKeySet()
	if err := app.keys.AddSigner(signer); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if cfg.SeedDemoUsers {
		seeder := &service.SeedService{Store: app.db}
		ctx := slogx.WithContext(context.Background(), app.logger)
		if err := seeder.SeedDemoUsers(ctx); err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("failed to seed demo users: %w", err)
		}
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the workers and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		Audience:   []string{app.cfg.Audience},
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokenService,
		Google: &service.GoogleTokenInfoVerifier{ClientID: app.cfg.GoogleClientID},
	}

	app.userService = &service.UserService{Store: app.db}
	app.rolesService = &service.RolesService{Store: app.db}

	app.resetService = &service.PasswordResetService{
		Store:        app.db,
		Mailer:       app.newMailer(),
		ResetBaseURL: app.cfg.ResetBaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	app.metrics = metrics.New()
}

func (app *Application) newMailer() service.ResetMailer {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("no SMTP host configured, reset links will be logged")
		return mail.LogMailer{}
	}
	return &mail.SMTPMailer{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.MailFrom,
	}
}

func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifierEdDSA(app.keys, app.cfg.Issuer, []string{app.cfg.Audience})

	app.router = httpapi.NewRouter(app.keys, verifier, BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.TokenService = app.tokenService
	app.router.UserService = app.userService
	app.router.RolesService = app.rolesService
	app.router.ResetService = app.resetService
	app.router.Metrics = app.metrics
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
