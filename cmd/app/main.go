package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"botdash/configs"
	"botdash/internal/accounttree"
	"botdash/internal/adapter/telegram"
	"botdash/internal/database"
	delivery "botdash/internal/delivery/http"
	"botdash/internal/delivery/ops"
	"botdash/internal/domain"
	"botdash/internal/infra"
	"botdash/internal/loading"
	"botdash/internal/logger"
	custommiddleware "botdash/internal/middleware"
	"botdash/internal/repository"
	"botdash/internal/repository/memory"
	"botdash/internal/service"
	"botdash/internal/usecase"
	"botdash/internal/utils"
	"botdash/internal/vault"
)

const version = "0.1.0"

// repositories groups the storage backends the services run on
type repositories struct {
	users         domain.UserRepository
	accounts      domain.AccountRepository
	credentials   domain.CredentialRepository
	bots          domain.BotRepository
	signals       domain.SignalRepository
	subscriptions domain.SubscriptionRepository
	settings      domain.SettingsRepository
}

func postgresRepositories(db *pgxpool.Pool) repositories {
	return repositories{
		users:         repository.NewUserRepository(db),
		accounts:      repository.NewAccountRepository(db),
		credentials:   repository.NewCredentialRepository(db),
		bots:          repository.NewBotRepository(db),
		signals:       repository.NewSignalRepository(db),
		subscriptions: repository.NewSubscriptionRepository(db),
		settings:      repository.NewSettingsRepository(db),
	}
}

func memoryRepositories() repositories {
	store := memory.NewStore()
	for _, p := range defaultPackages() {
		store.Subscriptions.AddPackage(p)
	}
	return repositories{
		users:         store.Users,
		accounts:      store.Accounts,
		credentials:   store.Credentials,
		bots:          store.Bots,
		signals:       store.Signals,
		subscriptions: store.Subscriptions,
		settings:      store.Settings,
	}
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	mainLog := appLog.WithComponent("main")

	ctx := context.Background()
	loc := utils.LoadLocation(cfg.Server.Timezone)

	// Storage: PostgreSQL when configured, otherwise an in-memory store
	var repos repositories
	var pinger ops.Pinger
	if cfg.Database.URL != "" {
		db, err := infra.NewDatabase(ctx, cfg.Database, appLog.WithComponent("database"))
		if err != nil {
			mainLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db, appLog.WithComponent("migrations")); err != nil {
			mainLog.WithError(err).Fatal("Failed to run migrations")
		}
		repos = postgresRepositories(db)
		pinger = db
	} else {
		mainLog.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		repos = memoryRepositories()
	}

	// Credential sealing
	var sealer service.Sealer
	var opener usecase.Opener
	if cfg.Vault.Key != "" {
		v, err := vault.New(cfg.Vault.Key, cfg.Vault.Salt)
		if err != nil {
			mainLog.WithError(err).Fatal("Failed to initialise credential vault")
		}
		sealer, opener = v, v
	} else {
		mainLog.Warn("CREDENTIALS_KEY not set, API credential storage disabled")
	}

	notifier := telegram.NewNotificationService(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		appLog.Entry(),
		telegram.WithLocation(loc),
	)

	// Initialize services
	userService := service.NewUserService(repos.users)
	botService := service.NewBotService(repos.bots, appLog.Entry())
	accountService := service.NewAccountService(repos.accounts, repos.credentials, sealer, accounttree.FirstWins, appLog.Entry())
	signalService := service.NewSignalService(repos.signals, repos.accounts, notifier, appLog.Entry())
	subscriptionService := service.NewSubscriptionService(repos.subscriptions, repos.settings, notifier, appLog.Entry())
	settingsService := service.NewSettingsService(repos.settings)
	statsService := service.NewStatsService(repos.users, repos.bots, repos.accounts, repos.signals, repos.subscriptions)

	syncService := usecase.NewSyncService(
		repos.accounts,
		usecase.NewCredentialChecker(repos.credentials, opener, appLog.WithComponent("credentials")),
		subscriptionService,
		loading.Options{
			MinDuration: cfg.Jobs.SyncMinDuration,
			Timeout:     cfg.Jobs.SyncSafetyTimeout,
		},
		appLog.Entry(),
	)

	// Scheduled jobs
	scheduler := infra.NewScheduler(cfg.Jobs, syncService, subscriptionService, signalService, loc, appLog.Entry())
	if err := scheduler.Start(); err != nil {
		mainLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Stop()

	// API server (echo)
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		Auth:                custommiddleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Log:                 appLog.Entry(),
		AuthHandler:         delivery.NewAuthHandler(userService, appLog.WithComponent("auth")),
		BotHandler:          delivery.NewBotHandler(botService),
		AccountHandler:      delivery.NewAccountHandler(accountService),
		SignalHandler:       delivery.NewSignalHandler(signalService),
		SubscriptionHandler: delivery.NewSubscriptionHandler(subscriptionService),
		SettingsHandler:     delivery.NewSettingsHandler(settingsService),
		AdminHandler:        delivery.NewAdminHandler(userService, statsService, accountService, signalService, subscriptionService, syncService),
	})

	apiSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     log.New(appLog.Writer(), "", 0),
	}

	// Ops server (chi)
	opsSrv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler: ops.NewRouter(ops.Config{
			Version: version,
			DB:      pinger,
			Sweep:   scheduler.RunSweepNow,
			Log:     appLog.WithComponent("ops"),
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	for _, srv := range []*http.Server{apiSrv, opsSrv} {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLog.WithError(err).WithField("addr", srv.Addr).Fatal("Failed to start server")
			}
		}(srv)
	}

	mainLog.WithField("addr", apiSrv.Addr).Info("API server listening")
	mainLog.WithField("addr", opsSrv.Addr).Info("Ops server listening")
	mainLog.WithField("env", cfg.Server.Env).Info("botdash started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLog.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, srv := range []*http.Server{apiSrv, opsSrv} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).WithField("addr", srv.Addr).Error("Server forced to shutdown")
		}
	}

	mainLog.Info("Servers exited gracefully")
}
