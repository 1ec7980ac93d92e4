package main

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

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/cache"
	"postpilot/infrastructure/clients/meta"
	"postpilot/infrastructure/clients/tiktok"
	"postpilot/infrastructure/clients/whatsapp"
	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/notification"
	"postpilot/infrastructure/persistence"
	"postpilot/infrastructure/pubsub"
	"postpilot/infrastructure/realtime"
	"postpilot/infrastructure/security"
	"postpilot/infrastructure/servicebus"
	httpHandler "postpilot/interfaces/http"
	"postpilot/server"
	"postpilot/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	db, mssql, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	if mssql {
		err = persistence.EnsurePublishingSchemaMSSQL(db)
	} else {
		err = persistence.EnsurePublishingSchema(db)
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring publishing schema")
		os.Exit(1)
	}
	logger.GetLogger().WithField("mssql", mssql).Info("Database connected.")

	mongoDb, err := persistence.NewMongoDb()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - execution archive disabled")
		mongoDb = nil
	}
	// A nil audit keeps the archive endpoint honest (503) when Mongo is off.
	var audit repository.IExecutionAudit
	if mongoDb != nil {
		audit = persistence.NewExecutionAuditRepository(mongoDb)
	}

	redisClient := cache.NewCache()
	mediaCache := cache.NewMediaCache(redisClient)

	pubSubClient, err := pubsub.NewPubSub(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without it")
		pubSubClient = nil
	}
	azServiceBusClient, err := servicebus.NewServiceBus()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without it")
		azServiceBusClient = nil
	}

	sinks := []notification.INotifier{notification.LogNotifier{}}
	if pubSubClient != nil {
		sinks = append(sinks, notification.NewPubSubNotifier(pubsub.NewNotificationPubSub(pubSubClient), configuration.C.Pubsub.Topic))
	}
	if azServiceBusClient != nil {
		sinks = append(sinks, notification.NewServiceBusNotifier(servicebus.NewNotificationServiceBus(azServiceBusClient, configuration.C.ServiceBus.Queue)))
	}
	notifier := notification.NewFanout(sinks...)

	var (
		postRepo  repository.IScheduledPost
		credRepo  repository.IPlatformCredential
		mediaRepo repository.IMedia
	)
	if mssql {
		postRepo = persistence.NewScheduledPostRepositoryMSSQL(db)
		credRepo = persistence.NewCredentialRepositoryMSSQL(db)
		mediaRepo = persistence.NewMediaRepositoryMSSQL(db)
	} else {
		postRepo = persistence.NewScheduledPostRepository(db)
		credRepo = persistence.NewCredentialRepository(db)
		mediaRepo = persistence.NewMediaRepository(db)
	}

	cipher := security.NewCipher(configuration.C.Security.EncryptionKey)

	metaClient := meta.NewClient(meta.Config{
		AppID:       configuration.C.OAuth.Meta.ClientID,
		AppSecret:   configuration.C.OAuth.Meta.ClientSecret,
		RedirectURI: configuration.C.OAuth.Meta.RedirectURI,
	})
	tiktokClient := tiktok.NewClient(tiktok.Config{
		ClientKey:    configuration.C.OAuth.TikTok.ClientID,
		ClientSecret: configuration.C.OAuth.TikTok.ClientSecret,
		RedirectURI:  configuration.C.OAuth.TikTok.RedirectURI,
	})
	whatsappSender := whatsapp.NewSender(whatsapp.Config{
		Recipient: configuration.C.WhatsApp.DefaultRecipient,
	})

	// WhatsApp tokens are permanent, so it has no refresher.
	refreshers := map[model.Platform]repository.ITokenRefresher{
		model.PlatformFacebook:  metaClient.Refresher(),
		model.PlatformInstagram: metaClient.Refresher(),
		model.PlatformTikTok:    tiktokClient.Refresher(),
	}
	tokenManager := usecase.NewTokenManager(credRepo, cipher, refreshers)
	caller := usecase.NewResilientCaller(tokenManager, cipher, usecase.DefaultRetryConfig(), nil)

	hub := realtime.NewExecutionHub()
	ledger := usecase.NewExecutionLedger()
	executor := usecase.NewPostExecutor(
		postRepo, credRepo, mediaRepo, mediaCache,
		[]repository.IPublisher{
			metaClient.Facebook(),
			metaClient.Instagram(),
			tiktokClient.Publisher(),
			whatsappSender,
		},
		caller, ledger, audit, notifier, hub,
		usecase.ExecutorConfig{
			MaxRetries: configuration.C.Executor.MaxRetries,
			RetryDelay: configuration.C.Executor.RetryDelay(),
		},
	)
	scheduler := usecase.NewScheduler(executor, configuration.C.Executor.Tick())
	scheduler.Start(ctx)
	defer scheduler.Stop()

	postHandler := httpHandler.NewPostHandler(postRepo)
	connectionHandler := httpHandler.NewConnectionHandler(credRepo)
	executionHandler := httpHandler.NewExecutionHandler(ledger, scheduler, audit)
	oauthHandler := httpHandler.NewOAuthHandler(metaClient, tiktokClient, credRepo, cipher)

	router := server.InitiateRouter(postHandler, connectionHandler, executionHandler, oauthHandler, hub)

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase picks the SQL vendor: MSSQL for production/Azure (ENV or
// DB_VENDOR), PostgreSQL otherwise.
func InitiateDatabase() (*sql.DB, bool, error) {
	env := os.Getenv("ENV")
	if os.Getenv("DB_VENDOR") == "mssql" || env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, false, err
		}
		return db, true, nil
	}
	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, false, err
	}
	return db, false, nil
}
