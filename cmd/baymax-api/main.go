package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baymax-vitals/common/database"
	logpkg "baymax-vitals/common/logger"
	rediscommon "baymax-vitals/common/redis"
	"baymax-vitals/internal/config"
	httpapi "baymax-vitals/internal/http"
	"baymax-vitals/internal/notify"
	"baymax-vitals/internal/repository"
	"baymax-vitals/internal/service"
	"baymax-vitals/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "baymax-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(ctx, redisClient); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	readingsRepo := repository.NewPostgresReadingsRepository(db, log)
	profilesRepo := repository.NewPostgresProfilesRepository(db, log)
	analyticsRepo := repository.NewPostgresAnalyticsRepository(db, log)
	medsRepo := repository.NewPostgresMedicationsRepository(db, log)

	cls, narrator, err := service.NewModelStack(ctx, cfg, kv, log)
	if err != nil {
		log.Fatal("Failed to initialize classifier", zap.Error(err))
	}
	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout, cfg.Notify.RetryCount, log)

	readings := service.NewReadingService(readingsRepo, log)
	vitals := service.NewVitalsService(readingsRepo, profilesRepo, cls, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterProfileRoutes(httpapi.NewProfileHandler(service.NewProfileService(profilesRepo, log), log))
	router.RegisterReadingRoutes(httpapi.NewReadingsHandler(readings, vitals, log))
	router.RegisterHealthCheckRoutes(httpapi.NewHealthCheckHandler(vitals, log))
	router.RegisterSessionRoutes(httpapi.NewSessionHandler(service.NewSessionService(analyticsRepo, profilesRepo, narrator, log), log))
	router.RegisterCaretakerRoutes(httpapi.NewCaretakerHandler(service.NewCaretakerService(profilesRepo, notifier, log), log))
	router.RegisterMedicationRoutes(httpapi.NewMedicationHandler(service.NewMedicationService(medsRepo, log), log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", zap.Error(err))
	}
	log.Info("Service stopped")
}
