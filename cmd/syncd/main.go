package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nmiodice/strava-garmin-sync/internal/backend"
	"github.com/nmiodice/strava-garmin-sync/internal/background/processor"
	"github.com/nmiodice/strava-garmin-sync/internal/background/syncjob"
)

func configureLogging(config backend.LogConfig) {
	if config.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		logrus.WithField("level", config.Level).Warn("unknown log level, staying on info")
		return
	}
	logrus.SetLevel(level)
}

func configureRouter(routes *backend.HttpRoutes) *gin.Engine {
	router := gin.Default()

	router.POST("/sync", routes.SyncRoute)
	router.GET("/status", routes.StatusRoute)
	router.GET("/healthz", routes.HealthRoute)
	router.GET("/metrics", routes.MetricsRoute)

	return router
}

func registerSyncJob(ctx context.Context, config *backend.Config, deps *backend.Dependencies) (*processor.Processor, error) {
	jobs := processor.New()
	err := jobs.Register(ctx, syncjob.ScheduledSyncConfig(deps.Engine, config.Sync.Days, config.Sync.Schedule))
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// runOnce performs a single sync pass and exits, for cron style
// deployments that do not want a resident process.
func runOnce(ctx context.Context, config *backend.Config, deps *backend.Dependencies) {
	report, err := deps.Engine.Run(ctx, config.Sync.Days)
	if err != nil {
		logrus.WithError(err).Fatal("sync run could not start")
	}
	if report.Aborted {
		logrus.WithField("cause", report.AbortCause).Fatal("sync run aborted")
	}
}

func main() {
	// a .env file is optional, the environment may already be complete
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := backend.GetConfig(ctx)
	configureLogging(config.Log)

	deps, err := backend.GetDependencies(ctx, config)
	if err != nil {
		logrus.WithError(err).Fatal("could not configure application dependencies")
	}

	if config.Sync.RunOnce {
		runOnce(ctx, config, deps)
		return
	}

	jobs, err := registerSyncJob(ctx, config, deps)
	if err != nil {
		logrus.WithError(err).Fatal("could not register the sync schedule")
	}
	jobs.Start()

	routes := backend.GetRoutes(config, deps)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.HttpServer.Port),
		Handler: configureRouter(routes),
	}

	go func() {
		logrus.WithField("port", config.HttpServer.Port).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	// a canceled run finishes its in-flight activity, wait for that
	<-jobs.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
