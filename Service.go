// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/research-marketplace/account-deletion-service/client"
	"github.com/research-marketplace/account-deletion-service/config"
	"github.com/research-marketplace/account-deletion-service/controller"
	"github.com/research-marketplace/account-deletion-service/db"
	"github.com/research-marketplace/account-deletion-service/metrics"
	"github.com/research-marketplace/account-deletion-service/middleware"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/security"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/service/cleanup"
	"github.com/research-marketplace/account-deletion-service/utils"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 30 * time.Second

func setupLogging(cfg config.LoggingConfig) {
	log.SetFormatter(&prefixed.TextFormatter{
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})
	if cfg.File != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMb,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}))
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.Logging)
	utils.PrintConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cp := db.NewConnectionProvider(cfg.DbCredentials())
	if err = db.InitSchema(ctx, cp); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	clk := clock.WallClock
	instanceId := cfg.TechnicalParameters.InstanceId

	userRepository := repository.NewUserRepository(cp)
	deferredDeletionRepository := repository.NewDeferredDeletionRepository(cp)
	userOwnedDataRepository := repository.NewUserOwnedDataRepository(cp)
	sweepRunRepository := repository.NewDeletionSweepRunRepository(cp)
	lockRepository := repository.NewLockRepository(cp)

	identityProviderClient, err := client.NewIdentityProviderClient(ctx, cfg.IdentityProvider)
	if err != nil {
		log.Fatalf("Failed to create identity provider client: %v", err)
	}
	minioStorageService, err := service.NewMinioStorageService(cfg.MinioStorageCreds(), cfg.Deletion.FileListPageSize)
	if err != nil {
		log.Fatalf("Failed to create object storage client: %v", err)
	}

	lockService := service.NewLockService(lockRepository, instanceId, clk)
	deletionSchedulerService := service.NewDeletionSchedulerService(userRepository, deferredDeletionRepository, identityProviderClient, cfg.Deletion, clk)
	verificationService := service.NewVerificationService(userOwnedDataRepository, deferredDeletionRepository)
	sweepRunService := service.NewSweepRunService(sweepRunRepository)

	sweepProcessor := cleanup.NewDeferredDeletionSweepProcessor(deferredDeletionRepository, userOwnedDataRepository, sweepRunRepository, minioStorageService)
	sweepTimeout := cleanup.SweepJobTimeout(cfg.Sweep.Schedule, cfg.Sweep.TimeoutMinutes)
	sweepRunner := cleanup.NewDeferredDeletionSweepRunner(sweepProcessor, lockService, instanceId, sweepTimeout, clk)

	cleanupService := cleanup.NewCleanupService()
	if cfg.Sweep.Enabled {
		if err = cleanupService.CreateDeferredDeletionSweepJob(sweepRunner, cfg.Sweep.Schedule); err != nil {
			log.Fatalf("Failed to schedule deferred deletion sweep: %v", err)
		}
	} else {
		log.Info("Deferred deletion sweep schedule is disabled, sweeps run only on request")
	}

	if err = security.SetupGoGuardian(cfg.Security.SystemApiKeyHash); err != nil {
		log.Fatalf("Failed to setup authentication: %v", err)
	}

	readyChan := make(chan bool, 1)
	healthController := controller.NewHealthController(readyChan, cp)
	deletionController := controller.NewDeletionController(deletionSchedulerService, verificationService)
	sweepController := controller.NewSweepController(sweepRunner, sweepRunService)

	r := mux.NewRouter().SkipClean(true).UseEncodedPath()
	r.HandleFunc("/api/v1/users/{userId}/deletion", security.Secure(deletionController.ScheduleDeletion)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/users/{userId}/deletion", security.Secure(deletionController.GetDeletionStatus)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/users/{userId}/deletion/verification", security.Secure(deletionController.VerifyDeletion)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/deletions/sweep", security.Secure(sweepController.RunSweep)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/deletions/sweeps", security.Secure(sweepController.GetSweepRuns)).Methods(http.MethodGet)

	r.HandleFunc("/live", security.NoSecure(healthController.HandleLiveRequest)).Methods(http.MethodGet)
	r.HandleFunc("/ready", security.NoSecure(healthController.HandleReadyRequest)).Methods(http.MethodGet)

	if cfg.Monitoring.Enabled {
		metrics.RegisterAllPrometheusApplicationMetrics()
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
		r.Use(middleware.PrometheusMiddleware)
	}

	var handler http.Handler = r
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.Security.AllowedOrigins),
			handlers.AllowedHeaders([]string{"Content-Type", security.ApiKeyHeader}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		)(handler)
	}

	srv := &http.Server{
		Handler:      handlers.CompressHandler(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handler)),
		Addr:         cfg.TechnicalParameters.ListenAddress,
		WriteTimeout: 300 * time.Second,
		ReadTimeout:  30 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Account deletion service listening on %s", srv.Addr)
		readyChan <- true
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		select {
		case <-cleanupService.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("Deferred deletion sweep did not finish before shutdown timeout")
		}
		if closeErr := cp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	})
	if err = g.Wait(); err != nil {
		log.Fatalf("Account deletion service stopped with error: %v", err)
	}
}
