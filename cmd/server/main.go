package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitacora/internal/config"
	cronrunner "github.com/bitacora/internal/cron"
	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/handler"
	"github.com/bitacora/internal/logger"
	"github.com/bitacora/internal/router"
	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if cfg.Log.Level == "debug" {
		gormLog = gormlogger.Default.LogMode(gormlogger.Info)
	}

	// 初始化数据库
	gdb, err := db.Open(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Logger: gormLog,
	})
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := db.EnsureSuperuser(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword, cfg.SuperRootEmail); err != nil {
		log.Fatal("ensure superuser failed", zap.Error(err))
	}

	api := handler.NewAPI(gdb, handler.Options{
		UploadDir:   cfg.UploadDir,
		UploadURL:   cfg.UploadURLPath,
		SiteBaseURL: cfg.SiteBaseURL,
		Location:    cfg.Location(),
		Tokens:      service.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL),
		Mailer:      service.NewMailer(cfg.SMTP, log),
		Admin:       cfg.Admin,
		Logger:      log,
	})

	engine, err := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
		Logger:        log,
		AuthLimiter:   handler.NewIPRateLimiter(6*time.Second, 10),
	})
	if err != nil {
		log.Fatal("router setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cron := cronrunner.New(log, ctx)
	if cfg.Sweep.Spec != "" {
		job := cronrunner.PendingSweepJob(api.Accounts(), cfg.Sweep.MaxAge, log, time.Now)
		if _, err := cron.Add(cfg.Sweep.Spec, job); err != nil {
			log.Fatal("invalid pending sweep schedule", zap.String("spec", cfg.Sweep.Spec), zap.Error(err))
		}
		log.Info("pending account sweep enabled", zap.String("spec", cfg.Sweep.Spec), zap.Duration("max_age", cfg.Sweep.MaxAge))
	}
	cron.Start()
	defer cron.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}

	if exitCode != 0 {
		cron.Stop()
		_ = log.Sync()
		os.Exit(exitCode)
	}
}
