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

	"overlay-stream/api"
	"overlay-stream/config"
	"overlay-stream/storage"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = int(port)
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting overlay API",
		zap.String("database", cfg.DatabaseName),
		zap.String("mongo_uri", cfg.RedactedMongoURI()),
	)
	if !cfg.MongoURISet {
		logger.Warn("MONGO_URI not set, using default", zap.String("mongo_uri", config.DefaultMongoURI))
	}

	mongodb := &storage.MongoDB{Log: logger.Named("storage")}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := mongodb.Connect(connectCtx, cfg.MongoURI, cfg.DatabaseName); err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongodb.Close(closeCtx); err != nil {
			logger.Error("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	if err := mongodb.Ping(connectCtx); err != nil {
		logger.Warn("MongoDB is not reachable, health check will report disconnected", zap.Error(err))
	} else {
		logger.Info("connected to MongoDB")
	}

	handlers := &api.Handlers{
		Overlays:     mongodb,
		Settings:     mongodb,
		Logos:        &storage.LocalLogoStorage{Directory: cfg.LogoDir},
		Log:          logger.Named("api"),
		MaxLogoBytes: cfg.MaxLogoBytes,
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: handlers.Routes(api.RouterConfig{
			CORSOrigins:       cfg.CORSOrigins,
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runCheckDB(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.MongoURISet {
		logger.Warn("MONGO_URI not set, using default", zap.String("mongo_uri", config.DefaultMongoURI))
	}
	logger.Info("testing MongoDB connection",
		zap.String("database", cfg.DatabaseName),
		zap.String("mongo_uri", cfg.RedactedMongoURI()),
	)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	report, err := storage.CheckConnection(ctx, cfg.MongoURI, cfg.DatabaseName, logger)
	if err != nil {
		logger.Error("connection check failed", zap.Error(err))
		return err
	}

	logger.Info("all connection checks passed",
		zap.String("database", report.Database),
		zap.Int("collections", len(report.Collections)),
	)
	return nil
}
