package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/rolegate/rolegate/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting rolegate",
		"auth_mode", cfg.Auth.Mode,
		"addr", cfg.HTTP.Addr,
		"revocation_store", cfg.Redis.Enabled(),
		"dev", cfg.IsDev)

	if err = bootstrap.ValidateConfig(&cfg); err != nil {
		return err
	}

	redisClient, err := bootstrap.ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	auth := bootstrap.BuildAuthService(bootstrap.AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		BaseURL:     cfg.HTTP.BaseURL,
		Logger:      logger,
	})
	if auth == nil {
		return errors.New("auth service could not be constructed; check auth configuration")
	}

	return bootstrap.RunHTTPServer(ctx, &bootstrap.HTTPServerConfig{
		Config: &cfg,
		Auth:   auth,
		Authz:  bootstrap.BuildAuthorizer(),
		Logger: logger,
	})
}
