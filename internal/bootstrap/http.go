package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rolegate/rolegate/config"
	httpx "github.com/rolegate/rolegate/internal/http"
	"github.com/rolegate/rolegate/internal/service"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config *config.AppConfig
	Auth   *AuthContainer
	Authz  *service.Authorizer
	Logger *slog.Logger
}

// BuildHTTPHandler assembles the router and wraps it with the outer
// middleware. Order: Recover -> Logging -> Router.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	var auth *service.AuthService
	var providerLogoutURL string
	if cfg.Auth != nil {
		auth = cfg.Auth.Auth
		providerLogoutURL = cfg.Auth.ProviderLogoutURL
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:              auth,
		Authz:             cfg.Authz,
		CookieDomain:      appCfg.HTTP.CookieDomain,
		CookieName:        appCfg.Auth.Session.CookieName,
		SignInPath:        appCfg.Auth.SignInPath,
		ErrorPath:         appCfg.Auth.ErrorPath,
		ProviderLogoutURL: providerLogoutURL,
		Logger:            logger,
	})

	h := httpx.Logging(logger)(router)
	h = httpx.Recover(logger)(h)
	return h
}

// RunHTTPServer starts the HTTP server and blocks until the context is
// cancelled, a termination signal arrives, or the server fails.
func RunHTTPServer(ctx context.Context, cfg *HTTPServerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      BuildHTTPHandler(cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
