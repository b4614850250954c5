package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rolegate/rolegate/config"
	"github.com/rolegate/rolegate/internal/adapters/authroles"
	"github.com/rolegate/rolegate/internal/adapters/devauth"
	"github.com/rolegate/rolegate/internal/adapters/oidc"
	redisadapter "github.com/rolegate/rolegate/internal/adapters/redis"
	"github.com/rolegate/rolegate/internal/adapters/sessiontoken"
	"github.com/rolegate/rolegate/internal/ports"
	"github.com/rolegate/rolegate/internal/service"
)

// AuthContainer groups the auth service with the provider-specific pieces
// the HTTP layer needs.
type AuthContainer struct {
	Auth *service.AuthService

	// ProviderLogoutURL is where the browser goes after local sign-out so the
	// IdP session ends too. Empty when the provider has no logout endpoint.
	ProviderLogoutURL string
}

// AuthConfig contains configuration for auth service construction.
type AuthConfig struct {
	Auth config.AuthConfig

	// RedisClient backs the session revocation store. Optional: when nil the
	// service runs stateless and sign-out relies on cookie clearing alone.
	RedisClient redis.UniversalClient

	// BaseURL is the application base URL, used as the provider's post-logout
	// return destination.
	BaseURL string

	Logger *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth configuration is invalid.
func BuildAuthService(cfg AuthConfig) *AuthContainer {
	codec, err := sessiontoken.NewCodec(sessiontoken.Config{
		Secret: cfg.Auth.Session.Secret,
		MaxAge: cfg.Auth.Session.MaxAge,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create session token codec, auth disabled", "error", err)
		}
		return nil
	}

	extractor, err := authroles.NewExtractor(authroles.ExtractorConfig{
		NamespaceClaim:     cfg.Auth.RolesClaim,
		EmailAdminFallback: cfg.Auth.EmailAdminFallback,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create role extractor, auth disabled", "error", err)
		}
		return nil
	}

	// Revocation store is optional; both modes share it when present.
	var revocations ports.RevocationStore
	if cfg.RedisClient != nil {
		revocations = redisadapter.NewRevocationStore(cfg.RedisClient)
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(cfg, codec, extractor, revocations)

	case config.AuthModeOAuth:
		return buildOAuthService(cfg, codec, extractor, revocations)

	default:
		return nil
	}
}

func buildDevAuthService(
	cfg AuthConfig,
	codec ports.TokenCodec,
	extractor ports.RoleExtractor,
	revocations ports.RevocationStore,
) *AuthContainer {
	prov, err := devauth.NewProvider(devauth.Config{
		Subject: cfg.Auth.DevAuth.Subject,
		Name:    cfg.Auth.DevAuth.Name,
		Email:   cfg.Auth.DevAuth.Email,
		Roles:   cfg.Auth.DevAuth.Roles,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}

	return &AuthContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider:    prov,
			Codec:       codec,
			Roles:       extractor,
			Revocations: revocations,
			Logger:      cfg.Logger,
		}),
	}
}

func buildOAuthService(
	cfg AuthConfig,
	codec ports.TokenCodec,
	extractor ports.RoleExtractor,
	revocations ports.RevocationStore,
) *AuthContainer {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.IssuerURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"issuer_url_empty", oauth.IssuerURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		IssuerURL:    oauth.IssuerURL,
		LogoutURL:    oauth.LogoutURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}

	return &AuthContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider:    prov,
			Codec:       codec,
			Roles:       extractor,
			Revocations: revocations,
			Logger:      cfg.Logger,
		}),
		ProviderLogoutURL: prov.LogoutURL(cfg.BaseURL),
	}
}

// BuildAuthorizer creates the role-hierarchy authorizer with the default
// resource map.
func BuildAuthorizer() *service.Authorizer {
	return service.NewAuthorizer()
}
