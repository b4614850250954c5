package httpx

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/rolegate/rolegate/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth  *service.AuthService
	Authz *service.Authorizer
	// Cookie configuration
	CookieDomain string
	CookieName   string
	// Flow paths; empty values fall back to GuardOptions defaults.
	SignInPath string
	ErrorPath  string
	// Optional: provider logout URL (Auth0 style /v2/logout) so sign-out
	// ends the IdP session too.
	ProviderLogoutURL string
	Logger            *slog.Logger
}

// NewRouter creates and configures a new HTTP router with session middleware.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authz := services.Authz
	if authz == nil {
		authz = service.NewAuthorizer()
	}

	authHandlers := &AuthHandlers{
		Svc:               services.Auth,
		CookieDomain:      services.CookieDomain,
		CookieName:        services.CookieName,
		ErrorPath:         services.ErrorPath,
		ProviderLogoutURL: services.ProviderLogoutURL,
		Logger:            services.Logger,
	}

	pageHandlers := setupPageHandlers(services)

	opts := GuardOptions{
		Sessions:   services.Auth,
		CookieName: services.CookieName,
		SignInPath: services.SignInPath,
	}

	registerAuthRoutes(mux, authHandlers)
	if pageHandlers != nil {
		registerPageRoutes(mux, pageHandlers, opts, authz)
	}
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

// setupPageHandlers creates page handlers with the embedded template renderer.
func setupPageHandlers(services RouterServices) *PageHandlers {
	tr, err := NewTemplateRenderer(services.Logger)
	if err != nil {
		if services.Logger != nil {
			services.Logger.Error("failed to create template renderer", slog.Any("error", err))
		} else {
			log.Printf("ERROR: failed to create template renderer: %v", err)
		}
		return nil
	}
	return &PageHandlers{Renderer: tr}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/signup", h.Signup)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerPageRoutes wires the demo pages. The home page resolves the session
// when one is present but never requires it; /user and /admin go through the
// resource access check so the required-role mapping stays in one place.
func registerPageRoutes(mux *http.ServeMux, h *PageHandlers, opts GuardOptions, authz AccessDecider) {
	optional := OptionalSession(opts)
	mux.Handle("GET /{$}", optional(http.HandlerFunc(h.Home)))
	mux.Handle("GET /user", RequireAccess(opts, authz, "/user")(http.HandlerFunc(h.User)))
	mux.Handle("GET /admin", RequireAccess(opts, authz, "/admin")(http.HandlerFunc(h.Admin)))

	// Auth flow pages are public; denied still resolves the session so the
	// page can show who the viewer currently is.
	mux.Handle("GET /auth/denied", optional(http.HandlerFunc(h.Denied)))
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
	mux.HandleFunc("GET /auth/error", h.Error)
}
