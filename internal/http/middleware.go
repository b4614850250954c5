package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionReader is the slice of the auth service middleware needs to resolve
// a session token into a session.
type SessionReader interface {
	Session(ctx context.Context, token string) (*domainauth.Session, error)
}

// AccessDecider is the slice of the authorization service the resource
// middleware needs.
type AccessDecider interface {
	CanAccess(resource string, user *domainauth.User) bool
	RequiredRoles(resource string) []string
}

// GuardOptions configures the session-aware middlewares.
type GuardOptions struct {
	Sessions   SessionReader
	CookieName string // defaults to "session_token"
	SignInPath string // defaults to "/auth/login"
	DeniedPath string // defaults to "/auth/denied"
}

func (o GuardOptions) cookieName() string {
	if o.CookieName == "" {
		return "session_token"
	}
	return o.CookieName
}

func (o GuardOptions) signInPath() string {
	if o.SignInPath == "" {
		return "/auth/login"
	}
	return o.SignInPath
}

func (o GuardOptions) deniedPath() string {
	if o.DeniedPath == "" {
		return "/auth/denied"
	}
	return o.DeniedPath
}

// OptionalSession resolves the session cookie when present and stores the
// session in the request context. Requests without a valid session continue
// unauthenticated; an invalid token is identical to no token.
func OptionalSession(opts GuardOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := sessionFromRequest(r, opts); session != nil {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession requires an authenticated session. Browser requests are
// redirected to the sign-in path; API requests get a 401 JSON response.
// The check runs before any page content is produced.
func RequireSession(opts GuardOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromRequest(r, opts)
			if session == nil {
				unauthenticated(w, r, opts)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// RequireAccess enforces the resource-permission table for one resource key.
// Public resources pass through even without a session. Protected resources
// require a session whose role satisfies the resource's required-role set;
// otherwise browser requests land on the denied page naming both roles and
// API requests get a 403 JSON response.
func RequireAccess(opts GuardOptions, authz AccessDecider, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromRequest(r, opts)

			var user *domainauth.User
			if session != nil {
				u := session.User
				user = &u
			}

			if authz.CanAccess(resource, user) {
				next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
				return
			}

			if user == nil {
				unauthenticated(w, r, opts)
				return
			}

			if isBrowserRequest(r) {
				u := url.URL{Path: opts.deniedPath()}
				q := url.Values{}
				q.Set("required", strings.Join(authz.RequiredRoles(resource), ", "))
				q.Set("actual", string(user.EffectiveRole()))
				u.RawQuery = q.Encode()
				http.Redirect(w, r, u.String(), http.StatusSeeOther)
				return
			}
			WriteError(w, ErrorParams{
				Code:    http.StatusForbidden,
				ErrCode: "insufficient_permissions",
				Err:     errors.New("insufficient permissions"),
			})
		})
	}
}

// sessionFromRequest resolves the session cookie; nil means unauthenticated.
func sessionFromRequest(r *http.Request, opts GuardOptions) *domainauth.Session {
	cookie, err := r.Cookie(opts.cookieName())
	if err != nil {
		return nil
	}

	session, err := opts.Sessions.Session(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

func unauthenticated(w http.ResponseWriter, r *http.Request, opts GuardOptions) {
	if isBrowserRequest(r) {
		redirectToSignIn(w, r, opts.signInPath())
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

// redirectToSignIn redirects browser requests to the sign-in path with the
// current URL as redirect_uri.
func redirectToSignIn(w http.ResponseWriter, r *http.Request, signInPath string) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := signInPath + "?redirect_uri=" + url.QueryEscape(redirectPath)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// isBrowserRequest determines whether a request should get HTML behavior
// (redirects, pages) rather than JSON errors. API routes and clients that do
// not accept text/html are treated as API requests.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes
		return true
	}
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}
