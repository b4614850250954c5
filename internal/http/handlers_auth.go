package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
	"github.com/rolegate/rolegate/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginSignIn(ctx context.Context, redirectURL string) (*service.BeginResult, error)
	BeginSignUp(ctx context.Context, redirectURL string) (*service.BeginResult, error)
	CompleteSignIn(ctx context.Context, input service.CompleteSignInInput) (*service.CompleteSignInResult, error)
	Session(ctx context.Context, token string) (*domainauth.Session, error)
	SignOut(ctx context.Context, token string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	CookieName   string // session cookie; defaults to "session_token"
	ErrorPath    string // where failed flows land; defaults to "/auth/error"

	// ProviderLogoutURL, when set, is where the browser is sent after local
	// sign-out so the IdP session ends too.
	ProviderLogoutURL string

	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) cookieName() string {
	if h.CookieName == "" {
		return "session_token"
	}
	return h.CookieName
}

func (h *AuthHandlers) errorPath() string {
	if h.ErrorPath == "" {
		return "/auth/error"
	}
	return h.ErrorPath
}

// Login handles the sign-in initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, h.Svc.BeginSignIn)
}

// Signup handles the sign-up initiation endpoint. It is the sign-in flow
// carrying a provider hint toward the registration screen.
// GET /auth/signup?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, h.Svc.BeginSignUp)
}

func (h *AuthHandlers) begin(
	w http.ResponseWriter,
	r *http.Request,
	start func(ctx context.Context, redirectURL string) (*service.BeginResult, error),
) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := start(r.Context(), redirectURI)
	if err != nil {
		h.logger().WarnContext(r.Context(), "begin auth flow failed", "error", err)
		h.failFlow(w, r, "login_failed")
		return
	}

	// Store state, nonce, and the original redirect URI in secure cookies
	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})

	// Redirect to the identity provider
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		h.failFlow(w, r, "missing_code_or_state")
		return
	}

	// Verify state and read nonce from the short-lived flow cookies.
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		h.failFlow(w, r, "invalid_state")
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		h.failFlow(w, r, "missing_nonce")
		return
	}

	result, err := h.Svc.CompleteSignIn(r.Context(), service.CompleteSignInInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "complete sign in failed", "error", err)
		h.failFlow(w, r, "login_completion_failed")
		return
	}

	// Set session cookie and clear temporary OAuth cookies
	h.setSessionCookie(w, r, result.Token, result.Session)
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	// Redirect to the original destination
	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	// Revoke the server-side session when a token is present.
	if cookie, err := r.Cookie(h.cookieName()); err == nil {
		if signOutErr := h.Svc.SignOut(r.Context(), cookie.Value); signOutErr != nil {
			h.logger().WarnContext(r.Context(), "sign out failed", "error", signOutErr)
		}
	}

	// Clear session cookie on the client
	h.clearCookie(w, r, h.cookieName())

	signedOutURL := "/auth/signed-out"
	if redirectURI := safeRedirectPath(r.FormValue("redirect_uri")); redirectURI != "/" {
		u := url.URL{Path: signedOutURL}
		q := url.Values{}
		q.Set("redirect_uri", redirectURI)
		u.RawQuery = q.Encode()
		signedOutURL = u.String()
	}

	// End the IdP session too when the provider supports it.
	if h.ProviderLogoutURL != "" {
		http.Redirect(w, r, h.ProviderLogoutURL, http.StatusFound)
		return
	}

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signedOutURL,
		})
		return
	}

	http.Redirect(w, r, signedOutURL, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cookieName())
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.Session(r.Context(), cookie.Value)
	if err != nil {
		// Session is invalid, revoked, or expired; clear the cookie.
		h.clearCookie(w, r, h.cookieName())
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          session.User,
		"expires_at":    session.ExpiresAt,
	})
}

// failFlow sends a browser to the error page and everything else a JSON error.
func (h *AuthHandlers) failFlow(w http.ResponseWriter, r *http.Request, code string) {
	if isBrowserRequest(r) {
		u := url.URL{Path: h.errorPath()}
		q := url.Values{}
		q.Set("error", code)
		u.RawQuery = q.Encode()
		http.Redirect(w, r, u.String(), http.StatusSeeOther)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusBadRequest,
		ErrCode: code,
		Err:     errors.New("authentication flow failed"),
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set the short-lived flow cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := isSecureRequest(r)
	const flowCookieMaxAge = 600 // 10 minutes

	for name, value := range map[string]string{
		"oauth_state":         p.State,
		"oauth_nonce":         p.Nonce,
		"post_login_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   flowCookieMaxAge,
		})
	}
}

// setSessionCookie writes the signed session token, bounded by its expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirectURI
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
