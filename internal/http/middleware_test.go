package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
	"github.com/rolegate/rolegate/internal/service"
)

type stubSessionReader struct {
	sessionFunc func(ctx context.Context, token string) (*domainauth.Session, error)
}

func (s *stubSessionReader) Session(ctx context.Context, token string) (*domainauth.Session, error) {
	return s.sessionFunc(ctx, token)
}

func validSessionReader(user domainauth.User) *stubSessionReader {
	return &stubSessionReader{
		sessionFunc: func(_ context.Context, token string) (*domainauth.Session, error) {
			if token != "good-token" {
				return nil, service.ErrSessionInvalid
			}
			return &domainauth.Session{
				ID:        "sess-1",
				User:      user,
				IssuedAt:  time.Now().Add(-time.Minute),
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
}

func noSessionReader() *stubSessionReader {
	return &stubSessionReader{
		sessionFunc: func(_ context.Context, _ string) (*domainauth.Session, error) {
			return nil, service.ErrSessionInvalid
		},
	}
}

func okHandler(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestOptionalSession_NoCookie(t *testing.T) {
	var gotUser *domainauth.User
	handler := OptionalSession(GuardOptions{Sessions: noSessionReader()})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = GetUserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, gotUser)
}

func TestOptionalSession_InvalidTokenTreatedAsAnonymous(t *testing.T) {
	var gotUser *domainauth.User
	handler := OptionalSession(GuardOptions{Sessions: noSessionReader()})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = GetUserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "garbage"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, gotUser)
}

func TestOptionalSession_ValidToken(t *testing.T) {
	user := domainauth.User{ID: "auth0|1", Email: "a@example.com", Role: domainauth.RoleAdmin}

	var gotUser *domainauth.User
	handler := OptionalSession(GuardOptions{Sessions: validSessionReader(user)})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = GetUserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "good-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.NotNil(t, gotUser)
	assert.Equal(t, domainauth.RoleAdmin, gotUser.Role)
}

func TestRequireSession_BrowserRedirectsToSignIn(t *testing.T) {
	next, called := okHandler(t)
	handler := RequireSession(GuardOptions{Sessions: noSessionReader()})(next)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "/auth/login")
	assert.Contains(t, location, "redirect_uri=%2Fuser")
}

func TestRequireSession_APIRequestGets401(t *testing.T) {
	next, called := okHandler(t)
	handler := RequireSession(GuardOptions{Sessions: noSessionReader()})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRequireSession_ValidSessionPasses(t *testing.T) {
	user := domainauth.User{ID: "auth0|1", Role: domainauth.RoleUser}
	next, called := okHandler(t)
	handler := RequireSession(GuardOptions{Sessions: validSessionReader(user)})(next)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "good-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAccess_PublicResourceWithoutSession(t *testing.T) {
	next, called := okHandler(t)
	authz := service.NewAuthorizer()
	handler := RequireAccess(GuardOptions{Sessions: noSessionReader()}, authz, "/")(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAccess_UnauthenticatedProtectedResource(t *testing.T) {
	next, called := okHandler(t)
	authz := service.NewAuthorizer()
	handler := RequireAccess(GuardOptions{Sessions: noSessionReader()}, authz, "/user")(next)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login")
}

func TestRequireAccess_InsufficientRoleBrowserLandsOnDenied(t *testing.T) {
	user := domainauth.User{ID: "auth0|1", Role: domainauth.RoleUser}
	next, called := okHandler(t)
	authz := service.NewAuthorizer()
	handler := RequireAccess(GuardOptions{Sessions: validSessionReader(user)}, authz, "/admin")(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "good-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "/auth/denied")
	assert.Contains(t, location, "required=admin")
	assert.Contains(t, location, "actual=user")
}

func TestRequireAccess_InsufficientRoleAPIGets403(t *testing.T) {
	user := domainauth.User{ID: "auth0|1", Role: domainauth.RoleUser}
	next, called := okHandler(t)
	authz := service.NewAuthorizer()
	handler := RequireAccess(GuardOptions{Sessions: validSessionReader(user)}, authz, "/admin")(next)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "good-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAccess_AdminSatisfiesUserResource(t *testing.T) {
	user := domainauth.User{ID: "auth0|1", Role: domainauth.RoleAdmin}
	next, called := okHandler(t)
	authz := service.NewAuthorizer()
	handler := RequireAccess(GuardOptions{Sessions: validSessionReader(user)}, authz, "/user")(next)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "good-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAccess_CustomCookieName(t *testing.T) {
	user := domainauth.User{ID: "auth0|1", Role: domainauth.RoleUser}
	next, called := okHandler(t)
	authz := service.NewAuthorizer()
	opts := GuardOptions{Sessions: validSessionReader(user), CookieName: "rg_session"}
	handler := RequireAccess(opts, authz, "/user")(next)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "rg_session", Value: "good-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, *called)
}
