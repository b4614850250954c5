package httpx

import "net/http"

// PageHandlers renders the demo pages. Access control happens in the
// middleware before these run; handlers only read the session from context.
type PageHandlers struct {
	Renderer *TemplateRenderer
}

// Home renders the public landing page.
// GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "home.tmpl", PageData{
		Title: "Home",
		User:  GetUserFromContext(r.Context()),
	})
}

// Admin renders the admin-only page.
// GET /admin.
func (h *PageHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "admin.tmpl", PageData{
		Title: "Admin",
		User:  GetUserFromContext(r.Context()),
	})
}

// User renders the page any signed-in user may see.
// GET /user.
func (h *PageHandlers) User(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "user.tmpl", PageData{
		Title: "My area",
		User:  GetUserFromContext(r.Context()),
	})
}

// Denied renders the access-denied page naming the required and actual role.
// GET /auth/denied?required=<role>&actual=<role>.
func (h *PageHandlers) Denied(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusForbidden, "denied.tmpl", PageData{
		Title:        "Access denied",
		User:         GetUserFromContext(r.Context()),
		RequiredRole: r.URL.Query().Get("required"),
		ActualRole:   r.URL.Query().Get("actual"),
	})
}

// SignedOut renders the post-logout page.
// GET /auth/signed-out?redirect_uri=<optional_redirect>.
func (h *PageHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "signed_out.tmpl", PageData{
		Title:       "Signed out",
		RedirectURI: safeRedirectPath(r.URL.Query().Get("redirect_uri")),
	})
}

// Error renders the authentication-error page.
// GET /auth/error?error=<code>.
func (h *PageHandlers) Error(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "error.tmpl", PageData{
		Title:     "Sign-in error",
		ErrorCode: r.URL.Query().Get("error"),
	})
}
