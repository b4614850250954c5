package httpx

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

//go:embed templates/*.tmpl templates/pages/*.tmpl
var templateFS embed.FS

// PageData is the view model shared by all rendered pages.
type PageData struct {
	Title string
	User  *domainauth.User

	// Page-specific fields
	RequiredRole string
	ActualRole   string
	RedirectURI  string
	ErrorCode    string
}

// IsAuthenticated reports whether the page has a signed-in user.
func (d PageData) IsAuthenticated() bool { return d.User != nil }

// IsAdmin reports whether the signed-in user is an admin.
func (d PageData) IsAdmin() bool { return d.User != nil && d.User.IsAdmin() }

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// NewTemplateRenderer constructs a renderer from the embedded template set.
func NewTemplateRenderer(logger *slog.Logger) (*TemplateRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t, err := template.ParseFS(templateFS, "templates/*.tmpl", "templates/pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &TemplateRenderer{t: t, logger: logger}, nil
}

// Render writes a page, buffering so template failures do not produce a
// half-written response.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, page, data); err != nil {
		r.logger.Error("render template failed", "template", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return
	}
}
