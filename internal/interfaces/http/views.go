package http

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/pkg/pagination"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"checked": func(v string) bool { return v == "on" || v == "true" || v == "1" },
	"statusView": func(a dto.AssetResponse, statuses []dto.StatusOption, errMsg string) assetStatusView {
		return assetStatusView{Asset: a, Statuses: statuses, Error: errMsg}
	},
	"pagerView": func(p pagination.Page, path, query, target string) pagerView {
		return pagerView{Page: p, Path: path, Query: query, Target: target}
	},
}).ParseFS(templateFS, "templates/*.html"))

// ─── Modelos de vista ─────────────────────────────────────────────────────────

type layoutView struct {
	Title   string
	Subject *subjectView
	Body    template.HTML
}

type subjectView struct {
	Name    string
	Role    string
	IsAdmin bool
}

type loginView struct {
	Username    string
	Error       string
	AllowSignup bool
}

type registerView struct {
	Form   dto.RegisterRequest
	Errors map[string]string
}

type dashboardView struct {
	IsAdmin bool
	Assets  assetListView
	Staff   *dto.StaffListResponse
}

type assetListView struct {
	List     *dto.AssetListResponse
	IsAdmin  bool
	Statuses []dto.StatusOption
}

type assetStatusView struct {
	Asset    dto.AssetResponse
	Statuses []dto.StatusOption
	Error    string
}

type assetFormView struct {
	ID           int64
	Form         dto.AssetForm
	Errors       map[string]string
	Statuses     []dto.StatusOption
	StaffOptions []dto.StaffOption
}

type staffFormView struct {
	ID     int64
	Form   dto.StaffForm
	Errors map[string]string
}

type pagerView struct {
	Page   pagination.Page
	Path   string
	Query  string
	Target string
}

type messageView struct {
	Message   string
	RequestID string
}

// ─── Render ───────────────────────────────────────────────────────────────────

// isHX indica una petición de cliente parcial (htmx).
func isHX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderFragment responde siempre con el fragmento, sin layout.
func renderFragment(c *fiber.Ctx, status int, name string, data any) error {
	body, err := execute(name, data)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(body)
}

// renderPage responde con el fragmento para htmx y con la página completa en otro caso.
func renderPage(c *fiber.Ctx, status int, title, name string, data any) error {
	if isHX(c) {
		return renderFragment(c, status, name, data)
	}
	body, err := execute(name, data)
	if err != nil {
		return err
	}
	layout := layoutView{Title: title, Body: template.HTML(body)}
	if s, ok := subjectFrom(c); ok {
		layout.Subject = &subjectView{Name: displayName(s), Role: roleLabel(s), IsAdmin: s.IsAdmin()}
	}
	return renderFragment(c, status, "layout", layout)
}

func displayName(s access.Subject) string {
	if s.Staff != nil {
		return s.Staff.DisplayName()
	}
	return s.User.FullName()
}

func roleLabel(s access.Subject) string {
	if s.IsAdmin() {
		return "Administrador"
	}
	return "Inventariante"
}

// hxTrigger emite un evento para el cliente parcial.
func hxTrigger(c *fiber.Ctx, event string) {
	c.Set("HX-Trigger", event)
}
