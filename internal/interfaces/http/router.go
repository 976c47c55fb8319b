package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	AssetUC       *usecase.AssetUseCase
	StaffUC       *usecase.StaffUseCase
	SpreadsheetUC *usecase.SpreadsheetUseCase

	DB             Pinger
	Observer       RequestObserver
	MetricsHandler http.Handler
	Log            *logger.Logger

	AllowSignup        bool
	SecureCookie       bool
	SessionMinutes     int
	LoginRatePerMinute int
}

// AppConfig opciones de la app Fiber.
type AppConfig struct {
	Name        string
	UploadMaxMB int
	// TrustedProxies proxies cuyo X-Forwarded-For determina c.IP(); sin proxies se usa la IP del socket.
	TrustedProxies []string
}

// NewApp crea la app Fiber con el ErrorHandler del dominio.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}
	fc := fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.UploadMaxMB * 1024 * 1024,
		ErrorHandler: ErrorHandler(log),
	}
	if len(cfg.TrustedProxies) > 0 {
		fc.ProxyHeader = fiber.HeaderXForwardedFor
		fc.EnableTrustedProxyCheck = true
		fc.TrustedProxies = cfg.TrustedProxies
		fc.EnableIPValidation = true
	}
	return fiber.New(fc)
}

// Router registra middlewares y rutas.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(RequestID())
	app.Use(RequestLogger(deps.Log, deps.Observer))

	app.Get("/health", Health(deps.DB))
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.AllowSignup, deps.SecureCookie, deps.SessionMinutes)
	limiter := NewLoginRateLimiter(deps.LoginRatePerMinute)
	app.Get("/login", authHandler.LoginPage)
	app.Post("/login", limiter.Handler(), authHandler.Login)
	app.Post("/logout", authHandler.Logout)
	app.Get("/register", authHandler.RegisterPage)
	app.Post("/register", authHandler.Register)

	// Rutas protegidas (sesión + resolución de rol en cada petición)
	protected := app.Group("/", AuthMiddleware(deps.AuthUC))

	dashboard := NewDashboardHandler(deps.AssetUC, deps.StaffUC)
	protected.Get("/", dashboard.Index)

	// Patrimonios
	assetHandler := NewAssetHandler(deps.AssetUC)
	sheetHandler := NewSpreadsheetHandler(deps.SpreadsheetUC)
	assets := protected.Group("/assets")
	assets.Get("/", assetHandler.List)
	assets.Get("/new", assetHandler.NewForm)
	assets.Post("/new", assetHandler.Create)
	assets.Post("/quick-add", assetHandler.QuickAdd)
	assets.Get("/report.pdf", assetHandler.Report)
	adminOnly := RequireRole(access.RoleAdmin)
	assets.Post("/import", adminOnly, sheetHandler.Import)
	assets.Post("/purge", adminOnly, sheetHandler.Purge)
	assets.Get("/spreadsheet", sheetHandler.Download)
	assets.Get("/:id/edit", assetHandler.EditForm)
	assets.Post("/:id/edit", assetHandler.Update)
	assets.Get("/:id/delete/confirm", assetHandler.DeleteConfirm)
	assets.Post("/:id/delete", assetHandler.Delete)
	assets.Delete("/:id/delete", assetHandler.Delete)
	assets.All("/:id/delete", methodNotAllowed)
	assets.Post("/:id/status", assetHandler.UpdateStatus)

	// Inventariantes (Admin)
	staffHandler := NewStaffHandler(deps.StaffUC)
	staff := protected.Group("/staff", RequireRole(access.RoleAdmin))
	staff.Get("/", staffHandler.List)
	staff.Get("/new", staffHandler.NewForm)
	staff.Post("/new", staffHandler.Create)
	staff.Get("/:id/edit", staffHandler.EditForm)
	staff.Post("/:id/edit", staffHandler.Update)
	staff.Get("/:id/delete/confirm", staffHandler.DeleteConfirm)
	staff.Post("/:id/delete", staffHandler.Delete)
	staff.Delete("/:id/delete", staffHandler.Delete)
	staff.All("/:id/delete", methodNotAllowed)
}
