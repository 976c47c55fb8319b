package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
)

// DashboardHandler página inicial: patrimonios visibles y, para Admin, inventariantes.
type DashboardHandler struct {
	assets *usecase.AssetUseCase
	staff  *usecase.StaffUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(assets *usecase.AssetUseCase, staff *usecase.StaffUseCase) *DashboardHandler {
	return &DashboardHandler{assets: assets, staff: staff}
}

// Index GET /
func (h *DashboardHandler) Index(c *fiber.Ctx) error {
	s := GetSubject(c)
	list, err := h.assets.List(c.UserContext(), s, c.Query("q"), c.Query("page"))
	if err != nil {
		return err
	}
	v := dashboardView{
		IsAdmin: s.IsAdmin(),
		Assets:  assetListView{List: list, IsAdmin: s.IsAdmin(), Statuses: dto.StatusOptions()},
	}
	if s.IsAdmin() {
		if v.Staff, err = h.staff.List(c.UserContext(), s, "", "1"); err != nil {
			return err
		}
	}
	return renderPage(c, fiber.StatusOK, "Início", "dashboard", v)
}

// Pinger comprueba la base de datos (pgxpool.Pool o sqlite.Store).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func Health(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.JSON(dto.HealthResponse{Status: "ok", Database: "n/a"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			requestLog(c).Warn().Err(err).Msg("health: banco indisponível")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: "degraded", Database: "down"})
		}
		return c.JSON(dto.HealthResponse{Status: "ok", Database: "up"})
	}
}
