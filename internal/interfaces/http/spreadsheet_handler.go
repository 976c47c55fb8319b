package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

// UploadField campo multipart del archivo a importar.
const UploadField = "planilha"

// SpreadsheetHandler importación, purga y descarga de la planilha (Admin).
type SpreadsheetHandler struct {
	uc *usecase.SpreadsheetUseCase
}

// NewSpreadsheetHandler construye el handler.
func NewSpreadsheetHandler(uc *usecase.SpreadsheetUseCase) *SpreadsheetHandler {
	return &SpreadsheetHandler{uc: uc}
}

// Import godoc
// @Summary      Importar planilha .xlsx
// @Description  Filas inválidas o con tombo repetido se ignoran; no se informa el conteo al cliente.
// @Tags         spreadsheet
// @Accept       multipart/form-data
// @Param        planilha  formData  file  true  "Archivo .xlsx"
// @Success      204  "HX-Trigger: planilhaAtualizada"
// @Failure      400  "archivo ausente o ilegible"
// @Failure      403  "sólo Admin"
// @Router       /assets/import [post]
func (h *SpreadsheetHandler) Import(c *fiber.Ctx) error {
	s := GetSubject(c)
	if !s.IsAdmin() {
		return domain.ErrForbidden
	}
	fh, err := c.FormFile(UploadField)
	if err != nil {
		return fmt.Errorf("%w: arquivo da planilha ausente", domain.ErrInvalidInput)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("abrir upload: %w", err)
	}
	defer f.Close()

	res, err := h.uc.Import(c.UserContext(), s, f)
	if err != nil {
		return err
	}
	requestLog(c).Info().Str("arquivo", fh.Filename).Int("importados", res.Imported).Int("ignorados", res.Skipped).
		Msg("planilha importada")
	hxTrigger(c, "planilhaAtualizada")
	return c.SendStatus(fiber.StatusNoContent)
}

// Purge godoc
// @Summary      Borrar planilha y todos los patrimonios
// @Tags         spreadsheet
// @Success      204  "HX-Trigger: planilhaAtualizada"
// @Failure      403  "sólo Admin"
// @Router       /assets/purge [post]
func (h *SpreadsheetHandler) Purge(c *fiber.Ctx) error {
	if _, err := h.uc.Purge(c.UserContext(), GetSubject(c)); err != nil {
		return err
	}
	hxTrigger(c, "planilhaAtualizada")
	return c.SendStatus(fiber.StatusNoContent)
}

// Download godoc
// @Summary      Descargar la planilha del despliegue
// @Tags         spreadsheet
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      404  "no hay planilha"
// @Router       /assets/spreadsheet [get]
func (h *SpreadsheetHandler) Download(c *fiber.Ctx) error {
	rc, name, err := h.uc.Download(c.UserContext(), GetSubject(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(name)
	// fasthttp cierra rc al terminar de enviar
	return c.SendStream(rc)
}
