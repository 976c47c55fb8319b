package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

// AssetHandler listado, formularios y acciones de patrimonios.
type AssetHandler struct {
	uc *usecase.AssetUseCase
}

// NewAssetHandler construye el handler.
func NewAssetHandler(uc *usecase.AssetUseCase) *AssetHandler {
	return &AssetHandler{uc: uc}
}

// paramID id de ruta; un id no numérico es un registro inexistente.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (h *AssetHandler) listView(c *fiber.Ctx, s access.Subject, query, page string) (assetListView, error) {
	list, err := h.uc.List(c.UserContext(), s, query, page)
	if err != nil {
		return assetListView{}, err
	}
	return assetListView{List: list, IsAdmin: s.IsAdmin(), Statuses: dto.StatusOptions()}, nil
}

// renderList responde con el listado fresco (primera página, sin filtro) tras una mutación.
func (h *AssetHandler) renderList(c *fiber.Ctx, status int) error {
	v, err := h.listView(c, GetSubject(c), "", "1")
	if err != nil {
		return err
	}
	return renderFragment(c, status, "asset_list", v)
}

// List godoc
// @Summary      Listar patrimonios
// @Description  Admin ve todos; un inventariante sólo los propios. Página de 5.
// @Tags         assets
// @Produce      html
// @Param        q     query  string  false  "Busca (tombo, descrição, setor, dependência, situação)"
// @Param        page  query  string  false  "Página"
// @Success      200
// @Router       /assets [get]
func (h *AssetHandler) List(c *fiber.Ctx) error {
	v, err := h.listView(c, GetSubject(c), c.Query("q"), c.Query("page"))
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(v.List)
	}
	return renderPage(c, fiber.StatusOK, "Patrimônios", "asset_list", v)
}

func (h *AssetHandler) formView(c *fiber.Ctx, id int64, form dto.AssetForm, errs map[string]string) (assetFormView, error) {
	opts, err := h.uc.StaffOptions(c.UserContext(), GetSubject(c))
	if err != nil {
		return assetFormView{}, err
	}
	return assetFormView{ID: id, Form: form, Errors: errs, Statuses: dto.StatusOptions(), StaffOptions: opts}, nil
}

func (h *AssetHandler) renderForm(c *fiber.Ctx, status int, id int64, form dto.AssetForm, errs map[string]string) error {
	v, err := h.formView(c, id, form, errs)
	if err != nil {
		return err
	}
	if status == fiber.StatusUnprocessableEntity && isHX(c) {
		c.Set("HX-Retarget", "#modal-area")
		c.Set("HX-Reswap", "innerHTML")
	}
	return renderPage(c, status, "Patrimônio", "asset_form", v)
}

// NewForm GET /assets/new: formulario vacío con el próximo tombo sugerido.
func (h *AssetHandler) NewForm(c *fiber.Ctx) error {
	s := GetSubject(c)
	if err := access.Authorize(s, access.OpCreateAsset, nil); err != nil {
		return err
	}
	next, err := h.uc.NextTagNumber(c.UserContext())
	if err != nil {
		return err
	}
	form := dto.AssetForm{TagNumber: strconv.FormatInt(next, 10), Status: string(entity.StatusLocated)}
	return h.renderForm(c, fiber.StatusOK, 0, form, nil)
}

// Create godoc
// @Summary      Crear patrimonio
// @Tags         assets
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Success      200  "listado actualizado (HX-Trigger: closeModal)"
// @Failure      422  "formulario con errores"
// @Router       /assets/new [post]
func (h *AssetHandler) Create(c *fiber.Ctx) error {
	var form dto.AssetForm
	err := bindForm(c, &form)
	if err == nil {
		var in dto.AssetInput
		if in, err = form.ToInput(); err == nil {
			_, err = h.uc.Create(c.UserContext(), GetSubject(c), in)
		}
	}
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return h.renderForm(c, fiber.StatusUnprocessableEntity, 0, form, fields)
		}
		return err
	}
	hxTrigger(c, "closeModal")
	return h.renderList(c, fiber.StatusOK)
}

// EditForm GET /assets/:id/edit
func (h *AssetHandler) EditForm(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	a, err := h.uc.Get(c.UserContext(), GetSubject(c), id)
	if err != nil {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, id, dto.AssetFormFrom(a), nil)
}

// Update godoc
// @Summary      Editar patrimonio
// @Tags         assets
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        id   path  int  true  "ID"
// @Success      200  "listado actualizado (HX-Trigger: reloadPage)"
// @Failure      404  "inexistente o de otro inventariante"
// @Failure      422  "formulario con errores"
// @Router       /assets/{id}/edit [post]
func (h *AssetHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var form dto.AssetForm
	err = bindForm(c, &form)
	if err == nil {
		var in dto.AssetInput
		if in, err = form.ToInput(); err == nil {
			_, err = h.uc.Update(c.UserContext(), GetSubject(c), id, in)
		}
	}
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return h.renderForm(c, fiber.StatusUnprocessableEntity, id, form, fields)
		}
		return err
	}
	hxTrigger(c, "reloadPage")
	return h.renderList(c, fiber.StatusOK)
}

// DeleteConfirm GET /assets/:id/delete/confirm
func (h *AssetHandler) DeleteConfirm(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	a, err := h.uc.Get(c.UserContext(), GetSubject(c), id)
	if err != nil {
		return err
	}
	return renderPage(c, fiber.StatusOK, "Excluir patrimônio", "asset_delete_confirm", dto.ToAssetResponse(a))
}

// Delete godoc
// @Summary      Excluir patrimonio
// @Tags         assets
// @Produce      html
// @Param        id   path  int  true  "ID"
// @Success      200  "listado actualizado (HX-Trigger: patrimonioExcluido)"
// @Failure      404  "inexistente o de otro inventariante"
// @Failure      405  "método distinto de POST/DELETE"
// @Router       /assets/{id}/delete [post]
func (h *AssetHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), GetSubject(c), id); err != nil {
		return err
	}
	hxTrigger(c, "patrimonioExcluido")
	return h.renderList(c, fiber.StatusOK)
}

// UpdateStatus godoc
// @Summary      Cambiar la situação de un patrimonio
// @Tags         assets
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        id      path      int     true  "ID"
// @Param        status  formData  string  true  "localizado | nao_localizado | calamidade"
// @Success      200  "control de situação actualizado"
// @Failure      422  "situação inválida (sin cambios)"
// @Router       /assets/{id}/status [post]
func (h *AssetHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	s := GetSubject(c)
	out, err := h.uc.UpdateStatus(c.UserContext(), s, id, c.FormValue("status"))
	if errors.Is(err, domain.ErrInvalidStatus) {
		a, gerr := h.uc.Get(c.UserContext(), s, id)
		if gerr != nil {
			return gerr
		}
		return renderFragment(c, fiber.StatusUnprocessableEntity, "asset_status",
			assetStatusView{Asset: dto.ToAssetResponse(a), Statuses: dto.StatusOptions(), Error: err.Error()})
	}
	if err != nil {
		return err
	}
	return renderFragment(c, fiber.StatusOK, "asset_status", assetStatusView{Asset: *out, Statuses: dto.StatusOptions()})
}

// QuickAdd godoc
// @Summary      Alta rápida
// @Description  Crea un patrimonio con el próximo tombo y valores provisorios y agrega la fila a la planilha.
// @Tags         assets
// @Produce      html
// @Success      200  "listado actualizado (HX-Trigger: planilhaAtualizada)"
// @Failure      403  "usuario sin inventariante"
// @Router       /assets/quick-add [post]
func (h *AssetHandler) QuickAdd(c *fiber.Ctx) error {
	out, err := h.uc.QuickAdd(c.UserContext(), GetSubject(c))
	if err != nil {
		return err
	}
	requestLog(c).Info().Int64("tombo", out.TagNumber).Msg("adição rápida")
	hxTrigger(c, "planilhaAtualizada")
	return h.renderList(c, fiber.StatusOK)
}

// Report godoc
// @Summary      Relatório PDF del listado visible
// @Tags         assets
// @Produce      application/pdf
// @Param        q  query  string  false  "Busca"
// @Success      200
// @Router       /assets/report.pdf [get]
func (h *AssetHandler) Report(c *fiber.Ctx) error {
	out, err := h.uc.Report(c.UserContext(), GetSubject(c), c.Query("q"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="patrimonios.pdf"`)
	return c.Send(out)
}
