package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/application/usecase"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
)

// StaffHandler CRUD de inventariantes (sólo Admin).
type StaffHandler struct {
	uc *usecase.StaffUseCase
}

// NewStaffHandler construye el handler.
func NewStaffHandler(uc *usecase.StaffUseCase) *StaffHandler {
	return &StaffHandler{uc: uc}
}

func (h *StaffHandler) renderList(c *fiber.Ctx, status int) error {
	list, err := h.uc.List(c.UserContext(), GetSubject(c), "", "1")
	if err != nil {
		return err
	}
	return renderFragment(c, status, "staff_list", list)
}

func (h *StaffHandler) renderForm(c *fiber.Ctx, status int, id int64, form dto.StaffForm, errs map[string]string) error {
	form.Password1, form.Password2 = "", ""
	if status == fiber.StatusUnprocessableEntity && isHX(c) {
		c.Set("HX-Retarget", "#modal-area")
		c.Set("HX-Reswap", "innerHTML")
	}
	return renderPage(c, status, "Inventariante", "staff_form", staffFormView{ID: id, Form: form, Errors: errs})
}

// List godoc
// @Summary      Listar inventariantes
// @Tags         staff
// @Produce      html
// @Param        q     query  string  false  "Busca"
// @Param        page  query  string  false  "Página"
// @Success      200
// @Failure      403  "sólo Admin"
// @Router       /staff [get]
func (h *StaffHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), GetSubject(c), c.Query("q"), c.Query("page"))
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(list)
	}
	return renderPage(c, fiber.StatusOK, "Inventariantes", "staff_list", list)
}

// NewForm GET /staff/new
func (h *StaffHandler) NewForm(c *fiber.Ctx) error {
	if err := access.Authorize(GetSubject(c), access.OpCreateStaff, nil); err != nil {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, 0, dto.StaffForm{IsActive: "on"}, nil)
}

// Create godoc
// @Summary      Crear inventariante (identidad + datos propios)
// @Tags         staff
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Success      200  "listado actualizado (HX-Trigger: closeModal)"
// @Failure      403  "sólo Admin"
// @Failure      422  "formulario con errores"
// @Router       /staff/new [post]
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	s := GetSubject(c)
	if err := access.Authorize(s, access.OpCreateStaff, nil); err != nil {
		return err
	}
	var form dto.StaffForm
	err := bindForm(c, &form)
	if err == nil {
		var in dto.StaffInput
		if in, err = form.ToInput(); err == nil {
			_, err = h.uc.Create(c.UserContext(), s, in)
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

// EditForm GET /staff/:id/edit
func (h *StaffHandler) EditForm(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	m, err := h.uc.Get(c.UserContext(), GetSubject(c), id)
	if err != nil {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, id, dto.StaffFormFrom(m), nil)
}

// Update godoc
// @Summary      Editar inventariante (senha vacía = sin cambios)
// @Tags         staff
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        id   path  int  true  "ID"
// @Success      200  "listado actualizado (HX-Trigger: reloadPage)"
// @Failure      403  "sólo Admin"
// @Failure      404
// @Failure      422  "formulario con errores"
// @Router       /staff/{id}/edit [post]
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	s := GetSubject(c)
	if err := access.Authorize(s, access.OpUpdateStaff, nil); err != nil {
		return err
	}
	var form dto.StaffForm
	err = bindForm(c, &form)
	if err == nil {
		var in dto.StaffInput
		if in, err = form.ToInput(); err == nil {
			_, err = h.uc.Update(c.UserContext(), s, id, in)
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

// DeleteConfirm GET /staff/:id/delete/confirm
func (h *StaffHandler) DeleteConfirm(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	m, err := h.uc.Get(c.UserContext(), GetSubject(c), id)
	if err != nil {
		return err
	}
	return renderPage(c, fiber.StatusOK, "Excluir inventariante", "staff_delete_confirm", dto.ToStaffResponse(m))
}

// Delete godoc
// @Summary      Excluir inventariante, su identidad y sus patrimonios
// @Tags         staff
// @Produce      html
// @Param        id   path  int  true  "ID"
// @Success      200  "listado actualizado (HX-Trigger: reloadPage)"
// @Failure      403  "sólo Admin"
// @Failure      404
// @Failure      405  "método distinto de POST/DELETE"
// @Router       /staff/{id}/delete [post]
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), GetSubject(c), id); err != nil {
		return err
	}
	hxTrigger(c, "reloadPage")
	return h.renderList(c, fiber.StatusOK)
}
